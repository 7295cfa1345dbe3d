package websocket

import (
	"net/http"
	"os"
	"strings"
	"time"

	"coinwatch/pkg/utils"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время на завершение записи сообщения
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Период отправки ping (должен быть меньше pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего сообщения
	maxMessageSize = 65536

	// Размер буфера исходящих сообщений клиента
	clientSendBufferSize = 64
)

// OriginChecker проверяет Origin входящего соединения.
// Разрешенные origin задаются через ALLOWED_ORIGINS (через запятую),
// по умолчанию - локальная разработка.
func OriginChecker(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Не-браузерные клиенты (wscat, тесты)
		return true
	}

	allowed := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
		"http://localhost:5173",
	}
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		for _, o := range strings.Split(env, ",") {
			if o = strings.TrimSpace(o); o != "" {
				allowed = append(allowed, o)
			}
		}
	}

	for _, o := range allowed {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:    1024,
	WriteBufferSize:   4096,
	CheckOrigin:       OriginChecker,
	EnableCompression: true,
}

// Client - одно WebSocket соединение
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn

	// Буферизованный канал исходящих сообщений
	send chan []byte

	// Закрывается при отключении клиента, останавливает цикл рассылки
	done chan struct{}
}

// readPump читает сообщения от клиента.
// Входящие payload игнорируются - канал односторонний, чтение нужно
// только для обработки pong и обнаружения разрыва соединения.
func (c *Client) readPump() {
	defer func() {
		close(c.done)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure) {
				utils.Warn("websocket read error",
					utils.ClientID(c.id),
					utils.Err(err))
			}
			return
		}
	}
}

// writePump пишет сообщения клиенту и поддерживает соединение ping-ами.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS апгрейдит HTTP запрос до WebSocket и регистрирует клиента.
// После регистрации hub начинает персональную рассылку топ-монет.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.Error("websocket upgrade failed", utils.Err(err))
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, clientSendBufferSize),
		done: make(chan struct{}),
	}
	hub.register <- client

	go client.writePump()
	go client.readPump()
	go hub.pushTopCoins(client)
}
