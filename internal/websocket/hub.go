package websocket

import (
	"context"
	"sync"
	"time"

	"coinwatch/internal/gateway"
	"coinwatch/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Метрики websocket слоя
var (
	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "coinwatch",
		Subsystem: "websocket",
		Name:      "connected_clients",
		Help:      "Число подключенных websocket клиентов.",
	})

	pushErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coinwatch",
		Subsystem: "websocket",
		Name:      "push_errors_total",
		Help:      "Число проваленных тиков рассылки топ-монет.",
	})
)

// MarketSource - источник данных для периодической рассылки
type MarketSource interface {
	FetchTopCoins(ctx context.Context, limit int) ([]gateway.TopCoin, error)
}

// TopCoinsMessage - снимок топ-монет, уходящий клиенту
type TopCoinsMessage struct {
	Type string            `json:"type"`
	Data []gateway.TopCoin `json:"data"`
}

// Hub управляет всеми активными WebSocket соединениями
//
// Каждому подключенному клиенту hub запускает персональный цикл рассылки:
// раз в interval запрашивается снимок топ-монет у провайдера и отправляется
// именно этому клиенту. Провал одного тика (провайдер недоступен) не рвет
// соединение - тик пропускается, следующий пойдет по расписанию. Цикл
// останавливается ровно в момент отключения клиента.
type Hub struct {
	// Зарегистрированные клиенты
	clients map[*Client]bool

	// Регистрация нового клиента
	register chan *Client

	// Отмена регистрации клиента
	unregister chan *Client

	// Источник снимков топ-монет
	source MarketSource

	// Параметры рассылки
	interval time.Duration
	topLimit int

	// Mutex для потокобезопасного доступа к clients
	mu sync.RWMutex
}

// NewHub создает новый Hub.
// interval - период рассылки, topLimit - размер снимка.
func NewHub(source MarketSource, interval time.Duration, topLimit int) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		source:     source,
		interval:   interval,
		topLimit:   topLimit,
	}
}

// Run запускает главный цикл Hub.
// Должен запускаться в отдельной горутине: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()

			connectedClients.Set(float64(total))
			utils.Info("websocket client connected",
				utils.ClientID(client.id),
				utils.Int("total_clients", total))

		case client := <-h.unregister:
			// Канал send не закрывается: в него конкурентно пишет цикл
			// рассылки, writePump завершается через done
			h.mu.Lock()
			delete(h.clients, client)
			total := len(h.clients)
			h.mu.Unlock()

			connectedClients.Set(float64(total))
			utils.Info("websocket client disconnected",
				utils.ClientID(client.id),
				utils.Int("total_clients", total))
		}
	}
}

// pushTopCoins - персональный цикл рассылки одного клиента.
// Запускается при подключении, завершается при закрытии done.
func (h *Hub) pushTopCoins(c *Client) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), h.interval)
			coins, err := h.source.FetchTopCoins(ctx, h.topLimit)
			cancel()
			if err != nil {
				// Тик пропускается, соединение живет дальше
				pushErrors.Inc()
				utils.Warn("top coins push tick failed",
					utils.ClientID(c.id),
					utils.Err(err))
				continue
			}

			payload, err := json.Marshal(&TopCoinsMessage{
				Type: "topCoins",
				Data: coins,
			})
			if err != nil {
				pushErrors.Inc()
				utils.Error("top coins snapshot marshal failed", utils.Err(err))
				continue
			}

			select {
			case c.send <- payload:
			case <-c.done:
				return
			default:
				// Клиент не вычитывает сообщения - закрываем соединение
				utils.Warn("dropping slow websocket client", utils.ClientID(c.id))
				c.conn.Close()
				return
			}
		}
	}
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
