// Package gateway содержит клиенты внешних API: рыночные данные (CoinPaprika)
// и новости (NewsAPI).
package gateway

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// HTTPClientConfig содержит настройки общего исходящего HTTP клиента.
// Один клиент переиспользуется всеми gateway для connection pooling.
type HTTPClientConfig struct {
	ConnectTimeout time.Duration // таймаут установки TCP соединения (default: 5s)
	TotalTimeout   time.Duration // общий таймаут запроса (default: 10s)

	// Connection pooling
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	// TLS
	TLSHandshakeTimeout time.Duration
}

// DefaultHTTPClientConfig возвращает конфигурацию по умолчанию.
// Таймаут 10s ограничивает каждый вызов к внешнему API; retry не делаем -
// ошибка сразу классифицируется и отдается вызывающему.
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		ConnectTimeout:      5 * time.Second,
		TotalTimeout:        10 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
}

// globalClient - процесс-wide HTTP клиент, лениво инициализируется один раз
// и внедряется в gateway вместо создания клиента на каждый вызов.
var (
	globalClient     *http.Client
	globalClientOnce sync.Once
)

// SharedHTTPClient возвращает общий HTTP клиент с настройками по умолчанию.
func SharedHTTPClient() *http.Client {
	globalClientOnce.Do(func() {
		globalClient = NewHTTPClient(DefaultHTTPClientConfig())
	})
	return globalClient
}

// NewHTTPClient создает HTTP клиент с заданной конфигурацией.
func NewHTTPClient(config HTTPClientConfig) *http.Client {
	dialer := &net.Dialer{
		Timeout:   config.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		TLSHandshakeTimeout: config.TLSHandshakeTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   config.TotalTimeout,
	}
}

// CloseSharedClient закрывает idle соединения общего клиента.
// Вызывается при graceful shutdown.
func CloseSharedClient() {
	if globalClient != nil {
		if transport, ok := globalClient.Transport.(*http.Transport); ok {
			transport.CloseIdleConnections()
		}
	}
}
