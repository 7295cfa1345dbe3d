package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Ошибки market data gateway
var (
	// ErrCoinDataUnavailable - не удалось получить данные по монете
	// (сетевая ошибка, не-200 статус или неполный ответ провайдера)
	ErrCoinDataUnavailable = errors.New("coin data unavailable")

	// ErrTopCoinsUnavailable - не удалось получить список топ монет
	ErrTopCoinsUnavailable = errors.New("top coins unavailable")
)

// DefaultCoinPaprikaBaseURL - базовый URL API CoinPaprika
const DefaultCoinPaprikaBaseURL = "https://api.coinpaprika.com"

// CoinData - рыночный снимок одной монеты.
// Все поля обязательны: gateway никогда не возвращает частичные данные.
type CoinData struct {
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	MarketCap float64 `json:"marketCap"`
	Change24h float64 `json:"change24h"`
}

// TopCoin - одна позиция в списке топ монет.
// Отдельные поля могут отсутствовать у провайдера - тогда остаются нулевыми;
// одна битая запись не ломает весь список.
type TopCoin struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Rank      int     `json:"rank"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"`
	MarketCap float64 `json:"marketCap"`
}

// CoinPaprikaClient - клиент API CoinPaprika (market data gateway).
//
// Использует общий process-wide HTTP клиент, не создает соединения на каждый
// вызов. Ошибки не ретраит: провал вызова сразу классифицируется как
// ErrCoinDataUnavailable / ErrTopCoinsUnavailable.
type CoinPaprikaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCoinPaprikaClient создает клиент CoinPaprika.
// Пустой baseURL заменяется на DefaultCoinPaprikaBaseURL,
// nil httpClient - на общий клиент процесса.
func NewCoinPaprikaClient(baseURL string, httpClient *http.Client) *CoinPaprikaClient {
	if baseURL == "" {
		baseURL = DefaultCoinPaprikaBaseURL
	}
	if httpClient == nil {
		httpClient = SharedHTTPClient()
	}
	return &CoinPaprikaClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// tickerResponse - структура ответа /v1/tickers CoinPaprika
type tickerResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Rank   int    `json:"rank"`
	Quotes struct {
		USD *usdQuote `json:"USD"`
	} `json:"quotes"`
}

type usdQuote struct {
	Price           float64 `json:"price"`
	MarketCap       float64 `json:"market_cap"`
	PercentChange24 float64 `json:"percent_change_24h"`
}

// FetchCoin возвращает рыночный снимок одной монеты.
// GET /v1/tickers/{coinId}
//
// Возвращает ErrCoinDataUnavailable если вызов провалился или ответ
// не содержит обязательных полей (name, symbol, котировка USD).
func (c *CoinPaprikaClient) FetchCoin(ctx context.Context, coinID string) (*CoinData, error) {
	start := time.Now()
	defer func() {
		UpstreamRequestDuration.WithLabelValues("coinpaprika", "fetch_coin").Observe(time.Since(start).Seconds())
	}()

	endpoint := fmt.Sprintf("%s/v1/tickers/%s", c.baseURL, url.PathEscape(coinID))

	var ticker tickerResponse
	if err := c.getJSON(ctx, endpoint, &ticker); err != nil {
		UpstreamRequestErrors.WithLabelValues("coinpaprika", "fetch_coin").Inc()
		return nil, fmt.Errorf("%w: %v", ErrCoinDataUnavailable, err)
	}

	// Проверяем обязательные поля - частичные данные не отдаем
	if ticker.Name == "" || ticker.Symbol == "" || ticker.Quotes.USD == nil {
		UpstreamRequestErrors.WithLabelValues("coinpaprika", "fetch_coin").Inc()
		return nil, fmt.Errorf("%w: incomplete ticker for %q", ErrCoinDataUnavailable, coinID)
	}

	return &CoinData{
		Name:      ticker.Name,
		Symbol:    ticker.Symbol,
		Price:     ticker.Quotes.USD.Price,
		MarketCap: ticker.Quotes.USD.MarketCap,
		Change24h: ticker.Quotes.USD.PercentChange24,
	}, nil
}

// FetchTopCoins возвращает топ монет по рангу провайдера (ascending).
// GET /v1/tickers?limit=N
//
// Запись без котировки USD попадает в результат с нулевыми рыночными полями -
// одна битая запись не должна ломать весь список. ErrTopCoinsUnavailable
// возвращается только когда провалился сам вызов.
func (c *CoinPaprikaClient) FetchTopCoins(ctx context.Context, limit int) ([]TopCoin, error) {
	start := time.Now()
	defer func() {
		UpstreamRequestDuration.WithLabelValues("coinpaprika", "fetch_top").Observe(time.Since(start).Seconds())
	}()

	endpoint := fmt.Sprintf("%s/v1/tickers?limit=%s", c.baseURL, url.QueryEscape(strconv.Itoa(limit)))

	var tickers []tickerResponse
	if err := c.getJSON(ctx, endpoint, &tickers); err != nil {
		UpstreamRequestErrors.WithLabelValues("coinpaprika", "fetch_top").Inc()
		return nil, fmt.Errorf("%w: %v", ErrTopCoinsUnavailable, err)
	}

	coins := make([]TopCoin, 0, len(tickers))
	for _, t := range tickers {
		coin := TopCoin{
			ID:     t.ID,
			Name:   t.Name,
			Symbol: t.Symbol,
			Rank:   t.Rank,
		}
		if t.Quotes.USD != nil {
			coin.Price = t.Quotes.USD.Price
			coin.Change24h = t.Quotes.USD.PercentChange24
			coin.MarketCap = t.Quotes.USD.MarketCap
		}
		coins = append(coins, coin)
	}

	return coins, nil
}

// getJSON выполняет GET запрос и декодирует JSON ответ
func (c *CoinPaprikaClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
