package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNewsUnavailable - не удалось получить новости: сетевая ошибка,
// не-200 статус или некорректный ответ провайдера. Ноль найденных статей
// ошибкой НЕ является - это валидный пустой результат.
var ErrNewsUnavailable = errors.New("news unavailable")

// DefaultNewsAPIBaseURL - базовый URL NewsAPI.org
const DefaultNewsAPIBaseURL = "https://newsapi.org"

// defaultNewsDomains - фильтр источников, как у провайдера новостей монет
const defaultNewsDomains = "coindesk.com,u.today,cryptonews.com"

// Article - нормализованная новостная статья.
// Gateway заполняет отсутствующие у провайдера поля значениями по умолчанию,
// чтобы вызывающим не приходилось проверять наличие полей.
type Article struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	ImageURL    string     `json:"imageUrl"`
	PublishedAt *time.Time `json:"publishedAt"`
}

// NewsAPIClient - клиент NewsAPI.org (news gateway).
//
// Два режима поиска:
//   - FetchNews: поиск по заголовку (qInTitle) - используется для подбора
//     заголовка к конкретной монете по ее тикеру;
//   - FetchTopNews: полнотекстовый поиск (q) - используется для общей ленты.
//
// Оба отсортированы провайдером по publishedAt descending.
type NewsAPIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewNewsAPIClient создает клиент NewsAPI.
func NewNewsAPIClient(baseURL, apiKey string, httpClient *http.Client) *NewsAPIClient {
	if baseURL == "" {
		baseURL = DefaultNewsAPIBaseURL
	}
	if httpClient == nil {
		httpClient = SharedHTTPClient()
	}
	return &NewsAPIClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// everythingResponse - структура ответа /v2/everything NewsAPI
type everythingResponse struct {
	Status   string            `json:"status"`
	Articles []articleResponse `json:"articles"`
}

type articleResponse struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	URLToImage  string  `json:"urlToImage"`
	PublishedAt *string `json:"publishedAt"`
}

// FetchNews ищет статьи по ключевому слову в заголовке.
// GET /v2/everything?qInTitle=...
//
// Пустой результат при успешном вызове - не ошибка: возвращается пустой срез.
// ErrNewsUnavailable - только при провале вызова или некорректном ответе
// (status != "ok" или articles не массив).
func (c *NewsAPIClient) FetchNews(ctx context.Context, keyword string, pageSize int) ([]Article, error) {
	return c.search(ctx, "qInTitle", keyword, pageSize, "fetch_news")
}

// FetchTopNews ищет статьи полнотекстовым запросом.
// GET /v2/everything?q=...
func (c *NewsAPIClient) FetchTopNews(ctx context.Context, keyword string, pageSize int) ([]Article, error) {
	return c.search(ctx, "q", keyword, pageSize, "fetch_top_news")
}

func (c *NewsAPIClient) search(ctx context.Context, queryParam, keyword string, pageSize int, operation string) ([]Article, error) {
	start := time.Now()
	defer func() {
		UpstreamRequestDuration.WithLabelValues("newsapi", operation).Observe(time.Since(start).Seconds())
	}()

	q := url.Values{}
	q.Set(queryParam, keyword)
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("domains", defaultNewsDomains)
	q.Set("apiKey", c.apiKey)

	endpoint := fmt.Sprintf("%s/v2/everything?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		UpstreamRequestErrors.WithLabelValues("newsapi", operation).Inc()
		return nil, fmt.Errorf("%w: creating request: %v", ErrNewsUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		UpstreamRequestErrors.WithLabelValues("newsapi", operation).Inc()
		return nil, fmt.Errorf("%w: request failed: %v", ErrNewsUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		UpstreamRequestErrors.WithLabelValues("newsapi", operation).Inc()
		return nil, fmt.Errorf("%w: unexpected status: %s", ErrNewsUnavailable, resp.Status)
	}

	var payload everythingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		UpstreamRequestErrors.WithLabelValues("newsapi", operation).Inc()
		return nil, fmt.Errorf("%w: decoding response: %v", ErrNewsUnavailable, err)
	}

	// status != "ok" означает проблему на стороне провайдера, а не пустой поиск
	if payload.Status != "ok" {
		UpstreamRequestErrors.WithLabelValues("newsapi", operation).Inc()
		return nil, fmt.Errorf("%w: upstream status %q", ErrNewsUnavailable, payload.Status)
	}

	articles := make([]Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		articles = append(articles, normalizeArticle(a))
	}

	return articles, nil
}

// normalizeArticle заполняет отсутствующие поля значениями по умолчанию
func normalizeArticle(a articleResponse) Article {
	article := Article{
		Title:       a.Title,
		Description: a.Description,
		URL:         a.URL,
		ImageURL:    a.URLToImage,
	}

	if article.Title == "" {
		article.Title = "No title"
	}
	if article.URL == "" {
		article.URL = "#"
	}

	if a.PublishedAt != nil && *a.PublishedAt != "" {
		if ts, err := time.Parse(time.RFC3339, *a.PublishedAt); err == nil {
			article.PublishedAt = &ts
		}
	}

	return article
}
