package handlers

import (
	"errors"
	"net/http"

	"coinwatch/internal/gateway"
	"coinwatch/internal/service"
)

// NewsHandler отвечает за общую новостную ленту рынка
//
// Endpoints:
// - GET /api/news/top - подборка свежих новостей рынка
type NewsHandler struct {
	newsService service.NewsServiceInterface
}

// NewNewsHandler создает новый NewsHandler с внедрением зависимостей
func NewNewsHandler(newsService service.NewsServiceInterface) *NewsHandler {
	return &NewsHandler{
		newsService: newsService,
	}
}

// TopNewsResponse конверт новостной подборки
type TopNewsResponse struct {
	Articles []gateway.Article `json:"articles"`
}

// GetTopNews возвращает подборку свежих новостей рынка
// GET /api/news/top
//
// Response:
// - 200 OK: {"articles": [...]} (пустой массив - валидный ответ)
// - 502 Bad Gateway: новостной провайдер недоступен
func (h *NewsHandler) GetTopNews(w http.ResponseWriter, r *http.Request) {
	articles, err := h.newsService.TopNews(r.Context())
	if err != nil {
		if errors.Is(err, gateway.ErrNewsUnavailable) {
			respondWithError(w, http.StatusBadGateway, "news_unavailable", "News provider is unavailable", "")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "internal_error", "Internal server error", "")
		return
	}

	if articles == nil {
		articles = []gateway.Article{}
	}
	respondWithJSON(w, http.StatusOK, TopNewsResponse{Articles: articles})
}
