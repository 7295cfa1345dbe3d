package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"coinwatch/internal/api/middleware"
	"coinwatch/internal/gateway"
	"coinwatch/internal/service"

	"github.com/gorilla/mux"
)

// Лимиты публичной выборки топ-монет
const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

// CoinHandler отвечает за watchlist монет и публичные выборки рынка
//
// Endpoints:
// - POST   /api/coins                        - сохранить монету в watchlist
// - GET    /api/coins                        - список монет с заголовками
// - PUT    /api/coins/{id}                   - note-edit и/или refresh
// - DELETE /api/coins/{id}                   - удалить монету с заголовками
// - GET    /api/coins/top                    - топ монет по рангу (публичный)
// - GET    /api/coins/search-price/{coinId}  - рыночный снимок (публичный)
// - GET    /api/coins/search-news/{symbol}   - свежий заголовок (публичный)
type CoinHandler struct {
	coinService service.CoinServiceInterface
}

// NewCoinHandler создает новый CoinHandler с внедрением зависимостей
func NewCoinHandler(coinService service.CoinServiceInterface) *CoinHandler {
	return &CoinHandler{
		coinService: coinService,
	}
}

// CreateCoinRequest структура запроса на сохранение монеты
type CreateCoinRequest struct {
	CoinID string `json:"coinId"` // btc-bitcoin
}

// UpdateCoinRequest структура запроса на обновление монеты
type UpdateCoinRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// TopCoinsResponse конверт публичной выборки топ-монет
type TopCoinsResponse struct {
	Coins []gateway.TopCoin `json:"coins"`
}

// SearchNewsResponse конверт публичного поиска заголовка
type SearchNewsResponse struct {
	Headline *gateway.Article `json:"headline"`
}

// CreateCoin сохраняет новую монету в watchlist пользователя
// POST /api/coins
//
// Request Body:
//
//	{"coinId": "btc-bitcoin"}
//
// Response:
// - 201 Created: монета с заголовком (headline может быть null)
// - 400 Bad Request: пустой coinId
// - 404 Not Found: провайдер не знает такую монету
// - 409 Conflict: монета уже в watchlist
// - 502 Bad Gateway: новостной провайдер недоступен
func (h *CoinHandler) CreateCoin(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", "")
		return
	}

	var req CreateCoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body", err.Error())
		return
	}

	result, err := h.coinService.Create(r.Context(), userID, req.CoinID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

// GetCoins возвращает монеты пользователя с их заголовками
// GET /api/coins
//
// Query Parameters:
// - filter: подстрока имени монеты (без учета регистра)
// - sortBy: price (по возрастанию) или change24h (по убыванию);
//   иное значение - естественный порядок
//
// Response:
// - 200 OK: массив монет
func (h *CoinHandler) GetCoins(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", "")
		return
	}

	filter := r.URL.Query().Get("filter")
	sortBy := r.URL.Query().Get("sortBy")

	coins, err := h.coinService.List(r.Context(), userID, filter, sortBy)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	// Пустой watchlist - пустой массив, не null
	if coins == nil {
		coins = []*service.CoinWithHeadline{}
	}
	respondWithJSON(w, http.StatusOK, coins)
}

// UpdateCoin применяет note-edit и/или refresh к монете
// PUT /api/coins/{id}
//
// Query Parameters:
// - refresh=true: перечитать рыночные данные и заголовок
//
// Request Body (опционально):
//
//	{"notes": "watch closely"}
//
// Response:
// - 200 OK: обновленная монета
// - 404 Not Found: монета не найдена или принадлежит другому пользователю
// - 404/502: провайдеры недоступны при refresh
func (h *CoinHandler) UpdateCoin(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", "")
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_id", "Invalid coin ID", "ID must be a number")
		return
	}

	params := service.UpdateCoinParams{
		Refresh: r.URL.Query().Get("refresh") == "true",
	}

	// Тело опционально: refresh может идти без него
	if r.Body != nil && r.ContentLength != 0 {
		var req UpdateCoinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body", err.Error())
			return
		}
		params.Notes = req.Notes
	}

	result, err := h.coinService.Update(r.Context(), userID, id, params)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// DeleteCoin удаляет монету и все ее заголовки
// DELETE /api/coins/{id}
//
// Response:
// - 204 No Content: монета удалена
// - 404 Not Found: монета не найдена
func (h *CoinHandler) DeleteCoin(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", "")
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_id", "Invalid coin ID", "ID must be a number")
		return
	}

	if err := h.coinService.Delete(r.Context(), userID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetTopCoins возвращает топ монет по рангу провайдера
// GET /api/coins/top
//
// Query Parameters:
// - limit: размер выборки (default 10, max 100)
//
// Response:
// - 200 OK: {"coins": [...]}
// - 502 Bad Gateway: провайдер недоступен
func (h *CoinHandler) GetTopCoins(w http.ResponseWriter, r *http.Request) {
	limit := defaultTopLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondWithError(w, http.StatusBadRequest, "invalid_limit", "Limit must be a positive number", "")
			return
		}
		limit = parsed
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}

	coins, err := h.coinService.TopCoins(r.Context(), limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if coins == nil {
		coins = []gateway.TopCoin{}
	}
	respondWithJSON(w, http.StatusOK, TopCoinsResponse{Coins: coins})
}

// SearchPrice возвращает рыночный снимок одной монеты
// GET /api/coins/search-price/{coinId}
//
// Response:
// - 200 OK: рыночные данные
// - 404 Not Found: провайдер не знает такую монету
func (h *CoinHandler) SearchPrice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	data, err := h.coinService.SearchPrice(r.Context(), vars["coinId"])
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, data)
}

// SearchNews возвращает самый свежий заголовок по тикеру
// GET /api/coins/search-news/{symbol}
//
// Response:
// - 200 OK: {"headline": статья} или {"headline": null} если ничего не нашлось
// - 502 Bad Gateway: новостной провайдер недоступен
func (h *CoinHandler) SearchNews(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	article, err := h.coinService.SearchHeadline(r.Context(), vars["symbol"])
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, SearchNewsResponse{Headline: article})
}

// handleServiceError мапит ошибки сервисного слоя на HTTP статусы
func (h *CoinHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCoinIDRequired):
		respondWithError(w, http.StatusBadRequest, "coin_id_required", "coinId is required", "")

	case errors.Is(err, service.ErrCoinNotFound):
		respondWithError(w, http.StatusNotFound, "coin_not_found", "Coin not found", "")

	case errors.Is(err, service.ErrCoinAlreadySaved):
		respondWithError(w, http.StatusConflict, "coin_exists", "Coin is already in your watchlist", "")

	case errors.Is(err, gateway.ErrCoinDataUnavailable):
		respondWithError(w, http.StatusNotFound, "coin_data_unavailable", "Coin data is unavailable", "")

	case errors.Is(err, gateway.ErrTopCoinsUnavailable):
		respondWithError(w, http.StatusBadGateway, "top_coins_unavailable", "Market data provider is unavailable", "")

	case errors.Is(err, gateway.ErrNewsUnavailable):
		respondWithError(w, http.StatusBadGateway, "news_unavailable", "News provider is unavailable", "")

	default:
		respondWithError(w, http.StatusInternalServerError, "internal_error", "Internal server error", "")
	}
}
