package api

import (
	"net/http"

	"coinwatch/internal/api/handlers"
	"coinwatch/internal/api/middleware"
	"coinwatch/internal/service"
	"coinwatch/internal/websocket"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies содержит все зависимости для API handlers
type Dependencies struct {
	CoinService service.CoinServiceInterface
	NewsService service.NewsServiceInterface
	AuthService service.AuthServiceInterface
	Hub         *websocket.Hub
	JWTSecret   string
}

// SetupRoutes настраивает все HTTP маршруты приложения
//
// Назначение:
// Центральное место для определения всех API endpoints.
// Регистрирует handlers для каждого маршрута.
// Применяет middleware к группам маршрутов.
//
// Структура маршрутов:
//
// /api/
//
//	├── /auth/
//	│   ├── POST /register - регистрация пользователя
//	│   ├── POST /login - вход
//	│   ├── POST /forgot-password - письмо для сброса пароля
//	│   ├── GET /reset-password/{token} - проверка токена сброса
//	│   └── POST /reset-password - установка нового пароля
//	├── /coins/
//	│   ├── GET /top - топ монет по капитализации (публичный)
//	│   ├── GET /search-price/{coinId} - снимок рынка (публичный)
//	│   ├── GET /search-news/{symbol} - свежая новость (публичный)
//	│   ├── GET / - watchlist пользователя (JWT)
//	│   ├── POST / - добавить монету (JWT)
//	│   ├── PUT /{id} - обновить заметки / обновить снимок (JWT)
//	│   └── DELETE /{id} - удалить монету (JWT)
//	└── /news/
//	    └── GET /top - главные крипто-новости (JWT)
//
// /ws/
//
//	└── /stream - WebSocket с периодическим снимком топ-монет
//
// Middleware применяется в следующем порядке:
// 1. Recovery (для всех маршрутов)
// 2. Logging (для всех маршрутов)
// 3. Metrics (для всех маршрутов)
// 4. CORS (для всех маршрутов)
// 5. Auth (только для защищенных маршрутов)
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	// Глобальные middleware (применяются ко всем маршрутам)
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(middleware.Metrics)
	router.Use(middleware.CORS)

	// Создание handlers с внедрением зависимостей
	var coinHandler *handlers.CoinHandler
	if deps != nil && deps.CoinService != nil {
		coinHandler = handlers.NewCoinHandler(deps.CoinService)
	}

	var newsHandler *handlers.NewsHandler
	if deps != nil && deps.NewsService != nil {
		newsHandler = handlers.NewNewsHandler(deps.NewsService)
	}

	var authHandler *handlers.AuthHandler
	if deps != nil && deps.AuthService != nil {
		authHandler = handlers.NewAuthHandler(deps.AuthService)
	}

	api := router.PathPrefix("/api").Subrouter()

	// Auth routes (публичные)
	if authHandler != nil {
		api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
		api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
		api.HandleFunc("/auth/forgot-password", authHandler.ForgotPassword).Methods("POST")
		api.HandleFunc("/auth/reset-password/{token}", authHandler.VerifyResetToken).Methods("GET")
		api.HandleFunc("/auth/reset-password", authHandler.ResetPassword).Methods("POST")
	}

	if coinHandler != nil {
		// Публичные passthrough endpoints
		api.HandleFunc("/coins/top", coinHandler.GetTopCoins).Methods("GET")
		api.HandleFunc("/coins/search-price/{coinId}", coinHandler.SearchPrice).Methods("GET")
		api.HandleFunc("/coins/search-news/{symbol}", coinHandler.SearchNews).Methods("GET")

		// Watchlist CRUD (требует JWT)
		coins := api.PathPrefix("/coins").Subrouter()
		coins.Use(middleware.Auth(secretOf(deps)))
		coins.HandleFunc("", coinHandler.GetCoins).Methods("GET")
		coins.HandleFunc("", coinHandler.CreateCoin).Methods("POST")
		coins.HandleFunc("/{id:[0-9]+}", coinHandler.UpdateCoin).Methods("PUT")
		coins.HandleFunc("/{id:[0-9]+}", coinHandler.DeleteCoin).Methods("DELETE")
	}

	if newsHandler != nil {
		news := api.PathPrefix("/news").Subrouter()
		news.Use(middleware.Auth(secretOf(deps)))
		news.HandleFunc("/top", newsHandler.GetTopNews).Methods("GET")
	}

	// WebSocket route
	if deps != nil && deps.Hub != nil {
		hub := deps.Hub
		router.HandleFunc("/ws/stream", func(w http.ResponseWriter, r *http.Request) {
			websocket.ServeWS(hub, w, r)
		})
	}

	// Prometheus метрики
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	return router
}

func secretOf(deps *Dependencies) string {
	if deps == nil {
		return ""
	}
	return deps.JWTSecret
}
