package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coinwatch/internal/api"
	"coinwatch/internal/config"
	"coinwatch/internal/gateway"
	"coinwatch/internal/mailer"
	"coinwatch/internal/repository"
	"coinwatch/internal/service"
	"coinwatch/internal/websocket"
	"coinwatch/pkg/utils"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// .env опционален - в проде конфигурация приходит из окружения
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env file: %v", err)
	}

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	logger := utils.InitGlobalLogger(utils.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	defer logger.Sync()

	// Инициализация базы данных
	db, err := initDatabase(cfg)
	if err != nil {
		utils.Fatal("Failed to connect to database", utils.Err(err))
	}
	defer db.Close()

	utils.Info("Connected to database", utils.String("dsn", cfg.Database.DSNWithoutPassword()))

	// Инициализация репозиториев
	coinRepo := repository.NewCoinRepository(db)
	newsRepo := repository.NewNewsRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Внешние провайдеры рыночных данных и новостей
	httpClient := gateway.SharedHTTPClient()
	marketGateway := gateway.NewCoinPaprikaClient(cfg.Market.BaseURL, httpClient)
	newsGateway := gateway.NewNewsAPIClient(cfg.News.BaseURL, cfg.News.APIKey, httpClient)

	// Отправка писем для сброса пароля
	smtpMailer := mailer.NewSMTPMailer(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})

	// Инициализация сервисов
	coinService := service.NewCoinService(coinRepo, newsRepo, marketGateway, newsGateway)
	newsService := service.NewNewsService(newsGateway)
	authService := service.NewAuthService(userRepo, smtpMailer, cfg.Security.JWTSecret, cfg.Server.FrontendURL)

	// WebSocket hub с периодической рассылкой топ-монет
	hub := websocket.NewHub(marketGateway, cfg.Broadcast.Interval, cfg.Broadcast.TopLimit)
	go hub.Run()

	// Настройка зависимостей для API
	deps := &api.Dependencies{
		CoinService: coinService,
		NewsService: newsService,
		AuthService: authService,
		Hub:         hub,
		JWTSecret:   cfg.Security.JWTSecret,
	}

	// Настройка HTTP роутера
	router := api.SetupRoutes(deps)

	// HTTP сервер
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск сервера в отдельной горутине
	go func() {
		utils.Info("Starting server", utils.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Fatal("Server failed", utils.Err(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		utils.Fatal("Server forced to shutdown", utils.Err(err))
	}

	gateway.CloseSharedClient()

	utils.Info("Server exited")
}

// initDatabase создает подключение к базе данных
func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Проверка подключения
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
