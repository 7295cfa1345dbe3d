package service

import (
	"context"
	"time"

	"coinwatch/internal/gateway"
	"coinwatch/internal/models"
	"coinwatch/internal/repository"
)

// ============================================================
// Интерфейсы зависимостей сервисов
// ============================================================

// CoinRepositoryInterface - контракт хранилища монет
type CoinRepositoryInterface interface {
	Create(coin *models.Coin) error
	GetByID(userID, id int) (*models.Coin, error)
	Find(userID int, filter, sortBy string) ([]*models.Coin, error)
	Update(coin *models.Coin) error
	Delete(userID, id int) error
}

// NewsRepositoryInterface - контракт хранилища заголовков
type NewsRepositoryInterface interface {
	Create(headline *models.Headline) error
	Latest(userID, coinID int) (*models.Headline, error)
	Replace(userID, coinID int, headline *models.Headline) error
	DeleteByCoin(userID, coinID int) error
}

// UserRepositoryInterface - контракт хранилища пользователей
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByResetToken(tokenHash string, now time.Time) (*models.User, error)
	SetResetToken(id int, tokenHash string, expiresAt time.Time) error
	UpdatePassword(id int, passwordHash string) error
}

// MarketGateway - контракт провайдера рыночных данных
type MarketGateway interface {
	FetchCoin(ctx context.Context, coinID string) (*gateway.CoinData, error)
	FetchTopCoins(ctx context.Context, limit int) ([]gateway.TopCoin, error)
}

// NewsGateway - контракт провайдера новостей
type NewsGateway interface {
	FetchNews(ctx context.Context, keyword string, pageSize int) ([]gateway.Article, error)
	FetchTopNews(ctx context.Context, keyword string, pageSize int) ([]gateway.Article, error)
}

// Mailer - контракт отправки транзакционных писем
type Mailer interface {
	SendPasswordReset(to, username, resetURL string) error
}

// ============================================================
// Интерфейсы сервисов (потребляются HTTP слоем)
// ============================================================

// CoinServiceInterface - операции watchlist-а и публичные выборки рынка
type CoinServiceInterface interface {
	Create(ctx context.Context, userID int, coinID string) (*CoinWithHeadline, error)
	List(ctx context.Context, userID int, filter, sortBy string) ([]*CoinWithHeadline, error)
	Update(ctx context.Context, userID, id int, params UpdateCoinParams) (*CoinWithHeadline, error)
	Delete(ctx context.Context, userID, id int) error
	TopCoins(ctx context.Context, limit int) ([]gateway.TopCoin, error)
	SearchPrice(ctx context.Context, coinID string) (*gateway.CoinData, error)
	SearchHeadline(ctx context.Context, symbol string) (*gateway.Article, error)
}

// NewsServiceInterface - общая новостная лента
type NewsServiceInterface interface {
	TopNews(ctx context.Context) ([]gateway.Article, error)
}

// AuthServiceInterface - аутентификация и восстановление пароля
type AuthServiceInterface interface {
	Register(username, email, password string) (*AuthResult, error)
	Login(email, password string) (*AuthResult, error)
	ForgotPassword(email string) error
	VerifyResetToken(rawToken string) error
	ResetPassword(rawToken, password string) error
}

// ============================================================
// Compile-time проверки реализации интерфейсов
// ============================================================

var (
	_ CoinRepositoryInterface = (*repository.CoinRepository)(nil)
	_ NewsRepositoryInterface = (*repository.NewsRepository)(nil)
	_ UserRepositoryInterface = (*repository.UserRepository)(nil)
	_ MarketGateway           = (*gateway.CoinPaprikaClient)(nil)
	_ NewsGateway             = (*gateway.NewsAPIClient)(nil)

	_ CoinServiceInterface = (*CoinService)(nil)
	_ NewsServiceInterface = (*NewsService)(nil)
	_ AuthServiceInterface = (*AuthService)(nil)
)
