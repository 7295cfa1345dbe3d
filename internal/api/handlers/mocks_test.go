package handlers

import (
	"context"

	"coinwatch/internal/gateway"
	"coinwatch/internal/service"
)

// ============================================================
// Моки сервисов с настраиваемым поведением
// ============================================================

type mockCoinService struct {
	createFn         func(ctx context.Context, userID int, coinID string) (*service.CoinWithHeadline, error)
	listFn           func(ctx context.Context, userID int, filter, sortBy string) ([]*service.CoinWithHeadline, error)
	updateFn         func(ctx context.Context, userID, id int, params service.UpdateCoinParams) (*service.CoinWithHeadline, error)
	deleteFn         func(ctx context.Context, userID, id int) error
	topCoinsFn       func(ctx context.Context, limit int) ([]gateway.TopCoin, error)
	searchPriceFn    func(ctx context.Context, coinID string) (*gateway.CoinData, error)
	searchHeadlineFn func(ctx context.Context, symbol string) (*gateway.Article, error)
}

func (m *mockCoinService) Create(ctx context.Context, userID int, coinID string) (*service.CoinWithHeadline, error) {
	return m.createFn(ctx, userID, coinID)
}

func (m *mockCoinService) List(ctx context.Context, userID int, filter, sortBy string) ([]*service.CoinWithHeadline, error) {
	return m.listFn(ctx, userID, filter, sortBy)
}

func (m *mockCoinService) Update(ctx context.Context, userID, id int, params service.UpdateCoinParams) (*service.CoinWithHeadline, error) {
	return m.updateFn(ctx, userID, id, params)
}

func (m *mockCoinService) Delete(ctx context.Context, userID, id int) error {
	return m.deleteFn(ctx, userID, id)
}

func (m *mockCoinService) TopCoins(ctx context.Context, limit int) ([]gateway.TopCoin, error) {
	return m.topCoinsFn(ctx, limit)
}

func (m *mockCoinService) SearchPrice(ctx context.Context, coinID string) (*gateway.CoinData, error) {
	return m.searchPriceFn(ctx, coinID)
}

func (m *mockCoinService) SearchHeadline(ctx context.Context, symbol string) (*gateway.Article, error) {
	return m.searchHeadlineFn(ctx, symbol)
}

type mockNewsService struct {
	topNewsFn func(ctx context.Context) ([]gateway.Article, error)
}

func (m *mockNewsService) TopNews(ctx context.Context) ([]gateway.Article, error) {
	return m.topNewsFn(ctx)
}

type mockAuthService struct {
	registerFn    func(username, email, password string) (*service.AuthResult, error)
	loginFn       func(email, password string) (*service.AuthResult, error)
	forgotFn      func(email string) error
	verifyTokenFn func(rawToken string) error
	resetFn       func(rawToken, password string) error
}

func (m *mockAuthService) Register(username, email, password string) (*service.AuthResult, error) {
	return m.registerFn(username, email, password)
}

func (m *mockAuthService) Login(email, password string) (*service.AuthResult, error) {
	return m.loginFn(email, password)
}

func (m *mockAuthService) ForgotPassword(email string) error {
	return m.forgotFn(email)
}

func (m *mockAuthService) VerifyResetToken(rawToken string) error {
	return m.verifyTokenFn(rawToken)
}

func (m *mockAuthService) ResetPassword(rawToken, password string) error {
	return m.resetFn(rawToken, password)
}

// Compile-time проверки

var (
	_ service.CoinServiceInterface = (*mockCoinService)(nil)
	_ service.NewsServiceInterface = (*mockNewsService)(nil)
	_ service.AuthServiceInterface = (*mockAuthService)(nil)
)
