package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"coinwatch/internal/gateway"
	"coinwatch/internal/models"
	"coinwatch/internal/repository"
)

// ============================================================
// In-memory моки зависимостей сервисов
// ============================================================

// mockCoinRepo - in-memory хранилище монет
type mockCoinRepo struct {
	mu     sync.RWMutex
	coins  map[int]*models.Coin
	nextID int

	createErr error
	updateErr error
	findErr   error
}

func newMockCoinRepo() *mockCoinRepo {
	return &mockCoinRepo{coins: make(map[int]*models.Coin), nextID: 1}
}

func (m *mockCoinRepo) Create(coin *models.Coin) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}

	for _, existing := range m.coins {
		if existing.UserID == coin.UserID && existing.CoinID == coin.CoinID {
			return repository.ErrCoinExists
		}
	}

	coin.ID = m.nextID
	coin.CreatedAt = time.Now()
	m.nextID++

	stored := *coin
	m.coins[coin.ID] = &stored
	return nil
}

func (m *mockCoinRepo) GetByID(userID, id int) (*models.Coin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	coin, ok := m.coins[id]
	if !ok || coin.UserID != userID {
		return nil, repository.ErrCoinNotFound
	}
	copied := *coin
	return &copied, nil
}

func (m *mockCoinRepo) Find(userID int, filter, sortBy string) ([]*models.Coin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.findErr != nil {
		return nil, m.findErr
	}

	var result []*models.Coin
	for id := 1; id < m.nextID; id++ {
		coin, ok := m.coins[id]
		if !ok || coin.UserID != userID {
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(coin.Name), strings.ToLower(filter)) {
			continue
		}
		copied := *coin
		result = append(result, &copied)
	}
	return result, nil
}

func (m *mockCoinRepo) Update(coin *models.Coin) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateErr != nil {
		return m.updateErr
	}

	existing, ok := m.coins[coin.ID]
	if !ok || existing.UserID != coin.UserID {
		return repository.ErrCoinNotFound
	}
	stored := *coin
	stored.CreatedAt = existing.CreatedAt
	m.coins[coin.ID] = &stored
	return nil
}

func (m *mockCoinRepo) Delete(userID, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	coin, ok := m.coins[id]
	if !ok || coin.UserID != userID {
		return repository.ErrCoinNotFound
	}
	delete(m.coins, id)
	return nil
}

func (m *mockCoinRepo) countFor(userID int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, coin := range m.coins {
		if coin.UserID == userID {
			count++
		}
	}
	return count
}

// mockNewsRepo - in-memory хранилище заголовков
type mockNewsRepo struct {
	mu        sync.RWMutex
	headlines []*models.Headline
	nextID    int

	createErr  error
	replaceErr error
	latestErr  error
}

func newMockNewsRepo() *mockNewsRepo {
	return &mockNewsRepo{nextID: 1}
}

func (m *mockNewsRepo) Create(headline *models.Headline) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}

	headline.ID = m.nextID
	headline.CreatedAt = time.Now()
	m.nextID++

	stored := *headline
	m.headlines = append(m.headlines, &stored)
	return nil
}

func (m *mockNewsRepo) Latest(userID, coinID int) (*models.Headline, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.latestErr != nil {
		return nil, m.latestErr
	}

	var latest *models.Headline
	for _, h := range m.headlines {
		if h.UserID != userID || h.CoinID != coinID {
			continue
		}
		if latest == nil || h.ID > latest.ID {
			latest = h
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (m *mockNewsRepo) Replace(userID, coinID int, headline *models.Headline) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.replaceErr != nil {
		return m.replaceErr
	}

	kept := m.headlines[:0]
	for _, h := range m.headlines {
		if h.UserID == userID && h.CoinID == coinID {
			continue
		}
		kept = append(kept, h)
	}
	m.headlines = kept

	if headline != nil {
		headline.ID = m.nextID
		headline.UserID = userID
		headline.CoinID = coinID
		headline.CreatedAt = time.Now()
		m.nextID++

		stored := *headline
		m.headlines = append(m.headlines, &stored)
	}
	return nil
}

func (m *mockNewsRepo) DeleteByCoin(userID, coinID int) error {
	return m.Replace(userID, coinID, nil)
}

// countFor возвращает число заголовков монеты (хелпер для проверок)
func (m *mockNewsRepo) countFor(userID, coinID int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, h := range m.headlines {
		if h.UserID == userID && h.CoinID == coinID {
			count++
		}
	}
	return count
}

// mockMarketGateway - мок провайдера рыночных данных
type mockMarketGateway struct {
	mu    sync.Mutex
	coins map[string]*gateway.CoinData
	top   []gateway.TopCoin

	fetchCoinErr error
	topErr       error
	fetchCalls   int
	topCalls     int
}

func newMockMarketGateway() *mockMarketGateway {
	return &mockMarketGateway{coins: make(map[string]*gateway.CoinData)}
}

func (m *mockMarketGateway) FetchCoin(ctx context.Context, coinID string) (*gateway.CoinData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fetchCalls++
	if m.fetchCoinErr != nil {
		return nil, m.fetchCoinErr
	}
	data, ok := m.coins[coinID]
	if !ok {
		return nil, gateway.ErrCoinDataUnavailable
	}
	copied := *data
	return &copied, nil
}

func (m *mockMarketGateway) FetchTopCoins(ctx context.Context, limit int) ([]gateway.TopCoin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.topCalls++
	if m.topErr != nil {
		return nil, m.topErr
	}
	if limit > len(m.top) {
		limit = len(m.top)
	}
	return append([]gateway.TopCoin(nil), m.top[:limit]...), nil
}

// mockNewsGateway - мок провайдера новостей
type mockNewsGateway struct {
	mu       sync.Mutex
	articles []gateway.Article

	err error

	lastKeyword  string
	lastPageSize int
	fetchCalls   int
}

func newMockNewsGateway() *mockNewsGateway {
	return &mockNewsGateway{}
}

func (m *mockNewsGateway) FetchNews(ctx context.Context, keyword string, pageSize int) ([]gateway.Article, error) {
	return m.search(keyword, pageSize)
}

func (m *mockNewsGateway) FetchTopNews(ctx context.Context, keyword string, pageSize int) ([]gateway.Article, error) {
	return m.search(keyword, pageSize)
}

func (m *mockNewsGateway) search(keyword string, pageSize int) ([]gateway.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fetchCalls++
	m.lastKeyword = keyword
	m.lastPageSize = pageSize

	if m.err != nil {
		return nil, m.err
	}
	if pageSize > len(m.articles) {
		pageSize = len(m.articles)
	}
	return append([]gateway.Article(nil), m.articles[:pageSize]...), nil
}

// mockUserRepo - in-memory хранилище пользователей
type mockUserRepo struct {
	mu     sync.RWMutex
	users  map[int]*models.User
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (m *mockUserRepo) Create(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repository.ErrEmailExists
		}
		if existing.Username == user.Username {
			return repository.ErrUsernameExists
		}
	}

	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.nextID++

	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(id int) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) GetByEmail(email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepo) GetByUsername(username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepo) GetByResetToken(tokenHash string, now time.Time) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.ResetTokenHash != nil && *user.ResetTokenHash == tokenHash && user.ResetTokenValid(now) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepo) SetResetToken(id int, tokenHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.ResetTokenHash = &tokenHash
	user.ResetExpiresAt = &expiresAt
	return nil
}

func (m *mockUserRepo) UpdatePassword(id int, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	user.ResetTokenHash = nil
	user.ResetExpiresAt = nil
	return nil
}

// mockMailer - мок отправки писем
type mockMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct {
	to       string
	username string
	resetURL string
}

func (m *mockMailer) SendPasswordReset(to, username, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, username: username, resetURL: resetURL})
	return nil
}
