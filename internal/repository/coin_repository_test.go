package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"coinwatch/internal/models"
)

// ============================================================
// CoinRepository Tests
// ============================================================

func TestCoinRepositoryCreate(t *testing.T) {
	tests := []struct {
		name        string
		coin        *models.Coin
		mockSetup   func(mock sqlmock.Sqlmock)
		expectErr   error
	}{
		{
			name: "success",
			coin: &models.Coin{
				UserID:    1,
				CoinID:    "btc-bitcoin",
				Symbol:    "BTC",
				Name:      "Bitcoin",
				Price:     50000,
				MarketCap: 1e12,
				Change24h: -1.2,
			},
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO coins`).
					WithArgs(1, "btc-bitcoin", "BTC", "Bitcoin", 50000.0, 1e12, -1.2, "", sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
			},
		},
		{
			name: "duplicate (user, coin_id)",
			coin: &models.Coin{UserID: 1, CoinID: "btc-bitcoin", Symbol: "BTC", Name: "Bitcoin"},
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO coins`).
					WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "coins_user_id_coin_id_key"`))
			},
			expectErr: ErrCoinExists,
		},
		{
			name: "database error",
			coin: &models.Coin{UserID: 1, CoinID: "eth-ethereum"},
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO coins`).
					WillReturnError(errors.New("connection refused"))
			},
			expectErr: errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			tt.mockSetup(mock)

			repo := NewCoinRepository(db)
			err = repo.Create(tt.coin)

			switch {
			case tt.expectErr == nil:
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if tt.coin.ID != 7 {
					t.Errorf("expected id 7 to be set, got %d", tt.coin.ID)
				}
			case errors.Is(tt.expectErr, ErrCoinExists):
				if !errors.Is(err, ErrCoinExists) {
					t.Errorf("expected ErrCoinExists, got %v", err)
				}
			default:
				if err == nil {
					t.Error("expected error, got nil")
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func coinColumns() []string {
	return []string{"id", "user_id", "coin_id", "symbol", "name", "price", "market_cap", "change_24h", "notes", "created_at"}
}

func TestCoinRepositoryGetByID(t *testing.T) {
	now := time.Now()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("failed to create mock: %v", err)
		}
		defer db.Close()

		rows := sqlmock.NewRows(coinColumns()).
			AddRow(3, 1, "btc-bitcoin", "BTC", "Bitcoin", 50000.0, 1e12, -1.2, "hodl", now)
		mock.ExpectQuery(`SELECT .+ FROM coins WHERE id = \$1 AND user_id = \$2`).
			WithArgs(3, 1).
			WillReturnRows(rows)

		repo := NewCoinRepository(db)
		coin, err := repo.GetByID(1, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if coin.CoinID != "btc-bitcoin" || coin.Notes != "hodl" {
			t.Errorf("unexpected coin: %+v", coin)
		}
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("failed to create mock: %v", err)
		}
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM coins`).
			WithArgs(99, 1).
			WillReturnRows(sqlmock.NewRows(coinColumns()))

		repo := NewCoinRepository(db)
		_, err = repo.GetByID(1, 99)
		if !errors.Is(err, ErrCoinNotFound) {
			t.Errorf("expected ErrCoinNotFound, got %v", err)
		}
	})

	t.Run("wrong owner is not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("failed to create mock: %v", err)
		}
		defer db.Close()

		// Запрос скоупится по user_id - чужая монета не возвращается
		mock.ExpectQuery(`SELECT .+ FROM coins WHERE id = \$1 AND user_id = \$2`).
			WithArgs(3, 2).
			WillReturnRows(sqlmock.NewRows(coinColumns()))

		repo := NewCoinRepository(db)
		_, err = repo.GetByID(2, 3)
		if !errors.Is(err, ErrCoinNotFound) {
			t.Errorf("expected ErrCoinNotFound for wrong owner, got %v", err)
		}
	})
}

func TestCoinRepositoryFind(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		filter    string
		sortBy    string
		wantSQL   string
		wantArgs  []interface{}
	}{
		{
			name:    "no filter natural order",
			wantSQL: `SELECT .+ FROM coins WHERE user_id = \$1 ORDER BY id ASC`,
		},
		{
			name:    "name filter",
			filter:  "bit",
			wantSQL: `SELECT .+ FROM coins WHERE user_id = \$1 AND name ILIKE \$2 ORDER BY id ASC`,
		},
		{
			name:    "sort by price ascending",
			sortBy:  "price",
			wantSQL: `SELECT .+ FROM coins WHERE user_id = \$1 ORDER BY price ASC`,
		},
		{
			name:    "sort by change24h descending",
			sortBy:  "change24h",
			wantSQL: `SELECT .+ FROM coins WHERE user_id = \$1 ORDER BY change_24h DESC`,
		},
		{
			name:    "unknown sort falls back to natural order",
			sortBy:  "marketcap",
			wantSQL: `SELECT .+ FROM coins WHERE user_id = \$1 ORDER BY id ASC`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			rows := sqlmock.NewRows(coinColumns()).
				AddRow(1, 1, "btc-bitcoin", "BTC", "Bitcoin", 50000.0, 1e12, -1.2, "", now)

			expectation := mock.ExpectQuery(tt.wantSQL)
			if tt.filter != "" {
				expectation.WithArgs(1, "%"+tt.filter+"%")
			} else {
				expectation.WithArgs(1)
			}
			expectation.WillReturnRows(rows)

			repo := NewCoinRepository(db)
			coins, err := repo.Find(1, tt.filter, tt.sortBy)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(coins) != 1 {
				t.Errorf("expected 1 coin, got %d", len(coins))
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestCoinRepositoryDelete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("failed to create mock: %v", err)
		}
		defer db.Close()

		mock.ExpectExec(`DELETE FROM coins WHERE id = \$1 AND user_id = \$2`).
			WithArgs(3, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewCoinRepository(db)
		if err := repo.Delete(1, 3); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("failed to create mock: %v", err)
		}
		defer db.Close()

		mock.ExpectExec(`DELETE FROM coins`).
			WithArgs(99, 1).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewCoinRepository(db)
		if err := repo.Delete(1, 99); !errors.Is(err, ErrCoinNotFound) {
			t.Errorf("expected ErrCoinNotFound, got %v", err)
		}
	})
}

func TestCoinRepositoryUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	coin := &models.Coin{
		ID:        3,
		UserID:    1,
		Symbol:    "BTC",
		Name:      "Bitcoin",
		Price:     51000,
		MarketCap: 1.1e12,
		Change24h: 2.5,
		Notes:     "updated",
	}

	mock.ExpectExec(`UPDATE coins`).
		WithArgs("BTC", "Bitcoin", 51000.0, 1.1e12, 2.5, "updated", 3, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewCoinRepository(db)
	if err := repo.Update(coin); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
