package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"coinwatch/internal/models"
)

// ============================================================
// UserRepository Tests
// ============================================================

func userColumns() []string {
	return []string{"id", "username", "email", "password_hash", "reset_token_hash", "reset_expires_at", "created_at"}
}

func TestUserRepositoryCreate(t *testing.T) {
	tests := []struct {
		name      string
		mockErr   error
		expectErr error
	}{
		{name: "success"},
		{
			name:      "duplicate email",
			mockErr:   errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`),
			expectErr: ErrEmailExists,
		},
		{
			name:      "duplicate username",
			mockErr:   errors.New(`pq: duplicate key value violates unique constraint "users_username_key"`),
			expectErr: ErrUsernameExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			expectation := mock.ExpectQuery(`INSERT INTO users`).
				WithArgs("alice", "alice@example.com", "hash", sqlmock.AnyArg())
			if tt.mockErr != nil {
				expectation.WillReturnError(tt.mockErr)
			} else {
				expectation.WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
			}

			repo := NewUserRepository(db)
			user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
			err = repo.Create(user)

			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Errorf("expected %v, got %v", tt.expectErr, err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestUserRepositoryGetByEmail(t *testing.T) {
	now := time.Now()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("failed to create mock: %v", err)
		}
		defer db.Close()

		rows := sqlmock.NewRows(userColumns()).
			AddRow(1, "alice", "alice@example.com", "hash", nil, nil, now)
		mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
			WithArgs("alice@example.com").
			WillReturnRows(rows)

		repo := NewUserRepository(db)
		user, err := repo.GetByEmail("alice@example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Username != "alice" || user.ResetTokenHash != nil {
			t.Errorf("unexpected user: %+v", user)
		}
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("failed to create mock: %v", err)
		}
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM users`).
			WithArgs("ghost@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns()))

		repo := NewUserRepository(db)
		_, err = repo.GetByEmail("ghost@example.com")
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestUserRepositoryGetByResetToken(t *testing.T) {
	now := time.Now()
	hash := "tokenhash"
	expires := now.Add(time.Hour)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows(userColumns()).
		AddRow(1, "alice", "alice@example.com", "hash", &hash, &expires, now)
	mock.ExpectQuery(`SELECT .+ FROM users WHERE reset_token_hash = \$1 AND reset_expires_at > \$2`).
		WithArgs("tokenhash", sqlmock.AnyArg()).
		WillReturnRows(rows)

	repo := NewUserRepository(db)
	user, err := repo.GetByResetToken("tokenhash", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !user.ResetTokenValid(now) {
		t.Error("expected valid reset token")
	}
}

func TestUserRepositoryUpdatePassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	// Смена пароля одновременно сбрасывает токен восстановления
	mock.ExpectExec(`UPDATE users SET password_hash = \$1, reset_token_hash = NULL, reset_expires_at = NULL WHERE id = \$2`).
		WithArgs("newhash", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewUserRepository(db)
	if err := repo.UpdatePassword(1, "newhash"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
