package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"coinwatch/internal/models"
)

// Ошибки репозитория пользователей
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailExists    = errors.New("email already in use")
	ErrUsernameExists = errors.New("username already taken")
)

// UserRepository - работа с таблицей users
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository создает новый экземпляр репозитория
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create регистрирует нового пользователя.
// Возвращает ErrEmailExists / ErrUsernameExists при нарушении уникальности.
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	user.CreatedAt = time.Now()

	err := r.db.QueryRow(
		query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	).Scan(&user.ID)

	if err != nil {
		if isUniqueViolation(err) {
			// Определяем какой constraint нарушен по имени индекса
			if strings.Contains(err.Error(), "users_username") {
				return ErrUsernameExists
			}
			return ErrEmailExists
		}
		return err
	}

	return nil
}

// GetByEmail возвращает пользователя по email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	return r.getBy(`email = $1`, email)
}

// GetByUsername возвращает пользователя по имени
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	return r.getBy(`username = $1`, username)
}

// GetByID возвращает пользователя по id
func (r *UserRepository) GetByID(id int) (*models.User, error) {
	return r.getBy(`id = $1`, id)
}

// GetByResetToken возвращает пользователя по хешу непросроченного токена сброса
func (r *UserRepository) GetByResetToken(tokenHash string, now time.Time) (*models.User, error) {
	return r.getBy(`reset_token_hash = $1 AND reset_expires_at > $2`, tokenHash, now)
}

func (r *UserRepository) getBy(where string, args ...interface{}) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, reset_token_hash, reset_expires_at, created_at
		FROM users
		WHERE ` + where

	user := &models.User{}
	err := r.db.QueryRow(query, args...).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.ResetTokenHash,
		&user.ResetExpiresAt,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// SetResetToken сохраняет хеш одноразового токена сброса пароля
func (r *UserRepository) SetResetToken(id int, tokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET reset_token_hash = $1, reset_expires_at = $2
		WHERE id = $3`

	result, err := r.db.Exec(query, tokenHash, expiresAt, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// UpdatePassword устанавливает новый хеш пароля и сбрасывает токен сброса
func (r *UserRepository) UpdatePassword(id int, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1, reset_token_hash = NULL, reset_expires_at = NULL
		WHERE id = $2`

	result, err := r.db.Exec(query, passwordHash, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}
