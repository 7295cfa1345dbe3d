package models

import "time"

// User представляет зарегистрированного пользователя.
//
// PasswordHash хранит bcrypt-хеш и никогда не сериализуется в API ответы.
// ResetTokenHash хранит SHA-256 от одноразового токена сброса пароля;
// сам токен пользователю отправляется по email и в базе не хранится.
type User struct {
	ID             int        `json:"id" db:"id"`
	Username       string     `json:"username" db:"username"`
	Email          string     `json:"email" db:"email"`
	PasswordHash   string     `json:"-" db:"password_hash"`
	ResetTokenHash *string    `json:"-" db:"reset_token_hash"`
	ResetExpiresAt *time.Time `json:"-" db:"reset_expires_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// ResetTokenValid проверяет, что у пользователя есть непросроченный токен сброса.
func (u *User) ResetTokenValid(now time.Time) bool {
	return u.ResetTokenHash != nil && u.ResetExpiresAt != nil && u.ResetExpiresAt.After(now)
}
