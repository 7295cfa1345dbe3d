package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ResetTokenBytes - длина сырого токена сброса пароля в байтах
const ResetTokenBytes = 32

// NewResetToken генерирует одноразовый токен сброса пароля.
// Возвращает сырой токен (hex, уходит пользователю в письме) и его
// SHA-256 хеш (hex, хранится в базе). Сырой токен нигде не сохраняется.
func NewResetToken() (raw string, hash string, err error) {
	buf := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	raw = hex.EncodeToString(buf)
	return raw, HashResetToken(raw), nil
}

// HashResetToken возвращает SHA-256 хеш сырого токена в hex.
// Используется для поиска пользователя по токену из письма.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
