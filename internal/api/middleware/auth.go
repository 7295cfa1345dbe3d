package middleware

import (
	"context"
	"net/http"
	"strings"

	"coinwatch/internal/service"
)

type contextKey string

// Ключи контекста запроса
const (
	UserIDKey   contextKey = "user_id"
	UsernameKey contextKey = "username"
)

// Auth - middleware для аутентификации запросов
//
// Проверяет JWT токен из заголовка Authorization: Bearer <token>.
// Валидирует подпись (HS256) и срок действия, извлекает идентичность
// пользователя и кладет ее в context запроса. Без валидного токена - 401.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := claimsFromRequest(r, jwtSecret)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UsernameKey, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext извлекает идентификатор пользователя из контекста.
// false - запрос прошел без аутентификации.
func UserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}

// claimsFromRequest извлекает и валидирует токен из заголовка Authorization
func claimsFromRequest(r *http.Request, jwtSecret string) (*service.TokenClaims, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return nil, false
	}

	claims, err := service.ParseToken(jwtSecret, parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}
