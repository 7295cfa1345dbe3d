package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"coinwatch/internal/models"
	"coinwatch/internal/repository"
	"coinwatch/pkg/crypto"
	"coinwatch/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
)

// Ошибки сервиса аутентификации
var (
	ErrFieldsRequired     = errors.New("all fields are required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrResetTokenInvalid  = errors.New("reset token is invalid or expired")
)

// Параметры токенов
const (
	MinPasswordLength = 8
	tokenTTL          = time.Hour
	resetTokenTTL     = time.Hour
)

// TokenClaims - payload JWT токена доступа.
// Поля совпадают с тем, что middleware кладет в контекст запроса.
type TokenClaims struct {
	UserID   int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// AuthResult - результат успешной регистрации или входа
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService отвечает за регистрацию, вход и восстановление пароля.
// Пароли хранятся только как bcrypt-хеши, токены сброса - только как
// SHA-256 хеши; сырой токен уходит пользователю в письме и нигде
// не сохраняется.
type AuthService struct {
	userRepo    UserRepositoryInterface
	mailer      Mailer
	jwtSecret   []byte
	frontendURL string
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(userRepo UserRepositoryInterface, mailer Mailer, jwtSecret, frontendURL string) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		mailer:      mailer,
		jwtSecret:   []byte(jwtSecret),
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Register создает нового пользователя и сразу выдает токен доступа
func (s *AuthService) Register(username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" || password == "" {
		return nil, ErrFieldsRequired
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.userRepo.Create(user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	utils.Info("user registered",
		utils.Int("user_id", user.ID),
		utils.String("username", user.Username))

	return &AuthResult{Token: token, User: user}, nil
}

// Login проверяет учетные данные и выдает токен доступа.
// Несуществующий email и неверный пароль неразличимы для вызывающего.
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrFieldsRequired
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.CheckPasswordMatch(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user}, nil
}

// ForgotPassword генерирует токен сброса и отправляет письмо со ссылкой
func (s *AuthService) ForgotPassword(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ErrFieldsRequired
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	raw, hash, err := crypto.NewResetToken()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(resetTokenTTL)
	if err := s.userRepo.SetResetToken(user.ID, hash, expiresAt); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, raw)
	if err := s.mailer.SendPasswordReset(user.Email, user.Username, resetURL); err != nil {
		utils.Error("reset email send failed",
			utils.Int("user_id", user.ID),
			utils.Err(err))
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	utils.Info("password reset requested", utils.Int("user_id", user.ID))
	return nil
}

// VerifyResetToken проверяет что токен сброса существует и не истек
func (s *AuthService) VerifyResetToken(rawToken string) error {
	if rawToken == "" {
		return ErrResetTokenInvalid
	}

	_, err := s.userRepo.GetByResetToken(crypto.HashResetToken(rawToken), time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}
	return nil
}

// ResetPassword устанавливает новый пароль по действующему токену сброса.
// Токен одноразовый: после смены пароля он аннулируется.
func (s *AuthService) ResetPassword(rawToken, password string) error {
	if rawToken == "" {
		return ErrResetTokenInvalid
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.userRepo.GetByResetToken(crypto.HashResetToken(rawToken), time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(user.ID, hash); err != nil {
		return err
	}

	utils.Info("password reset completed", utils.Int("user_id", user.ID))
	return nil
}

// issueToken подписывает JWT (HS256) со сроком жизни tokenTTL
func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken валидирует подпись и срок жизни токена доступа.
// Используется auth middleware.
func ParseToken(secret, tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	return claims, nil
}
