package handlers

import (
	"errors"
	"net/http"

	"coinwatch/internal/service"

	"github.com/gorilla/mux"
)

// AuthHandler отвечает за регистрацию, вход и восстановление пароля
//
// Endpoints:
// - POST /api/auth/register              - регистрация
// - POST /api/auth/login                 - вход
// - POST /api/auth/forgot-password       - запрос сброса пароля
// - GET  /api/auth/reset-password/{token} - проверка токена сброса
// - POST /api/auth/reset-password        - установка нового пароля
type AuthHandler struct {
	authService service.AuthServiceInterface
}

// NewAuthHandler создает новый AuthHandler с внедрением зависимостей
func NewAuthHandler(authService service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRequest структура запроса регистрации
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest структура запроса входа
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest структура запроса сброса пароля
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest структура запроса установки нового пароля
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Register создает нового пользователя
// POST /api/auth/register
//
// Response:
// - 201 Created: токен и данные пользователя
// - 400 Bad Request: пустые поля или короткий пароль
// - 409 Conflict: email или username заняты
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body", err.Error())
		return
	}

	result, err := h.authService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

// Login проверяет учетные данные и выдает токен
// POST /api/auth/login
//
// Response:
// - 200 OK: токен и данные пользователя
// - 401 Unauthorized: неверные учетные данные
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body", err.Error())
		return
	}

	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// ForgotPassword отправляет письмо со ссылкой сброса пароля
// POST /api/auth/forgot-password
//
// Response:
// - 200 OK: письмо отправлено
// - 404 Not Found: email не зарегистрирован
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body", err.Error())
		return
	}

	if err := h.authService.ForgotPassword(req.Email); err != nil {
		h.handleServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, SuccessResponse{Message: "Password reset email sent"})
}

// VerifyResetToken проверяет действительность токена сброса
// GET /api/auth/reset-password/{token}
//
// Response:
// - 200 OK: токен действителен
// - 400 Bad Request: токен невалиден или истек
func (h *AuthHandler) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.authService.VerifyResetToken(vars["token"]); err != nil {
		h.handleServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, SuccessResponse{Message: "Token is valid"})
}

// ResetPassword устанавливает новый пароль по токену сброса
// POST /api/auth/reset-password
//
// Response:
// - 200 OK: пароль изменен
// - 400 Bad Request: токен невалиден, истек или пароль короткий
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body", err.Error())
		return
	}

	if err := h.authService.ResetPassword(req.Token, req.Password); err != nil {
		h.handleServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, SuccessResponse{Message: "Password has been reset"})
}

// handleServiceError мапит ошибки сервисного слоя на HTTP статусы
func (h *AuthHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrFieldsRequired):
		respondWithError(w, http.StatusBadRequest, "fields_required", "All fields are required", "")

	case errors.Is(err, service.ErrPasswordTooShort):
		respondWithError(w, http.StatusBadRequest, "password_too_short", "Password must be at least 8 characters", "")

	case errors.Is(err, service.ErrEmailTaken):
		respondWithError(w, http.StatusConflict, "email_taken", "Email is already registered", "")

	case errors.Is(err, service.ErrUsernameTaken):
		respondWithError(w, http.StatusConflict, "username_taken", "Username is already taken", "")

	case errors.Is(err, service.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", "")

	case errors.Is(err, service.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, "user_not_found", "No account with that email", "")

	case errors.Is(err, service.ErrResetTokenInvalid):
		respondWithError(w, http.StatusBadRequest, "invalid_reset_token", "Reset token is invalid or expired", "")

	default:
		respondWithError(w, http.StatusInternalServerError, "internal_error", "Internal server error", "")
	}
}
