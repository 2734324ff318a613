package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/authd/internal/crypto"
	"github.com/iudanet/authd/internal/models"
	"github.com/iudanet/authd/internal/server/policy"
	"github.com/iudanet/authd/internal/server/storage"
	"github.com/iudanet/authd/internal/server/token"
	"github.com/iudanet/authd/internal/validation"
	"github.com/iudanet/authd/pkg/api"
)

const (
	// RefreshCookieName имя cookie с refresh токеном
	RefreshCookieName = "refresh_token"
	// RefreshCookiePath ограничивает cookie эндпоинтами аутентификации
	RefreshCookiePath = "/api/v1/auth"
)

// AuthHandler обрабатывает запросы аутентификации
type AuthHandler struct {
	logger   *slog.Logger
	users    storage.UserStorage
	denylist storage.TokenStorage
	tokens   *token.Service
	policy   *policy.Policy
}

// NewAuthHandler создает новый handler для аутентификации
func NewAuthHandler(
	logger *slog.Logger,
	users storage.UserStorage,
	denylist storage.TokenStorage,
	tokens *token.Service,
	rolePolicy *policy.Policy,
) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		users:    users,
		denylist: denylist,
		tokens:   tokens,
		policy:   rolePolicy,
	}
}

// Signup обрабатывает POST /api/v1/auth/signup
// Регистрация нового аккаунта: валидация полей, политика ролей,
// создание записи и выпуск обоих токенов
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode signup request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	req.Email = validation.NormalizeEmail(req.Email)
	if err := h.validateSignup(&req); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Занятый email сообщается раньше ролевой политики: дубликат
	// дает 409 независимо от роли и секрета в запросе
	switch _, err := h.users.GetUserByEmail(ctx, req.Email); {
	case err == nil:
		h.logger.WarnContext(ctx, "email already registered", slog.String("email", req.Email))
		h.sendError(w, "email already registered", http.StatusConflict)
		return
	case !errors.Is(err, storage.ErrUserNotFound):
		h.logger.ErrorContext(ctx, "failed to check email", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Политика ролей проверяется до создания аккаунта:
	// отказ по секрету не оставляет записи в хранилище
	role, err := h.policy.ResolveRole(req.Role, req.AdminSecret)
	if err != nil {
		if errors.Is(err, policy.ErrUnknownRole) {
			h.sendError(w, "unknown role", http.StatusBadRequest)
			return
		}
		h.logger.WarnContext(ctx, "admin role denied", slog.String("email", req.Email))
		h.sendError(w, "admin secret mismatch", http.StatusForbidden)
		return
	}

	passwordHash, err := crypto.HashPassword(req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	account := &models.Account{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		CreatedAt:    time.Now(),
	}

	if err := h.users.CreateUser(ctx, account); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			h.logger.WarnContext(ctx, "email already registered", slog.String("email", req.Email))
			h.sendError(w, "email already registered", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create account", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "account registered",
		slog.String("user_id", account.ID),
		slog.String("role", string(account.Role)))

	h.issueSession(ctx, w, account, "Signup successful")
}

// Login обрабатывает POST /api/v1/auth/login
// Аутентификация по email и паролю
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		h.sendError(w, "missing email or password", http.StatusBadRequest)
		return
	}

	email := validation.NormalizeEmail(req.Email)

	// Неизвестный email и неверный пароль дают одинаковый ответ,
	// чтобы нельзя было перебором выяснить, какие аккаунты существуют
	account, err := h.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: account not found")
			h.sendError(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get account", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := crypto.VerifyPassword(account.PasswordHash, req.Password); err != nil {
		h.logger.WarnContext(ctx, "login failed: invalid password", slog.String("user_id", account.ID))
		h.sendError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	h.logger.InfoContext(ctx, "login successful", slog.String("user_id", account.ID))

	h.issueSession(ctx, w, account, "Login successful")
}

// Refresh обрабатывает POST /api/v1/auth/refresh
// Выполняется за RefreshMiddleware: identity уже проверена и лежит
// в контексте, остается выпустить новый access token.
// Новый refresh token не выдается, срок cookie не продлевается
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "refresh: user_id missing from context")
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	role, ok := GetRole(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "refresh: role missing from context")
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	accessToken, _, err := h.tokens.SignAccess(userID, role)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to sign access token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "access token refreshed", slog.String("user_id", userID))

	h.sendJSON(w, api.AuthResponse{
		Message: "Token refreshed",
		Data: api.AuthData{
			Tokens: api.TokenPayload{AccessToken: accessToken},
		},
	}, http.StatusOK)
}

// Logout обрабатывает POST /api/v1/auth/logout
// Отзывает предъявленный refresh token через denylist и гасит cookie.
// Access токены остаются валидны до истечения (stateless)
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil {
		h.sendError(w, "missing refresh token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokens.Verify(cookie.Value, token.KindRefresh)
	if err != nil {
		h.logger.WarnContext(ctx, "logout with invalid refresh token", slog.Any("error", err))
		h.sendError(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	revoked := &models.RevokedToken{
		JTI:       claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
		RevokedAt: time.Now(),
	}

	if err := h.denylist.RevokeToken(ctx, revoked); err != nil {
		h.logger.ErrorContext(ctx, "failed to revoke refresh token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	clearRefreshCookie(w)

	h.logger.InfoContext(ctx, "logout successful", slog.String("user_id", claims.UserID))

	w.WriteHeader(http.StatusNoContent)
}

// Me обрабатывает GET /api/v1/auth/me
// Выполняется за AuthMiddleware, возвращает публичные поля аккаунта
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "me: user_id missing from context")
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	account, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.sendError(w, "account not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get account", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, publicUser(account), http.StatusOK)
}

// validateSignup проверяет обязательные поля запроса регистрации
// Email должен быть уже нормализован
func (h *AuthHandler) validateSignup(req *api.SignupRequest) error {
	if err := validation.ValidateEmail(req.Email); err != nil {
		return err
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return err
	}
	if err := validation.ValidateName("firstName", req.FirstName); err != nil {
		return err
	}
	if err := validation.ValidateName("lastName", req.LastName); err != nil {
		return err
	}
	if req.Role == "" {
		return errors.New("role is required")
	}
	return nil
}

// issueSession выпускает пару токенов и отправляет конверт успешного ответа
// Access token уходит в теле, refresh token только в cookie
func (h *AuthHandler) issueSession(ctx context.Context, w http.ResponseWriter, account *models.Account, message string) {
	accessToken, _, err := h.tokens.SignAccess(account.ID, account.Role)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to sign access token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	refreshToken, expiresAt, err := h.tokens.SignRefresh(account.ID, account.Role)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to sign refresh token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	setRefreshCookie(w, refreshToken, expiresAt)

	h.sendJSON(w, api.AuthResponse{
		Message: message,
		Data: api.AuthData{
			User:   publicUser(account),
			Tokens: api.TokenPayload{AccessToken: accessToken},
		},
	}, http.StatusOK)
}

// setRefreshCookie выставляет refresh cookie
// HttpOnly + Secure + SameSite=Strict, путь ограничен auth эндпоинтами
func setRefreshCookie(w http.ResponseWriter, value string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     RefreshCookiePath,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearRefreshCookie гасит refresh cookie
func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     RefreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// publicUser собирает публичные поля аккаунта для ответа
func publicUser(account *models.Account) *api.UserPayload {
	return &api.UserPayload{
		ID:        account.ID,
		Email:     account.Email,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Role:      string(account.Role),
	}
}

// sendJSON отправляет JSON ответ
func (h *AuthHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
// Внутренние детали (текст ошибок драйвера, stack traces) сюда не попадают
func (h *AuthHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	h.sendJSON(w, resp, statusCode)
}
