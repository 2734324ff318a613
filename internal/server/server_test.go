package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/authd/internal/server/config"
	"github.com/iudanet/authd/internal/server/handlers"
	"github.com/iudanet/authd/internal/server/storage/sqlite"
	"github.com/iudanet/authd/pkg/api"
)

// setupTestServer собирает сервер поверх in-memory SQLite:
// полная цепочка middleware и настоящее хранилище
func setupTestServer(t *testing.T) http.Handler {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	cfg := &config.Config{
		Address:         ":0",
		DatabasePath:    ":memory:",
		JWTSecret:       "integration-test-secret",
		AdminSecret:     "integration-admin-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 168 * time.Hour,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(logger, cfg, store)
	t.Cleanup(srv.rateLimit.Stop)
	return srv.routes()
}

func postJSON(t *testing.T, handler http.Handler, path string, payload interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	r := httptest.NewRequest(http.MethodPost, path, &body)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == handlers.RefreshCookieName {
			return c
		}
	}
	t.Fatal("refresh cookie not set")
	return nil
}

func TestServer_AuthFlow(t *testing.T) {
	handler := setupTestServer(t)

	signup := api.SignupRequest{
		Email:     "flow@example.com",
		Password:  "password123",
		FirstName: "Flow",
		LastName:  "Test",
		Role:      "user",
	}

	// Signup
	w := postJSON(t, handler, "/api/v1/auth/signup", signup, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var signupResp api.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signupResp))
	require.NotNil(t, signupResp.Data.User)
	userID := signupResp.Data.User.ID

	// Login
	w = postJSON(t, handler, "/api/v1/auth/login", api.LoginRequest{
		Email:    "flow@example.com",
		Password: "password123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var loginResp api.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	assert.Equal(t, userID, loginResp.Data.User.ID)

	cookie := refreshCookie(t, w)
	accessToken := loginResp.Data.Tokens.AccessToken

	// Me с access токеном
	r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	r.Header.Set("Authorization", "Bearer "+accessToken)
	me := httptest.NewRecorder()
	handler.ServeHTTP(me, r)
	require.Equal(t, http.StatusOK, me.Code)

	var mePayload api.UserPayload
	require.NoError(t, json.Unmarshal(me.Body.Bytes(), &mePayload))
	assert.Equal(t, userID, mePayload.ID)
	assert.Equal(t, "flow@example.com", mePayload.Email)

	// Refresh по cookie
	w = postJSON(t, handler, "/api/v1/auth/refresh", nil, []*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var refreshResp api.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshResp))
	assert.NotEmpty(t, refreshResp.Data.Tokens.AccessToken)

	// Logout отзывает refresh token
	w = postJSON(t, handler, "/api/v1/auth/logout", nil, []*http.Cookie{cookie})
	require.Equal(t, http.StatusNoContent, w.Code)

	// Повторный refresh с отозванным токеном отклоняется
	w = postJSON(t, handler, "/api/v1/auth/refresh", nil, []*http.Cookie{cookie})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_DuplicateSignup(t *testing.T) {
	handler := setupTestServer(t)

	signup := api.SignupRequest{
		Email:     "dup@example.com",
		Password:  "password123",
		FirstName: "Dup",
		LastName:  "Test",
		Role:      "user",
	}

	w := postJSON(t, handler, "/api/v1/auth/signup", signup, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, handler, "/api/v1/auth/signup", signup, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestServer_AdminSignup(t *testing.T) {
	handler := setupTestServer(t)

	signup := api.SignupRequest{
		Email:       "admin@example.com",
		Password:    "password123",
		FirstName:   "Admin",
		LastName:    "Test",
		Role:        "admin",
		AdminSecret: "integration-admin-secret",
	}

	w := postJSON(t, handler, "/api/v1/auth/signup", signup, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "admin", resp.Data.User.Role)

	// Неверный секрет отклоняется
	signup.Email = "admin2@example.com"
	signup.AdminSecret = "wrong"
	w = postJSON(t, handler, "/api/v1/auth/signup", signup, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestServer_MeRequiresToken(t *testing.T) {
	handler := setupTestServer(t)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_RefreshRequiresCookie(t *testing.T) {
	handler := setupTestServer(t)

	w := postJSON(t, handler, "/api/v1/auth/refresh", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_Health(t *testing.T) {
	handler := setupTestServer(t)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
