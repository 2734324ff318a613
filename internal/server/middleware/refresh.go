package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iudanet/authd/internal/server/handlers"
	"github.com/iudanet/authd/internal/server/storage"
	"github.com/iudanet/authd/internal/server/token"
)

// RefreshMiddleware создает middleware для проверки refresh токена.
// Токен читается только из cookie, не из заголовка и не из тела.
// После проверки подписи, срока и kind токен сверяется с denylist.
// Identity из токена кладется в контекст; существование аккаунта
// повторно не проверяется (принятое окно устаревания роли)
func RefreshMiddleware(logger *slog.Logger, tokens *token.Service, denylist storage.TokenStorage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(handlers.RefreshCookieName)
			if err != nil {
				logger.Warn("Missing refresh cookie")
				writeUnauthorized(w, "missing refresh token")
				return
			}

			claims, err := tokens.Verify(cookie.Value, token.KindRefresh)
			if err != nil {
				logger.Warn("Invalid refresh token", "error", err)
				writeUnauthorized(w, "invalid refresh token")
				return
			}

			revoked, err := denylist.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				logger.Error("Failed to check token denylist", "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"Internal Server Error"}`))
				return
			}
			if revoked {
				logger.Warn("Revoked refresh token presented", "user_id", claims.UserID)
				writeUnauthorized(w, "invalid refresh token")
				return
			}

			ctx := context.WithValue(r.Context(), handlers.UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, handlers.RoleKey, claims.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeUnauthorized отправляет 401 с JSON телом
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized","message":"` + message + `"}`))
}
