// Package server собирает HTTP сервер authd: маршруты, middleware
// и жизненный цикл (запуск, graceful shutdown, фоновая очистка denylist).
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/authd/internal/server/config"
	"github.com/iudanet/authd/internal/server/handlers"
	"github.com/iudanet/authd/internal/server/middleware"
	"github.com/iudanet/authd/internal/server/policy"
	"github.com/iudanet/authd/internal/server/storage"
	"github.com/iudanet/authd/internal/server/token"
)

const (
	// shutdownTimeout максимальное время graceful shutdown
	shutdownTimeout = 10 * time.Second
	// denylistGCInterval период очистки истекших записей denylist
	denylistGCInterval = time.Hour

	// authRateLimit лимит запросов на auth эндпоинты с одного IP
	authRateLimit = 30
	// authRateWindow окно rate limiter-а
	authRateWindow = time.Minute
)

// Storage объединяет хранилища, которые нужны серверу
type Storage interface {
	storage.UserStorage
	storage.TokenStorage
	Close() error
}

// Server представляет HTTP сервер authd
type Server struct {
	logger    *slog.Logger
	cfg       *config.Config
	store     Storage
	httpSrv   *http.Server
	rateLimit *middleware.RateLimiter
}

// New создает сервер со всеми зависимостями
func New(logger *slog.Logger, cfg *config.Config, store Storage) *Server {
	s := &Server{
		logger:    logger,
		cfg:       cfg,
		store:     store,
		rateLimit: middleware.NewRateLimiter(authRateLimit, authRateWindow, logger),
	}

	s.httpSrv = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// routes собирает маршруты и цепочку middleware
func (s *Server) routes() http.Handler {
	tokens := token.NewService(s.cfg.JWTSecret, s.cfg.AccessTokenTTL, s.cfg.RefreshTokenTTL)
	rolePolicy := policy.New(s.cfg.AdminSecret)

	authHandler := handlers.NewAuthHandler(s.logger, s.store, s.store, tokens, rolePolicy)
	healthHandler := handlers.NewHealthHandler(s.logger)

	requireRefresh := middleware.RefreshMiddleware(s.logger, tokens, s.store)
	requireAccess := middleware.AuthMiddleware(s.logger, tokens)
	rateLimit := s.rateLimit.Middleware()

	mux := http.NewServeMux()
	mux.Handle("POST /api/v1/auth/signup", rateLimit(http.HandlerFunc(authHandler.Signup)))
	mux.Handle("POST /api/v1/auth/login", rateLimit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/v1/auth/refresh", rateLimit(requireRefresh(http.HandlerFunc(authHandler.Refresh))))
	mux.Handle("POST /api/v1/auth/logout", rateLimit(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/v1/auth/me", requireAccess(http.HandlerFunc(authHandler.Me)))
	mux.HandleFunc("GET /api/v1/health", healthHandler.Health)

	// Внешняя цепочка: recovery ловит паники логирующего слоя тоже
	var handler http.Handler = mux
	handler = middleware.LoggingWithSkip(s.logger, []string{"/api/v1/health"})(handler)
	handler = middleware.RecoveryMiddleware(s.logger)(handler)

	return handler
}

// Run запускает сервер и блокируется до отмены контекста
// После отмены выполняется graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	defer s.rateLimit.Stop()

	go s.denylistGC(ctx)

	errC := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "address", s.cfg.Address)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return nil
}

// denylistGC периодически удаляет истекшие записи denylist
// Истекший refresh token и так не пройдет Verify, хранить его отзыв незачем
func (s *Server) denylistGC(ctx context.Context) {
	ticker := time.NewTicker(denylistGCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.store.DeleteExpired(ctx)
			if err != nil {
				s.logger.Error("Failed to delete expired denylist rows", "error", err)
				continue
			}
			if deleted > 0 {
				s.logger.Info("Expired denylist rows deleted", "count", deleted)
			}
		}
	}
}
