package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/sergiomanvel/HiveAutomation/internal/auth"
	"github.com/sergiomanvel/HiveAutomation/internal/config"
	"github.com/sergiomanvel/HiveAutomation/internal/handler"
)

// NewRouter собирает маршрутизатор со всеми middleware и маршрутами.
// Вынесено отдельно, чтобы тесты могли поднять роутер без сервера.
func NewRouter(cfg *config.Config, userHandler *handler.UserHandler, tokens *auth.TokenManager, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(handler.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(httprate.LimitByIP(cfg.RateLimitMax, cfg.RateLimitWindow))

	r.Get("/", userHandler.Root)
	r.Get("/health", userHandler.Health)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
	})

	// Защищенные маршруты: аутентификация выполняется до обращения к БД и кэшу
	r.Route("/api/users", func(r chi.Router) {
		r.Use(handler.Authenticator(tokens, logger))
		r.Get("/", userHandler.ListUsers)
		r.Post("/", userHandler.CreateUser)
		r.Get("/{id}", userHandler.GetUserByID)
		r.Put("/{id}", userHandler.UpdateUser)
		r.Delete("/{id}", userHandler.DeleteUser)
	})

	return r
}

// runServer запускает HTTP сервер и блокируется до отмены контекста
func runServer(
	ctx context.Context,
	cfg *config.Config,
	userHandler *handler.UserHandler,
	tokens *auth.TokenManager,
	logger *slog.Logger,
) error {
	r := NewRouter(cfg, userHandler, tokens, logger)

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server started", "addr", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("ошибка при запуске сервера: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, stopping HTTP server")

	// Graceful Shutdown
	ctxServer, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxServer); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("HTTP server stopped gracefully")
	return nil
}
