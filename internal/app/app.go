package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/sergiomanvel/HiveAutomation/internal/auth"
	"github.com/sergiomanvel/HiveAutomation/internal/config"
	"github.com/sergiomanvel/HiveAutomation/internal/core/ports"
	"github.com/sergiomanvel/HiveAutomation/internal/database/client"
	"github.com/sergiomanvel/HiveAutomation/internal/handler"
)

type App struct {
	Config      *config.Config
	logger      *slog.Logger
	dbClient    *client.Client
	cache       ports.UserCache
	userHandler *handler.UserHandler
	tokens      *auth.TokenManager
	consumer    ports.UserEventConsumer
	publisher   ports.UserEventPublisher
}

func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	dbClient *client.Client,
	cache ports.UserCache,
	userHandler *handler.UserHandler,
	tokens *auth.TokenManager,
	publisher ports.UserEventPublisher,
	consumer ports.UserEventConsumer,
) *App {
	return &App{
		Config:      cfg,
		logger:      logger,
		dbClient:    dbClient,
		cache:       cache,
		userHandler: userHandler,
		tokens:      tokens,
		publisher:   publisher,
		consumer:    consumer,
	}
}

// LoggerIns возвращает основной логгер приложения
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

func (a *App) Run(ctx context.Context, mode *string) error {
	// контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("application starting", "mode", *mode)

	var err error

	switch *mode {
	case "server":
		err = runServer(ctx, a.Config, a.userHandler, a.tokens, a.logger)

	case "worker":
		if a.consumer == nil {
			err = fmt.Errorf("режим worker требует настроенного RabbitMQ (RABBITMQ_URL)")
		} else {
			err = runWorker(ctx, a.consumer, a.logger)
		}

	default:
		err = fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", *mode)
	}

	// аккуратно закрываем ресурсы
	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown error", "error", closeErr)
	}

	if err != nil {
		return err
	}

	a.logger.Info("application stopped")
	return nil
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	if a.dbClient != nil {
		if err := a.dbClient.Close(); err != nil {
			return fmt.Errorf("ошибка закрытия БД: %w", err)
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close cache", "error", err)
		}
	}

	// если publisher/consumer имеют методы Close — вызываем их
	if closer, ok := a.publisher.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if closer, ok := a.consumer.(interface{ Close() error }); ok && any(a.consumer) != any(a.publisher) {
		_ = closer.Close()
	}

	return nil
}
