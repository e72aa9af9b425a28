package di

import (
	"context"

	"github.com/sergiomanvel/HiveAutomation/internal/app"
	"github.com/sergiomanvel/HiveAutomation/internal/auth"
	"github.com/sergiomanvel/HiveAutomation/internal/cache"
	"github.com/sergiomanvel/HiveAutomation/internal/config"
	"github.com/sergiomanvel/HiveAutomation/internal/core/ports"
	"github.com/sergiomanvel/HiveAutomation/internal/database/client"
	"github.com/sergiomanvel/HiveAutomation/internal/database/storage"
	"github.com/sergiomanvel/HiveAutomation/internal/handler"
	"github.com/sergiomanvel/HiveAutomation/internal/logger"
	"github.com/sergiomanvel/HiveAutomation/internal/rabbitmq"
	"github.com/sergiomanvel/HiveAutomation/internal/usecase"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
func BuildApp(ctx context.Context) (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	// 2. Инициализация PostgreSQL клиента (применяет миграции)
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}

	// 3. Инициализация кэша Redis (одиночный узел или кластер)
	redisCache, err := cache.NewRedisCache(cfg, slogger)
	if err != nil {
		return nil, err
	}
	if err := redisCache.Connect(ctx); err != nil {
		// Недоступный на старте кэш не мешает запуску: все пути умеют
		// деградировать до работы только через БД
		slogger.Warn("cache unavailable at startup, continuing in store-only mode", "error", err)
	}

	// 4. Инициализация хранилища пользователей
	userStorage := storage.NewUserStorage(dbClient.DB, slogger)

	// 5. Инициализация RabbitMQ (опционально)
	var publisher ports.UserEventPublisher = rabbitmq.NoopPublisher{}
	var consumer ports.UserEventConsumer

	if cfg.RabbitMQ.RabbitMQURL != "" {
		rabbitClient, err := rabbitmq.NewClient(cfg, slogger)
		if err != nil {
			return nil, err
		}
		publisher = rabbitClient
		consumer = rabbitClient
	} else {
		slogger.Info("RabbitMQ not configured, user events disabled")
	}

	// 6. Инициализация бизнес-логики (usecases)
	userUseCase := usecase.NewUserUseCase(
		userStorage,
		redisCache,
		publisher,
		slogger,
		cfg.CacheTTL,
		cfg.CacheFlushOnCreate,
	)

	// 7. Аутентификация и HTTP-обработчики
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	userHandler := handler.NewUserHandler(userUseCase, tokens, slogger)

	// 8. Сборка итогового приложения
	application := app.NewApp(
		cfg,
		slogger,
		dbClient,
		redisCache,
		userHandler,
		tokens,
		publisher,
		consumer,
	)

	slogger.Info("all dependencies initialized successfully")
	return application, nil
}
