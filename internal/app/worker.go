package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sergiomanvel/HiveAutomation/internal/core/ports"
	"github.com/sergiomanvel/HiveAutomation/internal/messaging/payloads"
)

// runWorker запускает потребителя RabbitMQ и пишет аудит событий пользователей
func runWorker(
	ctx context.Context,
	consumer ports.UserEventConsumer,
	logger *slog.Logger,
) error {
	logger.Info("worker started, waiting for user events")

	// Обработчик событий: журнал аудита всех мутаций пользователей
	eventHandler := func(ctx context.Context, payload payloads.UserEventPayload) error {
		logger.Info("user event received",
			"event", payload.Event,
			"user_id", payload.UserID,
			"username", payload.Username,
			"occurred_at", payload.OccurredAt,
		)
		return nil
	}

	if err := consumer.StartConsumingUserEvents(ctx, eventHandler); err != nil {
		return fmt.Errorf("ошибка при запуске потребителя RabbitMQ: %w", err)
	}

	<-ctx.Done()
	logger.Info("worker stopped")
	return nil
}
