package rabbitmq

import (
	"context"

	"github.com/sergiomanvel/HiveAutomation/internal/core/ports"
	"github.com/sergiomanvel/HiveAutomation/internal/messaging/payloads"
)

// NoopPublisher используется, когда RabbitMQ не сконфигурирован (RABBITMQ_URL пуст).
// Публикация событий молча пропускается; сервис работает без очереди.
type NoopPublisher struct{}

var _ ports.UserEventPublisher = (*NoopPublisher)(nil)

func (NoopPublisher) PublishUserEvent(context.Context, payloads.UserEventPayload) error {
	return nil
}
