package ports

import (
	"context"

	"github.com/sergiomanvel/HiveAutomation/internal/messaging/payloads"
)

// UserEventPublisher определяет методы для публикации событий изменения пользователей
// Этот интерфейс используется бизнес-логикой после успешной мутации в БД
type UserEventPublisher interface {
	PublishUserEvent(ctx context.Context, payload payloads.UserEventPayload) error
}

// UserEventConsumer определяет методы для потребления событий изменения пользователей
// используется воркером для получения событий из очереди
type UserEventConsumer interface {
	// StartConsumingUserEvents начинает прослушивание очереди событий
	// принимает функцию-обработчик, которая будет вызываться для каждого полученного события
	StartConsumingUserEvents(ctx context.Context, handler func(context.Context, payloads.UserEventPayload) error) error
}
