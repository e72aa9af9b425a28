package payloads

import "time"

// Типы событий изменения пользователя.
const (
	UserCreated = "user.created"
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"
)

// UserEventPayload представляет событие изменения пользователя,
// публикуемое в RabbitMQ после успешной мутации в БД.
type UserEventPayload struct {
	Event      string    `json:"event"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
