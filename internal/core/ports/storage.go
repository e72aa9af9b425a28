package ports

import (
	"context"

	"github.com/sergiomanvel/HiveAutomation/internal/domain"
)

// UserStorage определяет методы для взаимодействия с хранилищем пользователей (PostgreSQL).
// Хранилище — единственный источник истины; кэш поверх него является чистой оптимизацией.
type UserStorage interface {
	// ListUsers возвращает публичные проекции всех пользователей
	ListUsers(ctx context.Context) ([]domain.PublicUser, error)

	// GetUserByID возвращает публичную проекцию пользователя по ID.
	// Если строки нет — domain.ErrUserNotFound
	GetUserByID(ctx context.Context, id int64) (*domain.PublicUser, error)

	// GetUserByUsername возвращает пользователя вместе с хэшем пароля (для логина)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// CreateUser вставляет строку, ID назначает БД
	CreateUser(ctx context.Context, username, passwordHash string) (*domain.PublicUser, error)

	// UpdateUser обновляет строку по ID; ноль затронутых строк — domain.ErrUserNotFound
	UpdateUser(ctx context.Context, id int64, username, passwordHash string) (*domain.PublicUser, error)

	// DeleteUser удаляет строку по ID; ноль затронутых строк — domain.ErrUserNotFound
	DeleteUser(ctx context.Context, id int64) error
}
