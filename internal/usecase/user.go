package usecase

import (
	"context"

	"github.com/sergiomanvel/HiveAutomation/internal/domain"
)

// UserUseCase определяет интерфейс бизнес-логики работы с пользователями.
// Чтение по ID идёт через кэш (cache-aside); каждая мутация сначала меняет БД,
// затем инвалидирует кэш. Хранилище всегда остаётся источником истины.
type UserUseCase interface {
	// Login проверяет имя пользователя и пароль.
	// Несуществующий пользователь — domain.ErrUserNotFound,
	// неверный пароль — domain.ErrInvalidPassword
	Login(ctx context.Context, username, password string) (*domain.PublicUser, error)

	// ListUsers возвращает публичные проекции всех пользователей.
	// Список не кэшируется — кэш ключуется только по ID
	ListUsers(ctx context.Context) ([]domain.PublicUser, error)

	// GetUserByID возвращает пользователя по ID: сперва кэш, при промахе — БД
	// с последующим заполнением кэша. Отказ кэша нефатален
	GetUserByID(ctx context.Context, id int64) (*domain.PublicUser, error)

	// CreateUser хэширует пароль, вставляет строку и сбрасывает кэш целиком
	// (новый ID заранее неизвестен)
	CreateUser(ctx context.Context, username, password string) (*domain.PublicUser, error)

	// UpdateUser обновляет строку и инвалидирует кэш-запись этого ID
	UpdateUser(ctx context.Context, id int64, username, password string) (*domain.PublicUser, error)

	// DeleteUser удаляет строку и инвалидирует кэш-запись этого ID
	DeleteUser(ctx context.Context, id int64) error
}
