package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/sergiomanvel/HiveAutomation/internal/auth"
	"github.com/sergiomanvel/HiveAutomation/internal/core/ports"
	"github.com/sergiomanvel/HiveAutomation/internal/domain"
	"github.com/sergiomanvel/HiveAutomation/internal/messaging/payloads"
)

// userInteractor implements UserUseCase
type userInteractor struct {
	storage       ports.UserStorage
	cache         ports.UserCache
	publisher     ports.UserEventPublisher
	logger        *slog.Logger
	cacheTTL      time.Duration
	flushOnCreate bool
}

// NewUserUseCase создает новый экземпляр UserUseCase
// принимает реализации портов UserStorage, UserCache и UserEventPublisher
func NewUserUseCase(
	storage ports.UserStorage,
	cache ports.UserCache,
	publisher ports.UserEventPublisher,
	logger *slog.Logger,
	cacheTTL time.Duration,
	flushOnCreate bool,
) UserUseCase {
	return &userInteractor{
		storage:       storage,
		cache:         cache,
		publisher:     publisher,
		logger:        logger,
		cacheTTL:      cacheTTL,
		flushOnCreate: flushOnCreate,
	}
}

// cacheKey — ключ кэш-записи: строковое представление ID пользователя
func cacheKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Login проверяет учетные данные пользователя
func (uc *userInteractor) Login(ctx context.Context, username, password string) (*domain.PublicUser, error) {
	user, err := uc.storage.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, domain.ErrInvalidPassword
	}

	public := user.Public()
	return &public, nil
}

// ListUsers возвращает всех пользователей напрямую из БД (список не кэшируется)
func (uc *userInteractor) ListUsers(ctx context.Context) ([]domain.PublicUser, error) {
	return uc.storage.ListUsers(ctx)
}

// GetUserByID реализует cache-aside чтение:
// 1. Смотрим в кэш; при попадании БД не трогаем вовсе.
// 2. При промахе или недоступности кэша читаем БД.
// 3. Найденную проекцию кладём в кэш с TTL; отсутствие строки кэш не заполняет.
func (uc *userInteractor) GetUserByID(ctx context.Context, id int64) (*domain.PublicUser, error) {
	key := cacheKey(id)

	raw, found, err := uc.cache.Get(ctx, key)
	switch {
	case err != nil:
		// Отказ кэша нефатален: логируем и идём в БД как при промахе
		uc.logger.Warn("cache unavailable, falling back to store", "key", key, "error", err)
	case found:
		var user domain.PublicUser
		if decodeErr := json.Unmarshal(raw, &user); decodeErr != nil {
			uc.logger.Warn("failed to decode cached entry, falling back to store", "key", key, "error", decodeErr)
		} else {
			uc.logger.Debug("cache hit", "user_id", id)
			return &user, nil
		}
	}

	user, err := uc.storage.GetUserByID(ctx, id)
	if err != nil {
		// Not-Found пробрасывается выше; негативное кэширование не выполняется
		return nil, err
	}

	if raw, err := json.Marshal(user); err == nil {
		if err := uc.cache.Set(ctx, key, raw, uc.cacheTTL); err != nil {
			uc.logger.Warn("failed to populate cache", "key", key, "error", err)
		}
	}

	return user, nil
}

// CreateUser хэширует пароль, вставляет строку и после успеха сбрасывает кэш целиком
func (uc *userInteractor) CreateUser(ctx context.Context, username, password string) (*domain.PublicUser, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := uc.storage.CreateUser(ctx, username, hash)
	if err != nil {
		// Мутация БД не удалась — кэш не трогаем
		return nil, err
	}

	if uc.flushOnCreate {
		// Кэш ключуется по ID, который до вставки неизвестен,
		// поэтому консервативно сбрасываем всё
		if err := uc.cache.FlushAll(ctx); err != nil {
			uc.logger.Warn("failed to flush cache after create", "user_id", user.ID, "error", err)
		}
	}

	uc.publishEvent(ctx, payloads.UserCreated, user.ID, user.Username)
	return user, nil
}

// UpdateUser обновляет строку и инвалидирует кэш-запись этого ID.
// Запись не перезаполняется: следующее чтение пересчитает и закэширует заново
func (uc *userInteractor) UpdateUser(ctx context.Context, id int64, username, password string) (*domain.PublicUser, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := uc.storage.UpdateUser(ctx, id, username, hash)
	if err != nil {
		return nil, err
	}

	if err := uc.cache.Delete(ctx, cacheKey(id)); err != nil {
		// Запись в БД уже состоялась; кэш самовосстановится по TTL
		uc.logger.Warn("failed to invalidate cache after update", "user_id", id, "error", err)
	}

	uc.publishEvent(ctx, payloads.UserUpdated, user.ID, user.Username)
	return user, nil
}

// DeleteUser удаляет строку и инвалидирует кэш-запись этого ID
func (uc *userInteractor) DeleteUser(ctx context.Context, id int64) error {
	if err := uc.storage.DeleteUser(ctx, id); err != nil {
		return err
	}

	if err := uc.cache.Delete(ctx, cacheKey(id)); err != nil {
		uc.logger.Warn("failed to invalidate cache after delete", "user_id", id, "error", err)
	}

	uc.publishEvent(ctx, payloads.UserDeleted, id, "")
	return nil
}

// publishEvent публикует событие мутации в очередь (best-effort)
func (uc *userInteractor) publishEvent(ctx context.Context, event string, userID int64, username string) {
	if uc.publisher == nil {
		return
	}

	payload := payloads.UserEventPayload{
		Event:      event,
		UserID:     userID,
		Username:   username,
		OccurredAt: time.Now().UTC(),
	}
	if err := uc.publisher.PublishUserEvent(ctx, payload); err != nil {
		uc.logger.Warn("failed to publish user event", "event", event, "user_id", userID, "error", err)
	}
}
