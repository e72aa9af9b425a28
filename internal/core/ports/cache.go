package ports

import (
	"context"
	"time"
)

// UserCache определяет контракт кэш-слоя: {get, set, delete, flushAll, connect, close}.
// Реализуется реальным Redis-адаптером (одиночный узел или кластер) и
// in-memory двойником для тестов; вызывающий код зависит только от этого интерфейса.
// Любая ошибка кэша нефатальна: все вызывающие обязаны откатываться к работе
// только через БД.
type UserCache interface {
	// Connect устанавливает соединение с бэкендом кэша
	Connect(ctx context.Context) error

	// Get возвращает значение по ключу. found=false означает промах (ключ
	// отсутствует или истёк TTL); это не ошибка
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set сохраняет значение с TTL, по истечении которого запись считается отсутствующей
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет запись по ключу (инвалидация после update/delete)
	Delete(ctx context.Context, key string) error

	// FlushAll очищает кэш целиком (после create, когда новый ID заранее неизвестен)
	FlushAll(ctx context.Context) error

	// Close закрывает соединение с бэкендом
	Close() error
}
