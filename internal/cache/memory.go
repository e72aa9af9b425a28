package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sergiomanvel/HiveAutomation/internal/core/ports"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // нулевое значение — без TTL
}

// MemoryCache — потокобезопасная in-memory реализация ports.UserCache.
// Используется как тестовый двойник и как запасной бэкенд без Redis.
// Истёкшие записи удаляются лениво при чтении.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

var _ ports.UserCache = (*MemoryCache)(nil)

// NewMemoryCache создает новый in-memory кэш
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

// Connect для in-memory кэша ничего не делает
func (c *MemoryCache) Connect(_ context.Context) error { return nil }

// Get возвращает значение по ключу; истёкшая запись считается промахом
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	expired := ok && !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if expired {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set сохраняет значение с TTL
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = memoryEntry{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
	return nil
}

// Delete удаляет запись по ключу
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// FlushAll очищает кэш целиком
func (c *MemoryCache) FlushAll(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

// Close для in-memory кэша ничего не делает
func (c *MemoryCache) Close() error { return nil }
