package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sergiomanvel/HiveAutomation/internal/config"
	"github.com/sergiomanvel/HiveAutomation/internal/core/ports"
)

// RedisCache реализует ports.UserCache поверх Redis.
// redis.UniversalClient покрывает и одиночный узел, и кластер,
// поэтому адаптер один для обоих режимов.
type RedisCache struct {
	rdb    redis.UniversalClient
	logger *slog.Logger
}

var _ ports.UserCache = (*RedisCache)(nil)

// NewRedisCache создает Redis-адаптер из конфигурации.
// При REDIS_CLUSTER=true подключается к кластеру по списку узлов,
// иначе — к одиночному узлу по REDIS_URL.
// Соединение устанавливается отдельным вызовом Connect.
func NewRedisCache(cfg *config.Config, logger *slog.Logger) (*RedisCache, error) {
	var rdb redis.UniversalClient

	if cfg.RedisCluster {
		if len(cfg.RedisNodes) == 0 {
			return nil, fmt.Errorf("режим кластера Redis включен, но список узлов (REDIS_NODES) пуст")
		}
		rdb = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs: cfg.RedisNodes,
		})
	} else {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора REDIS_URL: %w", err)
		}
		rdb = redis.NewClient(opts)
	}

	return &RedisCache{rdb: rdb, logger: logger}, nil
}

// NewRedisCacheFromClient оборачивает готовый клиент (используется в тестах)
func NewRedisCacheFromClient(rdb redis.UniversalClient, logger *slog.Logger) *RedisCache {
	return &RedisCache{rdb: rdb, logger: logger}
}

// Connect проверяет соединение с Redis
func (c *RedisCache) Connect(ctx context.Context) error {
	start := time.Now()
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		c.logger.Error("failed to connect to Redis", "error", err)
		return fmt.Errorf("ошибка подключения к Redis: %w", err)
	}
	c.logger.Info("Redis connection established successfully",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Get возвращает значение по ключу. Отсутствие ключа — промах, не ошибка
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set сохраняет значение с TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete удаляет запись по ключу
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// FlushAll очищает кэш целиком
func (c *RedisCache) FlushAll(ctx context.Context) error {
	if err := c.rdb.FlushAll(ctx).Err(); err != nil {
		return fmt.Errorf("redis flushall: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func (c *RedisCache) Close() error {
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("failed to close Redis connection", "error", err)
		return err
	}
	c.logger.Info("Redis connection closed")
	return nil
}
