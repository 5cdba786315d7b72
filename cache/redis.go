package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "genuverity:result:"

// RedisCache shares serialized results between server instances
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache connects using a redis:// URL
func NewRedisCache(url string) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	return &RedisCache{rdb: redis.NewClient(opt)}, nil
}

// Get treats redis errors as misses; the store answers instead
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.rdb.Set(ctx, keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

// Add uses SETNX so a fill from a stale read never replaces a newer value
func (c *RedisCache) Add(ctx context.Context, key string, value []byte) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, keyPrefix+key, value, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to add cache key %s: %w", key, err)
	}
	return ok, nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, keyPrefix+key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to delete cache key %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *RedisCache) Name() string { return "redis" }

// Close releases the connection pool
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
