package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-process cache without expiry
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	if val, found := c.cache.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

// Set stores a copy of value
func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	c.cache.Set(key, append([]byte(nil), value...), gocache.NoExpiration)
	return nil
}

// Add stores a copy of value unless key is already present
func (c *MemoryCache) Add(_ context.Context, key string, value []byte) (bool, error) {
	if err := c.cache.Add(key, append([]byte(nil), value...), gocache.NoExpiration); err != nil {
		return false, nil
	}
	return true, nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.cache.Delete(key)
	return nil
}

func (c *MemoryCache) Ping(context.Context) error { return nil }

func (c *MemoryCache) Name() string { return "memory" }
