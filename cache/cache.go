// Package cache holds serialized results keyed by result id so repeated reads
// return byte-identical bodies. The result store stays authoritative.
package cache

import (
	"context"
	"fmt"
)

// Cache stores opaque bytes by key
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte) error
	// Add stores value only when key is absent and reports whether it did
	Add(ctx context.Context, key string, value []byte) (bool, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Name() string
}

// New builds the cache selected by CACHE_TYPE
func New(cacheType, redisURL string) (Cache, error) {
	switch cacheType {
	case "memory", "":
		return NewMemoryCache(), nil
	case "redis":
		return NewRedisCache(redisURL)
	case "none":
		return NopCache{}, nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cacheType)
	}
}

// NopCache never holds anything
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (NopCache) Set(context.Context, string, []byte) error { return nil }
func (NopCache) Add(context.Context, string, []byte) (bool, error) {
	return false, nil
}
func (NopCache) Delete(context.Context, string) error { return nil }
func (NopCache) Ping(context.Context) error { return nil }
func (NopCache) Name() string { return "none" }
