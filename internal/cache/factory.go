package cache

import (
	"context"
	"fmt"

	"fyf-go/internal/config"
	"fyf-go/internal/fyf"
)

// NewCacheFromConfig creates a Cache implementation based on the cache
// config type.
func NewCacheFromConfig(ctx context.Context, cfg config.CacheConfig) (fyf.Cache, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryCache(), nil
	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("redis_url required for redis cache")
		}
		return NewRedisCache(ctx, cfg.RedisURL)
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}
