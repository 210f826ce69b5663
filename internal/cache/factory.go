package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/qolzam/telar/apps/feeds/internal/platform/config"
)

// NewCache creates a cache instance based on configuration.
// The returned cache namespaces every key with config.Prefix.
func NewCache(cfg *CacheConfig) (Cache, error) {
	if cfg == nil {
		cfg = DefaultCacheConfig()
	}

	if !cfg.Backend.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCacheType, cfg.Backend)
	}

	var (
		backend Cache
		err     error
	)
	switch cfg.Backend {
	case CacheTypeRedis:
		backend, err = NewRedisCache(cfg)
	default:
		backend, err = NewMemoryCache(cfg)
	}
	if err != nil {
		return nil, err
	}

	return WithPrefix(backend, cfg.Prefix), nil
}

// NewCacheFromPlatformConfig maps the service configuration to a cache instance
func NewCacheFromPlatformConfig(cfg config.CacheConfig) (Cache, error) {
	return NewCache(&CacheConfig{
		Prefix:     cfg.Prefix,
		Backend:    CacheType(cfg.Backend),
		MaxEntries: cfg.MaxEntries,
		Redis: RedisConfig{
			Address:      cfg.Redis.Address,
			Password:     cfg.Redis.Password,
			Database:     cfg.Redis.Database,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxConnAge:   cfg.Redis.MaxConnAge,
			Cluster: ClusterConfig{
				Enabled:   cfg.Redis.Cluster.Enabled,
				Addresses: cfg.Redis.Cluster.Addresses,
			},
		},
	})
}

// WithPrefix decorates c so that every key is namespaced with prefix
func WithPrefix(c Cache, prefix string) Cache {
	if prefix == "" {
		return c
	}
	return &prefixedCache{Cache: c, prefix: prefix}
}

type prefixedCache struct {
	Cache
	prefix string
}

func (p *prefixedCache) Get(ctx context.Context, key string) ([]byte, error) {
	return p.Cache.Get(ctx, p.prefix+key)
}

func (p *prefixedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return p.Cache.Set(ctx, p.prefix+key, value, ttl)
}

func (p *prefixedCache) Delete(ctx context.Context, key string) error {
	return p.Cache.Delete(ctx, p.prefix+key)
}
