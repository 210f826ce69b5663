package cache

import (
	"context"
	"errors"
	"time"
)

// Cache defines the key-value contract shared by all cache backends
type Cache interface {
	// Get retrieves a value from cache by key. A missing or expired key returns ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error

	// Close closes the cache connection
	Close() error

	// Stats returns hit, miss and size counters for health reporting
	Stats(ctx context.Context) CacheStats
}

// CacheConfig holds configuration for cache instances
type CacheConfig struct {
	// Prefix is added to all cache keys
	Prefix string `json:"prefix" yaml:"prefix"`

	// Backend specifies the cache backend (memory, redis)
	Backend CacheType `json:"backend" yaml:"backend"`

	// MaxEntries bounds the memory backend; least recently used keys are evicted first
	MaxEntries int `json:"max_entries" yaml:"max_entries"`

	// Redis configuration
	Redis RedisConfig `json:"redis" yaml:"redis"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Address      string        `json:"address" yaml:"address"`
	Password     string        `json:"password" yaml:"password"`
	Database     int           `json:"database" yaml:"database"`
	PoolSize     int           `json:"pool_size" yaml:"pool_size"`
	MinIdleConns int           `json:"min_idle_conns" yaml:"min_idle_conns"`
	MaxConnAge   time.Duration `json:"max_conn_age" yaml:"max_conn_age"`
	Cluster      ClusterConfig `json:"cluster" yaml:"cluster"`
}

// ClusterConfig holds Redis cluster configuration
type ClusterConfig struct {
	Enabled   bool     `json:"enabled" yaml:"enabled"`
	Addresses []string `json:"addresses" yaml:"addresses"`
}

// CacheStats provides cache performance statistics
type CacheStats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRatio  float64 `json:"hit_ratio"`
	Keys      int64   `json:"keys"`
	Evictions int64   `json:"evictions"`
}

func newStats(hits, misses, keys, evictions int64) CacheStats {
	stats := CacheStats{Hits: hits, Misses: misses, Keys: keys, Evictions: evictions}
	if total := hits + misses; total > 0 {
		stats.HitRatio = float64(hits) / float64(total)
	}
	return stats
}

// Common cache errors
var (
	// ErrKeyNotFound is returned when a key is not found in cache
	ErrKeyNotFound = errors.New("key not found")

	// ErrCacheUnavailable is returned when cache backend is unavailable
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrInvalidCacheType is returned when cache type is invalid
	ErrInvalidCacheType = errors.New("invalid cache type")

	// ErrCacheClosed is returned by a backend after Close
	ErrCacheClosed = errors.New("cache closed")
)

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Prefix:     "telar:",
		Backend:    CacheTypeMemory,
		MaxEntries: 100000,
		Redis: RedisConfig{
			Address:      "localhost:6379",
			PoolSize:     10,
			MinIdleConns: 5,
			MaxConnAge:   30 * time.Minute,
		},
	}
}

// CacheType represents different cache backend types
type CacheType string

const (
	// CacheTypeMemory represents in-memory cache
	CacheTypeMemory CacheType = "memory"

	// CacheTypeRedis represents Redis cache
	CacheTypeRedis CacheType = "redis"
)

// IsValid checks if the cache type is valid
func (ct CacheType) IsValid() bool {
	switch ct {
	case CacheTypeMemory, CacheTypeRedis:
		return true
	default:
		return false
	}
}
