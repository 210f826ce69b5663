package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryCache implements Cache interface using a bounded LRU with per-item expiry
type MemoryCache struct {
	items     *lru.Cache[string, memoryItem]
	mu        sync.RWMutex
	closed    bool
	now       func() time.Time
	hits      int64
	misses    int64
	evictions int64
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

func (i memoryItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// NewMemoryCache creates a new in-memory cache instance
func NewMemoryCache(config *CacheConfig) (*MemoryCache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	size := config.MaxEntries
	if size <= 0 {
		size = DefaultCacheConfig().MaxEntries
	}

	mc := &MemoryCache{now: time.Now}
	items, err := lru.NewWithEvict[string, memoryItem](size, func(string, memoryItem) {
		atomic.AddInt64(&mc.evictions, 1)
	})
	if err != nil {
		return nil, err
	}
	mc.items = items
	return mc, nil
}

// Get retrieves a value from memory cache
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrCacheClosed
	}

	item, ok := m.items.Get(key)
	if !ok || item.expired(m.now()) {
		if ok {
			m.items.Remove(key)
		}
		atomic.AddInt64(&m.misses, 1)
		return nil, ErrKeyNotFound
	}

	atomic.AddInt64(&m.hits, 1)
	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, nil
}

// Set stores a value in memory cache with TTL; a non-positive TTL never expires
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrCacheClosed
	}

	item := memoryItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expiresAt = m.now().Add(ttl)
	}
	m.items.Add(key, item)
	return nil
}

// Delete removes a value from memory cache
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrCacheClosed
	}
	m.items.Remove(key)
	return nil
}

// Ping reports whether the cache is still open
func (m *MemoryCache) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrCacheClosed
	}
	return nil
}

// Close drops all entries; later calls fail with ErrCacheClosed
func (m *MemoryCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.items.Purge()
	return nil
}

// Stats returns cache statistics
func (m *MemoryCache) Stats(ctx context.Context) CacheStats {
	return newStats(
		atomic.LoadInt64(&m.hits),
		atomic.LoadInt64(&m.misses),
		int64(m.items.Len()),
		atomic.LoadInt64(&m.evictions),
	)
}
