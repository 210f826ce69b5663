package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/qolzam/telar/apps/feeds/internal/cache"
	"github.com/qolzam/telar/apps/feeds/internal/pkg/log"
)

// counterCache stores derived integer counters as decimal strings.
// Every failure degrades to a miss; none is returned to the caller.
type counterCache struct {
	cache cache.Cache
	ttl   time.Duration
}

// lookup returns the cached counter under key, if a usable one exists
func (c *counterCache) lookup(ctx context.Context, key string) (int64, bool) {
	if c.cache == nil {
		return 0, false
	}

	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrKeyNotFound) {
			log.WarnWithContext(ctx, "counter cache get %s failed: %v", key, err)
		}
		return 0, false
	}

	value := strings.TrimSpace(string(raw))
	if value == "" {
		return 0, false
	}

	count, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.WarnWithContext(ctx, "counter cache value for %s is malformed: %q", key, value)
		return 0, false
	}
	return count, true
}

// store caches count under key for the TTL
func (c *counterCache) store(ctx context.Context, key string, count int64) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, []byte(strconv.FormatInt(count, 10)), c.ttl); err != nil {
		log.WarnWithContext(ctx, "counter cache set %s failed: %v", key, err)
	}
}
