package services

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/qolzam/telar/apps/feeds/internal/cache"
	"github.com/qolzam/telar/apps/feeds/internal/pkg/log"
	"github.com/qolzam/telar/apps/feeds/internal/platform/config"
)

const (
	invalidationBackoff        = 25 * time.Millisecond
	defaultInvalidationTimeout = 2 * time.Second
	// maxInvalidationWait bounds how long one mutation may spend invalidating, across all keys
	maxInvalidationWait = 5 * time.Second
)

// invalidator deletes cached counters after a mutation.
// Deletes outlive request cancellation and never fail the caller.
type invalidator struct {
	cache   cache.Cache
	timeout time.Duration
	retries int
	backoff time.Duration
	maxWait time.Duration
}

// newInvalidator clamps its settings so that a bad configuration can only shorten the wait
func newInvalidator(c cache.Cache, timeout time.Duration, retries int) *invalidator {
	if timeout <= 0 {
		timeout = defaultInvalidationTimeout
	}
	if retries < 0 {
		retries = 0
	}
	if retries > config.MaxInvalidationRetries {
		retries = config.MaxInvalidationRetries
	}

	maxWait := timeout * time.Duration(retries+1)
	if maxWait > maxInvalidationWait {
		maxWait = maxInvalidationWait
	}

	return &invalidator{
		cache:   c,
		timeout: timeout,
		retries: retries,
		backoff: invalidationBackoff,
		maxWait: maxWait,
	}
}

// invalidate deletes each key, retrying with exponential backoff; final failures are logged
func (iv *invalidator) invalidate(ctx context.Context, keys ...string) {
	if iv.cache == nil {
		return
	}

	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), iv.maxWait)
	defer cancel()

	for _, key := range keys {
		if err := iv.delete(waitCtx, key); err != nil {
			log.ErrorWithContext(ctx, "cache invalidation of %s failed after %d retries: %v", key, iv.retries, err)
		}
	}
}

func (iv *invalidator) delete(ctx context.Context, key string) error {
	backoff := retry.NewExponential(iv.backoff)
	backoff = retry.WithMaxRetries(uint64(iv.retries), backoff)
	backoff = retry.WithMaxDuration(iv.maxWait, backoff)

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, iv.timeout)
		defer cancel()

		if err := iv.cache.Delete(attemptCtx, key); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
