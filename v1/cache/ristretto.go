package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	lruerrors "github.com/mirkobrombin/go-lru/v1/errors"
)

// RistrettoCache implements Cache using dgraph-io/ristretto.
//
// Ristretto admits and evicts with TinyLFU rather than LRU, and its TTL is
// counted from the last Set instead of the last access. It is offered as the
// LFUStrategy backend for workloads where frequency matters more than
// recency.
type RistrettoCache[T any] struct {
	c   *ristretto.Cache
	ttl time.Duration
}

// RistrettoOption configures the underlying ristretto cache.
type RistrettoOption func(*ristretto.Config)

// WithRistretto applies a custom ristretto configuration.
//
// If cfg is nil, defaults are used.
func WithRistretto(cfg *ristretto.Config) RistrettoOption {
	return func(c *ristretto.Config) {
		if cfg == nil {
			return
		}
		*c = *cfg
	}
}

// NewRistretto returns a Cache backed by ristretto holding about capacity
// entries. A zero ttl disables expiry.
func NewRistretto[T any](capacity int, ttl time.Duration, opts ...RistrettoOption) (*RistrettoCache[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w (got %d)", lruerrors.ErrInvalidCapacity, capacity)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("%w (got %s)", lruerrors.ErrInvalidTTL, ttl)
	}
	cfg := &ristretto.Config{
		NumCounters:        int64(capacity) * 10, // ristretto recommends 10x the expected entries.
		MaxCost:            int64(capacity),      // every entry costs 1.
		BufferItems:        64,
		IgnoreInternalCost: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	rc, err := ristretto.NewCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("ristretto: %w", err)
	}
	return &RistrettoCache[T]{c: rc, ttl: ttl}, nil
}

// Get implements Cache.Get.
func (r *RistrettoCache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	v, ok := r.c.Get(key)
	if !ok {
		return zero, false, nil
	}
	val, _ := v.(T)
	return val, true, nil
}

// Set implements Cache.Set.
func (r *RistrettoCache[T]) Set(ctx context.Context, key string, value T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.c.SetWithTTL(key, value, 1, r.ttl)
	r.c.Wait()
	return nil
}

// Invalidate implements Cache.Invalidate.
func (r *RistrettoCache[T]) Invalidate(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.c.Del(key)
	r.c.Wait()
	return nil
}

// Close releases resources held by the cache.
func (r *RistrettoCache[T]) Close() {
	r.c.Close()
}

var _ Cache[int] = (*RistrettoCache[int])(nil)
