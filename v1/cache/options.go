package cache

import (
	"log/slog"
	"time"

	"github.com/mirkobrombin/go-lru/v1/metrics"
)

// EvictReason tells an OnEvict callback why an entry left the cache.
type EvictReason int

const (
	// EvictCapacity means the entry was the least recently used one when a
	// new key had to be inserted into a full cache.
	EvictCapacity EvictReason = iota
	// EvictExpired means the entry was found past its TTL.
	EvictExpired
)

func (r EvictReason) String() string {
	switch r {
	case EvictCapacity:
		return "capacity"
	case EvictExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// OnEvictFunc is called after an entry has been evicted or expired. It runs
// outside the cache lock, so it may call back into the cache.
type OnEvictFunc[K comparable, V any] func(key K, value V, reason EvictReason)

// LRUOption configures an LRU.
type LRUOption[K comparable, V any] func(*LRU[K, V])

// WithMetrics updates the provided Prometheus collectors on every operation.
// The same collectors may be shared between several caches.
func WithMetrics[K comparable, V any](m *metrics.CacheMetrics) LRUOption[K, V] {
	return func(c *LRU[K, V]) {
		c.metrics = m
	}
}

// WithLogger sets the logger used for eviction and sweeper events.
// Defaults to slog.Default().
func WithLogger[K comparable, V any](l *slog.Logger) LRUOption[K, V] {
	return func(c *LRU[K, V]) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOnEvict registers a callback for capacity evictions and TTL expirations.
// Explicit Remove and Clear calls do not trigger it.
func WithOnEvict[K comparable, V any](fn OnEvictFunc[K, V]) LRUOption[K, V] {
	return func(c *LRU[K, V]) {
		c.onEvict = fn
	}
}

// WithCloneFunc sets a deep copy function applied to values when they are
// stored and when they are handed back to callers. Without it values are
// copied by assignment, which is enough for value types.
func WithCloneFunc[K comparable, V any](fn func(V) V) LRUOption[K, V] {
	return func(c *LRU[K, V]) {
		c.clone = fn
	}
}

// WithClock replaces time.Now as the source of access timestamps.
func WithClock[K comparable, V any](now func() time.Time) LRUOption[K, V] {
	return func(c *LRU[K, V]) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSweepInterval starts a background goroutine that purges expired entries
// every d. It has no effect on caches without a TTL. A zero or negative
// duration disables the sweeper, which is the default.
func WithSweepInterval[K comparable, V any](d time.Duration) LRUOption[K, V] {
	return func(c *LRU[K, V]) {
		c.sweepInterval = d
	}
}
