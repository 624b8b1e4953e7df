package adapter

import (
	"context"
	"log/slog"
)

// ResilientStore wraps a Store and suppresses its errors, logging them
// instead of returning them. Failed reads become misses and failed writes are
// skipped, so a cache in front of it keeps serving while the backend is down.
type ResilientStore[T any] struct {
	inner  Store[T]
	logger *slog.Logger
}

// NewResilientStore creates a new ResilientStore wrapper. A nil logger means
// slog.Default().
func NewResilientStore[T any](inner Store[T], logger *slog.Logger) *ResilientStore[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResilientStore[T]{inner: inner, logger: logger}
}

// Get implements Store.Get.
func (r *ResilientStore[T]) Get(ctx context.Context, key string) (T, bool, error) {
	val, ok, err := r.inner.Get(ctx, key)
	if err != nil {
		r.logger.Warn("lru: store get failed (resiliency active)", "key", key, "error", err)
		var zero T
		return zero, false, nil
	}
	return val, ok, nil
}

// Set implements Store.Set. It always returns nil, so callers such as
// Memoized.Set cannot tell a skipped write from a persisted one.
func (r *ResilientStore[T]) Set(ctx context.Context, key string, value T) error {
	if err := r.inner.Set(ctx, key, value); err != nil {
		r.logger.Warn("lru: store set failed (resiliency active)", "key", key, "error", err)
	}
	return nil
}

// Keys implements Store.Keys. A failure yields no keys.
func (r *ResilientStore[T]) Keys(ctx context.Context) ([]string, error) {
	keys, err := r.inner.Keys(ctx)
	if err != nil {
		r.logger.Warn("lru: store keys failed (resiliency active)", "error", err)
		return nil, nil
	}
	return keys, nil
}

var _ Store[int] = (*ResilientStore[int])(nil)
