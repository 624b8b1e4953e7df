package adapter

import (
	"context"
	stdErrors "errors"

	"github.com/mirkobrombin/go-lru/v1/cache"
)

// errMissing marks a key absent from the store so GetOrLoad does not cache it.
var errMissing = stdErrors.New("adapter: key not in store")

// Memoized serves reads from an LRU and falls back to a Store on misses.
// Concurrent misses for the same key issue a single store read.
type Memoized[T any] struct {
	store Store[T]
	lru   *cache.LRU[string, T]
}

// NewMemoized puts lru in front of store.
func NewMemoized[T any](store Store[T], lru *cache.LRU[string, T]) *Memoized[T] {
	return &Memoized[T]{store: store, lru: lru}
}

// Get implements cache.Cache.Get. Keys missing from the store are reported as
// absent and are not cached.
func (m *Memoized[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	v, err := m.lru.GetOrLoad(ctx, key, func(ctx context.Context, key string) (T, error) {
		v, ok, err := m.store.Get(ctx, key)
		if err != nil {
			return zero, err
		}
		if !ok {
			return zero, errMissing
		}
		return v, nil
	})
	if stdErrors.Is(err, errMissing) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Set implements cache.Cache.Set. The value is written to the store first;
// the cache is only updated when the write succeeds.
//
// A store that hides its own failures, such as ResilientStore, reports every
// write as successful. Over such a store the cache may hold values that were
// never persisted; they are served until evicted or invalidated.
func (m *Memoized[T]) Set(ctx context.Context, key string, value T) error {
	if err := m.store.Set(ctx, key, value); err != nil {
		return err
	}
	m.lru.Put(key, value)
	return nil
}

// SetMany writes entries to the store and then caches them. When the store
// implements Batcher the writes are committed as one batch, otherwise they
// are issued one by one and the first failure stops the loop; entries written
// before it are cached.
func (m *Memoized[T]) SetMany(ctx context.Context, entries map[string]T) error {
	b, ok := m.store.(Batcher[T])
	if !ok {
		for k, v := range entries {
			if err := m.store.Set(ctx, k, v); err != nil {
				return err
			}
			m.lru.Put(k, v)
		}
		return nil
	}

	batch, err := b.Batch(ctx)
	if err != nil {
		return err
	}
	for k, v := range entries {
		if err := batch.Set(ctx, k, v); err != nil {
			return err
		}
	}
	if err := batch.Commit(ctx); err != nil {
		return err
	}
	for k, v := range entries {
		m.lru.Put(k, v)
	}
	return nil
}

// Delete removes keys from both the store and the cache. The store must
// implement Batcher; otherwise errors.ErrUnsupported is returned and nothing
// is removed.
func (m *Memoized[T]) Delete(ctx context.Context, keys ...string) error {
	b, ok := m.store.(Batcher[T])
	if !ok {
		return stdErrors.ErrUnsupported
	}
	batch, err := b.Batch(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := batch.Delete(ctx, k); err != nil {
			return err
		}
	}
	if err := batch.Commit(ctx); err != nil {
		return err
	}
	for _, k := range keys {
		m.lru.Remove(k)
	}
	return nil
}

// Invalidate implements cache.Cache.Invalidate. Only the cached copy is
// dropped; the store is left untouched.
func (m *Memoized[T]) Invalidate(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.lru.Remove(key)
	return nil
}

// Warmup loads keys from the store until the cache is full and returns how
// many entries were loaded.
func (m *Memoized[T]) Warmup(ctx context.Context) (int, error) {
	keys, err := m.store.Keys(ctx)
	if err != nil {
		return 0, err
	}
	loaded := 0
	for _, k := range keys {
		if m.lru.Len() >= m.lru.Capacity() {
			break
		}
		v, ok, err := m.store.Get(ctx, k)
		if err != nil {
			return loaded, err
		}
		if !ok {
			continue
		}
		m.lru.Put(k, v)
		loaded++
	}
	return loaded, nil
}

var _ cache.Cache[int] = (*Memoized[int])(nil)
