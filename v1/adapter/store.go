// Package adapter provides the backing sources whose lookups an LRU cache
// memoizes: a Store abstraction with in-memory and Redis implementations, a
// resilient wrapper that degrades failures into misses, and Memoized, which
// puts a cache.LRU in front of any Store.
package adapter

import (
	"context"
	"sort"
	"sync"
)

// Store abstracts the primary storage a cache sits in front of.
//
// T represents the type of values stored in the adapter.
type Store[T any] interface {
	// Get retrieves the value for a key from the storage.
	// The boolean return indicates whether the key was found.
	Get(ctx context.Context, key string) (T, bool, error)
	// Set stores the value for a key into the storage.
	Set(ctx context.Context, key string, value T) error
	// Keys returns the list of keys available in the store. It is used for
	// warmup.
	Keys(ctx context.Context) ([]string, error)
}

// Batch queues writes and deletes and applies them together on Commit, in
// the order they were queued.
type Batch[T any] interface {
	Set(ctx context.Context, key string, value T) error
	Delete(ctx context.Context, key string) error
	Commit(ctx context.Context) error
}

// Batcher is implemented by stores that can apply a Batch atomically.
// Memoized uses it for SetMany and Delete.
type Batcher[T any] interface {
	Batch(ctx context.Context) (Batch[T], error)
}

// batchOp is one queued batch operation; del marks a delete.
type batchOp[T any] struct {
	key   string
	value T
	del   bool
}

// InMemoryStore is a Store backed by a map. It is meant for tests and local
// development.
type InMemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// NewInMemoryStore returns a new InMemoryStore.
func NewInMemoryStore[T any]() *InMemoryStore[T] {
	return &InMemoryStore[T]{items: make(map[string]T)}
}

// Get implements Store.Get.
func (s *InMemoryStore[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	s.mu.RLock()
	v, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return zero, false, nil
	}
	return v, true, nil
}

// Set implements Store.Set.
func (s *InMemoryStore[T]) Set(ctx context.Context, key string, value T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.items[key] = value
	s.mu.Unlock()
	return nil
}

// Keys implements Store.Keys. Keys are returned sorted.
func (s *InMemoryStore[T]) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys, nil
}

// Batch implements Batcher.Batch. Commit applies the queued operations under
// a single write lock.
func (s *InMemoryStore[T]) Batch(ctx context.Context) (Batch[T], error) {
	return &inMemoryBatch[T]{s: s}, nil
}

type inMemoryBatch[T any] struct {
	s   *InMemoryStore[T]
	ops []batchOp[T]
}

func (b *inMemoryBatch[T]) Set(ctx context.Context, key string, value T) error {
	b.ops = append(b.ops, batchOp[T]{key: key, value: value})
	return nil
}

func (b *inMemoryBatch[T]) Delete(ctx context.Context, key string) error {
	b.ops = append(b.ops, batchOp[T]{key: key, del: true})
	return nil
}

func (b *inMemoryBatch[T]) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	for _, op := range b.ops {
		if op.del {
			delete(b.s.items, op.key)
			continue
		}
		b.s.items[op.key] = op.value
	}
	b.ops = nil
	return nil
}
