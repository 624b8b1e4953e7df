// Package sharded splits a cache across independently locked LRU shards.
//
// Sharding trades the global LRU guarantee for less lock contention: capacity
// is divided between shards and each shard evicts its own least recently used
// entry when it is full, even if an older entry lives in another shard. Use
// cache.LRU when exact global recency matters.
package sharded

import (
	"context"
	"fmt"
	"hash/maphash"
	"time"

	"github.com/mirkobrombin/go-lru/v1/cache"
	lruerrors "github.com/mirkobrombin/go-lru/v1/errors"
)

// DefaultShardCount is the shard count used by callers that have no better
// estimate of their parallelism.
const DefaultShardCount = 16

// Cache is a set of cache.LRU shards selected by key hash.
type Cache[K comparable, V any] struct {
	shards   []*cache.LRU[K, V]
	seed     maphash.Seed
	capacity int
}

// New creates a sharded cache holding capacity entries split across shards
// shards. Each shard needs at least one slot, so the shard count is lowered to
// capacity when it is larger.
func New[K comparable, V any](capacity, shards int, opts ...cache.LRUOption[K, V]) (*Cache[K, V], error) {
	return build(capacity, shards, func(c int) (*cache.LRU[K, V], error) {
		return cache.NewLRU(c, opts...)
	})
}

// NewWithTTL is like New with a uniform TTL applied by every shard.
func NewWithTTL[K comparable, V any](capacity, shards int, ttl time.Duration, opts ...cache.LRUOption[K, V]) (*Cache[K, V], error) {
	return build(capacity, shards, func(c int) (*cache.LRU[K, V], error) {
		return cache.NewLRUWithTTL(c, ttl, opts...)
	})
}

func build[K comparable, V any](capacity, shards int, newShard func(int) (*cache.LRU[K, V], error)) (*Cache[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w (got %d)", lruerrors.ErrInvalidCapacity, capacity)
	}
	if shards <= 0 {
		return nil, fmt.Errorf("%w (got %d)", lruerrors.ErrInvalidShardCount, shards)
	}

	// every shard holds at least one entry, so never create more shards
	// than the total capacity allows
	shards = min(shards, capacity)
	perShard, remainder := capacity/shards, capacity%shards

	s := &Cache[K, V]{
		shards: make([]*cache.LRU[K, V], shards),
		seed:   maphash.MakeSeed(),
	}
	for i := range s.shards {
		n := perShard
		if i < remainder {
			n++
		}
		shard, err := newShard(n)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.shards[i] = shard
		s.capacity += n
	}
	return s, nil
}

func (s *Cache[K, V]) shard(key K) *cache.LRU[K, V] {
	return s.shards[maphash.Comparable(s.seed, key)%uint64(len(s.shards))]
}

// Get returns the value for key, touching it within its shard.
func (s *Cache[K, V]) Get(key K) (V, bool) { return s.shard(key).Get(key) }

// Put stores value for key. A full shard evicts its own least recently used
// entry.
func (s *Cache[K, V]) Put(key K, value V) { s.shard(key).Put(key, value) }

// Remove deletes key and returns the value it held.
func (s *Cache[K, V]) Remove(key K) (V, bool) { return s.shard(key).Remove(key) }

// Peek returns the value for key without touching its recency.
func (s *Cache[K, V]) Peek(key K) (V, bool) { return s.shard(key).Peek(key) }

// Contains reports whether key holds a live entry.
func (s *Cache[K, V]) Contains(key K) bool { return s.shard(key).Contains(key) }

// GetOrLoad is cache.LRU.GetOrLoad on the shard owning key.
func (s *Cache[K, V]) GetOrLoad(ctx context.Context, key K, load cache.LoaderFunc[K, V]) (V, error) {
	return s.shard(key).GetOrLoad(ctx, key, load)
}

// Clear empties every shard. Shards are cleared one after another, so a
// concurrent Put may survive.
func (s *Cache[K, V]) Clear() {
	for _, sh := range s.shards {
		sh.Clear()
	}
}

// Len returns the total number of entries across shards.
func (s *Cache[K, V]) Len() int {
	n := 0
	for _, sh := range s.shards {
		n += sh.Len()
	}
	return n
}

// IsEmpty reports whether every shard is empty.
func (s *Cache[K, V]) IsEmpty() bool {
	for _, sh := range s.shards {
		if !sh.IsEmpty() {
			return false
		}
	}
	return true
}

// Capacity returns the sum of shard capacities.
func (s *Cache[K, V]) Capacity() int { return s.capacity }

// Shards returns the number of shards.
func (s *Cache[K, V]) Shards() int { return len(s.shards) }

// RemoveExpired purges expired entries from every shard.
func (s *Cache[K, V]) RemoveExpired() int {
	n := 0
	for _, sh := range s.shards {
		n += sh.RemoveExpired()
	}
	return n
}

// Stats aggregates the counters of all shards.
func (s *Cache[K, V]) Stats() cache.Stats {
	var total cache.Stats
	for _, sh := range s.shards {
		st := sh.Stats()
		total.Hits += st.Hits
		total.Misses += st.Misses
		total.Evictions += st.Evictions
		total.Expirations += st.Expirations
		total.Size += st.Size
	}
	return total
}

// Close stops every shard's sweeper.
func (s *Cache[K, V]) Close() {
	for _, sh := range s.shards {
		if sh != nil {
			sh.Close()
		}
	}
}
