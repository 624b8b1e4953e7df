package cache

import (
	"container/list"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	lruerrors "github.com/mirkobrombin/go-lru/v1/errors"
	"github.com/mirkobrombin/go-lru/v1/metrics"
)

// LRU is a fixed-capacity cache with least-recently-used eviction and an
// optional TTL measured from the last time an entry was read or written.
//
// All methods are safe for concurrent use. A single mutex guards the map and
// the recency list, so every call observes the effects of previous calls in
// full. Create one with NewLRU or NewLRUWithTTL; the zero value is not usable.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	items    map[K]*list.Element
	order    *list.List // front = most recently used, back = least recently used
	capacity int
	ttl      time.Duration
	now      func() time.Time
	lastNow  time.Time

	hits        atomic.Uint64
	misses      atomic.Uint64
	evictions   atomic.Uint64
	expirations atomic.Uint64

	metrics *metrics.CacheMetrics
	logger  *slog.Logger
	onEvict OnEvictFunc[K, V]
	clone   func(V) V
	loads   singleflight.Group

	sweepInterval time.Duration
	stop          chan struct{}
	wg            sync.WaitGroup
	closeOnce     sync.Once
}

type entry[K comparable, V any] struct {
	key          K
	value        V
	lastAccessed time.Time
}

// NewLRU returns an LRU holding at most capacity entries. Entries never
// expire. capacity must be greater than zero.
func NewLRU[K comparable, V any](capacity int, opts ...LRUOption[K, V]) (*LRU[K, V], error) {
	return newLRU(capacity, 0, opts)
}

// NewLRUWithTTL returns an LRU whose entries are treated as absent once ttl
// has elapsed since they were last read or written. ttl must be positive.
func NewLRUWithTTL[K comparable, V any](capacity int, ttl time.Duration, opts ...LRUOption[K, V]) (*LRU[K, V], error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("%w (got %s)", lruerrors.ErrInvalidTTL, ttl)
	}
	return newLRU(capacity, ttl, opts)
}

// MustNewLRU is like NewLRU but panics on invalid configuration.
func MustNewLRU[K comparable, V any](capacity int, opts ...LRUOption[K, V]) *LRU[K, V] {
	c, err := NewLRU(capacity, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// MustNewLRUWithTTL is like NewLRUWithTTL but panics on invalid configuration.
func MustNewLRUWithTTL[K comparable, V any](capacity int, ttl time.Duration, opts ...LRUOption[K, V]) *LRU[K, V] {
	c, err := NewLRUWithTTL(capacity, ttl, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func newLRU[K comparable, V any](capacity int, ttl time.Duration, opts []LRUOption[K, V]) (*LRU[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w (got %d)", lruerrors.ErrInvalidCapacity, capacity)
	}
	c := &LRU[K, V]{
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sweepInterval > 0 && c.ttl > 0 {
		c.stop = make(chan struct{})
		c.wg.Add(1)
		go c.sweeper()
	}
	return c, nil
}

// Get returns a copy of the value stored for key and marks the entry as most
// recently used. An entry whose TTL has elapsed is deleted and reported as
// absent. Get never evicts other entries.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	var zero V
	c.mu.Lock()
	el, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		c.recordMiss()
		return zero, false
	}
	e := el.Value.(*entry[K, V])
	now := c.clockLocked()
	if c.expiredLocked(e, now) {
		c.removeElementLocked(el)
		c.expirations.Add(1)
		if c.metrics != nil {
			c.metrics.Expirations.Inc()
		}
		c.mu.Unlock()
		c.recordMiss()
		c.evicted(e, EvictExpired)
		return zero, false
	}
	e.lastAccessed = now
	c.order.MoveToFront(el)
	v := c.cloneValue(e.value)
	c.mu.Unlock()
	c.recordHit()
	return v, true
}

// Put stores value for key. Updating an existing key refreshes its recency
// and never evicts. Inserting a new key into a full cache first evicts the
// least recently used entry, so the cache never holds more than its capacity.
func (c *LRU[K, V]) Put(key K, value V) {
	value = c.cloneValue(value)

	c.mu.Lock()
	now := c.clockLocked()
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[K, V])
		e.value = value
		e.lastAccessed = now
		c.order.MoveToFront(el)
		c.mu.Unlock()
		return
	}

	var victim *entry[K, V]
	if len(c.items) >= c.capacity {
		victim = c.evictLocked()
	}
	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value, lastAccessed: now})
	if c.metrics != nil {
		c.metrics.Entries.Inc()
	}
	c.mu.Unlock()

	if victim != nil {
		c.evicted(victim, EvictCapacity)
	}
}

// Remove deletes key and returns the value it held.
func (c *LRU[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.removeElementLocked(el)
	return el.Value.(*entry[K, V]).value, true
}

// Clear deletes every entry. Capacity and TTL are unchanged.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.metrics != nil {
		c.metrics.Entries.Sub(float64(len(c.items)))
	}
	c.items = make(map[K]*list.Element, c.capacity)
	c.order.Init()
}

// Len returns the number of stored entries. Expired entries are counted until
// a Get (or the sweeper) purges them.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// IsEmpty reports whether Len is zero.
func (c *LRU[K, V]) IsEmpty() bool {
	return c.Len() == 0
}

// Capacity returns the maximum number of entries.
func (c *LRU[K, V]) Capacity() int { return c.capacity }

// TTL returns the configured time-to-live, zero when disabled.
func (c *LRU[K, V]) TTL() time.Duration { return c.ttl }

// Peek returns the value for key without touching its recency. Expired
// entries are reported as absent but left in place.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[K, V])
	if c.expiredLocked(e, c.clockLocked()) {
		return zero, false
	}
	return c.cloneValue(e.value), true
}

// Contains reports whether key holds a live entry, without touching recency.
func (c *LRU[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return false
	}
	return !c.expiredLocked(el.Value.(*entry[K, V]), c.clockLocked())
}

// Keys returns the stored keys from most to least recently used.
func (c *LRU[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]K, 0, len(c.items))
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry[K, V]).key)
	}
	return keys
}

// Stats reports basic metrics about cache usage.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
	Size        int
}

// Stats returns current counters for the cache.
func (c *LRU[K, V]) Stats() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
		Size:        c.Len(),
	}
}

// Close stops the background sweeper, if any. The cache stays usable.
func (c *LRU[K, V]) Close() {
	c.closeOnce.Do(func() {
		if c.stop != nil {
			close(c.stop)
		}
		c.wg.Wait()
	})
}

// clockLocked returns the current time, clamped so that it never goes back
// relative to a previous reading. This keeps lastAccessed monotonic and the
// recency list sorted by it.
func (c *LRU[K, V]) clockLocked() time.Time {
	now := c.now()
	if now.Before(c.lastNow) {
		return c.lastNow
	}
	c.lastNow = now
	return now
}

func (c *LRU[K, V]) expiredLocked(e *entry[K, V], now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.lastAccessed) >= c.ttl
}

// evictLocked removes the least recently used entry. Ties on lastAccessed
// are broken by list position: the entry touched earliest goes first.
func (c *LRU[K, V]) evictLocked() *entry[K, V] {
	el := c.order.Back()
	if el == nil {
		return nil
	}
	c.removeElementLocked(el)
	c.evictions.Add(1)
	if c.metrics != nil {
		c.metrics.Evictions.Inc()
	}
	return el.Value.(*entry[K, V])
}

func (c *LRU[K, V]) removeElementLocked(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry[K, V]).key)
	if c.metrics != nil {
		c.metrics.Entries.Dec()
	}
}

func (c *LRU[K, V]) evicted(e *entry[K, V], reason EvictReason) {
	c.logger.Debug("lru: entry removed", "key", e.key, "reason", reason.String())
	if c.onEvict != nil {
		c.onEvict(e.key, e.value, reason)
	}
}

func (c *LRU[K, V]) cloneValue(v V) V {
	if c.clone == nil {
		return v
	}
	return c.clone(v)
}

func (c *LRU[K, V]) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.Hits.Inc()
	}
}

func (c *LRU[K, V]) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.Misses.Inc()
	}
}
