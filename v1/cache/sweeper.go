package cache

import "time"

// sweepBatch bounds how many expired entries are purged per lock acquisition
// so a large backlog does not stall readers.
const sweepBatch = 128

// sweeper periodically removes expired items from the cache.
func (c *LRU[K, V]) sweeper() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	c.logger.Debug("lru: sweeper started", "interval", c.sweepInterval)
	for {
		select {
		case <-ticker.C:
			if n := c.RemoveExpired(); n > 0 {
				c.logger.Debug("lru: sweeper purged expired entries", "count", n)
			}
		case <-c.stop:
			c.logger.Debug("lru: sweeper stopped")
			return
		}
	}
}

// RemoveExpired purges every entry whose TTL has elapsed and returns how many
// were removed. It is a no-op for caches without a TTL.
//
// The recency list is ordered by lastAccessed, so expired entries are always
// a suffix of it and the scan stops at the first live entry.
func (c *LRU[K, V]) RemoveExpired() int {
	if c.ttl <= 0 {
		return 0
	}
	total := 0
	for {
		expired := make([]*entry[K, V], 0, 8)
		c.mu.Lock()
		now := c.clockLocked()
		for el := c.order.Back(); el != nil && len(expired) < sweepBatch; {
			e := el.Value.(*entry[K, V])
			if !c.expiredLocked(e, now) {
				break
			}
			prev := el.Prev()
			c.removeElementLocked(el)
			expired = append(expired, e)
			el = prev
		}
		c.expirations.Add(uint64(len(expired)))
		if c.metrics != nil {
			c.metrics.Expirations.Add(float64(len(expired)))
		}
		c.mu.Unlock()

		for _, e := range expired {
			c.evicted(e, EvictExpired)
		}
		total += len(expired)
		if len(expired) < sweepBatch {
			return total
		}
	}
}
