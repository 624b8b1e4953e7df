// Package cache provides a bounded, concurrency-safe LRU cache with an
// optional time-to-live.
//
// LRU is the core type. Every operation runs under a single mutex, capacity is
// enforced before insertion and expired entries are purged lazily when they
// are read. A background sweeper can be enabled with WithSweepInterval, in
// which case Len may shrink without an intervening Get.
//
// Cache is the context-aware, string-keyed interface used by service code.
// InMemoryCache adapts an LRU to it and adds optional tracing and latency
// metrics; RistrettoCache offers an LFU alternative. New selects between them.
package cache
