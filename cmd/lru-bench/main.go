package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mirkobrombin/go-lru/v1/cache"
	"github.com/mirkobrombin/go-lru/v1/cache/sharded"
)

var (
	concurrency = flag.Int("c", 50, "Number of concurrent clients")
	requests    = flag.Int("n", 100000, "Total number of requests")
	capacity    = flag.Int("cap", 1024, "Cache capacity")
	keySpace    = flag.Int("keys", 4096, "Number of distinct keys")
	ttl         = flag.Duration("ttl", 0, "Entry time-to-live (0 disables expiry)")
	targets     = flag.String("target", "lru,sharded,ristretto", "Comma separated caches to benchmark")
)

// target is the read-through surface each benchmarked cache exposes.
type target interface {
	get(key string) bool
	put(key, val string)
	size() int
	close()
}

type lruTarget struct{ c *cache.LRU[string, string] }

func (t lruTarget) get(k string) bool {
	_, ok := t.c.Get(k)
	return ok
}

func (t lruTarget) put(k, v string) { t.c.Put(k, v) }
func (t lruTarget) size() int       { return t.c.Len() }
func (t lruTarget) close()          { t.c.Close() }

type shardedTarget struct{ c *sharded.Cache[string, string] }

func (t shardedTarget) get(k string) bool {
	_, ok := t.c.Get(k)
	return ok
}

func (t shardedTarget) put(k, v string) { t.c.Put(k, v) }
func (t shardedTarget) size() int       { return t.c.Len() }
func (t shardedTarget) close()          { t.c.Close() }

type ristrettoTarget struct{ c *cache.RistrettoCache[string] }

func (t ristrettoTarget) get(k string) bool {
	_, ok, _ := t.c.Get(context.Background(), k)
	return ok
}

func (t ristrettoTarget) put(k, v string) { _ = t.c.Set(context.Background(), k, v) }
func (t ristrettoTarget) size() int       { return -1 }
func (t ristrettoTarget) close()          { t.c.Close() }

func newTarget(name string) (target, error) {
	switch name {
	case "lru":
		var (
			c   *cache.LRU[string, string]
			err error
		)
		if *ttl > 0 {
			c, err = cache.NewLRUWithTTL[string, string](*capacity, *ttl)
		} else {
			c, err = cache.NewLRU[string, string](*capacity)
		}
		if err != nil {
			return nil, err
		}
		return lruTarget{c}, nil
	case "sharded":
		var (
			c   *sharded.Cache[string, string]
			err error
		)
		if *ttl > 0 {
			c, err = sharded.NewWithTTL[string, string](*capacity, sharded.DefaultShardCount, *ttl)
		} else {
			c, err = sharded.New[string, string](*capacity, sharded.DefaultShardCount)
		}
		if err != nil {
			return nil, err
		}
		return shardedTarget{c}, nil
	case "ristretto":
		c, err := cache.NewRistretto[string](*capacity, *ttl)
		if err != nil {
			return nil, err
		}
		return ristrettoTarget{c}, nil
	}
	return nil, fmt.Errorf("unknown target %q", name)
}

func run(name string, t target) {
	var wg sync.WaitGroup
	var ops, hits int64

	reqsPerWorker := *requests / *concurrency
	start := time.Now()

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
			for j := 0; j < reqsPerWorker; j++ {
				key := strconv.Itoa(r.IntN(*keySpace))
				if t.get(key) {
					atomic.AddInt64(&hits, 1)
				} else {
					t.put(key, key)
				}
				atomic.AddInt64(&ops, 1)
			}
		}(uint64(i))
	}

	wg.Wait()
	elapsed := time.Since(start)

	throughput := float64(ops) / elapsed.Seconds()
	avgLatency := elapsed.Seconds() / float64(ops) * 1e9 // ns

	log.Printf("[%s] Finished in %v", name, elapsed)
	log.Printf("[%s] Throughput: %.2f req/s", name, throughput)
	log.Printf("[%s] Avg Latency: %.2f ns", name, avgLatency)
	log.Printf("[%s] Hit ratio: %.2f%%", name, float64(hits)/float64(ops)*100)
	if n := t.size(); n >= 0 {
		log.Printf("[%s] Size: %d/%d", name, n, *capacity)
	}
}

func main() {
	flag.Parse()
	if *concurrency <= 0 || *requests < *concurrency || *keySpace <= 0 {
		log.Fatalf("invalid load: -c=%d -n=%d -keys=%d", *concurrency, *requests, *keySpace)
	}

	log.Printf("Starting benchmark: %d requests, %d concurrency, capacity %d, %d keys, ttl %v",
		*requests, *concurrency, *capacity, *keySpace, *ttl)

	for _, name := range strings.Split(*targets, ",") {
		name = strings.TrimSpace(name)
		t, err := newTarget(name)
		if err != nil {
			log.Fatalf("Setup %q failed: %v", name, err)
		}
		run(name, t)
		t.close()
	}
}
