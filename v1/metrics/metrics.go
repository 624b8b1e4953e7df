package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics groups the Prometheus collectors updated by a cache.
//
// A single CacheMetrics may be shared by several caches (for example the
// shards of a sharded cache); all collectors are safe for concurrent use and
// the entries gauge is maintained incrementally.
type CacheMetrics struct {
	Hits        prometheus.Counter
	Misses      prometheus.Counter
	Evictions   prometheus.Counter
	Expirations prometheus.Counter
	Entries     prometheus.Gauge
}

// NewCacheMetrics creates the cache collectors. name is used as a const label
// so multiple caches can be registered on the same registry. If reg is not
// nil the collectors are registered on it.
func NewCacheMetrics(name string, reg prometheus.Registerer) *CacheMetrics {
	labels := prometheus.Labels{"cache": name}
	m := &CacheMetrics{
		Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "lru_cache_hits_total",
			Help:        "Total number of cache hits",
			ConstLabels: labels,
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "lru_cache_misses_total",
			Help:        "Total number of cache misses",
			ConstLabels: labels,
		}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "lru_cache_evictions_total",
			Help:        "Total number of entries evicted to make room",
			ConstLabels: labels,
		}),
		Expirations: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "lru_cache_expirations_total",
			Help:        "Total number of entries removed because their TTL elapsed",
			ConstLabels: labels,
		}),
		Entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "lru_cache_entries",
			Help:        "Current number of live entries",
			ConstLabels: labels,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Hits, m.Misses, m.Evictions, m.Expirations, m.Entries)
	}
	return m
}

// NewLatencyHistogram creates a histogram tracking the latency of cache
// operations, labelled by operation name.
func NewLatencyHistogram(name string, reg prometheus.Registerer) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "lru_cache_latency_seconds",
		Help:        "Latency of cache operations",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: prometheus.Labels{"cache": name},
	}, []string{"op"})
	if reg != nil {
		reg.MustRegister(h)
	}
	return h
}

// NewRegistry creates a new Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}
