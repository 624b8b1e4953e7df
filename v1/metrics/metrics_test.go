package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewCacheMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCacheMetrics("users", reg)
	m.Hits.Inc()
	m.Misses.Inc()
	m.Evictions.Inc()
	m.Expirations.Inc()
	m.Entries.Set(5)
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) != 5 {
		t.Fatalf("expected 5 metric families, got %d", len(mfs))
	}
	if v := testutil.ToFloat64(m.Entries); v != 5 {
		t.Fatalf("expected entries 5, got %v", v)
	}
}

func TestNewCacheMetricsDistinctNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCacheMetrics("a", reg)
	NewCacheMetrics("b", reg)
	if _, err := reg.Gather(); err != nil {
		t.Fatalf("gather: %v", err)
	}
}

func TestNewCacheMetricsDuplicatePanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCacheMetrics("a", reg)
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	NewCacheMetrics("a", reg)
}

func TestNewCacheMetricsNilRegisterer(t *testing.T) {
	m := NewCacheMetrics("a", nil)
	m.Hits.Inc()
	if v := testutil.ToFloat64(m.Hits); v != 1 {
		t.Fatalf("expected 1 hit, got %v", v)
	}
}

func TestNewLatencyHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewLatencyHistogram("a", reg)
	h.WithLabelValues("get").Observe(0.001)
	if n := testutil.CollectAndCount(h); n != 1 {
		t.Fatalf("expected 1 series, got %d", n)
	}
}
