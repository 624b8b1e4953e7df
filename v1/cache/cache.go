package cache

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/mirkobrombin/go-lru/v1/cache")

// Cache defines the context-aware operations exposed to service code.
//
// T represents the type of values stored in the cache.
type Cache[T any] interface {
	// Get retrieves a value for the given key. The boolean return
	// indicates whether the key was found. An error is returned only if
	// the context is done.
	Get(ctx context.Context, key string) (T, bool, error)
	// Set stores the value for the given key.
	Set(ctx context.Context, key string, value T) error
	// Invalidate removes the key from the cache.
	Invalidate(ctx context.Context, key string) error
}

// InMemoryCache adapts an LRU keyed by strings to the Cache interface.
type InMemoryCache[T any] struct {
	lru          *LRU[string, T]
	latency      *prometheus.HistogramVec
	traceEnabled bool
}

// InMemoryOption configures an InMemoryCache.
type InMemoryOption[T any] func(*InMemoryCache[T])

// WithTracing enables OpenTelemetry tracing for cache operations.
func WithTracing[T any]() InMemoryOption[T] {
	return func(c *InMemoryCache[T]) {
		c.traceEnabled = true
	}
}

// WithLatency records operation latency in h, labelled by operation name.
// See metrics.NewLatencyHistogram.
func WithLatency[T any](h *prometheus.HistogramVec) InMemoryOption[T] {
	return func(c *InMemoryCache[T]) {
		c.latency = h
	}
}

// NewInMemory returns a Cache backed by lru.
func NewInMemory[T any](lru *LRU[string, T], opts ...InMemoryOption[T]) *InMemoryCache[T] {
	c := &InMemoryCache[T]{lru: lru}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LRU returns the underlying cache.
func (c *InMemoryCache[T]) LRU() *LRU[string, T] { return c.lru }

// Get implements Cache.Get.
func (c *InMemoryCache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	ctx, done := c.observe(ctx, "Get")
	var zero T
	if err := ctx.Err(); err != nil {
		done("")
		return zero, false, err
	}
	v, ok := c.lru.Get(key)
	if !ok {
		done("miss")
		return zero, false, nil
	}
	done("hit")
	return v, true, nil
}

// Set implements Cache.Set.
func (c *InMemoryCache[T]) Set(ctx context.Context, key string, value T) error {
	ctx, done := c.observe(ctx, "Set")
	defer done("")
	if err := ctx.Err(); err != nil {
		return err
	}
	c.lru.Put(key, value)
	return nil
}

// Invalidate implements Cache.Invalidate.
func (c *InMemoryCache[T]) Invalidate(ctx context.Context, key string) error {
	ctx, done := c.observe(ctx, "Invalidate")
	defer done("")
	if err := ctx.Err(); err != nil {
		return err
	}
	c.lru.Remove(key)
	return nil
}

// Close terminates any background goroutines used by the cache.
func (c *InMemoryCache[T]) Close() {
	c.lru.Close()
}

// observe starts a span and a latency measurement for op. The returned
// function ends both; result, when not empty, is attached to the span.
func (c *InMemoryCache[T]) observe(ctx context.Context, op string) (context.Context, func(result string)) {
	if !c.traceEnabled && c.latency == nil {
		return ctx, func(string) {}
	}
	start := time.Now()
	var span trace.Span
	if c.traceEnabled {
		ctx, span = tracer.Start(ctx, "Cache."+op)
	}
	return ctx, func(result string) {
		latency := time.Since(start)
		if span != nil {
			span.SetAttributes(attribute.Int64("lru.cache.latency_us", latency.Microseconds()))
			if result != "" {
				span.SetAttributes(attribute.String("lru.cache.result", result))
			}
			span.End()
		}
		if c.latency != nil {
			c.latency.WithLabelValues(op).Observe(latency.Seconds())
		}
	}
}

var _ Cache[int] = (*InMemoryCache[int])(nil)
