package cache

import "time"

// Strategy defines the cache eviction policy used by cache.New.
type Strategy int

const (
	// LRUStrategy uses a least-recently-used eviction policy.
	LRUStrategy Strategy = iota
	// LFUStrategy uses a least-frequently-used eviction policy.
	LFUStrategy
)

// Option configures cache.New.
type Option func(*factoryConfig)

type factoryConfig struct {
	strategy Strategy
	ttl      time.Duration
}

// WithStrategy selects the eviction strategy to use. The default is LRUStrategy.
func WithStrategy(s Strategy) Option {
	return func(cfg *factoryConfig) {
		cfg.strategy = s
	}
}

// WithTTL sets a uniform time-to-live for every entry. Negative values are
// rejected by New.
func WithTTL(d time.Duration) Option {
	return func(cfg *factoryConfig) {
		cfg.ttl = d
	}
}

// New returns a Cache holding at most capacity entries using the selected
// strategy.
func New[T any](capacity int, opts ...Option) (Cache[T], error) {
	cfg := factoryConfig{strategy: LRUStrategy}
	for _, opt := range opts {
		opt(&cfg)
	}
	switch cfg.strategy {
	case LFUStrategy:
		rc, err := NewRistretto[T](capacity, cfg.ttl)
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		var (
			l   *LRU[string, T]
			err error
		)
		if cfg.ttl != 0 {
			l, err = NewLRUWithTTL[string, T](capacity, cfg.ttl)
		} else {
			l, err = NewLRU[string, T](capacity)
		}
		if err != nil {
			return nil, err
		}
		return NewInMemory(l), nil
	}
}
