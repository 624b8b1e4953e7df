package cache

import (
	"context"
	"fmt"
)

// LoaderFunc produces the value for a key missing from the cache.
type LoaderFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// GetOrLoad returns the cached value for key, calling load on a miss and
// storing its result. Concurrent misses for the same key share one load.
// Errors from load are returned to every waiting caller and nothing is
// cached.
//
// The shared load runs with the values of the caller that started it but not
// its cancellation, so one caller giving up does not fail the others. Each
// caller stops waiting when its own context is done.
func (c *LRU[K, V]) GetOrLoad(ctx context.Context, key K, load LoaderFunc[K, V]) (V, error) {
	var zero V
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.loads.DoChan(loadKey(key), func() (any, error) {
		// the key may have been filled while this call waited for the group
		if v, ok := c.Peek(key); ok {
			return v, nil
		}
		v, err := load(loadCtx, key)
		if err != nil {
			return nil, err
		}
		c.Put(key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(V)
		return c.cloneValue(v), nil
	}
}

// loadKey names the in-flight load for key. The dynamic type is always part
// of the name so keys of an interface type K never share a load.
func loadKey[K comparable](key K) string {
	return fmt.Sprintf("%T:%#v", key, key)
}
