package adapter

import (
	"context"
	stdErrors "errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	lruerrors "github.com/mirkobrombin/go-lru/v1/errors"
)

const defaultRedisOpTimeout = 5 * time.Second

// RedisStore implements Store using a Redis backend.
type RedisStore[T any] struct {
	client  *redis.Client
	codec   Codec
	timeout time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*redisStoreOptions)

type redisStoreOptions struct {
	timeout time.Duration
	codec   Codec
}

// WithTimeout sets the operation timeout for Redis calls.
func WithTimeout(d time.Duration) RedisOption {
	return func(o *redisStoreOptions) {
		o.timeout = d
	}
}

// WithCodec sets the codec used to encode values. JSONCodec is the default.
func WithCodec(c Codec) RedisOption {
	return func(o *redisStoreOptions) {
		if c != nil {
			o.codec = c
		}
	}
}

// NewRedisStore returns a new RedisStore using the provided Redis client.
func NewRedisStore[T any](client *redis.Client, opts ...RedisOption) *RedisStore[T] {
	o := redisStoreOptions{timeout: defaultRedisOpTimeout, codec: JSONCodec{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisStore[T]{client: client, codec: o.codec, timeout: o.timeout}
}

// mapRedisErr translates context and client errors into the package sentinels.
func mapRedisErr(err error) error {
	switch {
	case err == nil:
		return nil
	case stdErrors.Is(err, context.DeadlineExceeded):
		return lruerrors.ErrTimeout
	case stdErrors.Is(err, redis.ErrClosed):
		return lruerrors.ErrConnectionClosed
	default:
		return err
	}
}

// Get implements Store.Get.
func (s *RedisStore[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, mapRedisErr(err)
	}
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	data, err := s.client.Get(cctx, key).Bytes()
	if err == redis.Nil {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, mapRedisErr(err)
	}
	var v T
	if err := s.codec.Unmarshal(data, &v); err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Set implements Store.Set.
func (s *RedisStore[T]) Set(ctx context.Context, key string, value T) error {
	if err := ctx.Err(); err != nil {
		return mapRedisErr(err)
	}
	data, err := s.codec.Marshal(value)
	if err != nil {
		return err
	}
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return mapRedisErr(s.client.Set(cctx, key, data, 0).Err())
}

// Keys implements Store.Keys using SCAN to iterate over keys.
func (s *RedisStore[T]) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, mapRedisErr(err)
	}
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	var cursor uint64
	var keys []string
	for {
		batch, next, err := s.client.Scan(cctx, cursor, "*", 100).Result()
		if err != nil {
			return nil, mapRedisErr(err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			break
		}
		cursor = next
	}
	return keys, nil
}

// Batch implements Batcher.Batch. Commit sends the queued operations in one
// MULTI/EXEC transaction; values are encoded before anything is sent.
func (s *RedisStore[T]) Batch(ctx context.Context) (Batch[T], error) {
	return &redisBatch[T]{s: s}, nil
}

type redisBatch[T any] struct {
	s   *RedisStore[T]
	ops []batchOp[T]
}

func (b *redisBatch[T]) Set(ctx context.Context, key string, value T) error {
	b.ops = append(b.ops, batchOp[T]{key: key, value: value})
	return nil
}

func (b *redisBatch[T]) Delete(ctx context.Context, key string) error {
	b.ops = append(b.ops, batchOp[T]{key: key, del: true})
	return nil
}

func (b *redisBatch[T]) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return mapRedisErr(err)
	}
	encoded := make([][]byte, len(b.ops))
	for i, op := range b.ops {
		if op.del {
			continue
		}
		data, err := b.s.codec.Marshal(op.value)
		if err != nil {
			return err
		}
		encoded[i] = data
	}

	cctx, cancel := context.WithTimeout(ctx, b.s.timeout)
	defer cancel()
	_, err := b.s.client.TxPipelined(cctx, func(pipe redis.Pipeliner) error {
		for i, op := range b.ops {
			if op.del {
				pipe.Del(cctx, op.key)
				continue
			}
			pipe.Set(cctx, op.key, encoded[i], 0)
		}
		return nil
	})
	if err != nil {
		return mapRedisErr(err)
	}
	b.ops = nil
	return nil
}
