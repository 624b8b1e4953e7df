package adapter_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"

	"github.com/mirkobrombin/go-lru/v1/adapter"
	lruerrors "github.com/mirkobrombin/go-lru/v1/errors"
)

// newRedisStoreWithServer returns a Redis-backed store along with the
// underlying miniredis server and client for tests that need to manipulate
// the server state.
func newRedisStoreWithServer[T any](t *testing.T, opts ...adapter.RedisOption) (*adapter.RedisStore[T], context.Context, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return adapter.NewRedisStore[T](client, opts...), ctx, mr, client
}

// newRedisStore returns a Redis-backed store and context for testing.
func newRedisStore[T any](t *testing.T, opts ...adapter.RedisOption) (*adapter.RedisStore[T], context.Context) {
	t.Helper()
	s, ctx, _, _ := newRedisStoreWithServer[T](t, opts...)
	return s, ctx
}

func TestRedisStoreGetSetKeys(t *testing.T) {
	s, ctx := newRedisStore[string](t)
	if _, ok, err := s.Get(ctx, "foo"); err != nil || ok {
		t.Fatalf("Get: expected miss, got ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "foo", "bar"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok, err := s.Get(ctx, "foo"); err != nil || !ok || v != "bar" {
		t.Fatalf("Get: expected bar, got %v err %v", v, err)
	}
	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "foo" {
		t.Fatalf("Keys: expected [foo], got %v", keys)
	}
}

func TestRedisStoreComplexStruct(t *testing.T) {
	type profile struct {
		Name string
		Age  int
		Tags []string
	}
	for name, codec := range map[string]adapter.Codec{"json": adapter.JSONCodec{}, "gob": adapter.GobCodec{}} {
		t.Run(name, func(t *testing.T) {
			s, ctx := newRedisStore[profile](t, adapter.WithCodec(codec))
			expected := profile{Name: "Alice", Age: 30, Tags: []string{"go", "redis"}}
			if err := s.Set(ctx, "user:1", expected); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, ok, err := s.Get(ctx, "user:1")
			if err != nil || !ok {
				t.Fatalf("expected value, got ok=%v err=%v", ok, err)
			}
			if !reflect.DeepEqual(got, expected) {
				t.Fatalf("expected %+v, got %+v", expected, got)
			}
		})
	}
}

func TestRedisStoreByteCodec(t *testing.T) {
	s, ctx, _, client := newRedisStoreWithServer[[]byte](t, adapter.WithCodec(adapter.ByteCodec{}))
	if err := s.Set(ctx, "raw", []byte("payload")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if raw, err := client.Get(ctx, "raw").Result(); err != nil || raw != "payload" {
		t.Fatalf("expected raw bytes stored, got %q err %v", raw, err)
	}
	got, ok, err := s.Get(ctx, "raw")
	if err != nil || !ok || string(got) != "payload" {
		t.Fatalf("Get: expected payload, got %q ok=%v err=%v", got, ok, err)
	}
}

func TestRedisStoreSetMarshalError(t *testing.T) {
	s, ctx := newRedisStore[chan int](t)
	ch := make(chan int)
	if err := s.Set(ctx, "foo", ch); err == nil {
		t.Fatalf("expected marshal error")
	}
}

func TestRedisStoreGetUnmarshalError(t *testing.T) {
	s, ctx, _, client := newRedisStoreWithServer[string](t)
	if err := client.Set(ctx, "foo", "invalid", 0).Err(); err != nil {
		t.Fatalf("client.Set: %v", err)
	}
	if _, _, err := s.Get(ctx, "foo"); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}

func TestRedisStoreKeysScanError(t *testing.T) {
	s, ctx, mr, _ := newRedisStoreWithServer[string](t)
	mr.Close()
	if _, err := s.Keys(ctx); err == nil {
		t.Fatalf("expected scan error")
	}
}

func TestRedisStoreBatchCommit(t *testing.T) {
	s, ctx := newRedisStore[string](t)
	if err := s.Set(ctx, "remove", "me"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	b, err := s.Batch(ctx)
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	_ = b.Set(ctx, "foo", "bar")
	_ = b.Delete(ctx, "remove")
	if err := b.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "remove"); ok {
		t.Fatalf("Delete: key still present")
	}
	if v, ok, err := s.Get(ctx, "foo"); err != nil || !ok || v != "bar" {
		t.Fatalf("Get: expected bar, got %v ok=%v err=%v", v, ok, err)
	}
}

func TestRedisStoreBatchCommitError(t *testing.T) {
	s, ctx, mr, _ := newRedisStoreWithServer[string](t)
	b, err := s.Batch(ctx)
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	if err := b.Set(ctx, "foo", "bar"); err != nil {
		t.Fatalf("Batch Set: %v", err)
	}
	mr.Close()
	if err := b.Commit(ctx); err == nil {
		t.Fatalf("expected commit error")
	}
}

func TestRedisStoreSentinelErrors(t *testing.T) {
	t.Run("connection closed", func(t *testing.T) {
		s, ctx, _, client := newRedisStoreWithServer[string](t)
		_ = s.Set(ctx, "foo", "bar")
		_ = client.Close()
		if _, _, err := s.Get(ctx, "foo"); !errors.Is(err, lruerrors.ErrConnectionClosed) {
			t.Fatalf("expected connection closed, got %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		s, ctx := newRedisStore[string](t)
		tCtx, cancel := context.WithTimeout(ctx, time.Nanosecond)
		defer cancel()
		time.Sleep(time.Millisecond)
		if _, _, err := s.Get(tCtx, "foo"); !errors.Is(err, lruerrors.ErrTimeout) {
			t.Fatalf("expected timeout, got %v", err)
		}
	})
}
