//go:build integration

package kvstore

// redis_integration_test.go
// Exercises the Redis Store driver against a real server via testcontainers.
// Run with: go test -tags integration ./internal/kvstore/... -v

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedisStore(t *testing.T) *Redis {
	t.Helper()
	ctx := context.Background()

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	require.NoError(t, rdb.Ping(ctx).Err())
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedis(rdb)
}

func TestRedisStoreCASSemantics(t *testing.T) {
	ctx := context.Background()
	s := setupRedisStore(t)

	_, _, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	ver, err := s.CompareAndSwap(ctx, "k", []byte("a"), 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ver)

	_, err = s.CompareAndSwap(ctx, "k", []byte("b"), 0)
	assert.ErrorIs(t, err, ErrVersionConflict)

	_, err = s.CompareAndSwap(ctx, "k", []byte("b"), 7)
	assert.ErrorIs(t, err, ErrVersionConflict)

	ver, err = s.CompareAndSwap(ctx, "k", []byte("b"), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), ver)

	data, ver, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), data)
	assert.Equal(t, uint64(2), ver)
}

func TestRedisStoreCASExactlyOneWinner(t *testing.T) {
	ctx := context.Background()
	s := setupRedisStore(t)

	require.NoError(t, s.Put(ctx, "contended", []byte("base")))

	const n = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.CompareAndSwap(ctx, "contended", []byte(fmt.Sprintf("w%d", i)), 1); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestRedisStorePushAndList(t *testing.T) {
	ctx := context.Background()
	s := setupRedisStore(t)

	for i := 0; i < 5; i++ {
		_, err := s.Push(ctx, "movs", []byte(fmt.Sprintf("m%d", i)))
		require.NoError(t, err)
	}

	kvs, err := s.List(ctx, "movs")
	require.NoError(t, err)
	require.Len(t, kvs, 5)
	for i, kv := range kvs {
		assert.Equal(t, []byte(fmt.Sprintf("m%d", i)), kv.Value)
	}
}

func TestRedisStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := setupRedisStore(t)

	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))
	_, _, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}
