package kvstore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetPut(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, _, err := m.Get(ctx, "productos/x")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Put(ctx, "productos/x", []byte("v1")))
	data, ver, err := m.Get(ctx, "productos/x")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), data)
	assert.Equal(t, uint64(1), ver)

	require.NoError(t, m.Put(ctx, "productos/x", []byte("v2")))
	_, ver, err = m.Get(ctx, "productos/x")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), ver)
}

func TestMemoryCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	// create-only succeeds once
	ver, err := m.CompareAndSwap(ctx, "k", []byte("a"), 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ver)

	_, err = m.CompareAndSwap(ctx, "k", []byte("b"), 0)
	assert.ErrorIs(t, err, ErrVersionConflict)

	// stale version rejected
	_, err = m.CompareAndSwap(ctx, "k", []byte("b"), 99)
	assert.ErrorIs(t, err, ErrVersionConflict)

	// correct version wins and bumps
	ver, err = m.CompareAndSwap(ctx, "k", []byte("b"), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), ver)

	data, _, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), data)
}

func TestMemoryCASExactlyOneWinner(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Put(ctx, "contended", []byte("base")))

	const n = 50
	var wg sync.WaitGroup
	wins := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := m.CompareAndSwap(ctx, "contended", []byte(fmt.Sprintf("w%d", i)), 1); err == nil {
				wins <- i
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count, "exactly one writer may swap against the same version")
}

func TestMemoryPushKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for i := 0; i < 5; i++ {
		_, err := m.Push(ctx, "movs", []byte(fmt.Sprintf("m%d", i)))
		require.NoError(t, err)
	}

	kvs, err := m.List(ctx, "movs")
	require.NoError(t, err)
	require.Len(t, kvs, 5)
	for i, kv := range kvs {
		assert.Equal(t, []byte(fmt.Sprintf("m%d", i)), kv.Value)
	}
}

func TestMemoryListIsPrefixScoped(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Put(ctx, "ventas/a", []byte("1")))
	require.NoError(t, m.Put(ctx, "ventas/b", []byte("2")))
	require.NoError(t, m.Put(ctx, "ventas_otro/c", []byte("3")))
	require.NoError(t, m.Put(ctx, "gastos/d", []byte("4")))

	kvs, err := m.List(ctx, "ventas")
	require.NoError(t, err)
	assert.Len(t, kvs, 2, "prefix must match whole path segments")
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Put(ctx, "k", []byte("v")))
	require.NoError(t, m.Delete(ctx, "k"))
	_, _, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting a missing key is not an error
	require.NoError(t, m.Delete(ctx, "missing"))
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Put(ctx, "k", []byte("abc")))
	data, _, err := m.Get(ctx, "k")
	require.NoError(t, err)
	data[0] = 'X'

	again, _, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}
