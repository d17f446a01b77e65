// Package kvstore is the storage contract every repository runs on: a
// key/value tree that only knows how to read, write, append and
// conditionally swap single keys. There is no multi-key transaction — the
// repositories above build their consistency guarantees out of
// CompareAndSwap alone.
package kvstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get for keys that do not exist.
	ErrNotFound = errors.New("kvstore: key not found")
	// ErrVersionConflict is returned by CompareAndSwap when the key's
	// current version does not match the expected one.
	ErrVersionConflict = errors.New("kvstore: version conflict")
)

// KV is one child returned by List, in key order.
type KV struct {
	Key   string
	Value []byte
}

// Store is a versioned key/value tree. Keys are slash-separated paths
// ("cajas/<id>", "productos/<id>"). Every live key has a version >= 1 that
// increments on each write; version 0 means "the key must not exist yet",
// which turns CompareAndSwap into a create-only write.
type Store interface {
	// Get returns the value and current version of key.
	Get(ctx context.Context, key string) ([]byte, uint64, error)

	// Put writes key unconditionally.
	Put(ctx context.Context, key string, value []byte) error

	// CompareAndSwap writes key only if its current version equals
	// expected (0 = key must not exist). Returns the new version.
	CompareAndSwap(ctx context.Context, key string, value []byte, expected uint64) (uint64, error)

	// Push appends a child under prefix with a store-generated,
	// lexically increasing key and returns that key.
	Push(ctx context.Context, prefix string, value []byte) (string, error)

	// List returns all children under prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]KV, error)

	// Delete removes key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
}
