package kvstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Memory is the in-memory Store driver. It backs every unit test and local
// development without Redis. A single mutex guards the tree; each key keeps
// its own version counter so CompareAndSwap can detect lost updates.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memEntry
	pushSeq uint64
}

type memEntry struct {
	value   []byte
	version uint64
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memEntry)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, 0, ErrNotFound
	}
	cp := make([]byte, len(e.value))
	copy(cp, e.value)
	return cp, e.version, nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(key, value)
	return nil
}

func (m *Memory) CompareAndSwap(_ context.Context, key string, value []byte, expected uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if expected == 0 {
		if ok {
			return 0, ErrVersionConflict
		}
	} else if !ok || e.version != expected {
		return 0, ErrVersionConflict
	}
	return m.set(key, value), nil
}

func (m *Memory) Push(_ context.Context, prefix string, value []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Zero-padded sequence keeps children lexically ordered by insertion,
	// the uuid suffix keeps keys unique across restarts.
	m.pushSeq++
	key := fmt.Sprintf("%s/%012d-%s", prefix, m.pushSeq, uuid.NewString()[:8])
	m.set(key, value)
	return key, nil
}

func (m *Memory) List(_ context.Context, prefix string) ([]KV, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := strings.TrimSuffix(prefix, "/") + "/"
	var out []KV
	for k, e := range m.entries {
		if strings.HasPrefix(k, p) {
			cp := make([]byte, len(e.value))
			copy(cp, e.value)
			out = append(out, KV{Key: k, Value: cp})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// set stores value under key and returns the bumped version. Caller holds mu.
func (m *Memory) set(key string, value []byte) uint64 {
	cp := make([]byte, len(value))
	copy(cp, value)
	next := m.entries[key].version + 1
	m.entries[key] = memEntry{value: cp, version: next}
	return next
}

var _ Store = (*Memory)(nil)
