package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type memoryData struct {
	mu          sync.RWMutex
	values      map[string][]byte
	subscribers map[int]chan Change
	nextSub     int
}

// MemoryStore keeps documents in process memory. Handles created with
// WithOrigin share the same data and report their writes to each other's
// watchers, the same way two browser tabs share one localStorage.
type MemoryStore struct {
	data   *memoryData
	origin string
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		data: &memoryData{
			values:      make(map[string][]byte),
			subscribers: make(map[int]chan Change),
		},
		origin: uuid.NewString(),
	}
}

// WithOrigin returns a handle on the same data whose writes carry origin.
func (m *MemoryStore) WithOrigin(origin string) *MemoryStore {
	return &MemoryStore{data: m.data, origin: origin}
}

func (m *MemoryStore) Origin() string { return m.origin }

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.data.mu.RLock()
	defer m.data.mu.RUnlock()
	v, ok := m.data.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	m.data.mu.Lock()
	m.data.values[key] = append([]byte(nil), value...)
	m.data.mu.Unlock()
	m.notify(key)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.data.mu.Lock()
	_, existed := m.data.values[key]
	delete(m.data.values, key)
	m.data.mu.Unlock()
	if existed {
		m.notify(key)
	}
	return nil
}

func (m *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.data.mu.RLock()
	defer m.data.mu.RUnlock()
	keys := make([]string, 0)
	for k := range m.data.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) Close() error { return nil }

// Watch delivers changes made through any handle on the shared data.
// Slow consumers miss changes rather than block writers.
func (m *MemoryStore) Watch(ctx context.Context) (<-chan Change, error) {
	ch := make(chan Change, 64)
	m.data.mu.Lock()
	id := m.data.nextSub
	m.data.nextSub++
	m.data.subscribers[id] = ch
	m.data.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.data.mu.Lock()
		delete(m.data.subscribers, id)
		m.data.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

func (m *MemoryStore) notify(key string) {
	change := Change{Key: key, Origin: m.origin}
	m.data.mu.RLock()
	defer m.data.mu.RUnlock()
	for _, ch := range m.data.subscribers {
		select {
		case ch <- change:
		default:
		}
	}
}
