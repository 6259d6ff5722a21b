package counter

import (
	"context"
	"sync"
	"time"
)

// memoryStore is a process-local Store. It exists only as a degradation path
// for single-instance deployments without an external counter store: counts
// are lost on restart and are not shared between replicas.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// NewMemoryStore creates an in-process counter store.
func NewMemoryStore() Store {
	return &memoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (m *memoryStore) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if ok && !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		ok = false
	}
	if !ok {
		e = &memoryEntry{}
		m.entries[key] = e
	}
	e.count++
	return e.count, nil
}

func (m *memoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok {
		e.expiresAt = m.now().Add(ttl)
	}
	return nil
}

func (m *memoryStore) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || e.expiresAt.IsZero() {
		return -1, nil
	}
	return e.expiresAt.Sub(m.now()), nil
}

func (m *memoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*memoryEntry)
	return nil
}
