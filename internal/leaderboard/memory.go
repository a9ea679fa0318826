package leaderboard

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. Nothing survives a restart.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]float64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]float64)}
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, key string) ([]float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	times, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]float64, len(times))
	copy(out, times)
	return out, true, nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, key string, times []float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]float64, len(times))
	copy(stored, times)
	m.data[key] = stored
	return nil
}

// Update implements Updater.
func (m *MemoryStore) Update(_ context.Context, key string, fn func([]float64) []float64) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := make([]float64, len(m.data[key]))
	copy(current, m.data[key])

	next := fn(current)
	stored := make([]float64, len(next))
	copy(stored, next)
	m.data[key] = stored
	return next, nil
}

var (
	_ Store   = (*MemoryStore)(nil)
	_ Updater = (*MemoryStore)(nil)
)
