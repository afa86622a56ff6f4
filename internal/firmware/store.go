package firmware

import (
	"context"
	"sort"
	"sync"
)

// Store persists firmware histories.
//
// Save replaces the full event list of one device. LoadAll must return
// events in the order they were saved.
type Store interface {
	LoadAll(ctx context.Context) ([]History, error)
	Save(ctx context.Context, h History) error
	Delete(ctx context.Context, deviceID string) error
}

// MemoryStore is an in-process Store. It is used when no database is
// configured and in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]History
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]History)}
}

// LoadAll returns copies of every stored history, sorted by device ID.
func (s *MemoryStore) LoadAll(_ context.Context) ([]History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]History, 0, len(s.data))
	for _, h := range s.data {
		out = append(out, h.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out, nil
}

// Save stores a copy of h.
func (s *MemoryStore) Save(_ context.Context, h History) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[h.DeviceID] = h.clone()
	return nil
}

// Delete removes the history for deviceID. Missing devices are not an error.
func (s *MemoryStore) Delete(_ context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, deviceID)
	return nil
}
