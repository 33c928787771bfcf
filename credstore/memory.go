package credstore

import (
	"context"
	"sync"
)

var _ Backend = (*MemoryBackend)(nil)

// MemoryBackend is a process-lifetime backend. It is the default
// session-scoped backend and doubles as the test double for the durable
// one.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBackend returns an empty in-process backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

// Get implements Backend.
func (m *MemoryBackend) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return val, nil
}

// Set implements Backend.
func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete implements Backend.
func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Len reports how many keys are populated, for tests.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
