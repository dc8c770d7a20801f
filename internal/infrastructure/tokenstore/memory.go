package tokenstore

import (
	"context"
	"sync"
)

// MemoryBackend keeps values for the lifetime of the process
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

func memoryKey(origin, key string) string { return origin + "\x00" + key }

func (m *MemoryBackend) Get(_ context.Context, origin, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[memoryKey(origin, key)]
	if !ok {
		return "", ErrNotStored
	}
	return v, nil
}

func (m *MemoryBackend) Set(_ context.Context, origin, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[memoryKey(origin, key)] = value
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, origin, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, memoryKey(origin, key))
	return nil
}
