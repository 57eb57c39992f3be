package cache

import (
	"strings"
	"sync"
)

// backend stores encoded cache entries by key
type backend interface {
	get(key string) ([]byte, bool)
	set(key string, value []byte) error
	deletePrefix(prefix string)
	clear()
	len() int
	close() error
}

// memoryBackend keeps entries for the lifetime of the session only
type memoryBackend struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{entries: make(map[string][]byte)}
}

func (m *memoryBackend) get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

func (m *memoryBackend) set(key string, value []byte) error {
	m.mu.Lock()
	m.entries[key] = value
	m.mu.Unlock()
	return nil
}

func (m *memoryBackend) deletePrefix(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
}

func (m *memoryBackend) clear() {
	m.mu.Lock()
	m.entries = make(map[string][]byte)
	m.mu.Unlock()
}

func (m *memoryBackend) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *memoryBackend) close() error {
	m.clear()
	return nil
}
