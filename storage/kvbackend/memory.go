// Package kvbackend provides key-value backends for the metadata cache.
package kvbackend

import (
	"context"
	"strings"
	"sync"

	"github.com/fwctl/fwctl/storage"
)

// Memory stores key-value pairs in memory.
//
// Entries do not survive the process, which makes Memory suitable for tests
// and for runs where a persistent cache file is not wanted.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// Put creates or updates a value.
func (m *Memory) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

// Get returns a single value.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return v, nil
}

// Delete deletes a key.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.data, key)
	return nil
}

// Scan returns all entries with keys matching the given prefix.
func (m *Memory) Scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]byte)
	for k, v := range m.data {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out, nil
}
