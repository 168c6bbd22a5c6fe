package kv

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// Memory is a process-local Backend. Nothing survives a restart unless the
// same instance is reused, which is what tests rely on.
type Memory struct {
	mu     sync.RWMutex
	data   map[string][]byte
	writes int

	// FailWrites makes SetMulti return this error without applying anything.
	FailWrites error
}

var _ Backend = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (m *Memory) SetMulti(_ context.Context, entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites != nil {
		return m.FailWrites
	}
	for k, v := range entries {
		m.data[k] = slices.Clone(v)
	}
	m.writes++
	return nil
}

// Put writes a single raw payload, bypassing the store. Used to plant fixtures.
func (m *Memory) Put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = slices.Clone(value)
}

// Keys returns the written keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.data))
}

// Writes counts successful SetMulti calls.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

func (m *Memory) Close() error {
	return nil
}
