package kv

import (
	"context"
	"iter"
	"slices"
	"strings"
	"sync"
)

// Memory is an in-memory Store. It is safe for concurrent use and intended
// for tests and dry runs.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key Key) ([]byte, error) {
	k, err := encode(key)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	v, ok := m.data[string(k)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (m *Memory) Set(_ context.Context, key Key, value []byte) error {
	k, err := encode(key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[string(k)] = slices.Clone(value)
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(_ context.Context, prefix Key) iter.Seq2[Entry, error] {
	p, err := encodePrefix(prefix)
	if err != nil {
		return func(yield func(Entry, error) bool) { yield(Entry{}, err) }
	}

	// Snapshot under the read lock so callers may write while iterating.
	m.mu.RLock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, string(p)) {
			keys = append(keys, k)
		}
	}
	vals := make(map[string][]byte, len(keys))
	for _, k := range keys {
		vals[k] = slices.Clone(m.data[k])
	}
	m.mu.RUnlock()
	slices.Sort(keys)

	return func(yield func(Entry, error) bool) {
		for _, k := range keys {
			if !yield(Entry{Key: decode([]byte(k)), Value: vals[k]}, nil) {
				return
			}
		}
	}
}

func (m *Memory) BatchSet(_ context.Context, entries []Entry) error {
	encoded := make([]string, len(entries))
	for i, e := range entries {
		k, err := encode(e.Key)
		if err != nil {
			return err
		}
		encoded[i] = string(k)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range entries {
		m.data[encoded[i]] = slices.Clone(e.Value)
	}
	return nil
}

func (m *Memory) BatchDelete(_ context.Context, keys []Key) error {
	encoded := make([]string, len(keys))
	for i, key := range keys {
		k, err := encode(key)
		if err != nil {
			return err
		}
		encoded[i] = string(k)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range encoded {
		delete(m.data, k)
	}
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *Memory) Close() error {
	return nil
}
