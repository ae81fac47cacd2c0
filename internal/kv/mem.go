package kv

import (
	"context"
	"sync"
)

// Mem keeps values for the lifetime of the process.
type Mem struct {
	mu     sync.RWMutex
	values map[string]string
	closed bool
}

func NewMem() *Mem {
	return &Mem{values: make(map[string]string)}
}

func (m *Mem) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Mem) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.values[key] = value
	return nil
}

func (m *Mem) Update(ctx context.Context, key string, fn func(old string, ok bool) (string, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	old, ok := m.values[key]
	next, err := fn(old, ok)
	if err != nil {
		return err
	}
	m.values[key] = next
	return nil
}

func (m *Mem) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *Mem) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]string)
	return nil
}

func (m *Mem) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
