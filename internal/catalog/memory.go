package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process prefab registry. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	prefabs map[string]Prefab
}

// NewMemory creates a registry holding the given prefabs.
func NewMemory(prefabs ...Prefab) *Memory {
	m := &Memory{prefabs: make(map[string]Prefab, len(prefabs))}
	for _, p := range prefabs {
		m.Register(p)
	}
	return m
}

// Register adds p, replacing any prefab with the same name. A missing ID or
// creation time is filled in. The stored prefab is returned.
func (m *Memory) Register(p Prefab) Prefab {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.Tags = append([]string(nil), p.Tags...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefabs[p.Name] = p
	return p
}

// RegisterNames registers a bare prefab for each name. The asset key is the
// name itself.
func (m *Memory) RegisterNames(names ...string) {
	for _, n := range names {
		m.Register(Prefab{Name: n, Asset: n})
	}
}

// Resolve returns the prefab registered under name.
func (m *Memory) Resolve(ctx context.Context, name string) (Prefab, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.prefabs[name]
	if !ok {
		return Prefab{}, fmt.Errorf("%w: %q", ErrPrefabNotFound, name)
	}
	return p, nil
}

// Remove deletes the prefab registered under name and reports whether it
// existed.
func (m *Memory) Remove(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.prefabs[name]
	delete(m.prefabs, name)
	return ok
}

// All returns every prefab sorted by name.
func (m *Memory) All() []Prefab {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Prefab, 0, len(m.prefabs))
	for _, p := range m.prefabs {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Len returns the number of registered prefabs.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.prefabs)
}

// List is All for the Store interface.
func (m *Memory) List(ctx context.Context) ([]Prefab, error) {
	return m.All(), nil
}

// Save is Register for the Store interface.
func (m *Memory) Save(ctx context.Context, p Prefab) (Prefab, error) {
	if p.Name == "" {
		return Prefab{}, fmt.Errorf("%w: name is required", ErrInvalidPrefab)
	}
	return m.Register(p), nil
}

// Delete is Remove for the Store interface.
func (m *Memory) Delete(ctx context.Context, name string) (bool, error) {
	return m.Remove(name), nil
}
