package profile

import (
	"context"
	"sync"
)

// MemoryStore implements Store in process memory. It backs unit tests and
// local development.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*Profile),
	}
}

func (m *MemoryStore) Get(ctx context.Context, owner string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, exists := m.profiles[owner]
	if !exists {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (m *MemoryStore) Create(ctx context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.profiles[p.Owner]; exists {
		return ErrAlreadyExists
	}
	m.profiles[p.Owner] = p.Clone()
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, owner string, fn func(p *Profile) error) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.profiles[owner]
	if !exists {
		return nil, ErrNotFound
	}

	p := current.Clone()
	if err := fn(p); err != nil {
		return nil, err
	}
	m.profiles[owner] = p.Clone()
	return p, nil
}

// Clear removes all profiles (useful for test cleanup).
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = make(map[string]*Profile)
}

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)
