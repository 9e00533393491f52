package directory

import (
	"context"
	"sync"
)

// Memory is an in-process Lookup backed by a map. It is the natural fit for
// tests and for hosts that load their user base at startup.
type Memory struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemory creates a memory lookup seeded with the given users.
func NewMemory(users ...User) *Memory {
	m := &Memory{users: make(map[string]User, len(users))}
	for _, u := range users {
		m.users[u.ID] = u.Clone()
	}
	return m
}

// FindByID implements Lookup. The returned user is a copy.
func (m *Memory) FindByID(_ context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := u.Clone()
	return &out, nil
}

// Upsert stores a copy of u under its identifier.
func (m *Memory) Upsert(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u.Clone()
}

// Delete removes the user with the given identifier.
func (m *Memory) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}
