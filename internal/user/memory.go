package user

import (
	"context"
	"sync"
)

// MemoryRepository is an in-process Repository keyed by id. Email
// uniqueness is enforced on Create.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: map[string]*User{}}
}

func (m *MemoryRepository) Create(_ context.Context, u *User, roles []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	cp := *u
	cp.Roles = append([]string(nil), roles...)
	m.users[u.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(u), nil
}

func clone(u *User) *User {
	cp := *u
	cp.Roles = append([]string(nil), u.Roles...)
	return &cp
}
