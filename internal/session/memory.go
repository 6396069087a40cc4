package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process, ordered by a monotonic sequence.
type MemoryStore struct {
	mu       sync.RWMutex
	seq      int64
	sessions []*Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	s.Seq = m.seq
	cp := *s
	m.sessions = append(m.sessions, &cp)
	return nil
}

func (m *MemoryStore) FindLatestByUser(_ context.Context, userID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.latest(userID, false)
}

func (m *MemoryStore) FindActiveByUser(_ context.Context, userID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.latest(userID, true)
}

func (m *MemoryStore) Revoke(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, stored := range m.sessions {
		if stored.ID == s.ID {
			stored.MarkRevoked(m.now())
			s.Revoked = stored.Revoked
			s.RevokedAt = stored.RevokedAt
			return nil
		}
	}
	return ErrNotFound
}

// Len is the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryStore) latest(userID string, activeOnly bool) (*Session, error) {
	var found *Session
	for _, s := range m.sessions {
		if s.UserID != userID || (activeOnly && s.Revoked) {
			continue
		}
		if found == nil || s.Seq > found.Seq {
			found = s
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	cp := *found
	return &cp, nil
}
