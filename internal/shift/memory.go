package shift

import (
	"context"
	"sort"
	"sync"

	"github.com/frahmantamala/shifts-logger/internal/pagination"
)

// MemoryRepository keeps shifts in process and pages in memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	shifts map[int64]Shift
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{shifts: make(map[int64]Shift)}
}

func (m *MemoryRepository) Create(_ context.Context, s *Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	m.shifts[s.ID] = *s
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id int64) (*Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.shifts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryRepository) Update(_ context.Context, s *Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shifts[s.ID]; !ok {
		return ErrNotFound
	}
	m.shifts[s.ID] = *s
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shifts[id]; !ok {
		return ErrNotFound
	}
	delete(m.shifts, id)
	return nil
}

func (m *MemoryRepository) ListByUser(_ context.Context, userID string, page pagination.PageRequest) ([]*Shift, error) {
	return pagination.PaginateSlice(m.sorted(userID), page.PageNumber, page.PageSize).Items, nil
}

func (m *MemoryRepository) ListAll(_ context.Context, page pagination.PageRequest) ([]*Shift, error) {
	return pagination.PaginateSlice(m.sorted(""), page.PageNumber, page.PageSize).Items, nil
}

func (m *MemoryRepository) CountByUser(_ context.Context, userID string) (int64, error) {
	return int64(len(m.sorted(userID))), nil
}

func (m *MemoryRepository) CountAll(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.shifts)), nil
}

// sorted returns copies ordered by id then user id; an empty userID
// selects every shift.
func (m *MemoryRepository) sorted(userID string) []*Shift {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Shift, 0, len(m.shifts))
	for _, s := range m.shifts {
		if userID != "" && s.UserID != userID {
			continue
		}
		cp := s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}
