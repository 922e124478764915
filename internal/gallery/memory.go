package gallery

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is the in-process Repository used without a database.
type MemoryRepository struct {
	mu      sync.Mutex
	entries map[uuid.UUID]Entry
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[uuid.UUID]Entry), now: time.Now}
}

func (m *MemoryRepository) Insert(_ context.Context, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = m.now()
	}
	m.entries[e.ID] = *e
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, owner string, id uuid.UUID) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.Owner != owner {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (m *MemoryRepository) List(_ context.Context, owner string, limit int) ([]Entry, error) {
	all := m.sorted(owner)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *MemoryRepository) Overflow(_ context.Context, owner string, keep int) ([]Entry, error) {
	all := m.sorted(owner)
	if len(all) <= keep {
		return []Entry{}, nil
	}
	return all[keep:], nil
}

func (m *MemoryRepository) Delete(_ context.Context, owner string, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.Owner != owner {
		return ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *MemoryRepository) sorted(owner string) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Entry{}
	for _, e := range m.entries {
		if e.Owner == owner {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
