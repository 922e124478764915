package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nikhilbhutani/listenloved/internal/cache"
)

type State string

const (
	StateQueued  State = "queued"
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

var ErrJobNotFound = errors.New("queue: job not found")

// StatusTTL bounds how long a finished job can be polled.
const StatusTTL = 24 * time.Hour

type Status struct {
	ID        string    `json:"id"`
	Owner     string    `json:"-"`
	State     State     `json:"state"`
	EntryID   string    `json:"entryId,omitempty"`
	Warning   string    `json:"warning,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type StatusStore interface {
	Put(ctx context.Context, s *Status) error
	Get(ctx context.Context, id string) (*Status, error)
}

// RedisStatusStore keeps job status as JSON under "job:<id>".
type RedisStatusStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewRedisStatusStore(c *cache.Cache) *RedisStatusStore {
	return &RedisStatusStore{cache: c, ttl: StatusTTL}
}

// stored mirrors Status with the owner kept.
type stored struct {
	Status
	Owner string `json:"owner"`
}

func (r *RedisStatusStore) Put(ctx context.Context, s *Status) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	if err := r.cache.Set(ctx, "job:"+s.ID, stored{Status: *s, Owner: s.Owner}, r.ttl); err != nil {
		return fmt.Errorf("put job status: %w", err)
	}
	return nil
}

func (r *RedisStatusStore) Get(ctx context.Context, id string) (*Status, error) {
	var st stored
	if err := r.cache.Get(ctx, "job:"+id, &st); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("get job status: %w", err)
	}
	s := st.Status
	s.Owner = st.Owner
	return &s, nil
}

type MemoryStatusStore struct {
	mu   sync.RWMutex
	jobs map[string]Status
}

func NewMemoryStatusStore() *MemoryStatusStore {
	return &MemoryStatusStore{jobs: make(map[string]Status)}
}

func (m *MemoryStatusStore) Put(_ context.Context, s *Status) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	m.jobs[s.ID] = *s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStatusStore) Get(_ context.Context, id string) (*Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return &s, nil
}
