package session

import (
	"context"
	"sync"
	"time"

	"github.com/kdduha/audioflow/internal/models"
)

// MemoryStore holds sessions in process. A session not updated for ttl is
// treated as gone; ttl <= 0 keeps sessions forever.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	m.sessions[s.ID] = cloneSession(s)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok || m.expired(s) {
		return nil, ErrNotFound
	}
	return cloneSession(s), nil
}

func (m *MemoryStore) Update(_ context.Context, id string, fn func(*models.Session) error) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sessions[id]
	if !ok || m.expired(stored) {
		return nil, ErrNotFound
	}

	s := cloneSession(stored)
	if err := fn(s); err != nil {
		return nil, err
	}
	m.sessions[id] = cloneSession(s)
	return s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) expired(s *models.Session) bool {
	return m.ttl > 0 && m.now().Sub(s.UpdatedAt) > m.ttl
}

// sweep drops expired sessions; the caller holds the write lock.
func (m *MemoryStore) sweep() {
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
		}
	}
}

func cloneSession(s *models.Session) *models.Session {
	c := *s
	if s.Result != nil {
		r := *s.Result
		c.Result = &r
	}
	return &c
}
