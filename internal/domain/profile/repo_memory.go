package profile

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryRepo struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]Profile
}

func NewMemoryRepo() Repository {
	return &memoryRepo{profiles: make(map[uuid.UUID]Profile)}
}

func (m *memoryRepo) Get(_ context.Context, sessionID uuid.UUID) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *memoryRepo) Save(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.SessionID] = *p
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, sessionID)
	return nil
}
