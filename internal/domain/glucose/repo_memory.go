package glucose

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryRepo struct {
	mu       sync.RWMutex
	readings map[uuid.UUID][]*Reading
}

// NewMemoryRepo returns the process-local log used when no database is
// configured. Its contents vanish with the process.
func NewMemoryRepo() Repository {
	return &memoryRepo{readings: make(map[uuid.UUID][]*Reading)}
}

func (m *memoryRepo) Append(_ context.Context, r *Reading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.readings[r.SessionID] = append(m.readings[r.SessionID], &cp)
	return nil
}

func (m *memoryRepo) Clear(_ context.Context, sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.readings, sessionID)
	return nil
}

func (m *memoryRepo) List(_ context.Context, sessionID uuid.UUID) ([]*Reading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.readings[sessionID]
	out := make([]*Reading, len(src))
	for i, r := range src {
		cp := *r
		out[i] = &cp
	}
	return out, nil
}
