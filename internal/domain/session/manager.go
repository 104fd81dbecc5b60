package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gdmcare/gdm/internal/domain/glucose"
	"github.com/gdmcare/gdm/internal/domain/profile"
)

// Manager is the registry of live sessions. Controllers are created on
// Create and, with a persistent Repository, rebuilt on first use after a
// restart with a fresh view state. With an idle TTL set, sessions unused
// for longer than it are ended by Sweep.
type Manager struct {
	mu       sync.RWMutex
	live     map[uuid.UUID]*Controller
	records  Repository
	readings *glucose.Service
	profiles *profile.Service
	weeks    WeekRange
	idleTTL  time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

func NewManager(records Repository, readings *glucose.Service, profiles *profile.Service, weeks WeekRange, logger zerolog.Logger) *Manager {
	return &Manager{
		live:     make(map[uuid.UUID]*Controller),
		records:  records,
		readings: readings,
		profiles: profiles,
		weeks:    weeks,
		logger:   logger,
		now:      time.Now,
	}
}

// WithIdleTTL sets how long a session may go unused before Sweep ends it.
// Zero disables expiry.
func (m *Manager) WithIdleTTL(ttl time.Duration) *Manager {
	m.idleTTL = ttl
	return m
}

// Create starts a session with the default profile and an empty log.
func (m *Manager) Create(ctx context.Context) (*Controller, error) {
	rec := &Record{ID: uuid.New(), CreatedAt: m.now().UTC()}
	if err := m.records.Create(ctx, rec); err != nil {
		return nil, err
	}
	if _, err := m.profiles.Init(ctx, rec.ID); err != nil {
		return nil, fmt.Errorf("init profile: %w", err)
	}

	c := NewController(rec.ID, m.weeks, m.readings, m.profiles)
	c.touch(m.now())
	m.mu.Lock()
	m.live[rec.ID] = c
	m.mu.Unlock()

	m.logger.Info().Str("session_id", rec.ID.String()).Msg("session started")
	return c, nil
}

// Get returns the session's controller, rehydrating it from the repository
// when this process has not seen it yet.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Controller, error) {
	m.mu.RLock()
	c, ok := m.live[id]
	m.mu.RUnlock()
	if ok {
		c.touch(m.now())
		return c, nil
	}

	if _, err := m.records.Get(ctx, id); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.live[id]; ok {
		c.touch(m.now())
		return c, nil
	}
	c = NewController(id, m.weeks, m.readings, m.profiles)
	c.touch(m.now())
	m.live[id] = c
	m.logger.Info().Str("session_id", id.String()).Msg("session rehydrated")
	return c, nil
}

// End discards the session together with its profile and readings.
// Controllers already handed out stop accepting changes.
func (m *Manager) End(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	c, ok := m.live[id]
	delete(m.live, id)
	m.mu.Unlock()
	if ok {
		c.end()
	}

	if err := m.discard(ctx, id); err != nil {
		return err
	}
	m.logger.Info().Str("session_id", id.String()).Msg("session ended")
	return nil
}

func (m *Manager) discard(ctx context.Context, id uuid.UUID) error {
	if err := m.readings.Clear(ctx, id); err != nil {
		return fmt.Errorf("clear readings: %w", err)
	}
	if err := m.profiles.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return m.records.Delete(ctx, id)
}

// Sweep ends every live session idle for longer than the idle TTL and
// returns how many it ended.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	if m.idleTTL <= 0 {
		return 0, nil
	}
	now := m.now()

	var expired []*Controller
	m.mu.Lock()
	for id, c := range m.live {
		if c.idleSince(now) > m.idleTTL {
			expired = append(expired, c)
			delete(m.live, id)
		}
	}
	m.mu.Unlock()

	var errs []error
	for _, c := range expired {
		c.end()
		if err := m.discard(ctx, c.ID()); err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, fmt.Errorf("session %s: %w", c.ID(), err))
			continue
		}
		m.logger.Info().Str("session_id", c.ID().String()).Msg("session expired")
	}
	return len(expired), errors.Join(errs...)
}

// Run sweeps idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if m.idleTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Sweep(ctx); err != nil {
				m.logger.Error().Err(err).Msg("session sweep failed")
			}
		}
	}
}

// Live reports how many sessions this process holds in memory.
func (m *Manager) Live() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.live)
}
