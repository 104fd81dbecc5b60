package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gdmcare/gdm/internal/domain/glucose"
	"github.com/gdmcare/gdm/internal/domain/profile"
	"github.com/gdmcare/gdm/internal/domain/validation"
)

// Controller owns one session's view state and routes user actions to the
// glucose log and the profile store. Every action holds the session lock
// for its whole duration, so actions on one session never interleave.
// Once the session is ended every mutating action fails with ErrNotFound.
type Controller struct {
	mu       sync.Mutex
	id       uuid.UUID
	weeks    WeekRange
	state    State
	ended    bool
	lastSeen atomic.Int64
	readings *glucose.Service
	profiles *profile.Service
}

func NewController(id uuid.UUID, weeks WeekRange, readings *glucose.Service, profiles *profile.Service) *Controller {
	return &Controller{
		id:       id,
		weeks:    weeks,
		state:    initialState(weeks),
		readings: readings,
		profiles: profiles,
	}
}

func (c *Controller) ID() uuid.UUID { return c.id }

func (c *Controller) touch(at time.Time) { c.lastSeen.Store(at.UnixNano()) }

func (c *Controller) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, c.lastSeen.Load()))
}

// end marks the controller dead. It waits for any action in flight.
func (c *Controller) end() {
	c.mu.Lock()
	c.ended = true
	c.mu.Unlock()
}

func (c *Controller) errEnded() error {
	return fmt.Errorf("session %s: %w", c.id, ErrNotFound)
}

func (c *Controller) Weeks() WeekRange { return c.weeks }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SelectView switches the active screen. Open modals stay open.
func (c *Controller) SelectView(mode ViewMode) (State, error) {
	if !mode.Valid() {
		return State{}, validation.Invalid("unknown view mode %q", mode)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended {
		return State{}, c.errEnded()
	}
	c.state.Mode = mode
	return c.state, nil
}

// SetWeek moves the slider. Weeks outside the configured range are
// rejected and leave the state unchanged.
func (c *Controller) SetWeek(week int) (State, error) {
	if !c.weeks.Contains(week) {
		return State{}, validation.Invalid("week must be between %d and %d, got %d", c.weeks.Min, c.weeks.Max, week)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended {
		return State{}, c.errEnded()
	}
	c.state.Week = week
	return c.state, nil
}

func (c *Controller) OpenLogModal() State {
	return c.setLogModal(true)
}

func (c *Controller) CancelLogModal() State {
	return c.setLogModal(false)
}

func (c *Controller) OpenProfileModal() State {
	return c.setProfileModal(true)
}

func (c *Controller) CancelProfileModal() State {
	return c.setProfileModal(false)
}

func (c *Controller) setLogModal(open bool) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.LogModalOpen = open
	return c.state
}

func (c *Controller) setProfileModal(open bool) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.ProfileModalOpen = open
	return c.state
}

// SubmitLog appends a reading stamped with the current week and closes the
// log modal. A rejected entry stores nothing and leaves the modal open.
func (c *Controller) SubmitLog(ctx context.Context, e glucose.Entry) (*glucose.Reading, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended {
		return nil, c.errEnded()
	}
	if !c.state.LogModalOpen {
		return nil, fmt.Errorf("log: %w", ErrModalNotOpen)
	}
	r, err := c.readings.Append(ctx, c.id, c.state.Week, e)
	if err != nil {
		return nil, err
	}
	c.state.LogModalOpen = false
	return r, nil
}

// SubmitProfile saves the form and closes the profile modal. On failure the
// stored profile is unchanged and the modal stays open.
func (c *Controller) SubmitProfile(ctx context.Context, f profile.Form) (*profile.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended {
		return nil, c.errEnded()
	}
	if !c.state.ProfileModalOpen {
		return nil, fmt.Errorf("profile: %w", ErrModalNotOpen)
	}
	p, err := c.profiles.Save(ctx, c.id, f)
	if err != nil {
		return nil, err
	}
	c.state.ProfileModalOpen = false
	return p, nil
}

// ClearHistory empties the glucose log. There is no confirmation step.
func (c *Controller) ClearHistory(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended {
		return c.errEnded()
	}
	return c.readings.Clear(ctx, c.id)
}

func (c *Controller) Profile(ctx context.Context) (*profile.Profile, error) {
	return c.profiles.Get(ctx, c.id)
}

func (c *Controller) History(ctx context.Context) ([]*glucose.Reading, error) {
	return c.readings.History(ctx, c.id)
}

func (c *Controller) Summary(ctx context.Context) (glucose.Summary, error) {
	return c.readings.Summarize(ctx, c.id)
}
