package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ViewMode is the screen a session is looking at.
type ViewMode string

const (
	ModePatient   ViewMode = "patient"
	ModeHistory   ViewMode = "history"
	ModeOBSummary ViewMode = "ob-summary"
)

func (m ViewMode) Valid() bool {
	return m == ModePatient || m == ModeHistory || m == ModeOBSummary
}

var (
	ErrNotFound     = errors.New("session not found")
	ErrModalNotOpen = errors.New("modal is not open")
)

// WeekRange bounds the simulated pregnancy-week slider.
type WeekRange struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Default int `json:"default"`
}

func DefaultWeekRange() WeekRange {
	return WeekRange{Min: 20, Max: 40, Default: 24}
}

func (r WeekRange) Validate() error {
	if r.Min < 0 || r.Min > r.Max {
		return fmt.Errorf("week range %d..%d is empty", r.Min, r.Max)
	}
	if !r.Contains(r.Default) {
		return fmt.Errorf("default week %d outside %d..%d", r.Default, r.Min, r.Max)
	}
	return nil
}

func (r WeekRange) Contains(week int) bool {
	return week >= r.Min && week <= r.Max
}

// State is the transient view state of one session. The two modal flags
// are independent.
type State struct {
	Mode             ViewMode `json:"mode"`
	Week             int      `json:"week"`
	LogModalOpen     bool     `json:"log_modal_open"`
	ProfileModalOpen bool     `json:"profile_modal_open"`
}

func initialState(weeks WeekRange) State {
	return State{Mode: ModePatient, Week: weeks.Default}
}

// Record maps to the gdm_session table. Only the session's existence is
// stored; State never is.
type Record struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
