package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/gdmcare/gdm/internal/domain/anthropometry"
	"github.com/gdmcare/gdm/internal/domain/gestation"
	"github.com/gdmcare/gdm/internal/domain/validation"
)

// Upper bounds on form fields. MaxNameLength matches the name column.
const (
	MaxNameLength = 255
	MaxAge        = 120
)

type Service struct {
	profiles Repository
	now      func() time.Time
}

func NewService(profiles Repository) *Service {
	return &Service{profiles: profiles, now: time.Now}
}

// Validate checks every field of the form. It does not touch the store.
func Validate(f Form) (Form, error) {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return f, validation.Missing("name")
	}
	if n := utf8.RuneCountInString(f.Name); n > MaxNameLength {
		return f, validation.Invalid("name must be at most %d characters, got %d", MaxNameLength, n)
	}
	if f.Age <= 0 || f.Age > MaxAge {
		return f, validation.Invalid("age must be between 1 and %d, got %d", MaxAge, f.Age)
	}
	if f.DiagnosisWeek < 0 || f.DiagnosisWeek > gestation.LateMaxWeek {
		return f, validation.Invalid("diagnosis_week must be between 0 and %d, got %d", gestation.LateMaxWeek, f.DiagnosisWeek)
	}
	if !f.Treatment.Valid() {
		return f, validation.Invalid("unknown treatment %q", f.Treatment)
	}
	if _, err := anthropometry.ComputeBMI(f.HeightCm, f.WeightKg); err != nil {
		return f, err
	}
	return f, nil
}

// PreviewBMI computes the BMI the form would save, for live display.
func PreviewBMI(f Form) (anthropometry.Result, error) {
	return anthropometry.Assess(f.HeightCm, f.WeightKg)
}

func build(sessionID uuid.UUID, f Form, at time.Time) (*Profile, error) {
	res, err := anthropometry.Assess(f.HeightCm, f.WeightKg)
	if err != nil {
		return nil, err
	}
	return &Profile{
		SessionID:     sessionID,
		Name:          f.Name,
		Age:           f.Age,
		HeightCm:      f.HeightCm,
		WeightKg:      f.WeightKg,
		BMI:           res.BMI,
		BMIStatus:     res.Status,
		DiagnosisWeek: f.DiagnosisWeek,
		Treatment:     f.Treatment,
		UpdatedAt:     at,
	}, nil
}

// Init stores the default profile for a new session.
func (s *Service) Init(ctx context.Context, sessionID uuid.UUID) (*Profile, error) {
	return s.Save(ctx, sessionID, DefaultForm())
}

// Get returns the session's profile, falling back to the defaults when
// nothing has been stored yet.
func (s *Service) Get(ctx context.Context, sessionID uuid.UUID) (*Profile, error) {
	p, err := s.profiles.Get(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return build(sessionID, DefaultForm(), s.now())
	}
	if err != nil {
		return nil, err
	}
	p.BMIStatus = anthropometry.ClassifyBMI(p.BMI)
	return p, nil
}

// Save validates the form, recomputes BMI and replaces the stored profile.
func (s *Service) Save(ctx context.Context, sessionID uuid.UUID, f Form) (*Profile, error) {
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("session_id is required")
	}
	f, err := Validate(f)
	if err != nil {
		return nil, err
	}
	p, err := build(sessionID, f, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.profiles.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete drops the stored profile. A later Get returns the defaults again.
func (s *Service) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return s.profiles.Delete(ctx, sessionID)
}
