package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("profile not found")

// Repository holds one profile per session. Save replaces the stored record
// wholesale.
type Repository interface {
	Get(ctx context.Context, sessionID uuid.UUID) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, sessionID uuid.UUID) error
}
