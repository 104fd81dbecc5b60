package session

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Record) error
	Get(ctx context.Context, id uuid.UUID) (*Record, error)
	// Delete removes the session and, in Postgres, everything that
	// references it. It returns ErrNotFound for an unknown id.
	Delete(ctx context.Context, id uuid.UUID) error
}
