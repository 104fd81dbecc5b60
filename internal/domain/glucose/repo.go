package glucose

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the append-only reading log of each session.
type Repository interface {
	Append(ctx context.Context, r *Reading) error
	Clear(ctx context.Context, sessionID uuid.UUID) error
	// List returns readings in insertion order.
	List(ctx context.Context, sessionID uuid.UUID) ([]*Reading, error)
}
