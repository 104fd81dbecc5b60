package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gdmcare/gdm/internal/platform/db"
)

type sessionRepoPG struct{ conn db.Queryable }

func NewRepoPG(conn db.Queryable) Repository {
	return &sessionRepoPG{conn: conn}
}

func (r *sessionRepoPG) Create(ctx context.Context, rec *Record) error {
	_, err := r.conn.Exec(ctx, `INSERT INTO gdm_session (id, created_at) VALUES ($1, $2)`, rec.ID, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *sessionRepoPG) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	var rec Record
	err := r.conn.QueryRow(ctx, `SELECT id, created_at FROM gdm_session WHERE id = $1`, id).
		Scan(&rec.ID, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &rec, nil
}

func (r *sessionRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM gdm_session WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
