package glucose

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gdmcare/gdm/internal/platform/db"
)

type readingRepoPG struct{ conn db.Queryable }

func NewRepoPG(conn db.Queryable) Repository {
	return &readingRepoPG{conn: conn}
}

const readingCols = `id, session_id, kind, glucose, meal, walk_minutes, week, created_at`

func (r *readingRepoPG) scanReading(row pgx.Row) (*Reading, error) {
	var rd Reading
	err := row.Scan(&rd.ID, &rd.SessionID, &rd.Kind, &rd.Glucose, &rd.Meal,
		&rd.WalkMinutes, &rd.Week, &rd.CreatedAt)
	return &rd, err
}

func (r *readingRepoPG) Append(ctx context.Context, rd *Reading) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO glucose_reading (id, session_id, kind, glucose, meal, walk_minutes, week, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rd.ID, rd.SessionID, rd.Kind, rd.Glucose, rd.Meal, rd.WalkMinutes, rd.Week, rd.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert glucose reading: %w", err)
	}
	return nil
}

func (r *readingRepoPG) Clear(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM glucose_reading WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("clear glucose readings: %w", err)
	}
	return nil
}

func (r *readingRepoPG) List(ctx context.Context, sessionID uuid.UUID) ([]*Reading, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT `+readingCols+` FROM glucose_reading WHERE session_id = $1 ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list glucose readings: %w", err)
	}
	defer rows.Close()

	var items []*Reading
	for rows.Next() {
		rd, err := r.scanReading(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rd)
	}
	return items, rows.Err()
}
