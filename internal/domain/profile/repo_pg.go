package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gdmcare/gdm/internal/platform/db"
)

type profileRepoPG struct{ conn db.Queryable }

func NewRepoPG(conn db.Queryable) Repository {
	return &profileRepoPG{conn: conn}
}

const profileCols = `session_id, name, age, height_cm, weight_kg, bmi, diagnosis_week, treatment, updated_at`

func (r *profileRepoPG) Get(ctx context.Context, sessionID uuid.UUID) (*Profile, error) {
	var p Profile
	err := r.conn.QueryRow(ctx, `SELECT `+profileCols+` FROM patient_profile WHERE session_id = $1`, sessionID).
		Scan(&p.SessionID, &p.Name, &p.Age, &p.HeightCm, &p.WeightKg, &p.BMI,
			&p.DiagnosisWeek, &p.Treatment, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get patient profile: %w", err)
	}
	return &p, nil
}

func (r *profileRepoPG) Save(ctx context.Context, p *Profile) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO patient_profile (session_id, name, age, height_cm, weight_kg, bmi, diagnosis_week, treatment, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (session_id) DO UPDATE SET
			name=EXCLUDED.name, age=EXCLUDED.age, height_cm=EXCLUDED.height_cm,
			weight_kg=EXCLUDED.weight_kg, bmi=EXCLUDED.bmi, diagnosis_week=EXCLUDED.diagnosis_week,
			treatment=EXCLUDED.treatment, updated_at=EXCLUDED.updated_at`,
		p.SessionID, p.Name, p.Age, p.HeightCm, p.WeightKg, p.BMI, p.DiagnosisWeek, p.Treatment, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save patient profile: %w", err)
	}
	return nil
}

func (r *profileRepoPG) Delete(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := r.conn.Exec(ctx, `DELETE FROM patient_profile WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete patient profile: %w", err)
	}
	return nil
}
