package profile

import (
	"time"

	"github.com/google/uuid"

	"github.com/gdmcare/gdm/internal/domain/anthropometry"
)

// Treatment is the patient's current GDM management plan.
type Treatment string

const (
	TreatmentDietExercise     Treatment = "Diet & Exercise"
	TreatmentMetformin        Treatment = "Metformin"
	TreatmentInsulin          Treatment = "Insulin"
	TreatmentInsulinMetformin Treatment = "Insulin + Metformin"
)

// Treatments lists the selectable treatments in display order.
func Treatments() []Treatment {
	return []Treatment{TreatmentDietExercise, TreatmentMetformin, TreatmentInsulin, TreatmentInsulinMetformin}
}

func (t Treatment) Valid() bool {
	for _, v := range Treatments() {
		if t == v {
			return true
		}
	}
	return false
}

// Profile maps to the patient_profile table. BMI is derived and only ever
// written by the service.
type Profile struct {
	SessionID     uuid.UUID            `db:"session_id" json:"-"`
	Name          string               `db:"name" json:"name"`
	Age           int                  `db:"age" json:"age"`
	HeightCm      float64              `db:"height_cm" json:"height_cm"`
	WeightKg      float64              `db:"weight_kg" json:"weight_kg"`
	BMI           float64              `db:"bmi" json:"bmi"`
	BMIStatus     anthropometry.Status `db:"-" json:"bmi_status"`
	DiagnosisWeek int                  `db:"diagnosis_week" json:"diagnosis_week"`
	Treatment     Treatment            `db:"treatment" json:"treatment"`
	UpdatedAt     time.Time            `db:"updated_at" json:"updated_at"`
}

// Form is the profile-edit form. Every field is named; the handler rejects
// anything else.
type Form struct {
	Name          string    `json:"name"`
	Age           int       `json:"age"`
	HeightCm      float64   `json:"height_cm"`
	WeightKg      float64   `json:"weight_kg"`
	DiagnosisWeek int       `json:"diagnosis_week"`
	Treatment     Treatment `json:"treatment"`
}

// Default values for a new session's profile.
var defaultForm = Form{
	Name:          "Maria",
	Age:           32,
	HeightCm:      160,
	WeightKg:      62,
	DiagnosisWeek: 24,
	Treatment:     TreatmentDietExercise,
}

// DefaultForm returns the form a new session's profile is built from.
func DefaultForm() Form { return defaultForm }

// FormOf returns the editable fields of p, used to prefill the edit dialog.
func FormOf(p *Profile) Form {
	return Form{
		Name:          p.Name,
		Age:           p.Age,
		HeightCm:      p.HeightCm,
		WeightKg:      p.WeightKg,
		DiagnosisWeek: p.DiagnosisWeek,
		Treatment:     p.Treatment,
	}
}

// Initial returns the displayed initial of the patient's name.
func (p *Profile) Initial() string {
	for _, r := range p.Name {
		return string(r)
	}
	return ""
}
