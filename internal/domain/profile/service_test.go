package profile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/gdmcare/gdm/internal/domain/anthropometry"
	"github.com/gdmcare/gdm/internal/domain/validation"
)

func newTestService() *Service {
	return NewService(NewMemoryRepo())
}

func validForm() Form {
	return Form{
		Name:          "Ligaya",
		Age:           29,
		HeightCm:      170,
		WeightKg:      55,
		DiagnosisWeek: 26,
		Treatment:     TreatmentMetformin,
	}
}

func TestGet_DefaultsWhenUnsaved(t *testing.T) {
	svc := newTestService()
	p, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Maria" || p.Age != 32 || p.HeightCm != 160 || p.WeightKg != 62 {
		t.Errorf("unexpected defaults %+v", p)
	}
	if p.BMI != 24.2 || p.BMIStatus != anthropometry.StatusOverweight {
		t.Errorf("expected derived default BMI 24.2 Overweight, got %v %s", p.BMI, p.BMIStatus)
	}
	if p.Treatment != TreatmentDietExercise || p.DiagnosisWeek != 24 {
		t.Errorf("unexpected default treatment/diagnosis %+v", p)
	}
}

func TestInit_StoresDefaults(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	sid := uuid.New()
	if _, err := svc.Init(context.Background(), sid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, err := repo.Get(context.Background(), sid)
	if err != nil {
		t.Fatalf("expected stored profile, got %v", err)
	}
	if stored.Name != "Maria" {
		t.Errorf("expected Maria, got %s", stored.Name)
	}
}

func TestSave_RecomputesBMI(t *testing.T) {
	svc := newTestService()
	sid := uuid.New()
	p, err := svc.Save(context.Background(), sid, validForm())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.BMI != 19.0 {
		t.Errorf("expected BMI 19.0, got %v", p.BMI)
	}
	if p.BMIStatus != anthropometry.StatusNormal {
		t.Errorf("expected Normal range, got %s", p.BMIStatus)
	}

	got, err := svc.Get(context.Background(), sid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Ligaya" || got.BMI != 19.0 || got.BMIStatus != anthropometry.StatusNormal {
		t.Errorf("unexpected stored profile %+v", got)
	}
}

func TestSave_ReplacesWholesale(t *testing.T) {
	svc := newTestService()
	sid := uuid.New()
	svc.Init(context.Background(), sid)

	f := validForm()
	f.Treatment = TreatmentInsulin
	if _, err := svc.Save(context.Background(), sid, f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.Get(context.Background(), sid)
	if got.Name != "Ligaya" || got.Age != 29 || got.DiagnosisWeek != 26 || got.Treatment != TreatmentInsulin {
		t.Errorf("expected every field replaced, got %+v", got)
	}
}

func TestSave_TrimsName(t *testing.T) {
	svc := newTestService()
	f := validForm()
	f.Name = "  Ana "
	p, err := svc.Save(context.Background(), uuid.New(), f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Ana" {
		t.Errorf("expected trimmed name, got %q", p.Name)
	}
}

func TestSave_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Form)
		want   error
	}{
		{"empty name", func(f *Form) { f.Name = "   " }, validation.ErrEmptyRequiredField},
		{"name too long", func(f *Form) { f.Name = strings.Repeat("a", MaxNameLength+1) }, validation.ErrInvalidInput},
		{"zero age", func(f *Form) { f.Age = 0 }, validation.ErrInvalidInput},
		{"implausible age", func(f *Form) { f.Age = 500 }, validation.ErrInvalidInput},
		{"zero height", func(f *Form) { f.HeightCm = 0 }, validation.ErrInvalidInput},
		{"negative weight", func(f *Form) { f.WeightKg = -50 }, validation.ErrInvalidInput},
		{"negative diagnosis week", func(f *Form) { f.DiagnosisWeek = -1 }, validation.ErrInvalidInput},
		{"diagnosis week past term", func(f *Form) { f.DiagnosisWeek = 43 }, validation.ErrInvalidInput},
		{"unknown treatment", func(f *Form) { f.Treatment = "Herbal" }, validation.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			sid := uuid.New()
			svc.Init(context.Background(), sid)

			f := validForm()
			tt.mutate(&f)
			_, err := svc.Save(context.Background(), sid, f)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			got, _ := svc.Get(context.Background(), sid)
			if got.Name != "Maria" {
				t.Errorf("expected stored profile unchanged, got %+v", got)
			}
		})
	}
}

func TestSave_ZeroDiagnosisWeekAllowed(t *testing.T) {
	svc := newTestService()
	f := validForm()
	f.DiagnosisWeek = 0
	if _, err := svc.Save(context.Background(), uuid.New(), f); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSave_RequiresSession(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Save(context.Background(), uuid.Nil, validForm()); err == nil {
		t.Error("expected error for nil session id")
	}
}

func TestPreviewBMI(t *testing.T) {
	r, err := PreviewBMI(Form{HeightCm: 160, WeightKg: 62})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.BMI != 24.2 || r.Status != anthropometry.StatusOverweight {
		t.Errorf("unexpected preview %+v", r)
	}
	if _, err := PreviewBMI(Form{HeightCm: 0, WeightKg: 62}); !errors.Is(err, validation.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTreatment_Valid(t *testing.T) {
	for _, tr := range Treatments() {
		if !tr.Valid() {
			t.Errorf("expected %q to be valid", tr)
		}
	}
	if Treatment("").Valid() {
		t.Error("expected empty treatment to be invalid")
	}
}

func TestProfile_Initial(t *testing.T) {
	p := &Profile{Name: "Maria"}
	if p.Initial() != "M" {
		t.Errorf("expected M, got %q", p.Initial())
	}
	if (&Profile{}).Initial() != "" {
		t.Error("expected empty initial for empty name")
	}
}

func TestFormOf(t *testing.T) {
	svc := newTestService()
	p, _ := svc.Save(context.Background(), uuid.New(), validForm())
	if FormOf(p) != validForm() {
		t.Errorf("expected round trip of form fields, got %+v", FormOf(p))
	}
}

func TestDelete_RestoresDefaults(t *testing.T) {
	svc := newTestService()
	sid := uuid.New()
	svc.Save(context.Background(), sid, validForm())

	if err := svc.Delete(context.Background(), sid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.Get(context.Background(), sid)
	if got.Name != "Maria" {
		t.Errorf("expected defaults after delete, got %+v", got)
	}
}

func TestSave_NameLengthCountsCharacters(t *testing.T) {
	svc := newTestService()
	f := validForm()
	f.Name = strings.Repeat("é", MaxNameLength)
	if _, err := svc.Save(context.Background(), uuid.New(), f); err != nil {
		t.Errorf("expected %d two-byte characters to fit, got %v", MaxNameLength, err)
	}
}
