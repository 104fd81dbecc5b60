package gestation

import (
	"strings"
	"testing"
)

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		week int
		want Phase
	}{
		{-5, PhaseEarly},
		{0, PhaseEarly},
		{20, PhaseEarly},
		{27, PhaseEarly},
		{28, PhasePeak},
		{34, PhasePeak},
		{35, PhaseLate},
		{42, PhaseLate},
		{60, PhaseLate},
	}
	for _, tt := range tests {
		if got := Classify(tt.week); got != tt.want {
			t.Errorf("Classify(%d) = %s, want %s", tt.week, got, tt.want)
		}
	}
}

func TestClassify_Monotonic(t *testing.T) {
	prev := Classify(-10).Ordinal()
	for w := -9; w <= 50; w++ {
		cur := Classify(w).Ordinal()
		if cur < prev {
			t.Fatalf("phase ordinal decreased at week %d: %d -> %d", w, prev, cur)
		}
		prev = cur
	}
}

func TestPhases_ContiguousRanges(t *testing.T) {
	next := 0
	for _, p := range Phases() {
		lo, hi := p.Range()
		if lo != next {
			t.Errorf("%s starts at %d, want %d", p, lo, next)
		}
		for w := lo; w <= hi; w++ {
			if Classify(w) != p {
				t.Errorf("week %d in range of %s classified as %s", w, p, Classify(w))
			}
		}
		next = hi + 1
	}
	if next != LateMaxWeek+1 {
		t.Errorf("ranges end at %d, want %d", next-1, LateMaxWeek)
	}
}

func TestPhase_Labels(t *testing.T) {
	if PhaseEarly.Label() != "Early Phase" {
		t.Errorf("unexpected early label %q", PhaseEarly.Label())
	}
	if PhasePeak.Label() != "Peak Resistance" {
		t.Errorf("unexpected peak label %q", PhasePeak.Label())
	}
	if PhaseLate.Description() != "35 weeks onward" {
		t.Errorf("unexpected late description %q", PhaseLate.Description())
	}
	if Phase("bogus").Valid() {
		t.Error("expected bogus phase to be invalid")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(30)
	if s.Phase != PhasePeak || s.RangeStart != 28 || s.RangeEnd != 34 {
		t.Errorf("unexpected summary %+v", s)
	}
}

func TestSelectInsight(t *testing.T) {
	tests := []struct {
		phase Phase
		title string
		focus string
		color string
	}{
		{PhaseEarly, "Building Healthy Habits", "Consistency", "emerald"},
		{PhasePeak, "Peak Resistance Phase", "Management & Adaptation", "amber"},
		{PhaseLate, "Late Pregnancy Phase", "Consistency", "purple"},
	}
	for _, tt := range tests {
		in := SelectInsight(tt.phase)
		if in.Title != tt.title {
			t.Errorf("%s: title = %q, want %q", tt.phase, in.Title, tt.title)
		}
		if in.Focus != tt.focus {
			t.Errorf("%s: focus = %q, want %q", tt.phase, in.Focus, tt.focus)
		}
		if in.Tone.Color != tt.color {
			t.Errorf("%s: tone = %q, want %q", tt.phase, in.Tone.Color, tt.color)
		}
		if in.Message == "" {
			t.Errorf("%s: empty message", tt.phase)
		}
	}
}

func TestSelectInsight_Unknown(t *testing.T) {
	if got := SelectInsight(Phase("")); got.Phase != PhaseLate {
		t.Errorf("expected late fallback, got %s", got.Phase)
	}
}

func TestWalkingAdvice_Bands(t *testing.T) {
	if !strings.Contains(WalkingAdvice(24, 30), "highly effective") {
		t.Error("expected early advice at week 24")
	}
	if !strings.Contains(WalkingAdvice(28, 30), "continues to help") {
		t.Error("expected peak advice at week 28")
	}
	if !strings.Contains(WalkingAdvice(35, 30), "key tool") {
		t.Error("expected late advice at week 35")
	}
	if !strings.Contains(WalkingAdvice(24, 30), "~30 points") {
		t.Error("expected reduction in advice text")
	}
}

func TestNotes(t *testing.T) {
	if !strings.HasPrefix(LogNote(31), "Week 31 Note:") {
		t.Errorf("unexpected log note %q", LogNote(31))
	}
	if !strings.Contains(StageNote(30), "insulin resistance typically peaks") {
		t.Errorf("unexpected peak stage note %q", StageNote(30))
	}
	if !strings.Contains(StageNote(36), "late-stage stability") {
		t.Errorf("unexpected late stage note %q", StageNote(36))
	}
}
