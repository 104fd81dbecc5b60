package session

import (
	"context"
	"fmt"

	"github.com/gdmcare/gdm/internal/domain/anthropometry"
	"github.com/gdmcare/gdm/internal/domain/gestation"
	"github.com/gdmcare/gdm/internal/domain/glucose"
	"github.com/gdmcare/gdm/internal/domain/profile"
)

// Clinical flag trigger: post-meal in-range share below this percentage.
const flagPostMealInRangeBelow = 70

const (
	historyPlaceholder = "No readings logged yet. Tap Log Reading to add your first one."
	foodFootnote       = "Previously stable foods may need closer monitoring at this stage."
	clinicalFlagText   = "Patterns suggest lifestyle measures may be reaching limits at this gestational stage. Consider review of pharmacologic support."
)

// Screen is everything a client needs to render the active view, plus the
// content of whichever modals are open.
type Screen struct {
	State        State                `json:"state"`
	Phase        gestation.Summary    `json:"phase"`
	Weeks        WeekRange            `json:"weeks"`
	Patient      *PatientScreen       `json:"patient,omitempty"`
	History      *HistoryScreen       `json:"history,omitempty"`
	OBSummary    *OBSummaryScreen     `json:"ob_summary,omitempty"`
	LogModal     *LogModalContent     `json:"log_modal,omitempty"`
	ProfileModal *ProfileModalContent `json:"profile_modal,omitempty"`
}

type PatientScreen struct {
	Profile *profile.Profile       `json:"profile"`
	Initial string                 `json:"initial"`
	Stats   glucose.Stats          `json:"stats"`
	Insight gestation.Insight      `json:"insight"`
	Walking WalkingCard            `json:"walking"`
	Foods   []glucose.FoodResponse `json:"foods"`
}

type HistoryScreen struct {
	Readings    []*glucose.Reading `json:"readings"`
	Empty       bool               `json:"empty"`
	Placeholder string             `json:"placeholder,omitempty"`
}

type OBSummaryScreen struct {
	Profile      *profile.Profile       `json:"profile"`
	Week         int                    `json:"week"`
	Control      glucose.Summary        `json:"control"`
	StageNote    string                 `json:"stage_note"`
	Foods        []glucose.FoodResponse `json:"foods"`
	FoodFootnote string                 `json:"food_footnote"`
	Walking      WalkingCard            `json:"walking"`
	ClinicalFlag *ClinicalFlag          `json:"clinical_flag,omitempty"`
}

// WalkingCard pairs the measured walking effect with week-banded advice.
// Advice is empty until readings with and without a walk both exist.
type WalkingCard struct {
	glucose.WalkingImpact
	Advice string `json:"advice,omitempty"`
}

type ClinicalFlag struct {
	Message string   `json:"message"`
	Reasons []string `json:"reasons"`
}

type LogModalContent struct {
	Note            string         `json:"note"`
	Kinds           []glucose.Kind `json:"kinds"`
	MaxWalkMinutes  int            `json:"max_walk_minutes"`
	WalkMinutesStep int            `json:"walk_minutes_step"`
}

type ProfileModalContent struct {
	Form       profile.Form          `json:"form"`
	Preview    *anthropometry.Result `json:"preview,omitempty"`
	Treatments []profile.Treatment   `json:"treatments"`
}

// Screen builds the model for the active view mode. It holds the session
// lock so the state and the derived values come from the same instant.
func (c *Controller) Screen(ctx context.Context) (*Screen, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.state
	scr := &Screen{
		State: st,
		Phase: gestation.Summarize(st.Week),
		Weeks: c.weeks,
	}

	p, err := c.profiles.Get(ctx, c.id)
	if err != nil {
		return nil, err
	}

	switch st.Mode {
	case ModeHistory:
		readings, err := c.readings.History(ctx, c.id)
		if err != nil {
			return nil, err
		}
		scr.History = historyScreen(readings)
	case ModeOBSummary:
		sum, err := c.readings.Summarize(ctx, c.id)
		if err != nil {
			return nil, err
		}
		scr.OBSummary = obSummaryScreen(p, st.Week, sum)
	default:
		sum, err := c.readings.Summarize(ctx, c.id)
		if err != nil {
			return nil, err
		}
		scr.Patient = &PatientScreen{
			Profile: p,
			Initial: p.Initial(),
			Stats:   sum.Stats,
			Insight: gestation.SelectInsight(gestation.Classify(st.Week)),
			Walking: walkingCard(st.Week, sum.Walking),
			Foods:   sum.Foods,
		}
	}

	if st.LogModalOpen {
		scr.LogModal = &LogModalContent{
			Note:            gestation.LogNote(st.Week),
			Kinds:           []glucose.Kind{glucose.KindFasting, glucose.KindPostMeal},
			MaxWalkMinutes:  glucose.MaxWalkMinutes,
			WalkMinutesStep: glucose.WalkMinutesStep,
		}
	}
	if st.ProfileModalOpen {
		scr.ProfileModal = &ProfileModalContent{
			Form:       profile.FormOf(p),
			Treatments: profile.Treatments(),
		}
		// no preview for a stored profile whose measurements no longer validate
		if res, err := anthropometry.Assess(p.HeightCm, p.WeightKg); err == nil {
			scr.ProfileModal.Preview = &res
		}
	}
	return scr, nil
}

func historyScreen(readings []*glucose.Reading) *HistoryScreen {
	h := &HistoryScreen{Readings: readings}
	if len(readings) == 0 {
		h.Readings = []*glucose.Reading{}
		h.Empty = true
		h.Placeholder = historyPlaceholder
	}
	return h
}

func obSummaryScreen(p *profile.Profile, week int, sum glucose.Summary) *OBSummaryScreen {
	return &OBSummaryScreen{
		Profile:      p,
		Week:         week,
		Control:      sum,
		StageNote:    gestation.StageNote(week),
		Foods:        sum.Foods,
		FoodFootnote: foodFootnote,
		Walking:      walkingCard(week, sum.Walking),
		ClinicalFlag: clinicalFlag(sum),
	}
}

func walkingCard(week int, w glucose.WalkingImpact) WalkingCard {
	card := WalkingCard{WalkingImpact: w}
	if w.Comparable {
		card.Advice = gestation.WalkingAdvice(week, w.Reduction)
	}
	return card
}

// clinicalFlag returns nil unless fasting values are rising or too few
// post-meal readings are in range.
func clinicalFlag(sum glucose.Summary) *ClinicalFlag {
	var reasons []string
	if sum.FastingTrend == glucose.TrendRising {
		reasons = append(reasons, "fasting glucose trend is rising")
	}
	if sum.PostMealCount > 0 && sum.PostMealInRangePct < flagPostMealInRangeBelow {
		reasons = append(reasons, fmt.Sprintf("post-meal in-range %d%% is below %d%%", sum.PostMealInRangePct, flagPostMealInRangeBelow))
	}
	if len(reasons) == 0 {
		return nil
	}
	return &ClinicalFlag{Message: clinicalFlagText, Reasons: reasons}
}
