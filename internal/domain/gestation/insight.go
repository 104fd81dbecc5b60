package gestation

import "fmt"

// Tone is a presentation hint for the insight card: a color family and an
// icon name. The service never renders it.
type Tone struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// Insight is the advisory message shown for a phase.
type Insight struct {
	Phase   Phase  `json:"phase"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Tone    Tone   `json:"tone"`
	Focus   string `json:"focus"`
}

var insights = map[Phase]Insight{
	PhaseEarly: {
		Phase:   PhaseEarly,
		Title:   "Building Healthy Habits",
		Message: "Your body is responding well to walking. Small changes in your diet now will set a strong foundation for the coming weeks.",
		Tone:    Tone{Color: "emerald", Icon: "trending-up"},
		Focus:   "Consistency",
	},
	PhasePeak: {
		Phase:   PhasePeak,
		Title:   "Peak Resistance Phase",
		Message: "At this stage (28-34 weeks), insulin resistance naturally increases due to placental hormones. Your trend is being closely monitored. Fluctuations are expected.",
		Tone:    Tone{Color: "amber", Icon: "activity"},
		Focus:   "Management & Adaptation",
	},
	PhaseLate: {
		Phase:   PhaseLate,
		Title:   "Late Pregnancy Phase",
		Message: "You are in the home stretch. Previously stable foods may need closer monitoring now. We focus on keeping you steady until delivery.",
		Tone:    Tone{Color: "purple", Icon: "user"},
		Focus:   "Consistency",
	},
}

// SelectInsight returns the static insight for a phase. Unknown phases
// fall back to the Late entry, mirroring Classify's catch-all branch.
func SelectInsight(p Phase) Insight {
	if in, ok := insights[p]; ok {
		return in
	}
	return insights[PhaseLate]
}

// WalkingAdvice describes how post-meal walking is expected to act at the
// given week. reduction is the observed mg/dL drop with a walk.
func WalkingAdvice(week, reduction int) string {
	switch {
	case week < EarlyMaxWeek+1:
		return fmt.Sprintf("Walking is highly effective right now, dropping your sugar by ~%d points per session.", reduction)
	case week < PeakMaxWeek+1:
		return fmt.Sprintf("Walking continues to help, though its effect naturally changes later in pregnancy. It currently lowers levels by ~%d points.", reduction)
	default:
		return fmt.Sprintf("Walking remains a key tool for stability, helping moderate post-meal spikes by ~%d points.", reduction)
	}
}

// LogNote is the week-specific note shown inside the log-entry modal.
func LogNote(week int) string {
	return fmt.Sprintf("Week %d Note: We are currently tracking how walking affects your numbers during this phase.", week)
}

// StageNote is the clinician-facing remark for the OB summary.
func StageNote(week int) string {
	if Classify(week) == PhasePeak {
		return fmt.Sprintf("Patient is at week %d, when insulin resistance typically peaks. Higher insulin demands expected.", week)
	}
	return fmt.Sprintf("Patient is at week %d, monitoring for late-stage stability.", week)
}
