package gestation

// Phase is one of the three gestational-week bands used to select
// advisory content.
type Phase string

const (
	PhaseEarly Phase = "early"
	PhasePeak  Phase = "peak"
	PhaseLate  Phase = "late"
)

// Inclusive upper bounds of the Early and Peak bands.
const (
	EarlyMaxWeek = 27
	PeakMaxWeek  = 34
	LateMaxWeek  = 42
)

type phaseInfo struct {
	label       string
	description string
	minWeek     int
	maxWeek     int
	ordinal     int
}

var phaseTable = map[Phase]phaseInfo{
	PhaseEarly: {label: "Early Phase", description: "Diagnosis to ~28 weeks", minWeek: 0, maxWeek: EarlyMaxWeek, ordinal: 0},
	PhasePeak:  {label: "Peak Resistance", description: "~28 to ~34 weeks", minWeek: EarlyMaxWeek + 1, maxWeek: PeakMaxWeek, ordinal: 1},
	PhaseLate:  {label: "Late Phase", description: "35 weeks onward", minWeek: PeakMaxWeek + 1, maxWeek: LateMaxWeek, ordinal: 2},
}

// Classify maps a gestational week to its phase. Every integer resolves:
// weeks below zero are Early and weeks past 42 are Late.
func Classify(week int) Phase {
	if week <= EarlyMaxWeek {
		return PhaseEarly
	}
	if week <= PeakMaxWeek {
		return PhasePeak
	}
	return PhaseLate
}

// Phases returns the three phases in gestational order.
func Phases() []Phase {
	return []Phase{PhaseEarly, PhasePeak, PhaseLate}
}

func (p Phase) Valid() bool {
	_, ok := phaseTable[p]
	return ok
}

func (p Phase) Label() string       { return phaseTable[p].label }
func (p Phase) Description() string { return phaseTable[p].description }
func (p Phase) Ordinal() int        { return phaseTable[p].ordinal }

// Range returns the nominal inclusive week range of the phase.
func (p Phase) Range() (int, int) {
	info := phaseTable[p]
	return info.minWeek, info.maxWeek
}

// Summary is the JSON shape of a classified week.
type Summary struct {
	Week        int    `json:"week"`
	Phase       Phase  `json:"phase"`
	Label       string `json:"label"`
	Description string `json:"description"`
	RangeStart  int    `json:"range_start"`
	RangeEnd    int    `json:"range_end"`
}

func Summarize(week int) Summary {
	p := Classify(week)
	lo, hi := p.Range()
	return Summary{
		Week:        week,
		Phase:       p,
		Label:       p.Label(),
		Description: p.Description(),
		RangeStart:  lo,
		RangeEnd:    hi,
	}
}
