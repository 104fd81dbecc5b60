package glucose

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gdmcare/gdm/internal/domain/validation"
)

// Glycemic targets used for in-range percentages and food advice (mg/dL).
const (
	FastingTarget   = 95
	PostMealTarget  = 140
	FoodStableBelow = 120
)

// Trend detection needs this many fasting readings and this much rise
// between the older and newer halves of the log.
const (
	trendMinReadings = 4
	trendRiseMgDL    = 5.0
)

type Service struct {
	readings Repository
	now      func() time.Time
	loc      *time.Location
}

func NewService(readings Repository) *Service {
	return &Service{readings: readings, now: time.Now, loc: time.Local}
}

// WithClock replaces the time source and the zone that defines a calendar
// day.
func (s *Service) WithClock(now func() time.Time, loc *time.Location) *Service {
	s.now = now
	if loc != nil {
		s.loc = loc
	}
	return s
}

// Validate checks a log-entry form and returns the normalized reading
// fields. Fasting entries have their meal and walk fields reset.
func Validate(e Entry) (Entry, error) {
	if e.Kind == "" {
		e.Kind = KindFasting
	}
	if !e.Kind.Valid() {
		return e, validation.Invalid("unknown reading kind %q", e.Kind)
	}
	if e.Glucose == nil {
		return e, validation.Missing("glucose")
	}
	if *e.Glucose <= 0 {
		return e, validation.Invalid("glucose must be a positive mg/dL value, got %d", *e.Glucose)
	}
	if *e.Glucose > MaxGlucose {
		return e, validation.Invalid("glucose must not exceed %d mg/dL, got %d", MaxGlucose, *e.Glucose)
	}
	if e.Kind == KindFasting {
		e.Meal = FastingMeal
		e.WalkMinutes = 0
		return e, nil
	}
	e.Meal = strings.TrimSpace(e.Meal)
	if e.WalkMinutes < 0 || e.WalkMinutes > MaxWalkMinutes {
		return e, validation.Invalid("walk_minutes must be between 0 and %d", MaxWalkMinutes)
	}
	if e.WalkMinutes%WalkMinutesStep != 0 {
		return e, validation.Invalid("walk_minutes must be a multiple of %d", WalkMinutesStep)
	}
	return e, nil
}

// Append validates the entry, stamps id and creation time, and appends it
// to the session's log. week is the slider value at the time of logging.
func (s *Service) Append(ctx context.Context, sessionID uuid.UUID, week int, e Entry) (*Reading, error) {
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("session_id is required")
	}
	e, err := Validate(e)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate reading id: %w", err)
	}
	r := &Reading{
		ID:          id,
		SessionID:   sessionID,
		Kind:        e.Kind,
		Glucose:     *e.Glucose,
		Meal:        e.Meal,
		WalkMinutes: e.WalkMinutes,
		Week:        week,
		CreatedAt:   s.now(),
	}
	if err := s.readings.Append(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Clear(ctx context.Context, sessionID uuid.UUID) error {
	return s.readings.Clear(ctx, sessionID)
}

// History returns the whole log, most recent first.
func (s *Service) History(ctx context.Context, sessionID uuid.UUID) ([]*Reading, error) {
	items, err := s.readings.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]*Reading, len(items))
	for i, r := range items {
		out[len(items)-1-i] = r
	}
	return out, nil
}

// AverageFasting is the mean of all fasting readings, or 0 when there are
// none. Zero is the empty-state value, not a sentinel.
func (s *Service) AverageFasting(ctx context.Context, sessionID uuid.UUID) (float64, error) {
	items, err := s.readings.List(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return averageOf(items, isFasting), nil
}

// CountToday counts readings created on the current local calendar day.
// It is evaluated against the clock on every call.
func (s *Service) CountToday(ctx context.Context, sessionID uuid.UUID) (int, error) {
	items, err := s.readings.List(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return s.countOnDay(items, s.now()), nil
}

func (s *Service) Stats(ctx context.Context, sessionID uuid.UUID) (Stats, error) {
	items, err := s.readings.List(ctx, sessionID)
	if err != nil {
		return Stats{}, err
	}
	return s.stats(items), nil
}

func (s *Service) Summarize(ctx context.Context, sessionID uuid.UUID) (Summary, error) {
	items, err := s.readings.List(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}

	var fasting, postMeal []*Reading
	for _, r := range items {
		if r.Kind == KindFasting {
			fasting = append(fasting, r)
		} else {
			postMeal = append(postMeal, r)
		}
	}

	return Summary{
		Stats:              s.stats(items),
		FastingCount:       len(fasting),
		PostMealCount:      len(postMeal),
		AveragePostMeal:    averageOf(postMeal, nil),
		FastingInRangePct:  inRangePct(fasting, FastingTarget),
		PostMealInRangePct: inRangePct(postMeal, PostMealTarget),
		FastingTrend:       fastingTrend(fasting),
		Walking:            walkingImpact(postMeal),
		Foods:              foodResponses(postMeal),
	}, nil
}

func (s *Service) stats(items []*Reading) Stats {
	return Stats{
		Total:          len(items),
		AverageFasting: averageOf(items, isFasting),
		CountToday:     s.countOnDay(items, s.now()),
	}
}

func (s *Service) countOnDay(items []*Reading, day time.Time) int {
	y, m, d := day.In(s.loc).Date()
	n := 0
	for _, r := range items {
		ry, rm, rd := r.CreatedAt.In(s.loc).Date()
		if ry == y && rm == m && rd == d {
			n++
		}
	}
	return n
}

func isFasting(r *Reading) bool { return r.Kind == KindFasting }

func averageOf(items []*Reading, keep func(*Reading) bool) float64 {
	sum, n := 0, 0
	for _, r := range items {
		if keep != nil && !keep(r) {
			continue
		}
		sum += r.Glucose
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func inRangePct(items []*Reading, target int) int {
	if len(items) == 0 {
		return 0
	}
	in := 0
	for _, r := range items {
		if r.Glucose < target {
			in++
		}
	}
	return int(math.Round(float64(in) * 100 / float64(len(items))))
}

// fastingTrend compares the older and newer halves of the fasting log.
func fastingTrend(fasting []*Reading) Trend {
	if len(fasting) < trendMinReadings {
		return TrendInsufficient
	}
	half := len(fasting) / 2
	older := averageOf(fasting[:half], nil)
	newer := averageOf(fasting[half:], nil)
	if newer-older >= trendRiseMgDL {
		return TrendRising
	}
	return TrendStable
}

func walkingImpact(postMeal []*Reading) WalkingImpact {
	var w WalkingImpact
	var with, without []*Reading
	minutes := 0
	for _, r := range postMeal {
		if r.WalkMinutes > 0 {
			with = append(with, r)
			minutes += r.WalkMinutes
		} else {
			without = append(without, r)
		}
	}
	w.WithWalkCount = len(with)
	w.WithoutCount = len(without)
	w.WithWalk = averageOf(with, nil)
	w.WithoutWalk = averageOf(without, nil)
	if len(with) > 0 {
		w.AverageDuration = float64(minutes) / float64(len(with))
	}
	if len(with) > 0 && len(without) > 0 {
		w.Comparable = true
		w.Reduction = int(math.Round(w.WithoutWalk - w.WithWalk))
	}
	return w
}

func foodResponses(postMeal []*Reading) []FoodResponse {
	type acc struct {
		name  string
		sum   int
		count int
	}
	byKey := make(map[string]*acc)
	var order []string
	for _, r := range postMeal {
		key := strings.ToLower(strings.TrimSpace(r.Meal))
		if key == "" {
			continue
		}
		a, ok := byKey[key]
		if !ok {
			a = &acc{name: strings.TrimSpace(r.Meal)}
			byKey[key] = a
			order = append(order, key)
		}
		a.sum += r.Glucose
		a.count++
	}

	foods := make([]FoodResponse, 0, len(order))
	for _, key := range order {
		a := byKey[key]
		avg := int(math.Round(float64(a.sum) / float64(a.count)))
		foods = append(foods, FoodResponse{
			Name:           a.name,
			Count:          a.count,
			AverageGlucose: avg,
			Status:         foodStatus(avg),
			Impact:         foodImpact(avg),
		})
	}
	sort.SliceStable(foods, func(i, j int) bool {
		if foods[i].Count != foods[j].Count {
			return foods[i].Count > foods[j].Count
		}
		return foods[i].Name < foods[j].Name
	})
	return foods
}

func foodStatus(avg int) FoodStatus {
	switch {
	case avg < FoodStableBelow:
		return FoodStable
	case avg < PostMealTarget:
		return FoodMonitor
	default:
		return FoodAvoid
	}
}

func foodImpact(avg int) string {
	switch {
	case avg < FoodStableBelow:
		return "Low"
	case avg < PostMealTarget:
		return "Moderate"
	default:
		return "High"
	}
}
