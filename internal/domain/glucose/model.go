package glucose

import (
	"time"

	"github.com/google/uuid"
)

// Kind tags a reading by when it was taken.
type Kind string

const (
	KindFasting  Kind = "fasting"
	KindPostMeal Kind = "post-meal"
)

func (k Kind) Valid() bool {
	return k == KindFasting || k == KindPostMeal
}

// FastingMeal is the meal placeholder stored on fasting readings.
const FastingMeal = "Fasting"

// MaxGlucose is the highest accepted reading in mg/dL. Meters top out
// well below it.
const MaxGlucose = 1000

// Walk duration slider bounds in minutes.
const (
	MaxWalkMinutes  = 60
	WalkMinutesStep = 5
)

// Reading maps to the glucose_reading table. Readings are immutable once
// appended.
type Reading struct {
	ID          uuid.UUID `db:"id" json:"id"`
	SessionID   uuid.UUID `db:"session_id" json:"-"`
	Kind        Kind      `db:"kind" json:"kind"`
	Glucose     int       `db:"glucose" json:"glucose"`
	Meal        string    `db:"meal" json:"meal"`
	WalkMinutes int       `db:"walk_minutes" json:"walk_minutes"`
	Week        int       `db:"week" json:"week"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Entry is the log-entry form as submitted by the client. Glucose is a
// pointer so an empty field can be told apart from zero.
type Entry struct {
	Kind        Kind   `json:"kind"`
	Glucose     *int   `json:"glucose"`
	Meal        string `json:"meal"`
	WalkMinutes int    `json:"walk_minutes"`
}

// Stats are the aggregates the patient view renders.
type Stats struct {
	Total          int     `json:"total"`
	AverageFasting float64 `json:"average_fasting"`
	CountToday     int     `json:"count_today"`
}

// Trend describes the direction of fasting values across the log.
type Trend string

const (
	TrendInsufficient Trend = "insufficient"
	TrendStable       Trend = "stable"
	TrendRising       Trend = "rising"
)

// WalkingImpact compares post-meal readings with and without a walk.
type WalkingImpact struct {
	WithWalk        float64 `json:"with_walk"`
	WithoutWalk     float64 `json:"without_walk"`
	WithWalkCount   int     `json:"with_walk_count"`
	WithoutCount    int     `json:"without_walk_count"`
	AverageDuration float64 `json:"average_duration"`
	Reduction       int     `json:"reduction"`
	Comparable      bool    `json:"comparable"`
}

// FoodStatus is the advice label for a logged meal.
type FoodStatus string

const (
	FoodStable  FoodStatus = "Stable"
	FoodMonitor FoodStatus = "Monitor"
	FoodAvoid   FoodStatus = "Avoid"
)

// FoodResponse aggregates post-meal readings for one meal description.
type FoodResponse struct {
	Name           string     `json:"name"`
	Count          int        `json:"count"`
	AverageGlucose int        `json:"average_glucose"`
	Status         FoodStatus `json:"status"`
	Impact         string     `json:"impact"`
}

// Summary extends Stats with the values the clinician view needs.
type Summary struct {
	Stats
	FastingCount       int            `json:"fasting_count"`
	PostMealCount      int            `json:"post_meal_count"`
	AveragePostMeal    float64        `json:"average_post_meal"`
	FastingInRangePct  int            `json:"fasting_in_range_pct"`
	PostMealInRangePct int            `json:"post_meal_in_range_pct"`
	FastingTrend       Trend          `json:"fasting_trend"`
	Walking            WalkingImpact  `json:"walking"`
	Foods              []FoodResponse `json:"foods"`
}
