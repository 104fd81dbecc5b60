package anthropometry

import (
	"math"

	"github.com/gdmcare/gdm/internal/domain/validation"
)

// Status is a weight-status label under the WHO Western Pacific (Asian)
// cutoffs, which are stricter than the WHO global ones.
type Status string

const (
	StatusUnderweight Status = "Underweight"
	StatusNormal      Status = "Normal range"
	StatusOverweight  Status = "Overweight"
	StatusObese       Status = "Obese"
)

const (
	underweightBelow = 18.5
	normalBelow      = 23.0
	overweightBelow  = 25.0
)

// ComputeBMI returns weight / height(m)^2 rounded to one decimal place.
func ComputeBMI(heightCm, weightKg float64) (float64, error) {
	if !finite(heightCm) || heightCm <= 0 {
		return 0, validation.Invalid("height must be a positive number of centimeters")
	}
	if !finite(weightKg) || weightKg <= 0 {
		return 0, validation.Invalid("weight must be a positive number of kilograms")
	}
	m := heightCm / 100
	return math.Round(weightKg/(m*m)*10) / 10, nil
}

func ClassifyBMI(bmi float64) Status {
	switch {
	case bmi < underweightBelow:
		return StatusUnderweight
	case bmi < normalBelow:
		return StatusNormal
	case bmi < overweightBelow:
		return StatusOverweight
	default:
		return StatusObese
	}
}

// Result pairs a BMI with its classification.
type Result struct {
	BMI    float64 `json:"bmi"`
	Status Status  `json:"status"`
}

func Assess(heightCm, weightKg float64) (Result, error) {
	bmi, err := ComputeBMI(heightCm, weightKg)
	if err != nil {
		return Result{}, err
	}
	return Result{BMI: bmi, Status: ClassifyBMI(bmi)}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
