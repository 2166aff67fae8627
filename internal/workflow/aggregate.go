package workflow

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/JaimeStill/caloric/internal/classify"
	"github.com/JaimeStill/caloric/internal/nutrition"
	"github.com/JaimeStill/caloric/internal/portion"
)

var hundred = decimal.NewFromInt(100)

// Aggregate combines the top prediction, mass estimate and nutrition record
// into a Result. It never fails; ok reports whether top is a real prediction.
func Aggregate(top classify.Prediction, ok bool, est portion.Estimate, rec nutrition.Record) Result {
	result := Result{
		EstimatedGrams:   copyFloat(est.Grams),
		NutritionPer100g: rec,
		Segmentation:     est.Segmentation,
	}

	if ok {
		result.Name = top.Label
		result.Confidence = copyFloat(&top.Confidence)
	}

	if result.EstimatedGrams == nil {
		return result
	}

	grams := *result.EstimatedGrams
	if math.IsNaN(grams) || math.IsInf(grams, 0) {
		return result
	}

	if per100g, found := rec.Calories(); found {
		total := TotalCalories(per100g, grams)
		result.TotalCalories = &total
	}

	return result
}

// TotalCalories scales a per-100g calorie value to grams.
func TotalCalories(per100g, grams float64) float64 {
	total, _ := decimal.NewFromFloat(per100g).
		Mul(decimal.NewFromFloat(grams)).
		Div(hundred).
		Float64()
	return total
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
