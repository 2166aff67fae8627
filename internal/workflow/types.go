package workflow

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/caloric/internal/nutrition"
)

// Result is the outcome of one estimation run. Absent data is expressed as
// nil fields: TotalCalories is set only when both EstimatedGrams and a
// calories entry in NutritionPer100g are present.
type Result struct {
	RunID            uuid.UUID        `json:"run_id"`
	Name             string           `json:"name"`
	Confidence       *float64         `json:"confidence"`
	Density          float64          `json:"density"`
	EstimatedGrams   *float64         `json:"estimated_grams"`
	NutritionPer100g nutrition.Record `json:"nutrition_per_100g"`
	TotalCalories    *float64         `json:"total_calories"`
	Segmentation     json.RawMessage  `json:"segmentation"`
	CompletedAt      time.Time        `json:"completed_at"`
}

// Identified reports whether the classifier produced a label.
func (r *Result) Identified() bool {
	return r.Name != ""
}
