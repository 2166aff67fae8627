package estimates

import (
	"encoding/json"

	"github.com/JaimeStill/caloric/internal/nutrition"
	"github.com/JaimeStill/caloric/internal/portion"
	"github.com/JaimeStill/caloric/internal/workflow"
)

// EstimateCommand carries a single uploaded meal image.
type EstimateCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	Reference   string
}

// Response is the body returned by a successful estimate request.
type Response struct {
	Result []Item `json:"result"`
}

// Item is the client-facing projection of a workflow.Result.
type Item struct {
	Name             *string          `json:"name"`
	Confidence       *float64         `json:"confidence"`
	EstimatedGrams   *float64         `json:"estimated_grams"`
	DataPer100g      nutrition.Record `json:"dataPer100g"`
	Nutrition        any              `json:"nutrition"`
	Segmentation     json.RawMessage  `json:"segmentation"`
	TotalCalories    *float64         `json:"total_calories"`
	PortionReference *string          `json:"portion_reference"`
}

// NewResponse projects a workflow result into the single-element response body.
func NewResponse(r *workflow.Result) Response {
	item := Item{
		Confidence:     r.Confidence,
		EstimatedGrams: r.EstimatedGrams,
		DataPer100g:    r.NutritionPer100g,
		Segmentation:   r.Segmentation,
		TotalCalories:  r.TotalCalories,
	}

	if r.Identified() {
		name := r.Name
		item.Name = &name
	}

	if r.EstimatedGrams != nil {
		ref := portion.Reference(*r.EstimatedGrams)
		item.PortionReference = &ref
	}

	return Response{Result: []Item{item}}
}
