// Package nutrition resolves per-100g nutrition for a food label from a local
// table, falling back to a remote nutrition database. Resolution is best-effort:
// a miss or a remote failure yields a nil Record, never an error.
package nutrition

import (
	"maps"
	"math"
	"strings"
)

// Shared nutrient keys used by every source.
const (
	KeyCalories     = "calories"
	KeyProtein      = "protein"
	KeyFat          = "fat"
	KeyCarbohydrate = "carbohydrate"
	KeyCholesterol  = "cholesterol"
	KeySodium       = "sodium"
	KeySugar        = "sugar"
	KeyFiber        = "fiber"
)

// UnitKcal is the only energy unit calorie totals are computed from.
const UnitKcal = "kcal"

const kilojoulesPerKcal = 4.184

var keyNutrients = []string{KeyCalories, KeyFat, KeyProtein, KeySugar}

// Entry is a nutrient amount per 100g.
type Entry struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Record maps lower-case nutrient keys to per-100g entries.
type Record map[string]Entry

// Calories returns the finite calories-per-100g value when present and
// expressed in kcal.
func (r Record) Calories() (float64, bool) {
	e, ok := r[KeyCalories]
	if !ok || !strings.EqualFold(e.Unit, UnitKcal) || math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
		return 0, false
	}
	return e.Value, true
}

// Key returns the calories, fat, protein and sugar entries present in r.
func (r Record) Key() Record {
	key := make(Record, len(keyNutrients))
	for _, k := range keyNutrients {
		if e, ok := r[k]; ok {
			key[k] = e
		}
	}
	return key
}

// Clone returns a copy of r; a nil Record stays nil.
func (r Record) Clone() Record {
	return maps.Clone(r)
}
