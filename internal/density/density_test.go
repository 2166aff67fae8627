package density_test

import (
	"testing"

	"github.com/JaimeStill/caloric/internal/density"
)

func TestFor(t *testing.T) {
	tests := []struct {
		label string
		want  float64
	}{
		{"egg", 0.30},
		{"Egg Salad", 0.30},
		{"deviled_eggs", 0.30},
		{"steak", 0.60},
		{"Grilled Chicken", 0.60},
		{"MEATBALLS", 0.60},
		{"apple pie", 0.25},
		{"banana", 0.25},
		{"vegetable soup", 0.25},
		{"mystery dish", 0.30},
		{"", 0.30},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := density.For(tt.label); got != tt.want {
				t.Errorf("For(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestForFirstMatchWins(t *testing.T) {
	// "egg" precedes the meat rule, so a label matching both resolves to 0.30.
	if got := density.For("chicken and egg fried rice"); got != 0.30 {
		t.Errorf("For = %v, want 0.30", got)
	}

	// the meat rule precedes the produce rule.
	if got := density.For("chicken with apple glaze"); got != 0.60 {
		t.Errorf("For = %v, want 0.60", got)
	}
}

func TestForIdempotent(t *testing.T) {
	labels := []string{"egg salad", "steak", "banana bread", "ramen", ""}
	for _, label := range labels {
		first := density.For(label)
		for range 5 {
			if got := density.For(label); got != first {
				t.Fatalf("For(%q) changed from %v to %v", label, first, got)
			}
		}
	}
}

func TestCustomRules(t *testing.T) {
	rules := density.New(
		0.5,
		density.Rule{Terms: []string{"SOUP"}, Value: 0.9},
	)

	if got := rules.For("tomato soup"); got != 0.9 {
		t.Errorf("For(tomato soup) = %v, want 0.9", got)
	}
	if got := rules.For("toast"); got != 0.5 {
		t.Errorf("For(toast) = %v, want fallback 0.5", got)
	}
}
