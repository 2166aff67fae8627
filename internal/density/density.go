// Package density maps food labels to an assumed mass-per-volume value used
// to convert a segmented food area into grams.
package density

import "strings"

// Default is returned when no rule matches the label.
const Default = 0.30

// Rule assigns Value to any label containing one of Terms.
type Rule struct {
	Terms []string
	Value float64
}

// Matches reports whether the lower-cased label contains any of the rule's terms.
func (r Rule) Matches(label string) bool {
	for _, term := range r.Terms {
		if strings.Contains(label, term) {
			return true
		}
	}
	return false
}

// Rules is an ordered rule list with a mandatory fallback value.
type Rules struct {
	rules    []Rule
	fallback float64
}

// New creates a rule list evaluated top to bottom. Terms are matched
// case-insensitively and the first matching rule wins.
func New(fallback float64, rules ...Rule) Rules {
	normalized := make([]Rule, len(rules))
	for i, r := range rules {
		terms := make([]string, len(r.Terms))
		for j, t := range r.Terms {
			terms[j] = strings.ToLower(t)
		}
		normalized[i] = Rule{Terms: terms, Value: r.Value}
	}
	return Rules{rules: normalized, fallback: fallback}
}

// For returns the density for label. An empty label yields the fallback.
func (rs Rules) For(label string) float64 {
	label = strings.ToLower(label)
	for _, r := range rs.rules {
		if r.Matches(label) {
			return r.Value
		}
	}
	return rs.fallback
}

var standard = New(
	Default,
	Rule{Terms: []string{"egg"}, Value: 0.30},
	Rule{Terms: []string{"steak", "meat", "chicken"}, Value: 0.60},
	Rule{Terms: []string{"apple", "banana", "vegetable"}, Value: 0.25},
)

// Standard returns the built-in rule list.
func Standard() Rules {
	return standard
}

// For returns the density for label using the built-in rules.
func For(label string) float64 {
	return standard.For(label)
}
