package nutrition

import (
	"cmp"
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

//go:embed table.json
var defaultTable []byte

// Table is an in-memory per-100g nutrition table keyed by normalized food name.
// It is read-only during request handling; Replace swaps the full contents.
type Table struct {
	mu      sync.RWMutex
	entries map[string]Record
	keys    []string
	fuzzy   int
}

// NewTable creates a Table from entries. fuzzy is the maximum edit distance
// for approximate matches; zero disables them.
func NewTable(entries map[string]Record, fuzzy int) *Table {
	t := &Table{fuzzy: max(fuzzy, 0)}
	t.Replace(entries)
	return t
}

// DefaultTable returns a Table holding the embedded nutrition data.
func DefaultTable(fuzzy int) (*Table, error) {
	entries, err := DecodeTable(defaultTable)
	if err != nil {
		return nil, fmt.Errorf("embedded table: %w", err)
	}
	return NewTable(entries, fuzzy), nil
}

// DecodeTable decodes a JSON object of food name to Record.
func DecodeTable(data []byte) (map[string]Record, error) {
	var entries map[string]Record
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode nutrition table: %w", err)
	}
	return entries, nil
}

// Replace swaps the table contents. Keys are normalized.
func (t *Table) Replace(entries map[string]Record) {
	normalized := make(map[string]Record, len(entries))
	for k, v := range entries {
		if key := Normalize(k); key != "" {
			normalized[key] = v
		}
	}

	keys := make([]string, 0, len(normalized))
	for k := range normalized {
		keys = append(keys, k)
	}
	// longest first so "fried chicken" wins over "chicken"
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = normalized
	t.keys = keys
}

// Len returns the number of foods in the table.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Lookup finds the record for label: an exact match on the normalized label,
// then the longest table key appearing as whole words in the label, then the
// closest key within the fuzzy edit distance.
func (t *Table) Lookup(label string) (Record, bool) {
	label = Normalize(label)
	if label == "" {
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if rec, ok := t.entries[label]; ok {
		return rec.Clone(), true
	}

	padded := " " + label + " "
	for _, k := range t.keys {
		if strings.Contains(padded, " "+k+" ") {
			return t.entries[k].Clone(), true
		}
	}

	if key, ok := t.closest(label); ok {
		return t.entries[key].Clone(), true
	}

	return nil, false
}

func (t *Table) closest(label string) (string, bool) {
	if t.fuzzy == 0 || len(label) <= t.fuzzy*3 {
		return "", false
	}

	best, bestDist := "", t.fuzzy+1
	target := []rune(label)
	for _, k := range t.keys {
		d := levenshtein.DistanceForStrings(target, []rune(k), levenshtein.DefaultOptions)
		if d < bestDist {
			best, bestDist = k, d
		}
	}
	return best, best != ""
}

// Normalize lower-cases a food name, treats underscores as spaces and
// collapses whitespace.
func Normalize(name string) string {
	name = strings.ToLower(strings.ReplaceAll(name, "_", " "))
	return strings.Join(strings.Fields(name), " ")
}
