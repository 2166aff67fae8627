package nutrition

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JaimeStill/caloric/pkg/repository"
)

// ErrTableMissing indicates the nutrition_facts table has not been migrated.
var ErrTableMissing = errors.New("nutrition_facts table missing")

const factsQuery = `
	SELECT food, nutrient, value, unit
	FROM nutrition_facts
	ORDER BY food, nutrient`

type fact struct {
	Food     string
	Nutrient string
	Value    float64
	Unit     string
}

func scanFact(s repository.Scanner) (fact, error) {
	var f fact
	err := s.Scan(&f.Food, &f.Nutrient, &f.Value, &f.Unit)
	return f, err
}

// LoadFacts reads the nutrition_facts table into food name to Record entries.
func LoadFacts(ctx context.Context, db repository.Querier) (map[string]Record, error) {
	facts, err := repository.QueryMany(ctx, db, factsQuery, nil, scanFact)
	if err != nil {
		return nil, fmt.Errorf("query nutrition facts: %w", repository.MapError(err, ErrTableMissing))
	}

	entries := make(map[string]Record)
	for _, f := range facts {
		rec, ok := entries[f.Food]
		if !ok {
			rec = make(Record)
			entries[f.Food] = rec
		}
		rec[f.Nutrient] = Entry{Value: f.Value, Unit: f.Unit}
	}
	return entries, nil
}

// LoadTable replaces t's contents with the nutrition_facts table.
func LoadTable(ctx context.Context, db *sql.DB, t *Table) error {
	entries, err := LoadFacts(ctx, db)
	if err != nil {
		return err
	}
	t.Replace(entries)
	return nil
}
