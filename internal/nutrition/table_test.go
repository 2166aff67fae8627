package nutrition_test

import (
	"testing"

	"github.com/JaimeStill/caloric/internal/nutrition"
)

func record(calories float64) nutrition.Record {
	return nutrition.Record{nutrition.KeyCalories: {Value: calories, Unit: "kcal"}}
}

func TestTableLookup(t *testing.T) {
	table := nutrition.NewTable(map[string]nutrition.Record{
		"Egg":           record(155),
		"chicken":       record(0),
		"fried chicken": record(246),
		"french_fries":  record(312),
		"spaghetti":     record(158),
	}, 2)

	tests := []struct {
		label   string
		want    float64
		wantHit bool
	}{
		{"egg", 155, true},
		{"EGG", 155, true},
		{"  egg  ", 155, true},
		{"egg salad", 155, true},
		{"egg_salad", 155, true},
		{"french fries", 312, true},
		{"French_Fries", 312, true},
		{"crispy fried chicken", 246, true},
		{"chicken", 0, true},
		{"spagetti", 158, true},
		{"eggplant", 0, false},
		{"sushi", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			rec, ok := table.Lookup(tt.label)
			if ok != tt.wantHit {
				t.Fatalf("Lookup(%q) hit = %v, want %v", tt.label, ok, tt.wantHit)
			}
			if !ok {
				if rec != nil {
					t.Errorf("miss returned %v", rec)
				}
				return
			}
			if cal, _ := rec.Calories(); cal != tt.want {
				t.Errorf("calories = %v, want %v", cal, tt.want)
			}
		})
	}
}

func TestTableFuzzyDisabled(t *testing.T) {
	table := nutrition.NewTable(map[string]nutrition.Record{"spaghetti": record(158)}, 0)
	if _, ok := table.Lookup("spagetti"); ok {
		t.Error("fuzzy match with distance 0")
	}
}

func TestTableLookupReturnsCopy(t *testing.T) {
	table := nutrition.NewTable(map[string]nutrition.Record{"apple": record(52)}, 0)

	rec, _ := table.Lookup("apple")
	rec[nutrition.KeyCalories] = nutrition.Entry{Value: 1, Unit: "kcal"}

	again, _ := table.Lookup("apple")
	if cal, _ := again.Calories(); cal != 52 {
		t.Errorf("table mutated through lookup result: %v", cal)
	}
}

func TestTableReplace(t *testing.T) {
	table := nutrition.NewTable(map[string]nutrition.Record{"apple": record(52)}, 0)
	table.Replace(map[string]nutrition.Record{"pear": record(57), "kiwi": record(61)})

	if table.Len() != 2 {
		t.Errorf("Len = %d, want 2", table.Len())
	}
	if _, ok := table.Lookup("apple"); ok {
		t.Error("apple survived Replace")
	}
}

func TestDefaultTable(t *testing.T) {
	table, err := nutrition.DefaultTable(0)
	if err != nil {
		t.Fatalf("DefaultTable: %v", err)
	}
	if table.Len() == 0 {
		t.Fatal("embedded table is empty")
	}

	rec, ok := table.Lookup("egg")
	if !ok {
		t.Fatal("embedded table has no egg entry")
	}
	if cal, ok := rec.Calories(); !ok || cal <= 0 {
		t.Errorf("egg calories = %v, %v", cal, ok)
	}

	chicken, ok := table.Lookup("chicken")
	if !ok {
		t.Fatal("embedded table has no chicken entry")
	}
	if cal, _ := chicken.Calories(); cal != 0 {
		t.Errorf("chicken calories = %v, want 0", cal)
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Egg_Salad":        "egg salad",
		"  French   Fries": "french fries",
		"PIZZA":            "pizza",
		"_":                "",
	}
	for in, want := range tests {
		if got := nutrition.Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRecordKeyTable(t *testing.T) {
	rec := nutrition.Record{
		nutrition.KeyCalories: {Value: 155, Unit: "kcal"},
		nutrition.KeyProtein:  {Value: 12.6, Unit: "g"},
		nutrition.KeySodium:   {Value: 124, Unit: "mg"},
	}

	key := rec.Key()
	if len(key) != 2 {
		t.Errorf("Key = %v, want calories and protein only", key)
	}
	if _, ok := key[nutrition.KeySodium]; ok {
		t.Error("sodium is not a key nutrient")
	}
	if len(nutrition.Record(nil).Key()) != 0 {
		t.Error("nil record key not empty")
	}
}
