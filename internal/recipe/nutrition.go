package recipe

import (
	"encoding/json"
	"strings"
)

// Totals are the macro totals of a meal.
type Totals struct {
	Kcal     float64 `json:"kcal"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// Add returns the element-wise sum of t and o.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Kcal:     t.Kcal + o.Kcal,
		ProteinG: t.ProteinG + o.ProteinG,
		CarbsG:   t.CarbsG + o.CarbsG,
		FatG:     t.FatG + o.FatG,
	}
}

func (t Totals) isZero() bool {
	return t == Totals{}
}

// macros accepts both the canonical keys and the short aliases seen in
// older payloads.
type macros struct {
	Kcal     *float64 `json:"kcal"`
	Calories *float64 `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	Protein  *float64 `json:"protein"`
	CarbsG   *float64 `json:"carbs_g"`
	Carbs    *float64 `json:"carbs"`
	FatG     *float64 `json:"fat_g"`
	Fats     *float64 `json:"fats"`
	Fat      *float64 `json:"fat"`
}

func first(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil && *v != 0 {
			return *v
		}
	}
	return 0
}

func (m macros) totals() Totals {
	return Totals{
		Kcal:     first(m.Kcal, m.Calories),
		ProteinG: first(m.ProteinG, m.Protein),
		CarbsG:   first(m.CarbsG, m.Carbs),
		FatG:     first(m.FatG, m.Fats, m.Fat),
	}
}

// Nutrition decodes the meal's macro totals. It reads "totals" when
// present, then top-level keys, then sums "by_ingredient"; a list payload
// is summed item by item.
func (m *Meal) Nutrition() (Totals, error) {
	raw := strings.TrimSpace(m.NutritionJSON)
	if raw == "" || raw == "null" {
		return Totals{}, nil
	}

	if strings.HasPrefix(raw, "[") {
		var items []macros
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return Totals{}, &ParseError{MealID: m.ID, Field: "nutrition", Err: err}
		}
		return sum(items), nil
	}

	var blob struct {
		macros
		Totals       *macros  `json:"totals"`
		ByIngredient []macros `json:"by_ingredient"`
	}
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		return Totals{}, &ParseError{MealID: m.ID, Field: "nutrition", Err: err}
	}
	if blob.Totals != nil {
		return blob.Totals.totals(), nil
	}
	if t := blob.macros.totals(); !t.isZero() {
		return t, nil
	}
	return sum(blob.ByIngredient), nil
}

func sum(items []macros) Totals {
	var t Totals
	for _, it := range items {
		t = t.Add(it.totals())
	}
	return t
}
