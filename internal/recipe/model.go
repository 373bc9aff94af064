package recipe

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Meal is a recipe that plans reference by id. Ingredients and nutrition
// are stored as raw JSON and decoded on demand.
type Meal struct {
	ID              string `json:"id" db:"id"`
	Title           string `json:"title" db:"title"`
	Description     string `json:"description" db:"description"`
	ImagePath       string `json:"image_path" db:"image_path"`
	TimeMinutes     int    `json:"time_minutes" db:"time_minutes"`
	TagsRaw         string `json:"-" db:"tags"`
	Cuisine         string `json:"cuisine" db:"cuisine"`
	Diet            string `json:"diet" db:"diet"`
	AllergensRaw    string `json:"-" db:"allergens"`
	IngredientsJSON string `json:"-" db:"ingredients_json"`
	NutritionJSON   string `json:"-" db:"nutrition_json"`
}

// Tags returns the meal's tags.
func (m *Meal) Tags() []string {
	return splitList(m.TagsRaw)
}

// Allergens returns the meal's allergens.
func (m *Meal) Allergens() []string {
	return splitList(m.AllergensRaw)
}

// splitList reads a list stored either as a JSON array or as comma
// separated text. Blank entries are dropped.
func splitList(raw string) []string {
	raw = strings.TrimSpace(raw)
	out := []string{}
	if raw == "" {
		return out
	}
	var parts []string
	if strings.HasPrefix(raw, "[") {
		var arr []json.RawMessage
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			for _, a := range arr {
				parts = append(parts, scalarString(a))
			}
		}
	}
	if parts == nil {
		parts = strings.Split(raw, ",")
	}
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Ingredient is one ingredient line of a meal.
type Ingredient struct {
	Name         string  `json:"ingredient"`
	Amount       string  `json:"amount,omitempty"`
	Unit         string  `json:"unit,omitempty"`
	Aisle        string  `json:"aisle,omitempty"`
	Emoji        string  `json:"emoji,omitempty"`
	PricePerPack float64 `json:"price_per_pack,omitempty"`
}

// UnmarshalJSON implements the json.Unmarshaler interface for Ingredient.
// The name may come as "ingredient" or "name"; amount and price may be
// numbers or strings.
func (i *Ingredient) UnmarshalJSON(data []byte) error {
	type Alias Ingredient // Create an alias to avoid infinite recursion
	aux := &struct {
		Name         string          `json:"name"`
		Amount       json.RawMessage `json:"amount"`
		PricePerPack json.RawMessage `json:"price_per_pack"`
		*Alias
	}{
		Alias: (*Alias)(i),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	i.Name = strings.TrimSpace(i.Name)
	if i.Name == "" {
		i.Name = strings.TrimSpace(aux.Name)
	}
	i.Amount = scalarString(aux.Amount)
	if p := scalarString(aux.PricePerPack); p != "" {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return fmt.Errorf("price_per_pack %q: %w", p, err)
		}
		i.PricePerPack = v
	}
	return nil
}

// scalarString renders a JSON string or number as text; null and other
// shapes yield "".
func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// ParseError reports a meal payload that could not be decoded.
type ParseError struct {
	MealID string
	Field  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("meal %s: malformed %s: %v", e.MealID, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Ingredients decodes the meal's ingredient list. Lines without a name are
// dropped. An empty payload yields no ingredients and no error.
func (m *Meal) Ingredients() ([]Ingredient, error) {
	raw := strings.TrimSpace(m.IngredientsJSON)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var all []Ingredient
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return nil, &ParseError{MealID: m.ID, Field: "ingredients", Err: err}
	}
	out := all[:0]
	for _, ing := range all {
		if ing.Name != "" {
			out = append(out, ing)
		}
	}
	return out, nil
}
