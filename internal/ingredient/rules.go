package ingredient

import "strings"

// Rules is the single source for the pantry staples and synonym table used
// when canonicalising ingredient names.
type Rules struct {
	Pantry   []string          `json:"pantry"`
	Synonyms map[string]string `json:"synonyms"`
}

// DefaultRules returns the built-in pantry and synonym sets.
func DefaultRules() Rules {
	return Rules{
		Pantry: []string{"salt", "pepper", "olive oil", "oil", "water", "chili flakes", "sugar", "flour"},
		Synonyms: map[string]string{
			"bell pepper":  "pepper",
			"red pepper":   "pepper",
			"green pepper": "pepper",
			"scallion":     "spring onion",
			"coriander":    "cilantro",
		},
	}
}

// WithPantry returns a copy of r with extra pantry staples appended.
func (r Rules) WithPantry(extra ...string) Rules {
	out := Rules{
		Pantry:   make([]string, 0, len(r.Pantry)+len(extra)),
		Synonyms: make(map[string]string, len(r.Synonyms)),
	}
	out.Pantry = append(out.Pantry, r.Pantry...)
	for _, e := range extra {
		if e = strings.TrimSpace(e); e != "" {
			out.Pantry = append(out.Pantry, e)
		}
	}
	for k, v := range r.Synonyms {
		out.Synonyms[k] = v
	}
	return out
}
