package ingredient

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	leadingCount = regexp.MustCompile(`^\d+x?\s+`)
	unitQuantity = regexp.MustCompile(`\b\d+(?:\.\d+)?\s*(?:g|kg|ml|l|tbsp|tsp|cups?)\b`)
	spaces       = regexp.MustCompile(`\s+`)
	quantity     = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)\s*([a-z]+)?`)
)

// unitTable maps a raw unit to its multiplier and canonical unit.
var unitTable = map[string]struct {
	factor float64
	unit   string
}{
	"kg":         {1000, "g"},
	"g":          {1, "g"},
	"l":          {1000, "ml"},
	"ml":         {1, "ml"},
	"tbsp":       {1, "tbsp"},
	"tablespoon": {1, "tbsp"},
	"tsp":        {1, "tsp"},
	"teaspoon":   {1, "tsp"},
	"count":      {1, "count"},
}

// Normalizer turns free-form ingredient text into canonical names and
// quantities. It is safe for concurrent use.
type Normalizer struct {
	synonyms map[string]string
}

// NewNormalizer creates a Normalizer using the synonym table from rules.
func NewNormalizer(rules Rules) *Normalizer {
	syn := make(map[string]string, len(rules.Synonyms))
	for k, v := range rules.Synonyms {
		syn[fold(k)] = fold(v)
	}
	return &Normalizer{synonyms: syn}
}

func fold(s string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFKC.String(s)))
}

// Clean lowercases the name and strips quantity noise such as "2x " or
// "200 g" without applying synonyms.
func (n *Normalizer) Clean(raw string) string {
	s := fold(raw)
	s = unitQuantity.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = leadingCount.ReplaceAllString(s, "")
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Normalize returns the cleaned name with the synonym table applied.
func (n *Normalizer) Normalize(raw string) string {
	s := n.Clean(raw)
	if syn, ok := n.synonyms[s]; ok {
		return syn
	}
	return s
}

// DedupKey crudely singularises a name by dropping a trailing "es" or "s".
func DedupKey(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	switch {
	case strings.HasSuffix(name, "es"):
		return name[:len(name)-2]
	case strings.HasSuffix(name, "s"):
		return name[:len(name)-1]
	}
	return name
}

// Canonical is the key used for basket aggregation and catalog lookup:
// the normalized name, singularised, with synonyms re-applied so that
// plurals like "bell peppers" collapse onto the same entry.
func (n *Normalizer) Canonical(raw string) string {
	s := n.Clean(raw)
	if syn, ok := n.synonyms[s]; ok {
		return syn
	}
	k := DedupKey(s)
	if syn, ok := n.synonyms[k]; ok {
		return syn
	}
	if k == "" {
		return s
	}
	return k
}

// ParseQuantity turns strings like "200 g", "1kg" or "3" into an amount and
// canonical unit. It never fails: anything unparseable is one count.
func ParseQuantity(raw string) (float64, string) {
	q := strings.ToLower(strings.TrimSpace(raw))
	q = strings.TrimSpace(strings.ReplaceAll(q, "x", ""))
	if q == "" {
		return 1.0, "count"
	}

	m := quantity.FindStringSubmatch(q)
	if m == nil {
		return 1.0, "count"
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 1.0, "count"
	}
	unit := m[2]
	if unit == "" {
		unit = "count"
	}
	if conv, ok := unitTable[unit]; ok {
		return amount * conv.factor, conv.unit
	}
	return amount, unit
}
