package ingredient

// Pantry is a set of staples assumed to always be on hand.
type Pantry struct {
	items map[string]struct{}
}

// NewPantry builds the pantry set from rules.
func NewPantry(rules Rules) *Pantry {
	p := &Pantry{items: make(map[string]struct{}, len(rules.Pantry))}
	for _, it := range rules.Pantry {
		if k := fold(it); k != "" {
			p.items[k] = struct{}{}
		}
	}
	return p
}

// IsPantry reports whether name is a staple. Matching is case-insensitive.
func (p *Pantry) IsPantry(name string) bool {
	_, ok := p.items[fold(name)]
	return ok
}

// Excludes reports whether a cleaned ingredient name is a staple, either
// as written or singularised. Synonyms are not applied, so "pepper" is a
// staple but "red pepper" is not.
func (p *Pantry) Excludes(cleaned string) bool {
	return p.IsPantry(cleaned) || p.IsPantry(DedupKey(cleaned))
}

// Len returns the number of staples.
func (p *Pantry) Len() int {
	return len(p.items)
}
