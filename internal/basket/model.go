package basket

import (
	"time"

	"scranly/internal/catalog"
)

// NeedUnit is the unit of every basket quantity: one portion per
// ingredient line per scheduled meal, not a summed mass or volume.
const NeedUnit = "portion"

// Default display hints for items with none.
const (
	DefaultAisle = "Other"
	DefaultEmoji = "🛒"
)

// Item is one deduplicated line of a basket.
type Item struct {
	Name       string           `json:"name"`
	NeedAmount float64          `json:"need_amount"`
	NeedUnit   string           `json:"need_unit"`
	Aisle      string           `json:"aisle"`
	Emoji      string           `json:"emoji"`
	Estimate   catalog.Estimate `json:"estimate"`
}

// Result is the output of a basket build. Skipped collects the meals
// whose data could not be used; the build itself still succeeds.
type Result struct {
	Items          []Item  `json:"items"`
	EstimatedTotal float64 `json:"estimated_total"`
	SourcePlanID   *int64  `json:"source_plan_id"`
	Skipped        []error `json:"-"`
}

// Total sums need amount times pack price over items.
func Total(items []Item) float64 {
	var total float64
	for _, it := range items {
		total += it.NeedAmount * it.Estimate.PricePerPack
	}
	return total
}

// Basket is a stored build for one user and week.
type Basket struct {
	ID             int64     `json:"id"`
	UserID         string    `json:"user_id"`
	WeekStart      string    `json:"week_start"`
	WeekEnd        string    `json:"week_end"`
	Items          []Item    `json:"items"`
	EstimatedTotal float64   `json:"estimated_total"`
	SourcePlanID   *int64    `json:"source_plan_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Saved reports whether the basket has been written to the store.
func (b *Basket) Saved() bool {
	return b.ID != 0
}
