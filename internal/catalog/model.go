package catalog

// Pack units allowed for catalog items.
const (
	UnitCount       = "count"
	UnitGrams       = "grams"
	UnitMilliliters = "milliliters"
)

// Item is a purchasable product in the catalog.
type Item struct {
	ID           int64   `json:"id" db:"id"`
	Name         string  `json:"name" db:"name"`
	Aisle        string  `json:"aisle" db:"aisle"`
	Emoji        string  `json:"emoji" db:"emoji"`
	PackAmount   float64 `json:"pack_amount" db:"pack_amount"`
	PackUnit     string  `json:"pack_unit" db:"pack_unit"`
	PricePerPack float64 `json:"price_per_pack" db:"price_per_pack"`
	SizeLabel    string  `json:"size_label" db:"size_label"`
}

// Estimate is the pack pricing attached to a basket item.
type Estimate struct {
	PricePerPack float64 `json:"price_per_pack"`
	PackAmount   float64 `json:"pack_amount"`
	PackUnit     string  `json:"pack_unit"`
	SizeLabel    string  `json:"size_label"`
}

// DefaultEstimate prices an ingredient the catalog does not know.
func DefaultEstimate() Estimate {
	return Estimate{
		PricePerPack: 1.0,
		PackAmount:   1.0,
		PackUnit:     "portion",
		SizeLabel:    "1 portion",
	}
}

// Estimate returns the pack pricing of the item.
func (i Item) Estimate() Estimate {
	return Estimate{
		PricePerPack: i.PricePerPack,
		PackAmount:   i.PackAmount,
		PackUnit:     i.PackUnit,
		SizeLabel:    i.SizeLabel,
	}
}
