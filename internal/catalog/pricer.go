package catalog

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Lookuper resolves a canonical ingredient name to a catalog item.
type Lookuper interface {
	Lookup(ctx context.Context, ingredient string) (*Item, error)
}

// Pricer prices canonical ingredient names against the catalog. Every
// name gets a price: unknown names, and lookups that fail, fall back to
// DefaultEstimate.
type Pricer struct {
	catalog Lookuper
	log     logrus.FieldLogger
}

// NewPricer creates a new Pricer.
func NewPricer(catalog Lookuper, log logrus.FieldLogger) *Pricer {
	return &Pricer{catalog: catalog, log: log}
}

// Price returns the estimate for name and the matching catalog item, which
// is nil when the catalog has no entry.
func (p *Pricer) Price(ctx context.Context, name string) (Estimate, *Item) {
	it, err := p.catalog.Lookup(ctx, name)
	if err != nil {
		p.log.WithError(err).WithField("ingredient", name).Warn("catalog lookup failed, using default estimate")
		return DefaultEstimate(), nil
	}
	if it == nil {
		return DefaultEstimate(), nil
	}
	return it.Estimate(), it
}
