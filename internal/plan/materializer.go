package plan

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// IndexWriter is the subset of Store the materializer needs.
type IndexWriter interface {
	List(ctx context.Context, ids []int64) ([]Plan, error)
	ReplaceEntries(ctx context.Context, p *Plan, dates []string, entries []Entry) error
}

// MaterializeResult describes one plan's materialization. ParseErr is set
// when the payload was malformed; the plan then has zero index rows.
type MaterializeResult struct {
	PlanID   int64
	UserID   string
	Rows     int
	ParseErr error
}

// Materializer rebuilds the per-date index from stored plans.
type Materializer struct {
	store IndexWriter
	log   logrus.FieldLogger
}

// NewMaterializer creates a new Materializer.
func NewMaterializer(store IndexWriter, log logrus.FieldLogger) *Materializer {
	return &Materializer{store: store, log: log}
}

// Preview flattens p without writing anything. The entries of the days
// that decoded are returned even when err reports skipped days.
func (m *Materializer) Preview(p *Plan) ([]Entry, []string, error) {
	days, err := ParseDays(p.ID, p.PlanJSON)
	dates := make([]string, 0, len(days))
	for _, d := range days {
		dates = append(dates, d.Date)
	}
	return Flatten(p.ID, p.UserID, days), dates, err
}

// Materialize replaces the index rows of p. Running it again on an
// unchanged plan leaves identical rows. A malformed payload is not an
// error: only the days that decoded are written, and ParseErr is reported.
func (m *Materializer) Materialize(ctx context.Context, p *Plan) (MaterializeResult, error) {
	res := MaterializeResult{PlanID: p.ID, UserID: p.UserID}
	log := m.log.WithFields(logrus.Fields{"plan_id": p.ID, "user_id": p.UserID})

	entries, dates, err := m.Preview(p)
	if err != nil {
		log.WithError(err).Warn("plan payload is malformed, indexing the days that decoded")
		res.ParseErr = err
	}

	if err := m.store.ReplaceEntries(ctx, p, dates, entries); err != nil {
		return res, fmt.Errorf("failed to materialize plan %d: %w", p.ID, err)
	}
	res.Rows = len(entries)
	log.WithField("rows", res.Rows).Debug("plan materialized")
	return res, nil
}

// MaterializeAll materializes the plans with the given ids, or every plan
// when ids is empty. With dryRun set plans are parsed and counted only.
func (m *Materializer) MaterializeAll(ctx context.Context, ids []int64, dryRun bool) ([]MaterializeResult, error) {
	plans, err := m.store.List(ctx, ids)
	if err != nil {
		return nil, err
	}

	results := make([]MaterializeResult, 0, len(plans))
	for i := range plans {
		p := &plans[i]
		if dryRun {
			entries, _, err := m.Preview(p)
			results = append(results, MaterializeResult{PlanID: p.ID, UserID: p.UserID, Rows: len(entries), ParseErr: err})
			continue
		}
		res, err := m.Materialize(ctx, p)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
