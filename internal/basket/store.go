package basket

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLStore keeps at most one basket per user and week.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore creates a new SQLStore.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

type basketRow struct {
	ID             int64         `db:"id"`
	UserID         string        `db:"user_id"`
	PlanID         sql.NullInt64 `db:"plan_id"`
	WeekStart      string        `db:"week_start"`
	WeekEnd        string        `db:"week_end"`
	ItemsJSON      string        `db:"items_json"`
	EstimatedTotal float64       `db:"estimated_total"`
	CreatedAt      time.Time     `db:"created_at"`
}

// Upsert stores b, replacing the earlier basket for the same user and week.
func (s *SQLStore) Upsert(ctx context.Context, b *Basket) error {
	items := b.Items
	if items == nil {
		items = []Item{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode basket items: %w", err)
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	var planID sql.NullInt64
	if b.SourcePlanID != nil {
		planID = sql.NullInt64{Int64: *b.SourcePlanID, Valid: true}
	}

	var id int64
	err = s.db.QueryRowxContext(ctx, s.db.Rebind(
		`INSERT INTO baskets (user_id, plan_id, week_start, week_end, items_json, estimated_total, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, week_start) DO UPDATE SET plan_id = excluded.plan_id,
		week_end = excluded.week_end, items_json = excluded.items_json,
		estimated_total = excluded.estimated_total, created_at = excluded.created_at
		RETURNING id`),
		b.UserID, planID, b.WeekStart, b.WeekEnd, string(itemsJSON), b.EstimatedTotal, b.CreatedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to save basket: %w", err)
	}
	b.ID = id
	return nil
}

// Get returns the stored basket for userID and weekStart, or nil.
func (s *SQLStore) Get(ctx context.Context, userID, weekStart string) (*Basket, error) {
	var row basketRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(
		`SELECT id, user_id, plan_id, week_start, week_end, items_json, estimated_total, created_at
		FROM baskets WHERE user_id = ? AND week_start = ?`), userID, weekStart)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get basket: %w", err)
	}

	b := &Basket{
		ID:             row.ID,
		UserID:         row.UserID,
		WeekStart:      row.WeekStart,
		WeekEnd:        row.WeekEnd,
		EstimatedTotal: row.EstimatedTotal,
		CreatedAt:      row.CreatedAt,
	}
	if row.PlanID.Valid {
		id := row.PlanID.Int64
		b.SourcePlanID = &id
	}
	if err := json.Unmarshal([]byte(row.ItemsJSON), &b.Items); err != nil {
		return nil, fmt.Errorf("basket %d: malformed items json: %w", row.ID, err)
	}
	if b.Items == nil {
		b.Items = []Item{}
	}
	return b, nil
}
