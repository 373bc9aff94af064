package plan

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the plan and plan index data operations.
type Store interface {
	Create(ctx context.Context, p *Plan) (int64, error)
	Get(ctx context.Context, id int64) (*Plan, error)
	Covering(ctx context.Context, userID, date string) (*Plan, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Plan, error)
	List(ctx context.Context, ids []int64) ([]Plan, error)
	ReplaceEntries(ctx context.Context, p *Plan, dates []string, entries []Entry) error
	Entries(ctx context.Context, userID, from, to string, planID int64) ([]Entry, error)
	CountEntries(ctx context.Context, userID, to string) (int, error)
}

// SQLStore implements Store on postgres or sqlite through sqlx.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore creates a new SQLStore.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

const planColumns = "id, user_id, start_date, end_date, length_days, plan_json, created_at"

// Create inserts a plan and returns its id.
func (s *SQLStore) Create(ctx context.Context, p *Plan) (int64, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(
		"INSERT INTO plans (user_id, start_date, end_date, length_days, plan_json, created_at) VALUES (?, ?, ?, ?, ?, ?) RETURNING id"),
		p.UserID, p.StartDate, p.EndDate, p.LengthDays, p.PlanJSON, p.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save plan: %w", err)
	}
	p.ID = id
	return id, nil
}

// Get retrieves a plan by id. It returns nil when no plan exists.
func (s *SQLStore) Get(ctx context.Context, id int64) (*Plan, error) {
	var p Plan
	err := s.db.GetContext(ctx, &p, s.db.Rebind("SELECT "+planColumns+" FROM plans WHERE id = ?"), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan %d: %w", id, err)
	}
	return &p, nil
}

// Covering returns the plan whose range contains date. When several plans
// overlap, the one with the latest start date wins.
func (s *SQLStore) Covering(ctx context.Context, userID, date string) (*Plan, error) {
	var p Plan
	err := s.db.GetContext(ctx, &p, s.db.Rebind(
		"SELECT "+planColumns+" FROM plans WHERE user_id = ? AND start_date <= ? AND end_date >= ? ORDER BY start_date DESC, id DESC LIMIT 1"),
		userID, date, date,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get covering plan: %w", err)
	}
	return &p, nil
}

// ListByUser returns the most recent plans, newest start date first. An
// empty userID lists plans of every user.
func (s *SQLStore) ListByUser(ctx context.Context, userID string, limit int) ([]Plan, error) {
	query := "SELECT " + planColumns + " FROM plans"
	var args []interface{}
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY start_date DESC, id DESC LIMIT ?"
	args = append(args, limit)

	var plans []Plan
	if err := s.db.SelectContext(ctx, &plans, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

// List returns the plans with the given ids ordered by id, or every plan
// when ids is empty.
func (s *SQLStore) List(ctx context.Context, ids []int64) ([]Plan, error) {
	query := "SELECT " + planColumns + " FROM plans ORDER BY id"
	var args []interface{}
	if len(ids) > 0 {
		q, a, err := sqlx.In("SELECT "+planColumns+" FROM plans WHERE id IN (?) ORDER BY id", ids)
		if err != nil {
			return nil, fmt.Errorf("failed to build plan query: %w", err)
		}
		query, args = q, a
	}

	var plans []Plan
	if err := s.db.SelectContext(ctx, &plans, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

// ReplaceEntries swaps the index rows of plan p in one transaction. Rows of
// p are removed, as are rows any plan left for the same user on dates,
// before entries are written.
func (s *SQLStore) ReplaceEntries(ctx context.Context, p *Plan, dates []string, entries []Entry) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM plans_by_date WHERE plan_id = ?"), p.ID); err != nil {
		return fmt.Errorf("failed to clear plan %d rows: %w", p.ID, err)
	}

	if len(dates) > 0 {
		q, args, err := sqlx.In("DELETE FROM plans_by_date WHERE user_id = ? AND date IN (?)", p.UserID, dates)
		if err != nil {
			return fmt.Errorf("failed to build delete query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(q), args...); err != nil {
			return fmt.Errorf("failed to clear superseded rows: %w", err)
		}
	}

	if len(entries) > 0 {
		stmt, err := tx.PreparexContext(ctx, tx.Rebind(
			`INSERT INTO plans_by_date (plan_id, user_id, date, slot, idx, meal_id) VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, date, slot, idx) DO UPDATE SET plan_id = excluded.plan_id, meal_id = excluded.meal_id`))
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx, e.PlanID, e.UserID, e.Date, string(e.Slot), e.Idx, e.MealID); err != nil {
				return fmt.Errorf("failed to insert row %s: %w", e.EventID(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit plan %d rows: %w", p.ID, err)
	}
	return nil
}

// Entries returns index rows for a user between from and to inclusive,
// ordered by date, slot and position. planID > 0 restricts to one plan.
func (s *SQLStore) Entries(ctx context.Context, userID, from, to string, planID int64) ([]Entry, error) {
	query := `SELECT plan_id, user_id, date, slot, idx, meal_id FROM plans_by_date
		WHERE user_id = ? AND date BETWEEN ? AND ?`
	args := []interface{}{userID, from, to}
	if planID > 0 {
		query += " AND plan_id = ?"
		args = append(args, planID)
	}
	query += ` ORDER BY date ASC,
		CASE slot WHEN 'breakfast' THEN 0 WHEN 'lunch' THEN 1 WHEN 'dinner' THEN 2 ELSE 99 END,
		idx ASC`

	var entries []Entry
	if err := s.db.SelectContext(ctx, &entries, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get plan entries: %w", err)
	}
	return entries, nil
}

// CountEntries counts a user's index rows dated on or before to.
func (s *SQLStore) CountEntries(ctx context.Context, userID, to string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.db.Rebind(
		`SELECT COUNT(*) FROM plans_by_date WHERE user_id = ? AND date <= ?`), userID, to)
	if err != nil {
		return 0, fmt.Errorf("failed to count plan entries: %w", err)
	}
	return n, nil
}
