package recipe

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for meal data operations.
type Store interface {
	SaveMeal(ctx context.Context, meal *Meal) error
	GetMeal(ctx context.Context, id string) (*Meal, error)
	GetMealsByIDs(ctx context.Context, ids []string) (map[string]*Meal, error)
	ListMeals(ctx context.Context, query string, limit, offset int) ([]*Meal, error)
	RandomMeals(ctx context.Context, limit int) ([]*Meal, error)
}

// SQLStore implements the Store interface through sqlx.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore creates a new SQLStore.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

const mealColumns = "id, title, description, image_path, time_minutes, tags, cuisine, diet, allergens, ingredients_json, nutrition_json"

// SaveMeal inserts or replaces a meal.
func (s *SQLStore) SaveMeal(ctx context.Context, meal *Meal) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO meals (`+mealColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET title = excluded.title, description = excluded.description,
		image_path = excluded.image_path, time_minutes = excluded.time_minutes, tags = excluded.tags,
		cuisine = excluded.cuisine, diet = excluded.diet, allergens = excluded.allergens,
		ingredients_json = excluded.ingredients_json, nutrition_json = excluded.nutrition_json`),
		meal.ID,
		meal.Title,
		meal.Description,
		meal.ImagePath,
		meal.TimeMinutes,
		meal.TagsRaw,
		meal.Cuisine,
		meal.Diet,
		meal.AllergensRaw,
		meal.IngredientsJSON,
		meal.NutritionJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save meal: %w", err)
	}
	return nil
}

// GetMeal retrieves a meal by id.
func (s *SQLStore) GetMeal(ctx context.Context, id string) (*Meal, error) {
	var m Meal
	err := s.db.GetContext(ctx, &m, s.db.Rebind("SELECT "+mealColumns+" FROM meals WHERE id = ?"), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Meal not found
		}
		return nil, fmt.Errorf("failed to get meal by id: %w", err)
	}
	return &m, nil
}

// GetMealsByIDs fetches all meals in ids with one query, keyed by id.
// Unknown ids are absent from the map.
func (s *SQLStore) GetMealsByIDs(ctx context.Context, ids []string) (map[string]*Meal, error) {
	out := make(map[string]*Meal, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In("SELECT "+mealColumns+" FROM meals WHERE id IN (?)", unique(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to build meals query: %w", err)
	}

	var meals []*Meal
	if err := s.db.SelectContext(ctx, &meals, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get meals: %w", err)
	}
	for _, m := range meals {
		out[m.ID] = m
	}
	return out, nil
}

// ListMeals lists meals ordered by title, optionally filtered by a
// substring of the title or description.
func (s *SQLStore) ListMeals(ctx context.Context, query string, limit, offset int) ([]*Meal, error) {
	var args []interface{}
	q := "SELECT " + mealColumns + " FROM meals WHERE 1=1"
	if query != "" {
		like := "%" + strings.ToLower(query) + "%"
		q += " AND (LOWER(title) LIKE ? OR LOWER(description) LIKE ?)"
		args = append(args, like, like)
	}
	q += " ORDER BY title, id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var meals []*Meal
	if err := s.db.SelectContext(ctx, &meals, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	return meals, nil
}

// RandomMeals returns up to limit meals in random order.
func (s *SQLStore) RandomMeals(ctx context.Context, limit int) ([]*Meal, error) {
	var meals []*Meal
	err := s.db.SelectContext(ctx, &meals, s.db.Rebind("SELECT "+mealColumns+" FROM meals ORDER BY RANDOM() LIMIT ?"), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to sample meals: %w", err)
	}
	return meals, nil
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
