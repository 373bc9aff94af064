package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SQLStore persists catalog items and the ingredient to item map.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore creates a new SQLStore.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// SaveItem inserts or updates an item by name and returns its id.
func (s *SQLStore) SaveItem(ctx context.Context, it *Item) (int64, error) {
	switch it.PackUnit {
	case UnitCount, UnitGrams, UnitMilliliters:
	default:
		return 0, fmt.Errorf("invalid pack unit %q", it.PackUnit)
	}

	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(
		`INSERT INTO catalog_items (name, aisle, emoji, pack_amount, pack_unit, price_per_pack, size_label)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET aisle = excluded.aisle, emoji = excluded.emoji,
		pack_amount = excluded.pack_amount, pack_unit = excluded.pack_unit,
		price_per_pack = excluded.price_per_pack, size_label = excluded.size_label
		RETURNING id`),
		it.Name, it.Aisle, it.Emoji, it.PackAmount, it.PackUnit, it.PricePerPack, it.SizeLabel,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save catalog item: %w", err)
	}
	it.ID = id
	return id, nil
}

// MapIngredient points a canonical ingredient name at a catalog item.
func (s *SQLStore) MapIngredient(ctx context.Context, ingredient string, catalogID int64) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO ingredient_catalog_map (ingredient, catalog_id) VALUES (?, ?)
		ON CONFLICT (ingredient) DO UPDATE SET catalog_id = excluded.catalog_id`),
		ingredient, catalogID,
	)
	if err != nil {
		return fmt.Errorf("failed to map ingredient: %w", err)
	}
	return nil
}

// Lookup returns the catalog item mapped to ingredient, or nil.
func (s *SQLStore) Lookup(ctx context.Context, ingredient string) (*Item, error) {
	var it Item
	err := s.db.GetContext(ctx, &it, s.db.Rebind(
		`SELECT c.id, c.name, c.aisle, c.emoji, c.pack_amount, c.pack_unit, c.price_per_pack, c.size_label
		FROM ingredient_catalog_map m JOIN catalog_items c ON c.id = m.catalog_id
		WHERE m.ingredient = ?`), ingredient)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up catalog item: %w", err)
	}
	return &it, nil
}
