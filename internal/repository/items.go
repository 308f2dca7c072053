package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stocktrack/stockkeeper/internal/models"
)

// PostgresItemRepository implements inventory record persistence for export
// and restore.
type PostgresItemRepository struct {
	DB *sql.DB
}

// NewPostgresItemRepository creates a new PostgresItemRepository using the
// provided *sql.DB.
func NewPostgresItemRepository(db *sql.DB) *PostgresItemRepository {
	return &PostgresItemRepository{DB: db}
}

// ListAll returns every inventory record, ordered by ID for deterministic
// exports.
func (r *PostgresItemRepository) ListAll(ctx context.Context) ([]models.Item, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, sku, name, quantity, location, updated_at FROM items ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.ID, &it.SKU, &it.Name, &it.Quantity, &it.Location, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Count returns the number of inventory records.
func (r *PostgresItemRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// MergeNewer upserts only those records whose updated_at is newer than the
// live copy, inside one transaction. It returns the numbers of records
// written, skipped because the live copy was newer, and identical.
func (r *PostgresItemRepository) MergeNewer(ctx context.Context, items []models.Item) (restored, skipped, unchanged int, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, it := range items {
		var existing models.Item
		err := tx.QueryRowContext(ctx, `
			SELECT updated_at FROM items WHERE id = $1
		`, it.ID).Scan(&existing.UpdatedAt)
		if err != nil && err != sql.ErrNoRows {
			return 0, 0, 0, fmt.Errorf("check item: %w", err)
		}
		if err == nil {
			if existing.UpdatedAt.After(it.UpdatedAt) {
				skipped++
				continue
			}
			if existing.UpdatedAt.Equal(it.UpdatedAt) {
				unchanged++
				continue
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO items (id, sku, name, quantity, location, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				sku = EXCLUDED.sku,
				name = EXCLUDED.name,
				quantity = EXCLUDED.quantity,
				location = EXCLUDED.location,
				updated_at = EXCLUDED.updated_at
		`, it.ID, it.SKU, it.Name, it.Quantity, it.Location, it.UpdatedAt)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("upsert item: %w", err)
		}
		restored++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, 0, fmt.Errorf("commit: %w", err)
	}
	return restored, skipped, unchanged, nil
}

// PreviewMerge reports what MergeNewer would do without writing anything.
func (r *PostgresItemRepository) PreviewMerge(ctx context.Context, items []models.Item) (restored, skipped, unchanged int, err error) {
	for _, it := range items {
		var existing models.Item
		err := r.DB.QueryRowContext(ctx, `
			SELECT updated_at FROM items WHERE id = $1
		`, it.ID).Scan(&existing.UpdatedAt)
		if err == sql.ErrNoRows {
			restored++
			continue
		}
		if err != nil {
			return 0, 0, 0, fmt.Errorf("check item: %w", err)
		}
		switch {
		case existing.UpdatedAt.After(it.UpdatedAt):
			skipped++
		case existing.UpdatedAt.Equal(it.UpdatedAt):
			unchanged++
		default:
			restored++
		}
	}
	return restored, skipped, unchanged, nil
}

// ReplaceAll deletes every record and inserts the given set in one
// transaction. Used by full restores.
func (r *PostgresItemRepository) ReplaceAll(ctx context.Context, items []models.Item) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return 0, fmt.Errorf("clear items: %w", err)
	}

	for _, it := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO items (id, sku, name, quantity, location, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, it.ID, it.SKU, it.Name, it.Quantity, it.Location, it.UpdatedAt)
		if err != nil {
			return 0, fmt.Errorf("insert item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(items), nil
}
