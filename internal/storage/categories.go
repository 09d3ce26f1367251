package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"expensesync/internal/core"
)

const categoryColumns = `id, name, icon, color, isDefault, isSync, createdAt, updatedAt`

func scanCategory(s scanner) (core.Category, error) {
	var c core.Category
	err := s.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &c.IsDefault, &c.IsSync, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertCategory(ctx context.Context, db execer, c core.Category) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			icon = excluded.icon,
			color = excluded.color,
			isDefault = excluded.isDefault,
			isSync = excluded.isSync,
			createdAt = excluded.createdAt,
			updatedAt = excluded.updatedAt`,
		c.ID, c.Name, c.Icon, c.Color, c.IsDefault, c.IsSync, c.CreatedAt, c.UpdatedAt)
	return err
}

// InsertCategory stores c, replacing any row with the same id.
func (r *SQLiteRepository) InsertCategory(ctx context.Context, c core.Category) error {
	if err := upsertCategory(ctx, r.db, c); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, icon = ?, color = ?, isDefault = ?, isSync = ?, updatedAt = ?
		WHERE id = ?`,
		c.Name, c.Icon, c.Color, c.IsDefault, c.IsSync, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireAffected(res, "update category", c.ID)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category by id: %w", err)
	}
	return c, nil
}

// ListCategories returns every category ordered by name.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	return r.queryCategories(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name ASC, id ASC`)
}

func (r *SQLiteRepository) ListUnsyncedCategories(ctx context.Context) ([]core.Category, error) {
	return r.queryCategories(ctx, `SELECT `+categoryColumns+` FROM categories WHERE isSync = 0 ORDER BY createdAt ASC, id ASC`)
}

func (r *SQLiteRepository) queryCategories(ctx context.Context, query string, args ...any) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) MarkCategorySynced(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE categories SET isSync = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark category synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CountCategories(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

// SeedCategories inserts cats only when the table is empty. The count check
// and the inserts share one transaction, so concurrent callers seed once.
func (r *SQLiteRepository) SeedCategories(ctx context.Context, cats []core.Category) (bool, error) {
	seeded := false
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var n int64
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
			return fmt.Errorf("count categories: %w", err)
		}
		if n != 0 {
			return nil
		}
		for _, c := range cats {
			if err := upsertCategory(ctx, tx, c); err != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, err)
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if seeded {
		slog.InfoContext(ctx, "Default categories seeded", "count", len(cats))
	}
	return seeded, nil
}
