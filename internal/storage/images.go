package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"expensesync/internal/core"
)

const imageColumns = `id, expenseId, imageUri, thumbnailUri, isRemote, remoteUrl, isSync, createdAt`

func scanImage(s scanner) (core.ExpenseImage, error) {
	var i core.ExpenseImage
	err := s.Scan(&i.ID, &i.ExpenseID, &i.ImageURI, &i.ThumbnailURI, &i.IsRemote, &i.RemoteURL, &i.IsSync, &i.CreatedAt)
	return i, err
}

// InsertExpenseImage stores img. The owning expense must exist.
func (r *SQLiteRepository) InsertExpenseImage(ctx context.Context, img core.ExpenseImage) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expense_images (`+imageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			expenseId = excluded.expenseId,
			imageUri = excluded.imageUri,
			thumbnailUri = excluded.thumbnailUri,
			isRemote = excluded.isRemote,
			remoteUrl = excluded.remoteUrl,
			isSync = excluded.isSync,
			createdAt = excluded.createdAt`,
		img.ID, img.ExpenseID, img.ImageURI, img.ThumbnailURI, img.IsRemote, img.RemoteURL, img.IsSync, img.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert expense image: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetExpenseImage(ctx context.Context, id string) (core.ExpenseImage, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+imageColumns+` FROM expense_images WHERE id = ?`, id)
	img, err := scanImage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseImage{}, fmt.Errorf("expense image %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.ExpenseImage{}, fmt.Errorf("get expense image: %w", err)
	}
	return img, nil
}

func (r *SQLiteRepository) DeleteExpenseImage(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expense_images WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete expense image: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListExpenseImages(ctx context.Context, expenseID string) ([]core.ExpenseImage, error) {
	return r.queryImages(ctx,
		`SELECT `+imageColumns+` FROM expense_images WHERE expenseId = ? ORDER BY createdAt ASC, id ASC`,
		expenseID)
}

func (r *SQLiteRepository) ListUnsyncedExpenseImages(ctx context.Context) ([]core.ExpenseImage, error) {
	return r.queryImages(ctx, `SELECT `+imageColumns+` FROM expense_images WHERE isSync = 0 ORDER BY createdAt ASC, id ASC`)
}

func (r *SQLiteRepository) queryImages(ctx context.Context, query string, args ...any) ([]core.ExpenseImage, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expense images: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseImage
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense image: %w", err)
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

// MarkExpenseImageSynced records a completed upload in one statement, so a
// row is never left with a URL but no sync flag.
func (r *SQLiteRepository) MarkExpenseImageSynced(ctx context.Context, id, remoteURL string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE expense_images SET isSync = 1, remoteUrl = ? WHERE id = ?`, remoteURL, id)
	if err != nil {
		return fmt.Errorf("mark expense image synced: %w", err)
	}
	return nil
}
