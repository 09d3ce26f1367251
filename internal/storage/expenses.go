package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"expensesync/internal/core"
)

const expenseColumns = `id, title, amount, date, categoryId, notes, isSync, createdAt, updatedAt`

func scanExpense(s scanner) (core.Expense, error) {
	var (
		e      core.Expense
		amount string
		date   string
	)
	if err := s.Scan(&e.ID, &e.Title, &amount, &date, &e.CategoryID, &e.Notes, &e.IsSync, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return e, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return e, fmt.Errorf("expense %s amount %q: %w", e.ID, amount, err)
	}
	e.Amount = d
	if e.Date, err = core.ParseDate(date); err != nil {
		return e, fmt.Errorf("expense %s: %w", e.ID, err)
	}
	return e, nil
}

// InsertExpense stores e, replacing the fields of any row with the same id.
// An existing row keeps its images.
func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.Expense) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			amount = excluded.amount,
			date = excluded.date,
			categoryId = excluded.categoryId,
			notes = excluded.notes,
			isSync = excluded.isSync,
			createdAt = excluded.createdAt,
			updatedAt = excluded.updatedAt`,
		e.ID, e.Title, e.Amount.String(), e.Date.String(), e.CategoryID, e.Notes, e.IsSync, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET title = ?, amount = ?, date = ?, categoryId = ?, notes = ?, isSync = ?, updatedAt = ?
		WHERE id = ?`,
		e.Title, e.Amount.String(), e.Date.String(), e.CategoryID, e.Notes, e.IsSync, e.UpdatedAt, e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireAffected(res, "update expense", e.ID)
}

// DeleteExpense removes the expense; its image rows go with it.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// GetExpense returns the expense row without images.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense by id: %w", err)
	}
	return e, nil
}

// ListExpenses returns all expenses, newest date first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return r.queryExpenses(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY date DESC, createdAt DESC`)
}

func (r *SQLiteRepository) ListExpensesByCategory(ctx context.Context, categoryID string) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE categoryId = ? ORDER BY date DESC, createdAt DESC`,
		categoryID)
}

// ListExpensesByDateRange returns expenses dated within [start, end] inclusive.
func (r *SQLiteRepository) ListExpensesByDateRange(ctx context.Context, start, end core.Date) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE date BETWEEN ? AND ? ORDER BY date DESC, createdAt DESC`,
		start.String(), end.String())
}

func (r *SQLiteRepository) ListUnsyncedExpenses(ctx context.Context) ([]core.Expense, error) {
	return r.queryExpenses(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE isSync = 0 ORDER BY createdAt ASC, id ASC`)
}

func (r *SQLiteRepository) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) MarkExpenseSynced(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE expenses SET isSync = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}
	return nil
}
