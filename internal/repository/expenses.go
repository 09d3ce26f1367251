package repository

import (
	"context"
	"errors"
	"fmt"

	"expensesync/internal/core"
	"expensesync/internal/images"
	"expensesync/internal/remote"
	"expensesync/internal/storage"
	"expensesync/internal/watch"
)

// ExpenseRemote is the part of the hosted backend the expense repository
// uses: expense rows, image records and the image object store.
type ExpenseRemote interface {
	remote.ExpenseStore
	remote.ImageStore
}

type ExpenseRepository struct {
	store     *storage.SQLiteRepository
	remote    ExpenseRemote
	objects   remote.ObjectStore
	processor *images.Processor
	hub       *watch.Hub
	settings
}

func NewExpenseRepository(
	store *storage.SQLiteRepository,
	rem ExpenseRemote,
	objects remote.ObjectStore,
	processor *images.Processor,
	hub *watch.Hub,
	opts ...Option,
) *ExpenseRepository {
	return &ExpenseRepository{
		store:     store,
		remote:    rem,
		objects:   objects,
		processor: processor,
		hub:       hub,
		settings:  newSettings(opts),
	}
}

// AddExpense stores e locally and returns its id. Attached images are added
// separately through AddExpenseImage.
func (r *ExpenseRepository) AddExpense(ctx context.Context, e core.Expense) (string, error) {
	if e.ID == "" {
		e.ID = r.newID()
	}
	now := r.nowMillis()
	if e.CreatedAt == 0 {
		e.CreatedAt = now
	}
	if e.UpdatedAt == 0 {
		e.UpdatedAt = now
	}
	if err := r.store.InsertExpense(ctx, e); err != nil {
		return "", fmt.Errorf("add expense: %w", err)
	}
	r.hub.Notify(watch.TopicExpenses)
	return e.ID, nil
}

func (r *ExpenseRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	e.UpdatedAt = r.nowMillis()
	if err := r.store.UpdateExpense(ctx, e); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	r.hub.Notify(watch.TopicExpenses)
	return nil
}

// DeleteExpense removes the expense and, through the cascade, its image
// rows. Stored image files are removed afterwards on a best-effort basis.
func (r *ExpenseRepository) DeleteExpense(ctx context.Context, id string) error {
	imgs, err := r.store.ListExpenseImages(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if err := r.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	r.hub.Notify(watch.TopicExpenses)
	for _, img := range imgs {
		r.removeFiles(ctx, img)
	}
	return nil
}

// GetExpenseByID returns the expense with its images, or nil when absent.
func (r *ExpenseRepository) GetExpenseByID(ctx context.Context, id string) (*core.Expense, error) {
	e, err := r.store.GetExpense(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	if e.Images, err = r.store.ListExpenseImages(ctx, id); err != nil {
		return nil, fmt.Errorf("get expense images: %w", err)
	}
	return &e, nil
}

// ListExpenses returns all expenses, newest date first, with their images.
func (r *ExpenseRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return r.withImages(ctx, r.store.ListExpenses)
}

func (r *ExpenseRepository) ListExpensesByCategory(ctx context.Context, categoryID string) ([]core.Expense, error) {
	return r.withImages(ctx, func(ctx context.Context) ([]core.Expense, error) {
		return r.store.ListExpensesByCategory(ctx, categoryID)
	})
}

// ListExpensesByDateRange includes both bounds.
func (r *ExpenseRepository) ListExpensesByDateRange(ctx context.Context, start, end core.Date) ([]core.Expense, error) {
	return r.withImages(ctx, func(ctx context.Context) ([]core.Expense, error) {
		return r.store.ListExpensesByDateRange(ctx, start, end)
	})
}

func (r *ExpenseRepository) WatchExpenses(ctx context.Context) (*watch.Feed[[]core.Expense], error) {
	return watch.Watch(ctx, r.hub, watch.TopicExpenses, r.ListExpenses)
}

func (r *ExpenseRepository) WatchExpensesByCategory(ctx context.Context, categoryID string) (*watch.Feed[[]core.Expense], error) {
	return watch.Watch(ctx, r.hub, watch.TopicExpenses, func(ctx context.Context) ([]core.Expense, error) {
		return r.ListExpensesByCategory(ctx, categoryID)
	})
}

func (r *ExpenseRepository) WatchExpensesByDateRange(ctx context.Context, start, end core.Date) (*watch.Feed[[]core.Expense], error) {
	return watch.Watch(ctx, r.hub, watch.TopicExpenses, func(ctx context.Context) ([]core.Expense, error) {
		return r.ListExpensesByDateRange(ctx, start, end)
	})
}

// withImages runs list and then loads each row's images one query at a time.
func (r *ExpenseRepository) withImages(ctx context.Context, list func(context.Context) ([]core.Expense, error)) ([]core.Expense, error) {
	exps, err := list(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	for i := range exps {
		imgs, err := r.store.ListExpenseImages(ctx, exps[i].ID)
		if err != nil {
			return nil, fmt.Errorf("list images of expense %s: %w", exps[i].ID, err)
		}
		exps[i].Images = imgs
	}
	return exps, nil
}

// SyncExpenses pushes unsynced expenses and inserts remote expenses missing
// locally. Remote failures are reported per row, never returned.
func (r *ExpenseRepository) SyncExpenses(ctx context.Context) (SyncReport, error) {
	return reconcile(ctx, r.settings, reconciler[core.Expense]{
		entity:   EntityExpenses,
		id:       func(e core.Expense) string { return e.ID },
		unsynced: r.store.ListUnsyncedExpenses,
		push: func(ctx context.Context, e core.Expense) (core.Expense, error) {
			_, err := r.remote.CreateExpense(ctx, e)
			return e, err
		},
		markSynced: func(ctx context.Context, e core.Expense) error {
			if err := r.store.MarkExpenseSynced(ctx, e.ID); err != nil {
				return err
			}
			r.hub.Notify(watch.TopicExpenses)
			return nil
		},
		listRemote: r.remote.ListExpenses,
		existsLocal: func(ctx context.Context, id string) (bool, error) {
			_, err := r.store.GetExpense(ctx, id)
			if errors.Is(err, storage.ErrNotFound) {
				return false, nil
			}
			return err == nil, err
		},
		insertLocal: func(ctx context.Context, e core.Expense) error {
			e.IsSync = true
			e.Images = nil
			if err := r.store.InsertExpense(ctx, e); err != nil {
				return err
			}
			r.hub.Notify(watch.TopicExpenses)
			return nil
		},
	})
}
