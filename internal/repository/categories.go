package repository

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"expensesync/internal/core"
	"expensesync/internal/remote"
	"expensesync/internal/storage"
	"expensesync/internal/watch"
)

// CategoryRepository is the read/write surface for categories. The local
// store answers every read; the remote is only touched by SyncCategories.
type CategoryRepository struct {
	store  *storage.SQLiteRepository
	remote remote.CategoryStore
	hub    *watch.Hub
	seed   singleflight.Group
	settings
}

func NewCategoryRepository(store *storage.SQLiteRepository, rem remote.CategoryStore, hub *watch.Hub, opts ...Option) *CategoryRepository {
	return &CategoryRepository{
		store:    store,
		remote:   rem,
		hub:      hub,
		settings: newSettings(opts),
	}
}

// AddCategory stores c locally, assigning an id and timestamps when missing,
// and returns the id. IsSync is kept as given.
func (r *CategoryRepository) AddCategory(ctx context.Context, c core.Category) (string, error) {
	if c.ID == "" {
		c.ID = r.newID()
	}
	now := r.nowMillis()
	if c.CreatedAt == 0 {
		c.CreatedAt = now
	}
	if c.UpdatedAt == 0 {
		c.UpdatedAt = now
	}
	if err := r.store.InsertCategory(ctx, c); err != nil {
		return "", fmt.Errorf("add category: %w", err)
	}
	r.hub.Notify(watch.TopicCategories)
	return c.ID, nil
}

func (r *CategoryRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	c.UpdatedAt = r.nowMillis()
	if err := r.store.UpdateCategory(ctx, c); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	r.hub.Notify(watch.TopicCategories)
	return nil
}

// DeleteCategory removes the local row only. Expenses that reference it keep
// their category id.
func (r *CategoryRepository) DeleteCategory(ctx context.Context, id string) error {
	if err := r.store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	r.hub.Notify(watch.TopicCategories)
	return nil
}

// GetCategoryByID returns nil when no such category exists.
func (r *CategoryRepository) GetCategoryByID(ctx context.Context, id string) (*core.Category, error) {
	c, err := r.store.GetCategory(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// ListCategories returns the current categories ordered by name.
func (r *CategoryRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	return r.store.ListCategories(ctx)
}

// WatchCategories emits the name-ordered category list now and again after
// every category mutation.
func (r *CategoryRepository) WatchCategories(ctx context.Context) (*watch.Feed[[]core.Category], error) {
	return watch.Watch(ctx, r.hub, watch.TopicCategories, r.store.ListCategories)
}

// CreateDefaultCategories seeds the built-in categories when the local table
// is empty. It is safe to call on every start and from concurrent callers.
func (r *CategoryRepository) CreateDefaultCategories(ctx context.Context) (bool, error) {
	v, err, _ := r.seed.Do("defaults", func() (any, error) {
		now := r.nowMillis()
		cats := core.DefaultCategories()
		for i := range cats {
			cats[i].ID = r.newID()
			cats[i].CreatedAt = now
			cats[i].UpdatedAt = now
		}
		return r.store.SeedCategories(ctx, cats)
	})
	if err != nil {
		return false, fmt.Errorf("create default categories: %w", err)
	}
	seeded := v.(bool)
	if seeded {
		r.hub.Notify(watch.TopicCategories)
	}
	return seeded, nil
}

// SyncCategories pushes unsynced categories and inserts remote categories
// missing locally. Remote failures are reported per row, never returned.
func (r *CategoryRepository) SyncCategories(ctx context.Context) (SyncReport, error) {
	return reconcile(ctx, r.settings, reconciler[core.Category]{
		entity:   EntityCategories,
		id:       func(c core.Category) string { return c.ID },
		unsynced: r.store.ListUnsyncedCategories,
		push: func(ctx context.Context, c core.Category) (core.Category, error) {
			_, err := r.remote.CreateCategory(ctx, c)
			return c, err
		},
		markSynced: func(ctx context.Context, c core.Category) error {
			if err := r.store.MarkCategorySynced(ctx, c.ID); err != nil {
				return err
			}
			r.hub.Notify(watch.TopicCategories)
			return nil
		},
		listRemote: r.remote.ListCategories,
		existsLocal: func(ctx context.Context, id string) (bool, error) {
			_, err := r.store.GetCategory(ctx, id)
			if errors.Is(err, storage.ErrNotFound) {
				return false, nil
			}
			return err == nil, err
		},
		insertLocal: func(ctx context.Context, c core.Category) error {
			c.IsSync = true
			if err := r.store.InsertCategory(ctx, c); err != nil {
				return err
			}
			r.hub.Notify(watch.TopicCategories)
			return nil
		},
	})
}
