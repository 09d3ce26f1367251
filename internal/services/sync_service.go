package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"expensesync/internal/repository"
)

type (
	CategorySyncer interface {
		CreateDefaultCategories(ctx context.Context) (bool, error)
		SyncCategories(ctx context.Context) (repository.SyncReport, error)
	}

	ExpenseSyncer interface {
		SyncExpenses(ctx context.Context) (repository.SyncReport, error)
		SyncExpenseImages(ctx context.Context) (repository.SyncReport, error)
	}
)

// ErrUnknownEntity is returned for sync requests naming an entity that has no
// reconciliation pass.
var ErrUnknownEntity = errors.New("unknown sync entity")

// syncOrder reconciles categories before the expenses that reference them,
// and expenses before the image records that reference them.
var syncOrder = []string{repository.EntityCategories, repository.EntityExpenses, repository.EntityImages}

// SyncService runs reconciliation passes. Concurrent requests for the same
// entity set share one pass.
type SyncService struct {
	categories CategorySyncer
	expenses   ExpenseSyncer
	group      singleflight.Group
}

func NewSyncService(categories CategorySyncer, expenses ExpenseSyncer) *SyncService {
	return &SyncService{categories: categories, expenses: expenses}
}

// SyncAll reconciles every entity.
func (s *SyncService) SyncAll(ctx context.Context) ([]repository.SyncReport, error) {
	return s.Sync(ctx)
}

// Sync reconciles the named entities, all of them when none are named,
// always in dependency order. A local-store error stops the remaining passes.
func (s *SyncService) Sync(ctx context.Context, entities ...string) ([]repository.SyncReport, error) {
	selected, err := selectEntities(entities)
	if err != nil {
		return nil, err
	}

	v, err, shared := s.group.Do(strings.Join(selected, ","), func() (any, error) {
		var reports []repository.SyncReport
		for _, entity := range selected {
			report, err := s.syncEntity(ctx, entity)
			if err != nil {
				return reports, fmt.Errorf("sync %s: %w", entity, err)
			}
			reports = append(reports, report)
		}
		return reports, nil
	})
	if shared {
		slog.DebugContext(ctx, "Joined in-flight sync", "entities", selected)
	}
	reports, _ := v.([]repository.SyncReport)
	return reports, err
}

// SeedDefaults creates the default categories when none exist.
func (s *SyncService) SeedDefaults(ctx context.Context) (bool, error) {
	return s.categories.CreateDefaultCategories(ctx)
}

func (s *SyncService) syncEntity(ctx context.Context, entity string) (repository.SyncReport, error) {
	switch entity {
	case repository.EntityCategories:
		return s.categories.SyncCategories(ctx)
	case repository.EntityExpenses:
		return s.expenses.SyncExpenses(ctx)
	default:
		return s.expenses.SyncExpenseImages(ctx)
	}
}

func selectEntities(entities []string) ([]string, error) {
	if len(entities) == 0 {
		return syncOrder, nil
	}
	want := make(map[string]bool, len(entities))
	for _, e := range entities {
		if !isKnownEntity(e) {
			return nil, fmt.Errorf("%w %q", ErrUnknownEntity, e)
		}
		want[e] = true
	}
	var out []string
	for _, e := range syncOrder {
		if want[e] {
			out = append(out, e)
		}
	}
	return out, nil
}

func isKnownEntity(e string) bool {
	for _, known := range syncOrder {
		if e == known {
			return true
		}
	}
	return false
}
