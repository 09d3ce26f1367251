package services

import (
	"context"
	"fmt"
	"log/slog"

	"expensesync/internal/amqp"
	"expensesync/internal/core"
	"expensesync/internal/repository"
)

// SyncRequester asks a worker to run a reconciliation pass.
type SyncRequester interface {
	PublishSyncRequest(ctx context.Context, msg *amqp.SyncRequestMessage) error
}

// ExpenseService runs the add-expense flow: validate, save locally, attach
// images and request a sync.
type ExpenseService struct {
	expenses  *repository.ExpenseRepository
	publisher SyncRequester
}

// NewExpenseService creates the service. publisher may be nil, in which case
// syncing is left to the periodic processor or an explicit sync.
func NewExpenseService(expenses *repository.ExpenseRepository, publisher SyncRequester) *ExpenseService {
	return &ExpenseService{
		expenses:  expenses,
		publisher: publisher,
	}
}

// CreateExpense validates form before anything is written. Image files are
// attached after the expense is saved; a failing image stops the flow but
// keeps what was already stored. Publishing the sync request never fails
// the call.
func (s *ExpenseService) CreateExpense(ctx context.Context, form core.ExpenseForm, imageFiles ...string) (core.Expense, error) {
	e, err := form.Expense()
	if err != nil {
		return core.Expense{}, fmt.Errorf("validate expense: %w", err)
	}

	id, err := s.expenses.AddExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	e.ID = id

	for _, file := range imageFiles {
		img, err := s.expenses.AddExpenseImage(ctx, id, file)
		if err != nil {
			return e, fmt.Errorf("attach %s: %w", file, err)
		}
		e.Images = append(e.Images, img)
	}

	entities := []string{repository.EntityExpenses}
	if len(imageFiles) > 0 {
		entities = append(entities, repository.EntityImages)
	}
	if err := s.requestSync(ctx, "expense created", entities...); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync request", "id", id, "error", err)
	}

	stored, err := s.expenses.GetExpenseByID(ctx, id)
	if err != nil {
		return e, fmt.Errorf("reload expense: %w", err)
	}
	if stored == nil {
		return e, nil
	}
	return *stored, nil
}

func (s *ExpenseService) requestSync(ctx context.Context, reason string, entities ...string) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No sync publisher configured, skipping sync request")
		return nil
	}
	return s.publisher.PublishSyncRequest(ctx, amqp.NewSyncRequestMessage(reason, entities...))
}
