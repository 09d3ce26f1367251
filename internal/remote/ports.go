// Package remote declares the outbound ports for the hosted data service:
// per-entity row CRUD and a binary object store for image files.
package remote

import (
	"context"
	"errors"
	"io"
	"strings"

	"expensesync/internal/core"
)

// ErrNotFound is returned by Get lookups for ids the backend does not hold.
var ErrNotFound = errors.New("remote row not found")

// Ports for outbound adapters.
type (
	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		GetCategory(ctx context.Context, id string) (core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
		DeleteCategory(ctx context.Context, id string) error
	}

	// ExpenseStore rows carry no images; those live in ImageStore.
	ExpenseStore interface {
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		GetExpense(ctx context.Context, id string) (core.Expense, error)
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		DeleteExpense(ctx context.Context, id string) error
	}

	ImageStore interface {
		ListExpenseImages(ctx context.Context, expenseID string) ([]core.ExpenseImage, error)
		GetExpenseImage(ctx context.Context, id string) (core.ExpenseImage, error)
		CreateExpenseImage(ctx context.Context, img core.ExpenseImage) (core.ExpenseImage, error)
		DeleteExpenseImage(ctx context.Context, id string) error
	}

	// ObjectStore stores image bytes under path (expenseId/filename) and
	// returns the public URL of the stored object.
	ObjectStore interface {
		Upload(ctx context.Context, path string, r io.Reader, contentType string) (url string, err error)
		Delete(ctx context.Context, path string) error
	}

	// Service is the full row surface of the hosted backend.
	Service interface {
		CategoryStore
		ExpenseStore
		ImageStore
	}
)

// ImagePath is the object key for an image file of an expense.
func ImagePath(expenseID, filename string) string {
	return expenseID + "/" + filename
}

// PublicURL builds the public object URL served by the storage endpoint.
func PublicURL(baseURL, bucket, path string) string {
	return strings.TrimRight(baseURL, "/") + "/storage/v1/object/public/" + bucket + "/" + path
}
