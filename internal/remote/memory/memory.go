// Package memory is an in-process remote backend used for offline runs and
// tests. FailWhen lets callers inject failures per operation and row id.
package memory

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"expensesync/internal/core"
	"expensesync/internal/remote"
)

// Operation names passed to FailWhen.
const (
	OpListCategories = "list_categories"
	OpCreateCategory = "create_category"
	OpListExpenses   = "list_expenses"
	OpCreateExpense  = "create_expense"
	OpCreateImage    = "create_image"
	OpUpload         = "upload"
)

var (
	_ remote.Service     = (*Store)(nil)
	_ remote.ObjectStore = (*ObjectStore)(nil)
)

type Store struct {
	mu         sync.Mutex
	categories map[string]core.Category
	expenses   map[string]core.Expense
	images     map[string]core.ExpenseImage

	// FailWhen, if set, is consulted before every mutating or listing call.
	// A non-nil return is returned to the caller unchanged.
	FailWhen func(op, id string) error
}

func New() *Store {
	return &Store{
		categories: make(map[string]core.Category),
		expenses:   make(map[string]core.Expense),
		images:     make(map[string]core.ExpenseImage),
	}
}

func (s *Store) fail(op, id string) error {
	if s.FailWhen == nil {
		return nil
	}
	return s.FailWhen(op, id)
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	if err := s.fail(OpListCategories, ""); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, remote.ErrNotFound
	}
	return c, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	if err := s.fail(OpCreateCategory, c.ID); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.categories[c.ID]; exists {
		return core.Category{}, fmt.Errorf("category %s: duplicate key", c.ID)
	}
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return core.Category{}, remote.ErrNotFound
	}
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.categories, id)
	return nil
}

// ListExpenses returns rows newest date first.
func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	if err := s.fail(OpListExpenses, ""); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetExpense(_ context.Context, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, remote.ErrNotFound
	}
	return e, nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := s.fail(OpCreateExpense, e.ID); err != nil {
		return core.Expense{}, err
	}
	e.Images = nil
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.expenses[e.ID]; exists {
		return core.Expense{}, fmt.Errorf("expense %s: duplicate key", e.ID)
	}
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	e.Images = nil
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[e.ID]; !ok {
		return core.Expense{}, remote.ErrNotFound
	}
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expenses, id)
	return nil
}

func (s *Store) ListExpenseImages(_ context.Context, expenseID string) ([]core.ExpenseImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ExpenseImage
	for _, img := range s.images {
		if img.ExpenseID == expenseID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

func (s *Store) GetExpenseImage(_ context.Context, id string) (core.ExpenseImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.images[id]
	if !ok {
		return core.ExpenseImage{}, remote.ErrNotFound
	}
	return img, nil
}

func (s *Store) CreateExpenseImage(_ context.Context, img core.ExpenseImage) (core.ExpenseImage, error) {
	if err := s.fail(OpCreateImage, img.ID); err != nil {
		return core.ExpenseImage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.images[img.ID]; exists {
		return core.ExpenseImage{}, fmt.Errorf("image %s: duplicate key", img.ID)
	}
	s.images[img.ID] = img
	return img, nil
}

func (s *Store) DeleteExpenseImage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.images, id)
	return nil
}

// Seed helpers put rows directly into the backend, bypassing FailWhen.

func (s *Store) PutCategory(c core.Category) {
	s.mu.Lock()
	s.categories[c.ID] = c
	s.mu.Unlock()
}

func (s *Store) PutExpense(e core.Expense) {
	e.Images = nil
	s.mu.Lock()
	s.expenses[e.ID] = e
	s.mu.Unlock()
}

// ObjectStore keeps uploaded bytes keyed by path and hands back public URLs in
// the same shape the hosted storage endpoint uses.
type ObjectStore struct {
	mu      sync.Mutex
	baseURL string
	bucket  string
	objects map[string][]byte

	FailWhen func(op, path string) error
}

func NewObjectStore(baseURL, bucket string) *ObjectStore {
	return &ObjectStore{baseURL: baseURL, bucket: bucket, objects: make(map[string][]byte)}
}

func (o *ObjectStore) Upload(_ context.Context, path string, r io.Reader, _ string) (string, error) {
	if o.FailWhen != nil {
		if err := o.FailWhen(OpUpload, path); err != nil {
			return "", err
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read object body: %w", err)
	}
	o.mu.Lock()
	o.objects[path] = data
	o.mu.Unlock()
	return remote.PublicURL(o.baseURL, o.bucket, path), nil
}

func (o *ObjectStore) Delete(_ context.Context, path string) error {
	o.mu.Lock()
	delete(o.objects, path)
	o.mu.Unlock()
	return nil
}

// Object returns the stored bytes for path.
func (o *ObjectStore) Object(path string) ([]byte, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	b, ok := o.objects[path]
	return b, ok
}
