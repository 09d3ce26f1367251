package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"expensesync/internal/core"
	"expensesync/internal/remote"
)

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	var rows []categoryRow
	q := url.Values{"select": {"*"}, "order": {"name.asc"}}
	if err := c.do(ctx, request{method: http.MethodGet, path: restPath(tableCategories), query: q, jsonOut: &rows}); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, 0, len(rows))
	for _, r := range rows {
		cat, err := r.domain()
		if err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	return out, nil
}

func (c *Client) GetCategory(ctx context.Context, id string) (core.Category, error) {
	var rows []categoryRow
	if err := c.selectByID(ctx, tableCategories, id, &rows); err != nil {
		return core.Category{}, fmt.Errorf("get category %s: %w", id, err)
	}
	if len(rows) == 0 {
		return core.Category{}, fmt.Errorf("get category %s: %w", id, remote.ErrNotFound)
	}
	return rows[0].domain()
}

func (c *Client) CreateCategory(ctx context.Context, cat core.Category) (core.Category, error) {
	row := categoryToRow(cat)
	row.UserID = c.userID
	var rows []categoryRow
	if err := c.insert(ctx, tableCategories, row, &rows); err != nil {
		return core.Category{}, fmt.Errorf("create category %s: %w", cat.ID, err)
	}
	if len(rows) == 0 {
		return cat, nil
	}
	return rows[0].domain()
}

func (c *Client) UpdateCategory(ctx context.Context, cat core.Category) (core.Category, error) {
	var rows []categoryRow
	if err := c.updateByID(ctx, tableCategories, cat.ID, categoryToRow(cat), &rows); err != nil {
		return core.Category{}, fmt.Errorf("update category %s: %w", cat.ID, err)
	}
	if len(rows) == 0 {
		return core.Category{}, fmt.Errorf("update category %s: %w", cat.ID, remote.ErrNotFound)
	}
	return rows[0].domain()
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	if err := c.deleteByID(ctx, tableCategories, id); err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	return nil
}

// ListExpenses returns the session user's expenses. Without a session there
// is no user to scope to, so nothing is listed and no request is made.
func (c *Client) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	if c.userID == "" {
		return []core.Expense{}, nil
	}
	var rows []expenseRow
	q := url.Values{"select": {"*"}, "order": {"date.desc"}, "user_id": {eq(c.userID)}}
	if err := c.do(ctx, request{method: http.MethodGet, path: restPath(tableExpenses), query: q, jsonOut: &rows}); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.Expense, 0, len(rows))
	for _, r := range rows {
		e, err := r.domain()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (c *Client) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	var rows []expenseRow
	if err := c.selectByID(ctx, tableExpenses, id, &rows); err != nil {
		return core.Expense{}, fmt.Errorf("get expense %s: %w", id, err)
	}
	if len(rows) == 0 {
		return core.Expense{}, fmt.Errorf("get expense %s: %w", id, remote.ErrNotFound)
	}
	return rows[0].domain()
}

func (c *Client) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	row := expenseToRow(e)
	row.UserID = c.userID
	var rows []expenseRow
	if err := c.insert(ctx, tableExpenses, row, &rows); err != nil {
		return core.Expense{}, fmt.Errorf("create expense %s: %w", e.ID, err)
	}
	if len(rows) == 0 {
		return e, nil
	}
	return rows[0].domain()
}

func (c *Client) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	var rows []expenseRow
	if err := c.updateByID(ctx, tableExpenses, e.ID, expenseToRow(e), &rows); err != nil {
		return core.Expense{}, fmt.Errorf("update expense %s: %w", e.ID, err)
	}
	if len(rows) == 0 {
		return core.Expense{}, fmt.Errorf("update expense %s: %w", e.ID, remote.ErrNotFound)
	}
	return rows[0].domain()
}

func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	if err := c.deleteByID(ctx, tableExpenses, id); err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	return nil
}

func (c *Client) ListExpenseImages(ctx context.Context, expenseID string) ([]core.ExpenseImage, error) {
	var rows []imageRow
	q := url.Values{"select": {"*"}, "expense_id": {eq(expenseID)}, "order": {"created_at.asc"}}
	if err := c.do(ctx, request{method: http.MethodGet, path: restPath(tableImages), query: q, jsonOut: &rows}); err != nil {
		return nil, fmt.Errorf("list images of expense %s: %w", expenseID, err)
	}
	out := make([]core.ExpenseImage, 0, len(rows))
	for _, r := range rows {
		img, err := r.domain()
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

func (c *Client) GetExpenseImage(ctx context.Context, id string) (core.ExpenseImage, error) {
	var rows []imageRow
	if err := c.selectByID(ctx, tableImages, id, &rows); err != nil {
		return core.ExpenseImage{}, fmt.Errorf("get image %s: %w", id, err)
	}
	if len(rows) == 0 {
		return core.ExpenseImage{}, fmt.Errorf("get image %s: %w", id, remote.ErrNotFound)
	}
	return rows[0].domain()
}

func (c *Client) CreateExpenseImage(ctx context.Context, img core.ExpenseImage) (core.ExpenseImage, error) {
	var rows []imageRow
	if err := c.insert(ctx, tableImages, imageToRow(img), &rows); err != nil {
		return core.ExpenseImage{}, fmt.Errorf("create image %s: %w", img.ID, err)
	}
	if len(rows) == 0 {
		return img, nil
	}
	return rows[0].domain()
}

// DeleteExpenseImage removes the stored object the record points at, then the
// record itself. A record whose URL is not a public storage URL only loses
// the row.
func (c *Client) DeleteExpenseImage(ctx context.Context, id string) error {
	img, err := c.GetExpenseImage(ctx, id)
	switch {
	case errors.Is(err, remote.ErrNotFound):
	case err != nil:
		return fmt.Errorf("delete image %s: %w", id, err)
	default:
		if bucket, path, ok := ObjectFromURL(img.RemoteURL); ok {
			if err := c.deleteObject(ctx, bucket, path); err != nil {
				return fmt.Errorf("delete image %s object: %w", id, err)
			}
		}
	}
	if err := c.deleteByID(ctx, tableImages, id); err != nil {
		return fmt.Errorf("delete image %s: %w", id, err)
	}
	return nil
}

// ObjectFromURL splits a public storage URL into bucket and object path.
func ObjectFromURL(publicURL string) (bucket, path string, ok bool) {
	const marker = "/storage/v1/object/public/"
	i := strings.LastIndex(publicURL, marker)
	if i < 0 {
		return "", "", false
	}
	bucket, path, ok = strings.Cut(publicURL[i+len(marker):], "/")
	if !ok || bucket == "" || path == "" {
		return "", "", false
	}
	return bucket, path, true
}

func (c *Client) selectByID(ctx context.Context, table, id string, out any) error {
	q := url.Values{"select": {"*"}, "id": {eq(id)}, "limit": {"1"}}
	return c.do(ctx, request{method: http.MethodGet, path: restPath(table), query: q, jsonOut: out})
}

func (c *Client) insert(ctx context.Context, table string, row, out any) error {
	return c.do(ctx, request{
		method:  http.MethodPost,
		path:    restPath(table),
		header:  returnRepresentation,
		jsonIn:  row,
		jsonOut: out,
	})
}

func (c *Client) updateByID(ctx context.Context, table, id string, row, out any) error {
	return c.do(ctx, request{
		method:  http.MethodPatch,
		path:    restPath(table),
		query:   url.Values{"id": {eq(id)}},
		header:  returnRepresentation,
		jsonIn:  row,
		jsonOut: out,
	})
}

func (c *Client) deleteByID(ctx context.Context, table, id string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   restPath(table),
		query:  url.Values{"id": {eq(id)}},
	})
}
