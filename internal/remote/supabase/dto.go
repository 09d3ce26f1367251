package supabase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"expensesync/internal/core"
)

// Row shapes as stored by the hosted tables. Dates travel as YYYY-MM-DD and
// timestamps as ISO-8601 strings.
type (
	categoryRow struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Icon      string `json:"icon"`
		Color     string `json:"color"`
		IsDefault bool   `json:"is_default"`
		CreatedAt string `json:"created_at"`
		UpdatedAt string `json:"updated_at"`
		UserID    string `json:"user_id,omitempty"`
	}

	expenseRow struct {
		ID         string          `json:"id"`
		Title      string          `json:"title"`
		Amount     decimal.Decimal `json:"amount"`
		Date       string          `json:"date"`
		CategoryID string          `json:"category_id"`
		Notes      string          `json:"notes"`
		CreatedAt  string          `json:"created_at"`
		UpdatedAt  string          `json:"updated_at"`
		UserID     string          `json:"user_id,omitempty"`
	}

	imageRow struct {
		ID           string `json:"id"`
		ExpenseID    string `json:"expense_id"`
		ImageURL     string `json:"image_url"`
		ThumbnailURL string `json:"thumbnail_url"`
		CreatedAt    string `json:"created_at"`
	}
)

func categoryToRow(c core.Category) categoryRow {
	return categoryRow{
		ID:        c.ID,
		Name:      c.Name,
		Icon:      c.Icon,
		Color:     c.Color,
		IsDefault: c.IsDefault,
		CreatedAt: core.MillisToISO(c.CreatedAt),
		UpdatedAt: core.MillisToISO(c.UpdatedAt),
	}
}

// Rows read from the backend are synced by definition.
func (r categoryRow) domain() (core.Category, error) {
	created, err := core.ISOToMillis(r.CreatedAt)
	if err != nil {
		return core.Category{}, fmt.Errorf("category %s: %w", r.ID, err)
	}
	updated, err := core.ISOToMillis(r.UpdatedAt)
	if err != nil {
		return core.Category{}, fmt.Errorf("category %s: %w", r.ID, err)
	}
	return core.Category{
		ID:        r.ID,
		Name:      r.Name,
		Icon:      r.Icon,
		Color:     r.Color,
		IsDefault: r.IsDefault,
		IsSync:    true,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

func expenseToRow(e core.Expense) expenseRow {
	return expenseRow{
		ID:         e.ID,
		Title:      e.Title,
		Amount:     e.Amount,
		Date:       e.Date.String(),
		CategoryID: e.CategoryID,
		Notes:      e.Notes,
		CreatedAt:  core.MillisToISO(e.CreatedAt),
		UpdatedAt:  core.MillisToISO(e.UpdatedAt),
	}
}

func (r expenseRow) domain() (core.Expense, error) {
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: %w", r.ID, err)
	}
	created, err := core.ISOToMillis(r.CreatedAt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: %w", r.ID, err)
	}
	updated, err := core.ISOToMillis(r.UpdatedAt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: %w", r.ID, err)
	}
	return core.Expense{
		ID:         r.ID,
		Title:      r.Title,
		Amount:     r.Amount,
		Date:       date,
		CategoryID: r.CategoryID,
		Notes:      r.Notes,
		IsSync:     true,
		CreatedAt:  created,
		UpdatedAt:  updated,
	}, nil
}

func imageToRow(img core.ExpenseImage) imageRow {
	return imageRow{
		ID:           img.ID,
		ExpenseID:    img.ExpenseID,
		ImageURL:     img.RemoteURL,
		ThumbnailURL: img.RemoteURL,
		CreatedAt:    core.MillisToISO(img.CreatedAt),
	}
}

// Remote images have no local files until downloaded.
func (r imageRow) domain() (core.ExpenseImage, error) {
	created, err := core.ISOToMillis(r.CreatedAt)
	if err != nil {
		return core.ExpenseImage{}, fmt.Errorf("image %s: %w", r.ID, err)
	}
	return core.ExpenseImage{
		ID:        r.ID,
		ExpenseID: r.ExpenseID,
		IsRemote:  true,
		RemoteURL: r.ImageURL,
		IsSync:    true,
		CreatedAt: created,
	}, nil
}
