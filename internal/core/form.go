package core

import "strings"

// ExpenseForm is raw user input for the add-expense flow. Validate must pass
// before anything is persisted.
type ExpenseForm struct {
	Title      string
	Amount     string
	Date       Date
	CategoryID string
	Notes      string
}

func (f ExpenseForm) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return ErrEmptyTitle
	}
	if _, err := ParseAmount(f.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(f.CategoryID) == "" {
		return ErrMissingCategory
	}
	if err := f.Date.Validate(); err != nil {
		return err
	}
	return nil
}

// Expense converts a validated form into an unsynced expense without an id.
func (f ExpenseForm) Expense() (Expense, error) {
	if err := f.Validate(); err != nil {
		return Expense{}, err
	}
	amount, _ := ParseAmount(f.Amount)
	return Expense{
		Title:      strings.TrimSpace(f.Title),
		Amount:     amount,
		Date:       f.Date,
		CategoryID: f.CategoryID,
		Notes:      f.Notes,
	}, nil
}
