package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used locally and on the wire.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar date with no time component, always in UTC.
	Date struct {
		time.Time
	}

	Expense struct {
		ID         string
		Title      string
		Amount     decimal.Decimal
		Date       Date
		CategoryID string // may reference a category that no longer exists
		Notes      string
		Images     []ExpenseImage
		IsSync     bool
		CreatedAt  int64 // epoch milliseconds
		UpdatedAt  int64 // epoch milliseconds
	}

	Category struct {
		ID        string
		Name      string
		Icon      string // key into the fixed icon set
		Color     string // hex, e.g. "#4CAF50"
		IsDefault bool
		IsSync    bool
		CreatedAt int64
		UpdatedAt int64
	}

	// ExpenseImage is a photo attached to an expense. It is either local-only
	// (IsRemote false, RemoteURL empty) or uploaded (RemoteURL set, IsSync true).
	ExpenseImage struct {
		ID           string
		ExpenseID    string
		ImageURI     string
		ThumbnailURI string
		IsRemote     bool
		RemoteURL    string
		IsSync       bool
		CreatedAt    int64
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("amount must be a valid number")
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrMissingCategory = errors.New("please select a category")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses an ISO calendar date ("YYYY-MM-DD").
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// String returns the ISO calendar date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Equal reports whether both dates denote the same calendar day.
func (d Date) Equal(o Date) bool {
	return d.String() == o.String()
}

// ImageFor returns the expense's image with the given id.
func (e Expense) ImageFor(id string) (ExpenseImage, bool) {
	for _, img := range e.Images {
		if img.ID == id {
			return img, true
		}
	}
	return ExpenseImage{}, false
}

// Uploaded reports whether the image has been mirrored to the object store.
func (i ExpenseImage) Uploaded() bool {
	return i.IsSync && i.RemoteURL != ""
}
