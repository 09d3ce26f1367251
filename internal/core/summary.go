package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Period selects the dashboard window.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

// ParsePeriod accepts a case-insensitive period name.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodWeek, PeriodMonth, PeriodYear, PeriodAll:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// Range returns the inclusive date window for p relative to today. Weeks
// start on Monday.
func (p Period) Range(today Date) (Date, Date) {
	switch p {
	case PeriodWeek:
		offset := (int(today.Weekday()) + 6) % 7
		start := today.AddDays(-offset)
		return start, start.AddDays(6)
	case PeriodYear:
		return NewDate(today.Year(), 1, 1), NewDate(today.Year(), 12, 31)
	case PeriodAll:
		return NewDate(2000, 1, 1), NewDate(2100, 12, 31)
	default:
		start := NewDate(today.Year(), int(today.Month()), 1)
		end := Date{Time: start.AddDate(0, 1, -1)}
		return start, end
	}
}

// CategoryStat is the spending for one category inside a window.
type CategoryStat struct {
	Category   Category
	Amount     decimal.Decimal
	Percentage decimal.Decimal // of the window total, two decimals
}

// DailyTotal is the spending for one calendar day.
type DailyTotal struct {
	Date   Date
	Amount decimal.Decimal
}

// Summary aggregates expenses for a dashboard window.
type Summary struct {
	Start      Date
	End        Date
	Total      decimal.Decimal
	ByCategory []CategoryStat // descending by amount
	Daily      []DailyTotal   // ascending by date
}

// Summarize aggregates the expenses dated within [start, end]. Only known
// categories with a positive amount appear in ByCategory.
func Summarize(expenses []Expense, categories []Category, start, end Date) Summary {
	s := Summary{Start: start, End: end, Total: decimal.Zero}

	byCategory := make(map[string]decimal.Decimal)
	byDay := make(map[string]decimal.Decimal)
	days := make(map[string]Date)

	for _, e := range expenses {
		if e.Date.Before(start.Time) || e.Date.After(end.Time) {
			continue
		}
		s.Total = s.Total.Add(e.Amount)
		byCategory[e.CategoryID] = byCategory[e.CategoryID].Add(e.Amount)
		key := e.Date.String()
		byDay[key] = byDay[key].Add(e.Amount)
		days[key] = e.Date
	}

	hundred := decimal.NewFromInt(100)
	for _, c := range categories {
		amount, ok := byCategory[c.ID]
		if !ok || !amount.IsPositive() {
			continue
		}
		pct := decimal.Zero
		if s.Total.IsPositive() {
			pct = amount.Div(s.Total).Mul(hundred).Round(2)
		}
		s.ByCategory = append(s.ByCategory, CategoryStat{Category: c, Amount: amount, Percentage: pct})
	}
	sort.SliceStable(s.ByCategory, func(i, j int) bool {
		return s.ByCategory[i].Amount.GreaterThan(s.ByCategory[j].Amount)
	})

	for key, amount := range byDay {
		s.Daily = append(s.Daily, DailyTotal{Date: days[key], Amount: amount})
	}
	sort.Slice(s.Daily, func(i, j int) bool {
		return s.Daily[i].Date.Before(s.Daily[j].Date.Time)
	})

	return s
}

// Today returns the current calendar date in loc.
func Today(now time.Time, loc *time.Location) Date {
	return DateOf(now.In(loc))
}
