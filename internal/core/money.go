// Package core provides money parsing and handling utilities.
//
// Amounts are exact decimals. They are stored as text locally and cross the
// remote boundary as JSON numbers.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input into a decimal amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, an
// optional sign and surrounding whitespace. Any number is accepted, zero and
// negative values included; blank or unparsable input returns
// ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("4.50")  -> 4.5, nil
//	ParseAmount("4,50")  -> 4.5, nil
//	ParseAmount("-1")    -> -1, nil
//	ParseAmount("four")  -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimPrefix(s, "+")
	if s == "" || strings.HasPrefix(s, "+") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with two fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
