package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"4.50", "4.5", true},
		{"4,50", "4.5", true},
		{" 2.50 ", "2.5", true},
		{"0.01", "0.01", true},
		{"-1", "-1", true},
		{"-2,50", "-2.5", true},
		{"+1", "1", true},
		{"0", "0", true},
		{"+", "", false},
		{"-", "", false},
		{"++1", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.True(t, got.Equal(decimal.RequireFromString(tc.out)), "input %q: got %s", tc.in, got)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "4.50", FormatAmount(decimal.RequireFromString("4.5")))
	assert.Equal(t, "10.00", FormatAmount(decimal.NewFromInt(10)))
}
