// Package core holds the domain types and the pure aggregation functions
// that turn persisted records into the derived views shown on screens.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a positive monetary amount in integer cents. Arithmetic stays in
// cents; decimal parsing and display formatting go through shopspring/decimal.
type Money struct {
	Cents int64
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ParseAmount converts a user-entered decimal string to Money with half-up
// rounding on the third decimal place. Accepts both dot and comma separators.
// Zero, negative and malformed values are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> Money{1234}
//	ParseAmount("12,345") -> Money{1235}
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0).IntPart()
	if cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents}, nil
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Decimal returns the amount as a decimal value (e.g. 12.34).
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats with two decimal places and no currency symbol ("12.34").
// Used for CSV rows and chart payloads.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Float64 returns the amount as a float for chart rendering only; all
// aggregation arithmetic stays in cents.
func (m Money) Float64() float64 {
	f, _ := m.Decimal().Float64()
	return f
}
