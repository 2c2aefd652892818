// Package core holds the domain model for the finance tracker:
// money amounts, transactions, budgets and the analytics folds
// computed over them.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and decimal representations.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is a monetary value in cents. Transaction amounts are signed:
// negative cents are an expense, zero or positive cents are income.
// The sign is authoritative; there is no separate direction field.
type Money struct {
	Cents int64
}

// Float returns the decimal value for serialization. The cents
// representation guarantees exactly two fractional digits.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// Abs returns the magnitude of the amount in cents.
func (m Money) Abs() int64 {
	if m.Cents < 0 {
		return -m.Cents
	}
	return m.Cents
}

// IsExpense reports whether the amount represents an expense.
// Zero counts as income, matching the external contract.
func (m Money) IsExpense() bool {
	return m.Cents < 0
}

// ParseSignedCents converts a signed decimal string to cents with
// half-up rounding on the third decimal place.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// an optional leading minus. Zero is a valid amount (it is income).
// Returns ErrInvalidAmount for anything that is not a plain decimal.
//
// Examples:
//
//	ParseSignedCents("12.34")  -> 1234, nil
//	ParseSignedCents("-12,34") -> -1234, nil
//	ParseSignedCents("12.345") -> 1234, nil (rounds down)
//	ParseSignedCents("12.346") -> 1235, nil (rounds up)
func ParseSignedCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")

	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if s == "" {
		return 0, ErrInvalidAmount
	}

	// Split into integer and fractional part
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}

	// Take first two fractional digits; then half-up rounding on third
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if neg {
		cents = -cents
	}
	return cents, nil
}

// ParseLimitCents parses a budget spending limit. Limits must be
// strictly positive decimals.
func ParseLimitCents(s string) (int64, error) {
	cents, err := ParseSignedCents(s)
	if err != nil {
		return 0, ErrInvalidLimit
	}
	if cents <= 0 {
		return 0, ErrInvalidLimit
	}
	return cents, nil
}
