package core

import (
	"errors"
	"strings"
	"time"
)

// DefaultCategory is applied whenever a transaction or update carries
// an empty category. Categories are open strings: the UI offers a fixed
// set (Food, Rent, Transport, Entertainment, Shopping, General) but the
// store accepts any label so legacy data is never rejected.
const DefaultCategory = "General"

// Categories is the set the dashboard offers. It is advisory only;
// see DefaultCategory.
var Categories = []string{"Food", "Rent", "Transport", "Entertainment", "Shopping", "General"}

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidLimit  = errors.New("invalid limit")
	ErrEmptyText     = errors.New("empty text")
	ErrTextTooLong   = errors.New("text too long (max 200 characters)")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidPeriod = errors.New("invalid period")
)

type (
	// Transaction is a single signed ledger entry owned by a user.
	Transaction struct {
		ID        int64
		UserID    int64
		Text      string
		Amount    Money
		Category  string
		Date      time.Time
		CreatedAt time.Time
	}

	// Budget is a per-category spending ceiling scoped to one calendar
	// month. Budgets are period-scoped, not recurring: each month needs
	// its own row, and at most one row exists per
	// (user, category, month, year).
	Budget struct {
		ID       int64
		UserID   int64
		Category string
		Limit    Money
		Period   Period
	}

	// Period identifies the calendar month a budget applies to.
	// Month is zero-based (0 = January, 11 = December), preserving the
	// wire contract of the original API.
	Period struct {
		Month int
		Year  int
	}
)

// NormalizeCategory trims the label and falls back to DefaultCategory
// when it is empty.
func NormalizeCategory(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultCategory
	}
	return s
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()) - 1, Year: t.Year()}
}

// StartOfMonth returns midnight on the first day of t's month, in t's
// location. Analytics windows select transactions dated on or after
// this instant.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Valid reports whether the period holds a representable month.
func (p Period) Valid() bool {
	return p.Month >= 0 && p.Month <= 11 && p.Year > 0
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Text)) == 0 {
		return ErrEmptyText
	}
	if len(t.Text) > 200 {
		return ErrTextTooLong
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Limit.Cents <= 0 {
		return ErrInvalidLimit
	}
	if !b.Period.Valid() {
		return ErrInvalidPeriod
	}
	return nil
}
