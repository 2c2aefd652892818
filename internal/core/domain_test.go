package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNormalizeCategory(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"Food", "Food"},
		{"  Rent  ", "Rent"},
		{"", "General"},
		{"   ", "General"},
		{"Custom Label", "Custom Label"},
	}
	for _, tc := range cases {
		if got := NormalizeCategory(tc.in); got != tc.out {
			t.Fatalf("%q expected %q, got %q", tc.in, tc.out, got)
		}
	}
}

func TestPeriodOf(t *testing.T) {
	p := PeriodOf(time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC))
	if p.Month != 0 || p.Year != 2026 {
		t.Fatalf("january should map to month 0, got %+v", p)
	}
	p = PeriodOf(time.Date(2026, time.December, 31, 23, 59, 0, 0, time.UTC))
	if p.Month != 11 || p.Year != 2026 {
		t.Fatalf("december should map to month 11, got %+v", p)
	}
}

func TestStartOfMonth(t *testing.T) {
	got := StartOfMonth(time.Date(2026, time.August, 31, 18, 30, 15, 0, time.UTC))
	want := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPeriodValid(t *testing.T) {
	cases := []struct {
		p  Period
		ok bool
	}{
		{Period{Month: 0, Year: 2026}, true},
		{Period{Month: 11, Year: 2026}, true},
		{Period{Month: 12, Year: 2026}, false},
		{Period{Month: -1, Year: 2026}, false},
		{Period{Month: 5, Year: 0}, false},
	}
	for _, tc := range cases {
		if got := tc.p.Valid(); got != tc.ok {
			t.Fatalf("%+v: valid = %v, want %v", tc.p, got, tc.ok)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	ok := Transaction{Text: "groceries", Amount: Money{Cents: -5000}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	empty := Transaction{Text: "   "}
	if err := empty.Validate(); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}

	long := Transaction{Text: strings.Repeat("x", 201)}
	if err := long.Validate(); !errors.Is(err, ErrTextTooLong) {
		t.Fatalf("expected ErrTextTooLong, got %v", err)
	}
}

func TestBudgetValidate(t *testing.T) {
	ok := Budget{Category: "Food", Limit: Money{Cents: 10000}, Period: Period{Month: 7, Year: 2026}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name string
		b    Budget
		want error
	}{
		{"empty category", Budget{Limit: Money{Cents: 100}, Period: Period{Month: 0, Year: 2026}}, ErrEmptyCategory},
		{"zero limit", Budget{Category: "Food", Period: Period{Month: 0, Year: 2026}}, ErrInvalidLimit},
		{"negative limit", Budget{Category: "Food", Limit: Money{Cents: -1}, Period: Period{Month: 0, Year: 2026}}, ErrInvalidLimit},
		{"bad period", Budget{Category: "Food", Limit: Money{Cents: 100}, Period: Period{Month: 12, Year: 2026}}, ErrInvalidPeriod},
	}
	for _, tc := range cases {
		if err := tc.b.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}
