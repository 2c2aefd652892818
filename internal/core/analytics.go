package core

// CategoryTotal is the per-category aggregate for the current month.
// The total merges income and expense magnitudes additively: every
// transaction contributes abs(amount) to its category regardless of
// sign. That matches the behavior the dashboard has always shown and
// is kept intentionally, even though the chart is marketed as a
// spending breakdown.
type CategoryTotal struct {
	Category string
	Total    Money
}

// MonthlySummary aggregates the current month's ledger.
type MonthlySummary struct {
	Income           Money
	Expense          Money
	Balance          Money
	TransactionCount int
}

// CategoryTotals folds windowed transactions into per-category totals.
// Empty stored categories count toward DefaultCategory. Categories
// whose total is zero are omitted; the rest appear in first-seen order.
// Callers are expected to pass only transactions inside the analytics
// window (date >= start of month).
func CategoryTotals(transactions []Transaction) []CategoryTotal {
	index := make(map[string]int)
	totals := make([]CategoryTotal, 0, len(index))

	for _, t := range transactions {
		category := NormalizeCategory(t.Category)
		i, ok := index[category]
		if !ok {
			i = len(totals)
			index[category] = i
			totals = append(totals, CategoryTotal{Category: category})
		}
		totals[i].Total.Cents += t.Amount.Abs()
	}

	out := totals[:0]
	for _, ct := range totals {
		if ct.Total.Cents != 0 {
			out = append(out, ct)
		}
	}
	return out
}

// Summarize folds windowed transactions into the monthly summary.
// Income sums non-negative amounts, expense sums the magnitudes of
// negative ones, balance is income minus expense. Cents arithmetic is
// exact, so no further rounding is needed.
func Summarize(transactions []Transaction) MonthlySummary {
	var s MonthlySummary
	for _, t := range transactions {
		if t.Amount.IsExpense() {
			s.Expense.Cents += t.Amount.Abs()
		} else {
			s.Income.Cents += t.Amount.Cents
		}
	}
	s.Balance.Cents = s.Income.Cents - s.Expense.Cents
	s.TransactionCount = len(transactions)
	return s
}
