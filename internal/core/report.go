package core

// BudgetStatus is the severity bucket for a budget's consumption.
type BudgetStatus string

const (
	StatusOK      BudgetStatus = "ok"
	StatusWarning BudgetStatus = "warning"
	StatusOver    BudgetStatus = "over"
)

// Consumption thresholds, in percent of the limit.
const (
	warningThreshold = 80
	overThreshold    = 100
)

// BudgetReport combines one budget row with the month's spending in
// its category.
type BudgetReport struct {
	Budget

	// Spending is the category total for the budget's category, zero
	// when the category has no transactions this period.
	Spending Money

	// Percentage is spending over limit, capped at 100. A zero limit
	// yields zero, never a division error.
	Percentage float64

	IsOverBudget bool

	// RemainingOrOverage is limit-spending while under budget and
	// spending-limit once over.
	RemainingOrOverage Money

	Status BudgetStatus
}

// BuildReport combines current-period budgets with category totals.
// Reports come out in the same order as the budgets slice.
func BuildReport(budgets []Budget, totals []CategoryTotal) []BudgetReport {
	spent := make(map[string]int64, len(totals))
	for _, ct := range totals {
		spent[ct.Category] = ct.Total.Cents
	}

	reports := make([]BudgetReport, 0, len(budgets))
	for _, b := range budgets {
		r := BudgetReport{Budget: b, Spending: Money{Cents: spent[b.Category]}}
		if b.Limit.Cents > 0 {
			pct := float64(r.Spending.Cents) / float64(b.Limit.Cents) * 100
			if pct > overThreshold {
				pct = overThreshold
			}
			r.Percentage = pct
		}
		r.IsOverBudget = r.Percentage >= overThreshold
		if r.IsOverBudget {
			r.RemainingOrOverage = Money{Cents: r.Spending.Cents - b.Limit.Cents}
		} else {
			r.RemainingOrOverage = Money{Cents: b.Limit.Cents - r.Spending.Cents}
		}
		switch {
		case r.Percentage >= overThreshold:
			r.Status = StatusOver
		case r.Percentage >= warningThreshold:
			r.Status = StatusWarning
		default:
			r.Status = StatusOK
		}
		reports = append(reports, r)
	}
	return reports
}
