package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type categoryTotalJSON struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

func (s *Server) handleCategoryTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := s.analyticsService.CategoryTotals(r.Context(), userID(r), time.Now())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Category totals failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	out := make([]categoryTotalJSON, 0, len(totals))
	for _, ct := range totals {
		out = append(out, categoryTotalJSON{Category: ct.Category, Total: ct.Total.Float()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.analyticsService.MonthlySummary(r.Context(), userID(r), time.Now())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Monthly summary failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, toSummaryJSON(summary))
}

type summaryJSON struct {
	Income           float64 `json:"income"`
	Expense          float64 `json:"expense"`
	Balance          float64 `json:"balance"`
	TransactionCount int     `json:"transactionCount"`
}

func toSummaryJSON(s core.MonthlySummary) summaryJSON {
	return summaryJSON{
		Income:           s.Income.Float(),
		Expense:          s.Expense.Float(),
		Balance:          s.Balance.Float(),
		TransactionCount: s.TransactionCount,
	}
}
