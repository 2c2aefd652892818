package http

import (
	"encoding/json"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type budgetJSON struct {
	ID       int64   `json:"id"`
	UserID   int64   `json:"userId"`
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
	Month    int     `json:"month"`
	Year     int     `json:"year"`
}

func toBudgetJSON(b core.Budget) budgetJSON {
	return budgetJSON{
		ID:       b.ID,
		UserID:   b.UserID,
		Category: b.Category,
		Limit:    b.Limit.Float(),
		Month:    b.Period.Month,
		Year:     b.Period.Year,
	}
}

type budgetReportJSON struct {
	ID                 int64   `json:"id"`
	Category           string  `json:"category"`
	Limit              float64 `json:"limit"`
	Spending           float64 `json:"spending"`
	Percentage         float64 `json:"percentage"`
	IsOverBudget       bool    `json:"isOverBudget"`
	RemainingOrOverage float64 `json:"remainingOrOverage"`
	Status             string  `json:"status"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.budgetService.List(r.Context(), userID(r), time.Now())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List budgets failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	out := make([]budgetJSON, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetJSON(b))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUpsertBudget creates the current month's budget for a category
// or, when one already exists, replaces its limit. The client uses one
// endpoint for both and the row is keyed by (user, category, period).
func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string          `json:"category"`
		Limit    json.RawMessage `json:"limit"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	limitCents, err := parseMoney(req.Limit, core.ParseLimitCents)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Limit must be a positive number")
		return
	}

	budget, err := s.budgetService.Upsert(r.Context(), userID(r),
		sanitizeInput(req.Category), limitCents, time.Now())
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, "Category and a positive limit are required")
			return
		}
		s.logger.ErrorContext(r.Context(), "Upsert budget failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusCreated, toBudgetJSON(budget))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid budget ID")
		return
	}

	var req struct {
		Limit json.RawMessage `json:"limit"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	limitCents, err := parseMoney(req.Limit, core.ParseLimitCents)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Limit must be a positive number")
		return
	}

	count, err := s.budgetService.UpdateLimit(r.Context(), id, userID(r), limitCents)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, "Limit must be a positive number")
			return
		}
		s.logger.ErrorContext(r.Context(), "Update budget failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid budget ID")
		return
	}

	count, err := s.budgetService.Delete(r.Context(), id, userID(r))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Delete budget failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Budget deleted",
		"count":   count,
	})
}

func (s *Server) handleBudgetReport(w http.ResponseWriter, r *http.Request) {
	reports, err := s.budgetService.Report(r.Context(), userID(r), time.Now())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Budget report failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	out := make([]budgetReportJSON, 0, len(reports))
	for _, rep := range reports {
		out = append(out, budgetReportJSON{
			ID:                 rep.ID,
			Category:           rep.Category,
			Limit:              rep.Limit.Float(),
			Spending:           rep.Spending.Float(),
			Percentage:         rep.Percentage,
			IsOverBudget:       rep.IsOverBudget,
			RemainingOrOverage: rep.RemainingOrOverage.Float(),
			Status:             string(rep.Status),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
