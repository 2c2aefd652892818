package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type transactionJSON struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Text      string    `json:"text"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:        t.ID,
		UserID:    t.UserID,
		Text:      t.Text,
		Amount:    t.Amount.Float(),
		Category:  t.Category,
		Date:      t.Date,
		CreatedAt: t.CreatedAt,
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.transactionService.List(r.Context(), userID(r))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List transactions failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	out := make([]transactionJSON, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, toTransactionJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string          `json:"text"`
		Amount   json.RawMessage `json:"amount"`
		Category string          `json:"category"`
		Date     string          `json:"date"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cents, err := parseMoney(req.Amount, core.ParseSignedCents)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Amount must be a valid number")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Date must be a valid date")
		return
	}
	var when time.Time
	if date != nil {
		when = *date
	}

	created, err := s.transactionService.Create(r.Context(), userID(r),
		sanitizeInput(req.Text), cents, sanitizeInput(req.Category), when)
	if err != nil {
		if errors.Is(err, core.ErrEmptyText) {
			writeError(w, http.StatusBadRequest, "Text is required")
			return
		}
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "Create transaction failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionJSON(created))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	var req struct {
		Text     string          `json:"text"`
		Amount   json.RawMessage `json:"amount"`
		Category string          `json:"category"`
		Date     string          `json:"date"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cents, err := parseMoney(req.Amount, core.ParseSignedCents)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Amount must be a valid number")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Date must be a valid date")
		return
	}

	count, err := s.transactionService.Update(r.Context(), id, userID(r),
		sanitizeInput(req.Text), cents, sanitizeInput(req.Category), date)
	if err != nil {
		if errors.Is(err, core.ErrEmptyText) {
			writeError(w, http.StatusBadRequest, "Text is required")
			return
		}
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "Update transaction failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	// A miss reports zero rows rather than 404; the row may belong to
	// another user and the response must not reveal that.
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	count, err := s.transactionService.Delete(r.Context(), id, userID(r))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Delete transaction failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Transaction deleted",
		"count":   count,
	})
}
