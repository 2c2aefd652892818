// Package services orchestrates the domain operations behind the HTTP
// handlers: account lifecycle, the transaction ledger, monthly
// analytics and budget tracking.
package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// TransactionStore is the persistence contract for the ledger.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, id, userID int64, upd storage.TransactionUpdate) (int64, error)
	DeleteTransaction(ctx context.Context, id, userID int64) (int64, error)
}

// TransactionService applies the ledger defaults and delegates to the
// store. Ownership scoping lives in the store queries themselves.
type TransactionService struct {
	store  TransactionStore
	logger *log.Logger
}

func NewTransactionService(store TransactionStore, logger *log.Logger) *TransactionService {
	return &TransactionService{
		store:  store,
		logger: logger.WithComponent(log.ComponentStorage),
	}
}

// Create records a new transaction. An empty category becomes the
// default, a zero date becomes now.
func (s *TransactionService) Create(ctx context.Context, userID int64, text string, amountCents int64, category string, date time.Time) (core.Transaction, error) {
	if date.IsZero() {
		date = time.Now()
	}
	t := core.Transaction{
		UserID:   userID,
		Text:     text,
		Amount:   core.Money{Cents: amountCents},
		Category: core.NormalizeCategory(category),
		Date:     date,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction created",
		log.FieldUserID, userID,
		log.FieldAmount, created.Amount.Cents,
		log.FieldCategory, created.Category)
	return created, nil
}

// List returns the user's ledger, newest first.
func (s *TransactionService) List(ctx context.Context, userID int64) ([]core.Transaction, error) {
	transactions, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return transactions, nil
}

// Update edits an owned transaction and returns the affected row
// count. A missing or non-owned row yields zero, never an error.
func (s *TransactionService) Update(ctx context.Context, id, userID int64, text string, amountCents int64, category string, date *time.Time) (int64, error) {
	t := core.Transaction{Text: text, Amount: core.Money{Cents: amountCents}}
	if err := t.Validate(); err != nil {
		return 0, err
	}

	count, err := s.store.UpdateTransaction(ctx, id, userID, storage.TransactionUpdate{
		Text:        text,
		AmountCents: amountCents,
		Category:    category,
		Date:        date,
	})
	if err != nil {
		return 0, fmt.Errorf("update transaction: %w", err)
	}
	return count, nil
}

// Delete removes an owned transaction; same zero-on-miss contract as
// Update.
func (s *TransactionService) Delete(ctx context.Context, id, userID int64) (int64, error) {
	count, err := s.store.DeleteTransaction(ctx, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete transaction: %w", err)
	}
	return count, nil
}
