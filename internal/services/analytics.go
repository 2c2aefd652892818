package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// TransactionWindowReader selects the slice of the ledger analytics
// operates on.
type TransactionWindowReader interface {
	ListTransactionsSince(ctx context.Context, userID int64, since time.Time) ([]core.Transaction, error)
}

// AnalyticsService computes the month's aggregates. There is no cache:
// every call recomputes from the stored rows, so figures are always
// current. The asOf instant is threaded through explicitly; callers
// default it to the wall clock only at the HTTP boundary, which keeps
// the computation deterministic under test.
type AnalyticsService struct {
	store  TransactionWindowReader
	logger *log.Logger
}

func NewAnalyticsService(store TransactionWindowReader, logger *log.Logger) *AnalyticsService {
	return &AnalyticsService{
		store:  store,
		logger: logger.WithComponent(log.ComponentAnalytics),
	}
}

// CategoryTotals returns the per-category aggregates for asOf's month.
func (s *AnalyticsService) CategoryTotals(ctx context.Context, userID int64, asOf time.Time) ([]core.CategoryTotal, error) {
	transactions, err := s.window(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}
	return core.CategoryTotals(transactions), nil
}

// MonthlySummary returns income, expense, balance and transaction
// count for asOf's month.
func (s *AnalyticsService) MonthlySummary(ctx context.Context, userID int64, asOf time.Time) (core.MonthlySummary, error) {
	transactions, err := s.window(ctx, userID, asOf)
	if err != nil {
		return core.MonthlySummary{}, err
	}
	return core.Summarize(transactions), nil
}

func (s *AnalyticsService) window(ctx context.Context, userID int64, asOf time.Time) ([]core.Transaction, error) {
	transactions, err := s.store.ListTransactionsSince(ctx, userID, core.StartOfMonth(asOf))
	if err != nil {
		return nil, fmt.Errorf("load analytics window: %w", err)
	}
	return transactions, nil
}
