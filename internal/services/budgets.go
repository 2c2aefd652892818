package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// BudgetStore is the persistence contract for budgets. Upsert must be
// atomic: two concurrent calls for the same (user, category, period)
// converge on a single row, last write winning on the limit.
type BudgetStore interface {
	UpsertBudget(ctx context.Context, userID int64, category string, limitCents int64, period core.Period) (core.Budget, error)
	ListBudgets(ctx context.Context, userID int64, period core.Period) ([]core.Budget, error)
	UpdateBudgetLimit(ctx context.Context, id, userID, limitCents int64) (int64, error)
	DeleteBudget(ctx context.Context, id, userID int64) (int64, error)
}

// CategoryTotalsProvider supplies the spending side of budget reports.
type CategoryTotalsProvider interface {
	CategoryTotals(ctx context.Context, userID int64, asOf time.Time) ([]core.CategoryTotal, error)
}

// BudgetService manages period-scoped budgets and combines them with
// analytics into consumption reports.
type BudgetService struct {
	store     BudgetStore
	analytics CategoryTotalsProvider
	logger    *log.Logger
}

func NewBudgetService(store BudgetStore, analytics CategoryTotalsProvider, logger *log.Logger) *BudgetService {
	return &BudgetService{
		store:     store,
		analytics: analytics,
		logger:    logger.WithComponent(log.ComponentBudget),
	}
}

// List returns the budgets for asOf's period.
func (s *BudgetService) List(ctx context.Context, userID int64, asOf time.Time) ([]core.Budget, error) {
	budgets, err := s.store.ListBudgets(ctx, userID, core.PeriodOf(asOf))
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

// Upsert creates the budget for (user, category, asOf's period) or
// updates its limit when the row already exists. Repeated calls within
// one month always converge to a single row.
func (s *BudgetService) Upsert(ctx context.Context, userID int64, category string, limitCents int64, asOf time.Time) (core.Budget, error) {
	category = strings.TrimSpace(category)
	period := core.PeriodOf(asOf)

	b := core.Budget{UserID: userID, Category: category, Limit: core.Money{Cents: limitCents}, Period: period}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	budget, err := s.store.UpsertBudget(ctx, userID, category, limitCents, period)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}

	s.logger.InfoContext(ctx, "Budget upserted",
		log.FieldUserID, userID,
		log.FieldCategory, category,
		log.FieldLimit, limitCents,
		log.FieldMonth, period.Month,
		log.FieldYear, period.Year)
	return budget, nil
}

// UpdateLimit changes the limit of an owned budget row and returns the
// affected count; the category and period never change. Editing a
// limit only moves the denominator of future percentage computations
// for the same period.
func (s *BudgetService) UpdateLimit(ctx context.Context, id, userID, limitCents int64) (int64, error) {
	if limitCents <= 0 {
		return 0, core.ErrInvalidLimit
	}
	count, err := s.store.UpdateBudgetLimit(ctx, id, userID, limitCents)
	if err != nil {
		return 0, fmt.Errorf("update budget limit: %w", err)
	}
	return count, nil
}

// Delete removes an owned budget row; zero count on miss.
func (s *BudgetService) Delete(ctx context.Context, id, userID int64) (int64, error) {
	count, err := s.store.DeleteBudget(ctx, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete budget: %w", err)
	}
	return count, nil
}

// Report combines the period's budgets with the month's category
// totals. Both reads are independent, so they run concurrently.
func (s *BudgetService) Report(ctx context.Context, userID int64, asOf time.Time) ([]core.BudgetReport, error) {
	var (
		budgets []core.Budget
		totals  []core.CategoryTotal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budgets, err = s.store.ListBudgets(gctx, userID, core.PeriodOf(asOf))
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = s.analytics.CategoryTotals(gctx, userID, asOf)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build budget report: %w", err)
	}

	return core.BuildReport(budgets, totals), nil
}
