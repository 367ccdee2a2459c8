package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

type BudgetService struct {
	repo       domain.BudgetRepository
	statistics *StatisticsService
	now        func() time.Time
}

func NewBudgetService(repo domain.BudgetRepository, statistics *StatisticsService) *BudgetService {
	return &BudgetService{repo: repo, statistics: statistics, now: time.Now}
}

// GetBudgets compares each budget of the month with what was spent in its category.
// Budgets and the month's statistics are loaded concurrently.
func (s *BudgetService) GetBudgets(ctx context.Context, userID string, month, year int) (*domain.BudgetOverview, error) {
	if err := validateMonth(month, year); err != nil {
		return nil, err
	}

	var (
		budgets []domain.Budget
		stats   *domain.Statistics
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budgets, err = s.repo.FindByMonth(gctx, userID, month, year)
		if err != nil {
			return fmt.Errorf("load budgets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		stats, err = s.statistics.GetStatistics(gctx, userID, month, year)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	comparisons, totals := domain.CompareBudgets(budgets, stats.Categories)
	return &domain.BudgetOverview{
		Month:   month,
		Year:    year,
		Budgets: comparisons,
		Totals:  totals,
	}, nil
}

// SetBudget creates the budget or replaces the amount of the existing one
// for the same category and month.
func (s *BudgetService) SetBudget(ctx context.Context, userID string, budget *domain.Budget) (*domain.Budget, error) {
	if err := budget.Validate(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	budget.ID = uuid.NewString()
	budget.UserID = userID
	budget.Amount = budget.Amount.Round(2)
	budget.CreatedAt = now
	budget.UpdatedAt = now

	stored, err := s.repo.Upsert(ctx, *budget)
	if err != nil {
		return nil, fmt.Errorf("save budget: %w", err)
	}
	return stored, nil
}

func (s *BudgetService) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	return s.repo.Delete(ctx, userID, budgetID)
}
