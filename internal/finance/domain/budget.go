package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

type BudgetStatus string

const (
	BudgetOnTrack BudgetStatus = "on_track"
	BudgetWarning BudgetStatus = "warning"
	BudgetDanger  BudgetStatus = "danger"

	WarningThreshold = 75
	DangerThreshold  = 100

	minBudgetYear = 2000
	maxBudgetYear = 2100
)

var hundred = decimal.NewFromInt(100)

type Budget struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Month     int             `json:"month"`
	Year      int             `json:"year"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type BudgetRepository interface {
	// Upsert inserts the budget or, when one already exists for the same
	// user, category, month and year, updates its amount. The stored row is returned.
	Upsert(ctx context.Context, budget Budget) (*Budget, error)
	FindByMonth(ctx context.Context, userID string, month, year int) ([]Budget, error)
	Delete(ctx context.Context, userID, budgetID string) error
}

func (b *Budget) Validate() error {
	b.Category = strings.TrimSpace(b.Category)
	if b.Category == "" {
		return errors.NewValidationError("Category is required")
	}
	if len(b.Category) > MaxCategoryLength {
		return errors.NewValidationError("Category must be at most 50 characters")
	}
	if err := validateAmount(b.Amount); err != nil {
		return err
	}
	if b.Month < 1 || b.Month > 12 {
		return errors.NewValidationError("Month must be between 1 and 12")
	}
	if b.Year < minBudgetYear || b.Year > maxBudgetYear {
		return errors.NewValidationError("Year must be between 2000 and 2100")
	}
	return nil
}

type BudgetComparison struct {
	Budget
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Overspent  decimal.Decimal `json:"overspent"`
	Percentage int64           `json:"percentage"`
	Status     BudgetStatus    `json:"status"`
}

// CompareBudget measures spending against the allocated amount. The reported
// percentage is capped at 100; status uses the uncapped value.
func CompareBudget(budget Budget, spent decimal.Decimal) BudgetComparison {
	allocated := budget.Amount
	c := BudgetComparison{
		Budget:    budget,
		Spent:     spent,
		Remaining: decimal.Max(decimal.Zero, allocated.Sub(spent)),
		Overspent: decimal.Max(decimal.Zero, spent.Sub(allocated)),
	}

	var pct int64
	if allocated.IsPositive() {
		pct = spent.Div(allocated).Mul(hundred).Round(0).IntPart()
	}

	switch {
	case pct >= DangerThreshold:
		c.Status = BudgetDanger
		pct = DangerThreshold
	case pct >= WarningThreshold:
		c.Status = BudgetWarning
	default:
		c.Status = BudgetOnTrack
	}
	c.Percentage = pct
	return c
}

type BudgetTotals struct {
	Allocated decimal.Decimal `json:"allocated"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
}

type BudgetOverview struct {
	Month   int                `json:"month"`
	Year    int                `json:"year"`
	Budgets []BudgetComparison `json:"budgets"`
	Totals  BudgetTotals       `json:"totals"`
}

// CompareBudgets pairs every budget with the expense total of its category.
func CompareBudgets(budgets []Budget, categories map[string]CategoryTotals) ([]BudgetComparison, BudgetTotals) {
	comparisons := make([]BudgetComparison, 0, len(budgets))
	totals := BudgetTotals{Allocated: decimal.Zero, Spent: decimal.Zero}
	for _, b := range budgets {
		spent := categories[b.Category].Expense
		comparisons = append(comparisons, CompareBudget(b, spent))
		totals.Allocated = totals.Allocated.Add(b.Amount)
		totals.Spent = totals.Spent.Add(spent)
	}
	totals.Remaining = decimal.Max(decimal.Zero, totals.Allocated.Sub(totals.Spent))
	return comparisons, totals
}
