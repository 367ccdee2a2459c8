package infrastructure

import (
	"context"
	"sort"
	"sync"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

// MockBudgetRepository is an in-memory domain.BudgetRepository for tests.
type MockBudgetRepository struct {
	mu      sync.Mutex
	Budgets []domain.Budget
	Err     error
}

func (m *MockBudgetRepository) Upsert(ctx context.Context, budget domain.Budget) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for i, b := range m.Budgets {
		if b.UserID == budget.UserID && b.Category == budget.Category && b.Month == budget.Month && b.Year == budget.Year {
			m.Budgets[i].Amount = budget.Amount
			m.Budgets[i].UpdatedAt = budget.UpdatedAt
			stored := m.Budgets[i]
			return &stored, nil
		}
	}
	m.Budgets = append(m.Budgets, budget)
	return &budget, nil
}

func (m *MockBudgetRepository) FindByMonth(ctx context.Context, userID string, month, year int) ([]domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	budgets := []domain.Budget{}
	for _, b := range m.Budgets {
		if b.UserID == userID && b.Month == month && b.Year == year {
			budgets = append(budgets, b)
		}
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].Category < budgets[j].Category })
	return budgets, nil
}

func (m *MockBudgetRepository) Delete(ctx context.Context, userID, budgetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, b := range m.Budgets {
		if b.ID == budgetID && b.UserID == userID {
			m.Budgets = append(m.Budgets[:i], m.Budgets[i+1:]...)
			return nil
		}
	}
	return financeErrors.ErrBudgetNotFound
}
