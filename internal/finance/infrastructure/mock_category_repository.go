package infrastructure

import (
	"context"
	"strings"
	"sync"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

// MockCategoryRepository is an in-memory domain.CategoryRepository for tests.
// Categories with a nil UserID are treated as predefined.
type MockCategoryRepository struct {
	mu         sync.Mutex
	Categories []domain.Category
	Err        error
}

func (m *MockCategoryRepository) FindForUser(ctx context.Context, userID, categoryType string) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	categories := []domain.Category{}
	for _, c := range m.Categories {
		if c.UserID != nil && *c.UserID != userID {
			continue
		}
		if categoryType != "" && c.Type != categoryType && c.Type != domain.CategoryTypeBoth {
			continue
		}
		c.Predefined = c.UserID == nil
		categories = append(categories, c)
	}
	return categories, nil
}

func (m *MockCategoryRepository) Save(ctx context.Context, category domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, c := range m.Categories {
		sameOwner := c.UserID == nil || (category.UserID != nil && *c.UserID == *category.UserID)
		if sameOwner && strings.EqualFold(c.Name, category.Name) {
			return financeErrors.ErrCategoryExists
		}
	}
	m.Categories = append(m.Categories, category)
	return nil
}
