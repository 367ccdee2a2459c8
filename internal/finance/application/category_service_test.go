package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/sebuszqo/FinanceTracker/internal/finance/infrastructure"
)

func predefinedCategories() *infrastructure.MockCategoryRepository {
	return &infrastructure.MockCategoryRepository{Categories: []domain.Category{
		{ID: "c1", Name: "Food", Type: domain.TypeExpense},
		{ID: "c2", Name: "Salary", Type: domain.TypeIncome},
	}}
}

func TestCreateCategory(t *testing.T) {
	repo := predefinedCategories()
	service := NewCategoryService(repo)
	ctx := context.Background()

	category := &domain.Category{Name: " Pets ", Type: domain.TypeExpense}
	require.NoError(t, service.CreateCategory(ctx, "user-1", category))
	assert.NotEmpty(t, category.ID)
	assert.Equal(t, "Pets", category.Name)
	assert.Equal(t, domain.DefaultCategoryColor, category.Color)
	require.NotNil(t, category.UserID)
	assert.Equal(t, "user-1", *category.UserID)

	err := service.CreateCategory(ctx, "user-1", &domain.Category{Name: "pets", Type: domain.TypeExpense})
	assert.ErrorIs(t, err, financeErrors.ErrCategoryExists)

	err = service.CreateCategory(ctx, "user-1", &domain.Category{Name: "FOOD"})
	assert.True(t, financeErrors.IsConflict(err))

	require.NoError(t, service.CreateCategory(ctx, "user-2", &domain.Category{Name: "Pets"}))

	err = service.CreateCategory(ctx, "user-1", &domain.Category{Name: "Gifts", Color: "blue"})
	assert.True(t, financeErrors.IsValidationError(err))
}

func TestGetCategories(t *testing.T) {
	repo := predefinedCategories()
	service := NewCategoryService(repo)
	ctx := context.Background()
	require.NoError(t, service.CreateCategory(ctx, "user-1", &domain.Category{Name: "Side gigs", Type: domain.CategoryTypeBoth}))
	require.NoError(t, service.CreateCategory(ctx, "user-2", &domain.Category{Name: "Hidden", Type: domain.TypeExpense}))

	all, err := service.GetCategories(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	expense, err := service.GetCategories(ctx, "user-1", domain.TypeExpense)
	require.NoError(t, err)
	names := []string{}
	for _, c := range expense {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"Food", "Side gigs"}, names)

	_, err = service.GetCategories(ctx, "user-1", "savings")
	assert.True(t, financeErrors.IsValidationError(err))
}
