package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

type CategoryService struct {
	repo domain.CategoryRepository
}

func NewCategoryService(repo domain.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) GetCategories(ctx context.Context, userID, categoryType string) ([]domain.Category, error) {
	if categoryType != "" && !domain.IsValidCategoryType(categoryType) {
		return nil, financeErrors.NewValidationError("Type must be 'income', 'expense' or 'both'")
	}
	categories, err := s.repo.FindForUser(ctx, userID, categoryType)
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, userID string, category *domain.Category) error {
	category.Normalize()
	if err := category.Validate(); err != nil {
		return err
	}
	category.ID = uuid.NewString()
	category.UserID = &userID
	category.Predefined = false
	return s.repo.Save(ctx, *category)
}
