package domain

import (
	"context"
	"regexp"
	"strings"

	"github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

const (
	CategoryTypeBoth = "both"

	DefaultCategoryIcon  = "default"
	DefaultCategoryColor = "#000000"

	maxCategoryIconLength = 50
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type Category struct {
	ID         string  `json:"id"`
	UserID     *string `json:"user_id,omitempty"` // nil for predefined categories
	Name       string  `json:"name"`
	Type       string  `json:"type"` // "income", "expense" or "both"
	Icon       string  `json:"icon"`
	Color      string  `json:"color"`
	Predefined bool    `json:"predefined"`
}

type CategoryRepository interface {
	// FindForUser returns predefined categories plus the user's own. An empty
	// categoryType returns every category; otherwise "both" categories are included.
	FindForUser(ctx context.Context, userID, categoryType string) ([]Category, error)
	Save(ctx context.Context, category Category) error
}

func IsValidCategoryType(t string) bool {
	return t == TypeIncome || t == TypeExpense || t == CategoryTypeBoth
}

func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	if c.Type == "" {
		c.Type = CategoryTypeBoth
	}
	if c.Icon == "" {
		c.Icon = DefaultCategoryIcon
	}
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
}

func (c *Category) Validate() error {
	if c.Name == "" {
		return errors.NewValidationError("Category name is required")
	}
	if len(c.Name) > MaxCategoryLength {
		return errors.NewValidationError("Category name must be at most 50 characters")
	}
	if !IsValidCategoryType(c.Type) {
		return errors.NewValidationError("Type must be 'income', 'expense' or 'both'")
	}
	if len(c.Icon) > maxCategoryIconLength {
		return errors.NewValidationError("Icon must be at most 50 characters")
	}
	if !colorPattern.MatchString(c.Color) {
		return errors.NewValidationError("Color must be a hex value like #1a2b3c")
	}
	return nil
}
