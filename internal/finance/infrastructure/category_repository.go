package infrastructure

import (
	"context"
	"database/sql"
	"fmt"

	database "github.com/sebuszqo/FinanceTracker/internal/db"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) FindForUser(ctx context.Context, userID, categoryType string) ([]domain.Category, error) {
	query := "SELECT id, user_id, name, type, icon, color FROM categories WHERE (user_id IS NULL OR user_id = $1)"
	args := []interface{}{userID}

	if categoryType != "" {
		query += " AND type IN ($2, 'both')"
		args = append(args, categoryType)
	}
	query += " ORDER BY user_id IS NOT NULL, name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var (
			category domain.Category
			owner    sql.NullString
		)
		if err := rows.Scan(&category.ID, &owner, &category.Name, &category.Type, &category.Icon, &category.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if owner.Valid {
			category.UserID = &owner.String
		} else {
			category.Predefined = true
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// Save inserts a user category. Names clash case-insensitively with the
// user's own and the predefined categories.
func (r *CategoryRepository) Save(ctx context.Context, category domain.Category) error {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM categories WHERE user_id IS NULL AND LOWER(name) = LOWER($1))",
		category.Name,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check predefined category: %w", err)
	}
	if exists {
		return financeErrors.ErrCategoryExists
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO categories (id, user_id, name, type, icon, color) VALUES ($1, $2, $3, $4, $5, $6)",
		category.ID, category.UserID, category.Name, category.Type, category.Icon, category.Color,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return financeErrors.ErrCategoryExists
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}
