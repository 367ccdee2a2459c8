package infrastructure

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

type BudgetRepository struct {
	db *sql.DB
}

func NewBudgetRepository(db *sql.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

func (r *BudgetRepository) Upsert(ctx context.Context, budget domain.Budget) (*domain.Budget, error) {
	stored := budget
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO budgets (id, user_id, category, amount, month, year, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (user_id, category, month, year)
        DO UPDATE SET amount = excluded.amount, updated_at = excluded.updated_at
        RETURNING id, amount, created_at, updated_at`,
		budget.ID, budget.UserID, budget.Category, budget.Amount, budget.Month, budget.Year,
		budget.CreatedAt.UTC(), budget.UpdatedAt.UTC(),
	).Scan(&stored.ID, &stored.Amount, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert budget: %w", err)
	}
	stored.CreatedAt = stored.CreatedAt.UTC()
	stored.UpdatedAt = stored.UpdatedAt.UTC()
	return &stored, nil
}

func (r *BudgetRepository) FindByMonth(ctx context.Context, userID string, month, year int) ([]domain.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category, amount, month, year, created_at, updated_at
        FROM budgets WHERE user_id = $1 AND month = $2 AND year = $3 ORDER BY category`,
		userID, month, year,
	)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		var b domain.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.Amount, &b.Month, &b.Year, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.CreatedAt = b.CreatedAt.UTC()
		b.UpdatedAt = b.UpdatedAt.UTC()
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return budgets, nil
}

func (r *BudgetRepository) Delete(ctx context.Context, userID, budgetID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, budgetID, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return expectAffected(res, financeErrors.ErrBudgetNotFound)
}
