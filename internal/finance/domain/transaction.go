package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"

	MaxDescriptionLength = 200
	MaxCategoryLength    = 50
)

// MaxAmount is the largest value a NUMERIC(14,2) amount column holds.
var MaxAmount = decimal.RequireFromString("999999999999.99")

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.NewValidationError("Amount must be greater than zero")
	}
	if amount.GreaterThan(MaxAmount) {
		return errors.NewValidationError("Amount is too large")
	}
	return nil
}

type TransactionRepository interface {
	Save(ctx context.Context, transaction Transaction) error
	SaveBatch(ctx context.Context, transactions []Transaction) error
	FindByID(ctx context.Context, userID, transactionID string) (*Transaction, error)
	Update(ctx context.Context, transaction Transaction) error
	Delete(ctx context.Context, userID, transactionID string) error
	List(ctx context.Context, userID string, filter TransactionFilter) ([]Transaction, int, error)
	// FindInDateRange returns transactions with start <= date < end, newest first.
	FindInDateRange(ctx context.Context, userID string, start, end time.Time) ([]Transaction, error)
}

type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"` // "income" or "expense"
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func IsValidTransactionType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

func (t *Transaction) Validate() error {
	if err := validateAmount(t.Amount); err != nil {
		return err
	}
	if !IsValidTransactionType(t.Type) {
		return errors.NewValidationError("Type must be 'income' or 'expense'")
	}
	if strings.TrimSpace(t.Category) == "" {
		return errors.NewValidationError("Category is required")
	}
	if len(t.Category) > MaxCategoryLength {
		return errors.NewValidationError("Category must be at most 50 characters")
	}
	if strings.TrimSpace(t.Description) == "" {
		return errors.NewValidationError("Description is required")
	}
	if len([]rune(t.Description)) > MaxDescriptionLength {
		return errors.NewValidationError("Description must be of length less than 200")
	}
	if t.Date.IsZero() {
		return errors.NewValidationError("Date is required")
	}
	return nil
}

func (t *Transaction) RoundToTwoDecimalPlaces() {
	t.Amount = t.Amount.Round(2)
}

// TransactionPatch carries the fields of a partial update; nil fields are left untouched.
type TransactionPatch struct {
	Amount      *decimal.Decimal `json:"amount"`
	Type        *string          `json:"type"`
	Category    *string          `json:"category"`
	Date        *time.Time       `json:"date"`
	Description *string          `json:"description"`
}

func (p TransactionPatch) Empty() bool {
	return p.Amount == nil && p.Type == nil && p.Category == nil && p.Date == nil && p.Description == nil
}

func (t *Transaction) Apply(p TransactionPatch) {
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil {
		t.Category = strings.TrimSpace(*p.Category)
	}
	if p.Date != nil {
		t.Date = p.Date.UTC()
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
}

// TransactionFilter narrows a transaction listing. EndDate is exclusive.
type TransactionFilter struct {
	Category  string
	Type      string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Pagination   Pagination    `json:"pagination"`
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

func NewPagination(total, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Total: total, Page: page, Limit: limit, Pages: pages}
}

// MonthRange returns [first day of month, first day of next month) in UTC.
func MonthRange(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
