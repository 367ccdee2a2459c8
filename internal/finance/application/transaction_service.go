package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/sebuszqo/FinanceTracker/internal/logging"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	MaxBulkSize      = 500
)

type TransactionService struct {
	repo   domain.TransactionRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewTransactionService(repo domain.TransactionRepository, logger *slog.Logger) *TransactionService {
	return &TransactionService{
		repo:   repo,
		logger: logging.WithComponent(logger, logging.ComponentFinance),
		now:    time.Now,
	}
}

// prepare fills server-owned fields and normalizes user input before validation.
func (s *TransactionService) prepare(transaction *domain.Transaction, userID string) {
	now := s.now().UTC()
	transaction.ID = uuid.NewString()
	transaction.UserID = userID
	transaction.Category = strings.TrimSpace(transaction.Category)
	transaction.Description = strings.TrimSpace(transaction.Description)
	if transaction.Date.IsZero() {
		transaction.Date = now
	} else {
		transaction.Date = transaction.Date.UTC()
	}
	transaction.CreatedAt = now
	transaction.UpdatedAt = now
	transaction.RoundToTwoDecimalPlaces()
}

func (s *TransactionService) CreateTransaction(ctx context.Context, transaction *domain.Transaction) error {
	s.prepare(transaction, transaction.UserID)
	if err := transaction.Validate(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, *transaction); err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}
	logging.FromContext(ctx).Debug("transaction created", "transaction_id", transaction.ID)
	return nil
}

// CreateTransactionsBulk validates every transaction first and stores all of
// them atomically, or none when any of them is invalid.
func (s *TransactionService) CreateTransactionsBulk(ctx context.Context, transactions []*domain.Transaction, userID string) error {
	if len(transactions) == 0 {
		return financeErrors.NewValidationError("At least one transaction is required")
	}
	if len(transactions) > MaxBulkSize {
		return financeErrors.NewValidationError(fmt.Sprintf("At most %d transactions can be created at once", MaxBulkSize))
	}

	validationErrors := &financeErrors.ValidationErrors{}
	batch := make([]domain.Transaction, 0, len(transactions))
	for i, transaction := range transactions {
		if transaction == nil {
			validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, "Transaction must not be empty"))
			continue
		}
		s.prepare(transaction, userID)
		if err := transaction.Validate(); err != nil {
			validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, err.Error()))
			continue
		}
		batch = append(batch, *transaction)
	}
	if validationErrors.HasErrors() {
		return validationErrors
	}

	if err := s.repo.SaveBatch(ctx, batch); err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}
	s.logger.Info("bulk transactions created", logging.FieldUserID, userID, "count", len(batch))
	return nil
}

func (s *TransactionService) GetTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	return s.repo.FindByID(ctx, userID, transactionID)
}

func (s *TransactionService) ListTransactions(ctx context.Context, userID string, filter domain.TransactionFilter, page, limit int) (*domain.TransactionPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if filter.Type != "" && !domain.IsValidTransactionType(filter.Type) {
		return nil, financeErrors.NewValidationError("Type must be 'income' or 'expense'")
	}
	if filter.StartDate != nil && filter.EndDate != nil && !filter.EndDate.After(*filter.StartDate) {
		return nil, financeErrors.NewValidationError("End date must be after start date")
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	transactions, total, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	return &domain.TransactionPage{
		Transactions: transactions,
		Pagination:   domain.NewPagination(total, page, limit),
	}, nil
}

func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, patch domain.TransactionPatch) (*domain.Transaction, error) {
	if patch.Empty() {
		return nil, financeErrors.NewValidationError("No fields to update")
	}

	transaction, err := s.repo.FindByID(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	transaction.Apply(patch)
	transaction.RoundToTwoDecimalPlaces()
	if err := transaction.Validate(); err != nil {
		return nil, err
	}
	transaction.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, *transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	return s.repo.Delete(ctx, userID, transactionID)
}
