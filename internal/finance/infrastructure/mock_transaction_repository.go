package infrastructure

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

// MockTransactionRepository is an in-memory domain.TransactionRepository for tests.
// A non-nil Err is returned from every call.
type MockTransactionRepository struct {
	mu           sync.Mutex
	Transactions []domain.Transaction
	Err          error
}

func (m *MockTransactionRepository) Save(ctx context.Context, transaction domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Transactions = append(m.Transactions, transaction)
	return nil
}

func (m *MockTransactionRepository) SaveBatch(ctx context.Context, transactions []domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Transactions = append(m.Transactions, transactions...)
	return nil
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, t := range m.Transactions {
		if t.ID == transactionID && t.UserID == userID {
			found := t
			return &found, nil
		}
	}
	return nil, financeErrors.ErrTransactionNotFound
}

func (m *MockTransactionRepository) Update(ctx context.Context, transaction domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, t := range m.Transactions {
		if t.ID == transaction.ID && t.UserID == transaction.UserID {
			m.Transactions[i] = transaction
			return nil
		}
	}
	return financeErrors.ErrTransactionNotFound
}

func (m *MockTransactionRepository) Delete(ctx context.Context, userID, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, t := range m.Transactions {
		if t.ID == transactionID && t.UserID == userID {
			m.Transactions = append(m.Transactions[:i], m.Transactions[i+1:]...)
			return nil
		}
	}
	return financeErrors.ErrTransactionNotFound
}

func (m *MockTransactionRepository) List(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}

	var matched []domain.Transaction
	for _, t := range m.sortedLocked() {
		if t.UserID != userID ||
			(filter.Category != "" && t.Category != filter.Category) ||
			(filter.Type != "" && t.Type != filter.Type) ||
			(filter.StartDate != nil && t.Date.Before(*filter.StartDate)) ||
			(filter.EndDate != nil && !t.Date.Before(*filter.EndDate)) {
			continue
		}
		matched = append(matched, t)
	}

	total := len(matched)
	start := min(filter.Offset, total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return append([]domain.Transaction{}, matched[start:end]...), total, nil
}

func (m *MockTransactionRepository) FindInDateRange(ctx context.Context, userID string, start, end time.Time) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	result := []domain.Transaction{}
	for _, t := range m.sortedLocked() {
		if t.UserID == userID && !t.Date.Before(start) && t.Date.Before(end) {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *MockTransactionRepository) sortedLocked() []domain.Transaction {
	sorted := append([]domain.Transaction{}, m.Transactions...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	return sorted
}
