package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

type StatisticsService struct {
	repo domain.TransactionRepository
}

func NewStatisticsService(repo domain.TransactionRepository) *StatisticsService {
	return &StatisticsService{repo: repo}
}

func validateMonth(month, year int) error {
	if month < 1 || month > 12 {
		return financeErrors.NewValidationError("Month must be between 1 and 12")
	}
	if year < 1970 || year > 9999 {
		return financeErrors.NewValidationError("Invalid year")
	}
	return nil
}

func (s *StatisticsService) GetStatistics(ctx context.Context, userID string, month, year int) (*domain.Statistics, error) {
	if err := validateMonth(month, year); err != nil {
		return nil, err
	}
	start, end := domain.MonthRange(month, year)

	transactions, err := s.repo.FindInDateRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	summary, categories := domain.Summarize(transactions)
	return &domain.Statistics{
		Month:              month,
		Year:               year,
		Summary:            summary,
		Categories:         categories,
		RecentTransactions: domain.MostRecent(transactions, domain.RecentTransactionsLimit),
	}, nil
}

// GetMonthlyStatistics groups transactions in [startDate, endDate) by calendar month.
func (s *StatisticsService) GetMonthlyStatistics(ctx context.Context, userID string, startDate, endDate time.Time) ([]domain.MonthlyTotals, error) {
	if !endDate.After(startDate) {
		return nil, financeErrors.NewValidationError("End date must be after start date")
	}
	transactions, err := s.repo.FindInDateRange(ctx, userID, startDate.UTC(), endDate.UTC())
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return domain.SummarizeByMonth(transactions), nil
}
