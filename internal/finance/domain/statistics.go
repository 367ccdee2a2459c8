package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

const RecentTransactionsLimit = 5

type Summary struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transaction_count"`
}

type CategoryTotals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

type Statistics struct {
	Month              int                       `json:"month"`
	Year               int                       `json:"year"`
	Summary            Summary                   `json:"summary"`
	Categories         map[string]CategoryTotals `json:"categories"`
	RecentTransactions []Transaction             `json:"recent_transactions"`
}

type MonthlyTotals struct {
	Month     int             `json:"month"`
	Year      int             `json:"year"`
	Income    decimal.Decimal `json:"income"`
	Expenses  decimal.Decimal `json:"expenses"`
	NetIncome decimal.Decimal `json:"net_income"`
}

// Summarize totals income and expense overall and per category in one pass.
func Summarize(transactions []Transaction) (Summary, map[string]CategoryTotals) {
	summary := Summary{TotalIncome: decimal.Zero, TotalExpense: decimal.Zero}
	categories := make(map[string]CategoryTotals)

	for _, t := range transactions {
		totals, ok := categories[t.Category]
		if !ok {
			totals = CategoryTotals{Income: decimal.Zero, Expense: decimal.Zero}
		}
		switch t.Type {
		case TypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(t.Amount)
			totals.Income = totals.Income.Add(t.Amount)
		case TypeExpense:
			summary.TotalExpense = summary.TotalExpense.Add(t.Amount)
			totals.Expense = totals.Expense.Add(t.Amount)
		default:
			continue
		}
		categories[t.Category] = totals
		summary.TransactionCount++
	}

	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpense)
	return summary, categories
}

// SummarizeByMonth groups transactions by calendar month (UTC), oldest first.
func SummarizeByMonth(transactions []Transaction) []MonthlyTotals {
	type key struct{ year, month int }
	byMonth := make(map[key]*MonthlyTotals)

	for _, t := range transactions {
		d := t.Date.UTC()
		k := key{d.Year(), int(d.Month())}
		m, ok := byMonth[k]
		if !ok {
			m = &MonthlyTotals{Month: k.month, Year: k.year, Income: decimal.Zero, Expenses: decimal.Zero}
			byMonth[k] = m
		}
		switch t.Type {
		case TypeIncome:
			m.Income = m.Income.Add(t.Amount)
		case TypeExpense:
			m.Expenses = m.Expenses.Add(t.Amount)
		}
	}

	months := make([]MonthlyTotals, 0, len(byMonth))
	for _, m := range byMonth {
		m.NetIncome = m.Income.Sub(m.Expenses)
		months = append(months, *m)
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year < months[j].Year
		}
		return months[i].Month < months[j].Month
	})
	return months
}

// MostRecent returns up to n transactions ordered by date, newest first.
func MostRecent(transactions []Transaction, n int) []Transaction {
	sorted := make([]Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
