package domain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(typ, category, amount string, date time.Time) Transaction {
	return Transaction{Type: typ, Category: category, Amount: decimal.RequireFromString(amount), Date: date}
}

func TestSummarize(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx(TypeIncome, "Salary", "5000.00", day),
		tx(TypeExpense, "Food", "12.30", day),
		tx(TypeExpense, "Food", "7.70", day),
		tx(TypeExpense, "Housing", "1500", day),
		tx(TypeIncome, "Food", "5", day),
	}

	summary, categories := Summarize(txs)

	assert.True(t, decimal.RequireFromString("5005").Equal(summary.TotalIncome))
	assert.True(t, decimal.RequireFromString("1520").Equal(summary.TotalExpense))
	assert.True(t, decimal.RequireFromString("3485").Equal(summary.Balance))
	assert.Equal(t, 5, summary.TransactionCount)

	require.Contains(t, categories, "Food")
	assert.True(t, decimal.RequireFromString("20").Equal(categories["Food"].Expense))
	assert.True(t, decimal.RequireFromString("5").Equal(categories["Food"].Income))
	assert.True(t, categories["Salary"].Expense.IsZero())
}

func TestSummarize_Empty(t *testing.T) {
	summary, categories := Summarize(nil)
	assert.True(t, summary.Balance.IsZero())
	assert.Zero(t, summary.TransactionCount)
	assert.Empty(t, categories)
}

func TestSummarize_MatchesArithmeticSum(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for round := 0; round < 20; round++ {
		var txs []Transaction
		income, expense := decimal.Zero, decimal.Zero
		for i := 0; i < 50; i++ {
			amount := decimal.New(rng.Int63n(1_000_000)+1, -2)
			if rng.Intn(2) == 0 {
				txs = append(txs, Transaction{Type: TypeIncome, Category: "a", Amount: amount, Date: day})
				income = income.Add(amount)
			} else {
				txs = append(txs, Transaction{Type: TypeExpense, Category: "b", Amount: amount, Date: day})
				expense = expense.Add(amount)
			}
		}

		summary, categories := Summarize(txs)
		assert.True(t, income.Equal(summary.TotalIncome))
		assert.True(t, expense.Equal(summary.TotalExpense))
		assert.True(t, income.Sub(expense).Equal(summary.Balance))

		perCategory := decimal.Zero
		for _, c := range categories {
			perCategory = perCategory.Add(c.Income).Add(c.Expense)
		}
		assert.True(t, income.Add(expense).Equal(perCategory))
	}
}

func TestSummarizeByMonth(t *testing.T) {
	txs := []Transaction{
		tx(TypeExpense, "Food", "10", time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)),
		tx(TypeIncome, "Salary", "100", time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)),
		tx(TypeIncome, "Salary", "100", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
		tx(TypeExpense, "Food", "30", time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC)),
	}

	months := SummarizeByMonth(txs)
	require.Len(t, months, 3)

	assert.Equal(t, 2023, months[0].Year)
	assert.Equal(t, 12, months[0].Month)
	assert.True(t, decimal.RequireFromString("-30").Equal(months[0].NetIncome))

	assert.Equal(t, 1, months[1].Month)
	assert.True(t, decimal.RequireFromString("100").Equal(months[1].Income))

	assert.Equal(t, 2, months[2].Month)
	assert.True(t, decimal.RequireFromString("100").Equal(months[2].Income))
	assert.True(t, decimal.RequireFromString("10").Equal(months[2].Expenses))
	assert.True(t, decimal.RequireFromString("90").Equal(months[2].NetIncome))
}

func TestMostRecent(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var txs []Transaction
	for i := 0; i < 8; i++ {
		txs = append(txs, Transaction{ID: string(rune('a' + i)), Date: base.AddDate(0, 0, i)})
	}

	recent := MostRecent(txs, RecentTransactionsLimit)
	require.Len(t, recent, 5)
	assert.Equal(t, "h", recent[0].ID)
	assert.Equal(t, "d", recent[4].ID)
	assert.Equal(t, "a", txs[0].ID, "input must not be reordered")
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(12, 2024)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), end)
}
