package interfaces

import "net/http"

type Handlers struct {
	Transactions *TransactionHandler
	Categories   *CategoryHandler
	Statistics   *StatisticsHandler
	Budgets      *BudgetHandler
}

// RegisterRoutes mounts the finance API on mux; every route is wrapped with protect.
func (h Handlers) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler, respondError RespondErrorFunc) {
	handle := func(pattern string, handler http.HandlerFunc, params ...string) {
		var next http.Handler = handler
		if len(params) > 0 {
			next = ValidatePathParamsMiddleware(respondError, next, params...)
		}
		mux.Handle(pattern, protect(next))
	}

	handle("GET /api/transactions", h.Transactions.ListTransactions)
	handle("POST /api/transactions", h.Transactions.CreateTransaction)
	handle("POST /api/transactions/bulk", h.Transactions.CreateTransactionsBulk)
	handle("GET /api/transactions/{transactionID}", h.Transactions.GetTransaction, "transactionID")
	handle("PUT /api/transactions/{transactionID}", h.Transactions.UpdateTransaction, "transactionID")
	handle("DELETE /api/transactions/{transactionID}", h.Transactions.DeleteTransaction, "transactionID")

	handle("GET /api/categories", h.Categories.GetCategories)
	handle("POST /api/categories", h.Categories.CreateCategory)

	handle("GET /api/statistics", h.Statistics.GetStatistics)
	handle("GET /api/statistics/monthly", h.Statistics.GetMonthlyStatistics)

	handle("GET /api/budgets", h.Budgets.GetBudgets)
	handle("POST /api/budgets", h.Budgets.SetBudget)
	handle("DELETE /api/budgets/{budgetID}", h.Budgets.DeleteBudget, "budgetID")
}
