package interfaces

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebuszqo/FinanceTracker/internal/auth"
	"github.com/sebuszqo/FinanceTracker/internal/finance/application"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	"github.com/sebuszqo/FinanceTracker/internal/finance/infrastructure"
	"github.com/sebuszqo/FinanceTracker/internal/logging"
)

const (
	aliceID    = "11111111-1111-4111-8111-111111111111"
	bobID      = "22222222-2222-4222-8222-222222222222"
	userHeader = "X-Test-User"
)

var handlerNow = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

type testAPI struct {
	mux          *http.ServeMux
	transactions *infrastructure.MockTransactionRepository
	budgets      *infrastructure.MockBudgetRepository
	categories   *infrastructure.MockCategoryRepository
}

// fakeAuth stands in for the JWT middleware and trusts a test header.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(userHeader)
		if userID == "" {
			RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
	})
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	api := &testAPI{
		mux:          http.NewServeMux(),
		transactions: &infrastructure.MockTransactionRepository{},
		budgets:      &infrastructure.MockBudgetRepository{},
		categories: &infrastructure.MockCategoryRepository{Categories: []domain.Category{
			{ID: "c1", Name: "Food", Type: domain.TypeExpense, Icon: "food", Color: "#ff0000"},
			{ID: "c2", Name: "Salary", Type: domain.TypeIncome, Icon: "cash", Color: "#00ff00"},
		}},
	}

	statistics := application.NewStatisticsService(api.transactions)
	handlers := Handlers{
		Transactions: NewTransactionHandler(application.NewTransactionService(api.transactions, logging.Discard()), RespondJSON, RespondError),
		Categories:   NewCategoryHandler(application.NewCategoryService(api.categories), RespondJSON, RespondError),
		Statistics:   NewStatisticsHandler(statistics, RespondJSON, RespondError),
		Budgets:      NewBudgetHandler(application.NewBudgetService(api.budgets, statistics), RespondJSON, RespondError),
	}
	fixed := func() time.Time { return handlerNow }
	handlers.Transactions.now = fixed
	handlers.Statistics.now = fixed
	handlers.Budgets.now = fixed

	handlers.RegisterRoutes(api.mux, fakeAuth, RespondError)
	return api
}

func (a *testAPI) do(t *testing.T, userID, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(userHeader, userID)
	}
	w := httptest.NewRecorder()
	a.mux.ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return w.Code, response
}

func dataOf(response map[string]interface{}) map[string]interface{} {
	data, _ := response["data"].(map[string]interface{})
	return data
}

func (a *testAPI) seed(userID, typ, category, amount string, date time.Time) string {
	id := fmt.Sprintf("%08d-0000-4000-8000-000000000000", len(a.transactions.Transactions)+1)
	a.transactions.Transactions = append(a.transactions.Transactions, domain.Transaction{
		ID: id, UserID: userID, Type: typ, Category: category, Date: date,
		Amount: decimal.RequireFromString(amount), Description: category,
	})
	return id
}

func TestTransactions_CRUD(t *testing.T) {
	api := newTestAPI(t)

	code, created := api.do(t, aliceID, http.MethodPost, "/api/transactions",
		`{"amount": 42.5, "type": "expense", "category": "Food", "date": "2024-03-05", "description": "Groceries"}`)
	require.Equal(t, http.StatusCreated, code, created)
	assert.Equal(t, "success", created["status"])
	transaction := dataOf(created)
	id := transaction["id"].(string)
	assert.Equal(t, 42.5, transaction["amount"])
	assert.Equal(t, "2024-03-05T00:00:00Z", transaction["date"])
	assert.Equal(t, aliceID, transaction["user_id"])

	code, fetched := api.do(t, aliceID, http.MethodGet, "/api/transactions/"+id, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Groceries", dataOf(fetched)["description"])

	code, response := api.do(t, bobID, http.MethodGet, "/api/transactions/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Transaction not found", response["message"])

	code, updated := api.do(t, aliceID, http.MethodPut, "/api/transactions/"+id, `{"amount": "50.00", "description": "Weekly groceries"}`)
	require.Equal(t, http.StatusOK, code, updated)
	assert.Equal(t, 50.0, dataOf(updated)["amount"])
	assert.Equal(t, "Weekly groceries", dataOf(updated)["description"])
	assert.Equal(t, "Food", dataOf(updated)["category"])

	code, response = api.do(t, aliceID, http.MethodPut, "/api/transactions/"+id, `{"type": "gift"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Type must be 'income' or 'expense'", response["message"])

	code, updated = api.do(t, aliceID, http.MethodPut, "/api/transactions/"+id, `{"type": " INCOME "}`)
	require.Equal(t, http.StatusOK, code, updated)
	assert.Equal(t, "income", dataOf(updated)["type"])

	code, _ = api.do(t, bobID, http.MethodDelete, "/api/transactions/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = api.do(t, aliceID, http.MethodDelete, "/api/transactions/"+id, "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = api.do(t, aliceID, http.MethodGet, "/api/transactions/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestTransactions_MalformedIDIsNotFound(t *testing.T) {
	api := newTestAPI(t)
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		code, response := api.do(t, aliceID, method, "/api/transactions/not-a-uuid", `{"amount": 1}`)
		assert.Equal(t, http.StatusNotFound, code, method)
		assert.Equal(t, "Transaction not found", response["message"])
	}
}

func TestCreateTransaction_BadRequests(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"invalid json", `{"amount":`, "Invalid request body"},
		{"unknown field", `{"amount": 1, "colour": "red"}`, "Invalid request body"},
		{"zero amount", `{"amount": 0, "type": "expense", "category": "Food", "description": "x"}`, "Amount must be greater than zero"},
		{"missing description", `{"amount": 3, "type": "income", "category": "Salary"}`, "Description is required"},
		{"missing category", `{"amount": 3, "type": "income", "description": "pay"}`, "Category is required"},
		{"bad date", `{"amount": 3, "type": "income", "category": "Salary", "description": "pay", "date": "03/05/2024"}`, "Invalid date format, use YYYY-MM-DD or RFC3339"},
		{"amount too large", `{"amount": 1000000000000, "type": "income", "category": "Salary", "description": "pay"}`, "Amount is too large"},
		{"amount overflows", `{"amount": 1e400, "type": "income", "category": "Salary", "description": "pay"}`, "Amount is too large"},
		{"body too large", `{"amount": 3, "type": "income", "category": "Salary", "description": "` + strings.Repeat("x", maxRequestBodyBytes) + `"}`, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, response := api.do(t, aliceID, http.MethodPost, "/api/transactions", tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, "error", response["status"])
			assert.Equal(t, tt.message, response["message"])
			assert.Equal(t, float64(http.StatusBadRequest), response["code"])
		})
	}
	assert.Empty(t, api.transactions.Transactions)
}

func TestCreateTransactionsBulk(t *testing.T) {
	api := newTestAPI(t)

	code, response := api.do(t, aliceID, http.MethodPost, "/api/transactions/bulk", `{"transactions": [
		{"amount": 10, "type": "expense", "category": "Food", "description": "a"},
		{"amount": -1, "type": "expense", "category": "Food", "description": "b"},
		{"amount": 5, "category": "Food", "description": "c"}
	]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", response["message"])
	assert.Equal(t, []interface{}{
		"Validation error at transaction 2: Amount must be greater than zero",
		"Validation error at transaction 3: Type must be 'income' or 'expense'",
	}, response["errors"])
	assert.Empty(t, api.transactions.Transactions)

	code, response = api.do(t, aliceID, http.MethodPost, "/api/transactions/bulk", `{"transactions": []}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body - no transactions provided", response["message"])

	code, response = api.do(t, aliceID, http.MethodPost, "/api/transactions/bulk", `{"transactions": "nope"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body", response["message"])

	code, response = api.do(t, aliceID, http.MethodPost, "/api/transactions/bulk", `{"transactions": [
		{"amount": 10, "type": "expense", "category": "Food", "description": "a"},
		{"amount": 2500, "type": "income", "category": "Salary", "description": "b", "date": "2024-03-01T08:00:00+02:00"}
	]}`)
	require.Equal(t, http.StatusCreated, code, response)
	assert.Len(t, response["data"], 2)
	require.Len(t, api.transactions.Transactions, 2)
	assert.Equal(t, time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC), api.transactions.Transactions[1].Date)
}

func TestListTransactions(t *testing.T) {
	api := newTestAPI(t)
	for day := 1; day <= 12; day++ {
		api.seed(aliceID, domain.TypeExpense, "Food", "10", time.Date(2024, 3, day, 10, 0, 0, 0, time.UTC))
	}
	api.seed(aliceID, domain.TypeIncome, "Salary", "3000", time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC))
	api.seed(bobID, domain.TypeExpense, "Food", "99", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))

	code, response := api.do(t, aliceID, http.MethodGet, "/api/transactions", "")
	require.Equal(t, http.StatusOK, code)
	data := dataOf(response)
	assert.Len(t, data["transactions"], 10)
	assert.Equal(t, map[string]interface{}{"total": 13.0, "page": 1.0, "limit": 10.0, "pages": 2.0}, data["pagination"])

	code, response = api.do(t, aliceID, http.MethodGet, "/api/transactions?page=2&limit=5&type=expense", "")
	require.Equal(t, http.StatusOK, code)
	data = dataOf(response)
	assert.Len(t, data["transactions"], 5)
	assert.Equal(t, 12.0, data["pagination"].(map[string]interface{})["total"])

	code, response = api.do(t, aliceID, http.MethodGet, "/api/transactions?month=2&year=2024", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, dataOf(response)["transactions"], 1)

	code, response = api.do(t, aliceID, http.MethodGet, "/api/transactions?start_date=2024-03-10&end_date=2024-03-12", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, dataOf(response)["transactions"], 3, "end date covers the whole day")

	code, response = api.do(t, aliceID, http.MethodGet, "/api/transactions?category=Salary", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, dataOf(response)["transactions"], 1)
}

func TestListTransactions_BadQuery(t *testing.T) {
	api := newTestAPI(t)
	tests := []struct {
		query   string
		message string
	}{
		{"page=0", "Invalid page value"},
		{"limit=abc", "Invalid limit value"},
		{"type=gift", "Invalid transaction type"},
		{"start_date=yesterday", "Invalid start date format"},
		{"end_date=2024-13-01", "Invalid end date format"},
		{"month=13", "Invalid month"},
		{"month=3&year=12", "Invalid year"},
		{"month=3&start_date=2024-03-01", "Use either month/year or start_date/end_date"},
		{"start_date=2024-03-10&end_date=2024-03-01", "End date must be after start date"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			code, response := api.do(t, aliceID, http.MethodGet, "/api/transactions?"+tt.query, "")
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tt.message, response["message"])
		})
	}
}

func TestStatisticsEndpoints(t *testing.T) {
	api := newTestAPI(t)
	api.seed(aliceID, domain.TypeIncome, "Salary", "4000", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	api.seed(aliceID, domain.TypeExpense, "Food", "45.50", time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC))
	api.seed(aliceID, domain.TypeExpense, "Housing", "1200", time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC))
	api.seed(aliceID, domain.TypeExpense, "Food", "20", time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))
	api.seed(bobID, domain.TypeExpense, "Food", "999", time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC))

	// No month or year means the current month.
	code, response := api.do(t, aliceID, http.MethodGet, "/api/statistics", "")
	require.Equal(t, http.StatusOK, code)
	data := dataOf(response)
	assert.Equal(t, 3.0, data["month"])
	summary := data["summary"].(map[string]interface{})
	assert.Equal(t, 4000.0, summary["total_income"])
	assert.Equal(t, 1245.5, summary["total_expense"])
	assert.Equal(t, 2754.5, summary["balance"])
	assert.Equal(t, 3.0, summary["transaction_count"])
	assert.Equal(t, 45.5, data["categories"].(map[string]interface{})["Food"].(map[string]interface{})["expense"])
	assert.Len(t, data["recent_transactions"], 3)

	code, response = api.do(t, aliceID, http.MethodGet, "/api/statistics?month=1&year=2024", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 20.0, dataOf(response)["summary"].(map[string]interface{})["total_expense"])

	code, response = api.do(t, aliceID, http.MethodGet, "/api/statistics?month=0", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid month", response["message"])

	code, response = api.do(t, aliceID, http.MethodGet, "/api/statistics/monthly?start_date=2024-01-01&end_date=2024-03-31", "")
	require.Equal(t, http.StatusOK, code)
	months := dataOf(response)["months"].([]interface{})
	require.Len(t, months, 2)
	assert.Equal(t, 1.0, months[0].(map[string]interface{})["month"])
	assert.Equal(t, -20.0, months[0].(map[string]interface{})["net_income"])
	assert.Equal(t, 2754.5, months[1].(map[string]interface{})["net_income"])

	code, response = api.do(t, aliceID, http.MethodGet, "/api/statistics/monthly?start_date=2024-01-01", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "start_date and end_date are required", response["message"])

	code, _ = api.do(t, aliceID, http.MethodGet, "/api/statistics/monthly?start_date=2024-01-01&end_date=soon", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestBudgetEndpoints(t *testing.T) {
	api := newTestAPI(t)
	api.seed(aliceID, domain.TypeExpense, "Food", "80", time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC))

	code, response := api.do(t, aliceID, http.MethodPost, "/api/budgets", `{"category": "Food", "amount": 100, "month": 3, "year": 2024}`)
	require.Equal(t, http.StatusCreated, code, response)
	budgetID := dataOf(response)["id"].(string)

	code, response = api.do(t, aliceID, http.MethodPost, "/api/budgets", `{"category": "Food", "amount": 0, "month": 3, "year": 2024}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Amount must be greater than zero", response["message"])

	code, response = api.do(t, aliceID, http.MethodPost, "/api/budgets", `{"category": "Food", "amount": 1e13, "month": 3, "year": 2024}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Amount is too large", response["message"])

	code, response = api.do(t, aliceID, http.MethodGet, "/api/budgets?month=3&year=2024", "")
	require.Equal(t, http.StatusOK, code)
	data := dataOf(response)
	budgets := data["budgets"].([]interface{})
	require.Len(t, budgets, 1)
	food := budgets[0].(map[string]interface{})
	assert.Equal(t, "Food", food["category"])
	assert.Equal(t, 80.0, food["spent"])
	assert.Equal(t, 20.0, food["remaining"])
	assert.Equal(t, 80.0, food["percentage"])
	assert.Equal(t, "warning", food["status"])
	assert.Equal(t, 100.0, data["totals"].(map[string]interface{})["allocated"])

	code, response = api.do(t, bobID, http.MethodGet, "/api/budgets", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, dataOf(response)["budgets"])

	code, response = api.do(t, aliceID, http.MethodDelete, "/api/budgets/oops", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Budget not found", response["message"])

	code, _ = api.do(t, bobID, http.MethodDelete, "/api/budgets/"+budgetID, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = api.do(t, aliceID, http.MethodDelete, "/api/budgets/"+budgetID, "")
	assert.Equal(t, http.StatusOK, code)
}

func TestCategoryEndpoints(t *testing.T) {
	api := newTestAPI(t)

	code, response := api.do(t, aliceID, http.MethodPost, "/api/categories", `{"name": "Pets", "type": "both", "icon": "paw", "color": "#123abc"}`)
	require.Equal(t, http.StatusCreated, code, response)
	assert.Equal(t, aliceID, dataOf(response)["user_id"])
	assert.Equal(t, false, dataOf(response)["predefined"])

	code, response = api.do(t, aliceID, http.MethodPost, "/api/categories", `{"name": "pets"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Category already exists", response["message"])

	code, _ = api.do(t, aliceID, http.MethodPost, "/api/categories", `{"name": "Travel", "type": "transfer"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, response = api.do(t, aliceID, http.MethodGet, "/api/categories?type=expense", "")
	require.Equal(t, http.StatusOK, code)
	categories := response["data"].([]interface{})
	require.Len(t, categories, 2)

	code, response = api.do(t, bobID, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, response["data"], 2)

	code, response = api.do(t, aliceID, http.MethodGet, "/api/categories?type=savings", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid category type", response["message"])
}

func TestRoutesRequireAuthentication(t *testing.T) {
	api := newTestAPI(t)
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/transactions"},
		{http.MethodPost, "/api/transactions/bulk"},
		{http.MethodGet, "/api/statistics"},
		{http.MethodGet, "/api/budgets"},
		{http.MethodDelete, "/api/budgets/" + aliceID},
		{http.MethodGet, "/api/categories"},
	} {
		code, _ := api.do(t, "", route.method, route.path, "")
		assert.Equal(t, http.StatusUnauthorized, code, route.path)
	}
}

func TestHandlerWithoutUserInContext(t *testing.T) {
	api := newTestAPI(t)
	h := NewBudgetHandler(application.NewBudgetService(api.budgets, application.NewStatisticsService(api.transactions)), RespondJSON, RespondError)

	w := httptest.NewRecorder()
	h.GetBudgets(w, httptest.NewRequest(http.MethodGet, "/api/budgets", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRepositoryFailureIsInternalError(t *testing.T) {
	api := newTestAPI(t)
	api.transactions.Err = errors.New("disk full")

	code, response := api.do(t, aliceID, http.MethodGet, "/api/transactions", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Failed to retrieve transactions", response["message"])

	code, response = api.do(t, aliceID, http.MethodGet, "/api/budgets", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Failed to retrieve budgets", response["message"])
}
