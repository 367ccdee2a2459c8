package interfaces

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

type TransactionServiceInterface interface {
	CreateTransaction(ctx context.Context, transaction *domain.Transaction) error
	CreateTransactionsBulk(ctx context.Context, transactions []*domain.Transaction, userID string) error
	GetTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, userID string, filter domain.TransactionFilter, page, limit int) (*domain.TransactionPage, error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, patch domain.TransactionPatch) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
}

type TransactionHandler struct {
	responder
	service TransactionServiceInterface
	now     func() time.Time
}

func NewTransactionHandler(service TransactionServiceInterface, respondJSON RespondJSONFunc, respondError RespondErrorFunc) *TransactionHandler {
	if service == nil {
		panic("transaction service must not be nil")
	}
	return &TransactionHandler{
		responder: newResponder(respondJSON, respondError),
		service:   service,
		now:       time.Now,
	}
}

type transactionRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
}

func (req transactionRequest) toTransaction() (*domain.Transaction, string) {
	transaction := &domain.Transaction{
		Amount:      req.Amount,
		Type:        strings.ToLower(strings.TrimSpace(req.Type)),
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Date != "" {
		date, _, err := parseDate(req.Date)
		if err != nil {
			return nil, "Invalid date format, use YYYY-MM-DD or RFC3339"
		}
		transaction.Date = date
	}
	return transaction, ""
}

func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	transaction, msg := req.toTransaction()
	if msg != "" {
		h.respondError(w, http.StatusBadRequest, msg)
		return
	}

	transaction.UserID = userID
	if err := h.service.CreateTransaction(r.Context(), transaction); err != nil {
		h.serviceError(w, r, err, "Transaction not found", "Failed to create transaction")
		return
	}

	h.success(w, http.StatusCreated, "Transaction created successfully", transaction)
}

func (h *TransactionHandler) CreateTransactionsBulk(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req struct {
		Transactions []transactionRequest `json:"transactions"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Transactions) == 0 {
		h.respondError(w, http.StatusBadRequest, "Invalid request body - no transactions provided")
		return
	}

	transactions := make([]*domain.Transaction, 0, len(req.Transactions))
	for _, item := range req.Transactions {
		transaction, msg := item.toTransaction()
		if msg != "" {
			h.respondError(w, http.StatusBadRequest, msg)
			return
		}
		transactions = append(transactions, transaction)
	}

	if err := h.service.CreateTransactionsBulk(r.Context(), transactions, userID); err != nil {
		h.serviceError(w, r, err, "Transaction not found", "Failed to create transactions")
		return
	}

	h.success(w, http.StatusCreated, "Transactions successfully created.", transactions)
}

// parseFilter reads list filters; a non-empty string is the 400 message.
func (h *TransactionHandler) parseFilter(r *http.Request) (domain.TransactionFilter, int, int, string) {
	q := r.URL.Query()
	filter := domain.TransactionFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Type:     strings.ToLower(strings.TrimSpace(q.Get("type"))),
	}
	if filter.Type != "" && !domain.IsValidTransactionType(filter.Type) {
		return filter, 0, 0, "Invalid transaction type"
	}

	page, limit := 1, 0
	if v := q.Get("page"); v != "" {
		p, ok := parsePositiveInt(v)
		if !ok {
			return filter, 0, 0, "Invalid page value"
		}
		page = p
	}
	if v := q.Get("limit"); v != "" {
		l, ok := parsePositiveInt(v)
		if !ok {
			return filter, 0, 0, "Invalid limit value"
		}
		limit = l
	}

	if q.Get("month") != "" || q.Get("year") != "" {
		if q.Get("start_date") != "" || q.Get("end_date") != "" {
			return filter, 0, 0, "Use either month/year or start_date/end_date"
		}
		month, year, msg := parseMonthYear(r, h.now())
		if msg != "" {
			return filter, 0, 0, msg
		}
		start, end := domain.MonthRange(month, year)
		filter.StartDate, filter.EndDate = &start, &end
		return filter, page, limit, ""
	}

	if v := q.Get("start_date"); v != "" {
		start, _, err := parseDate(v)
		if err != nil {
			return filter, 0, 0, "Invalid start date format"
		}
		filter.StartDate = &start
	}
	if v := q.Get("end_date"); v != "" {
		end, err := parseEndDate(v)
		if err != nil {
			return filter, 0, 0, "Invalid end date format"
		}
		filter.EndDate = &end
	}
	return filter, page, limit, ""
}

func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	filter, page, limit, msg := h.parseFilter(r)
	if msg != "" {
		h.respondError(w, http.StatusBadRequest, msg)
		return
	}

	result, err := h.service.ListTransactions(r.Context(), userID, filter, page, limit)
	if err != nil {
		h.serviceError(w, r, err, "Transaction not found", "Failed to retrieve transactions")
		return
	}

	h.success(w, http.StatusOK, "Transactions retrieved successfully.", result)
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	transaction, err := h.service.GetTransaction(r.Context(), userID, r.PathValue("transactionID"))
	if err != nil {
		h.serviceError(w, r, err, "Transaction not found", "Failed to retrieve transaction")
		return
	}

	h.success(w, http.StatusOK, "Transaction retrieved successfully.", transaction)
}

func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount      *decimal.Decimal `json:"amount"`
		Type        *string          `json:"type"`
		Category    *string          `json:"category"`
		Date        *string          `json:"date"`
		Description *string          `json:"description"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Type != nil {
		normalized := strings.ToLower(strings.TrimSpace(*req.Type))
		req.Type = &normalized
	}

	patch := domain.TransactionPatch{
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Date != nil {
		date, _, err := parseDate(*req.Date)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid date format, use YYYY-MM-DD or RFC3339")
			return
		}
		patch.Date = &date
	}

	transaction, err := h.service.UpdateTransaction(r.Context(), userID, r.PathValue("transactionID"), patch)
	if err != nil {
		h.serviceError(w, r, err, "Transaction not found", "Failed to update transaction")
		return
	}

	h.success(w, http.StatusOK, "Transaction updated successfully.", transaction)
}

func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTransaction(r.Context(), userID, r.PathValue("transactionID")); err != nil {
		h.serviceError(w, r, err, "Transaction not found", "Failed to delete transaction")
		return
	}

	h.success(w, http.StatusOK, "Transaction deleted successfully.", nil)
}
