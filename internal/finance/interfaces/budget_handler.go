package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

type BudgetServiceInterface interface {
	GetBudgets(ctx context.Context, userID string, month, year int) (*domain.BudgetOverview, error)
	SetBudget(ctx context.Context, userID string, budget *domain.Budget) (*domain.Budget, error)
	DeleteBudget(ctx context.Context, userID, budgetID string) error
}

type BudgetHandler struct {
	responder
	service BudgetServiceInterface
	now     func() time.Time
}

func NewBudgetHandler(service BudgetServiceInterface, respondJSON RespondJSONFunc, respondError RespondErrorFunc) *BudgetHandler {
	if service == nil {
		panic("budget service must not be nil")
	}
	return &BudgetHandler{
		responder: newResponder(respondJSON, respondError),
		service:   service,
		now:       time.Now,
	}
}

func (h *BudgetHandler) GetBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	month, year, msg := parseMonthYear(r, h.now().UTC())
	if msg != "" {
		h.respondError(w, http.StatusBadRequest, msg)
		return
	}

	overview, err := h.service.GetBudgets(r.Context(), userID, month, year)
	if err != nil {
		h.serviceError(w, r, err, "Budget not found", "Failed to retrieve budgets")
		return
	}

	h.success(w, http.StatusOK, "Budgets retrieved successfully.", overview)
}

func (h *BudgetHandler) SetBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req struct {
		Category string          `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
		Month    int             `json:"month"`
		Year     int             `json:"year"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	budget, err := h.service.SetBudget(r.Context(), userID, &domain.Budget{
		Category: req.Category,
		Amount:   req.Amount,
		Month:    req.Month,
		Year:     req.Year,
	})
	if err != nil {
		h.serviceError(w, r, err, "Budget not found", "Failed to save budget")
		return
	}

	h.success(w, http.StatusCreated, "Budget saved successfully.", budget)
}

func (h *BudgetHandler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteBudget(r.Context(), userID, r.PathValue("budgetID")); err != nil {
		h.serviceError(w, r, err, "Budget not found", "Failed to delete budget")
		return
	}

	h.success(w, http.StatusOK, "Budget deleted successfully.", nil)
}
