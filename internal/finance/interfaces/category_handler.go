package interfaces

import (
	"context"
	"net/http"
	"strings"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

type CategoryServiceInterface interface {
	GetCategories(ctx context.Context, userID, categoryType string) ([]domain.Category, error)
	CreateCategory(ctx context.Context, userID string, category *domain.Category) error
}

type CategoryHandler struct {
	responder
	service CategoryServiceInterface
}

func NewCategoryHandler(service CategoryServiceInterface, respondJSON RespondJSONFunc, respondError RespondErrorFunc) *CategoryHandler {
	if service == nil {
		panic("category service must not be nil")
	}
	return &CategoryHandler{
		responder: newResponder(respondJSON, respondError),
		service:   service,
	}
}

func (h *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	categoryType := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type")))
	if categoryType != "" && !domain.IsValidCategoryType(categoryType) {
		h.respondError(w, http.StatusBadRequest, "Invalid category type")
		return
	}

	categories, err := h.service.GetCategories(r.Context(), userID, categoryType)
	if err != nil {
		h.serviceError(w, r, err, "Category not found", "Failed to retrieve categories")
		return
	}

	h.success(w, http.StatusOK, "Categories retrieved successfully.", categories)
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req struct {
		Name  string `json:"name"`
		Type  string `json:"type"`
		Icon  string `json:"icon"`
		Color string `json:"color"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category := &domain.Category{
		Name:  req.Name,
		Type:  strings.ToLower(strings.TrimSpace(req.Type)),
		Icon:  strings.TrimSpace(req.Icon),
		Color: strings.TrimSpace(req.Color),
	}
	if err := h.service.CreateCategory(r.Context(), userID, category); err != nil {
		h.serviceError(w, r, err, "Category not found", "Failed to create category")
		return
	}

	h.success(w, http.StatusCreated, "Category created successfully.", category)
}
