package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

type StatisticsServiceInterface interface {
	GetStatistics(ctx context.Context, userID string, month, year int) (*domain.Statistics, error)
	GetMonthlyStatistics(ctx context.Context, userID string, startDate, endDate time.Time) ([]domain.MonthlyTotals, error)
}

type StatisticsHandler struct {
	responder
	service StatisticsServiceInterface
	now     func() time.Time
}

func NewStatisticsHandler(service StatisticsServiceInterface, respondJSON RespondJSONFunc, respondError RespondErrorFunc) *StatisticsHandler {
	if service == nil {
		panic("statistics service must not be nil")
	}
	return &StatisticsHandler{
		responder: newResponder(respondJSON, respondError),
		service:   service,
		now:       time.Now,
	}
}

func (h *StatisticsHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	month, year, msg := parseMonthYear(r, h.now().UTC())
	if msg != "" {
		h.respondError(w, http.StatusBadRequest, msg)
		return
	}

	stats, err := h.service.GetStatistics(r.Context(), userID, month, year)
	if err != nil {
		h.serviceError(w, r, err, "Statistics not found", "Failed to retrieve statistics")
		return
	}

	h.success(w, http.StatusOK, "Statistics retrieved successfully.", stats)
}

func (h *StatisticsHandler) GetMonthlyStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	startDateStr := r.URL.Query().Get("start_date")
	endDateStr := r.URL.Query().Get("end_date")
	if startDateStr == "" || endDateStr == "" {
		h.respondError(w, http.StatusBadRequest, "start_date and end_date are required")
		return
	}

	startDate, _, err := parseDate(startDateStr)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid start date format")
		return
	}
	endDate, err := parseEndDate(endDateStr)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid end date format")
		return
	}

	months, err := h.service.GetMonthlyStatistics(r.Context(), userID, startDate, endDate)
	if err != nil {
		h.serviceError(w, r, err, "Statistics not found", "Failed to retrieve monthly statistics")
		return
	}

	h.success(w, http.StatusOK, "Monthly statistics retrieved successfully.", map[string]interface{}{
		"months": months,
	})
}
