package interfaces

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/auth"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/sebuszqo/FinanceTracker/internal/logging"
)

type RespondJSONFunc func(w http.ResponseWriter, status int, payload interface{})

type RespondErrorFunc func(w http.ResponseWriter, status int, message string, errors ...[]string)

func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Error("failed to encode response", logging.FieldError, err)
	}
}

func RespondError(w http.ResponseWriter, status int, message string, errors ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}

	if len(errors) > 0 && len(errors[0]) > 0 {
		payload["errors"] = errors[0]
	}

	RespondJSON(w, status, payload)
}

type responder struct {
	respondJSON  RespondJSONFunc
	respondError RespondErrorFunc
}

func newResponder(respondJSON RespondJSONFunc, respondError RespondErrorFunc) responder {
	if respondJSON == nil {
		panic("RespondJSON function must not be nil")
	}
	if respondError == nil {
		panic("RespondError function must not be nil")
	}
	return responder{respondJSON: respondJSON, respondError: respondError}
}

func (h responder) success(w http.ResponseWriter, status int, message string, data interface{}) {
	h.respondJSON(w, status, map[string]interface{}{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

// userID reads the authenticated user set by the JWT middleware.
func (h responder) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return userID, true
}

// serviceError maps a service failure to an HTTP error response.
func (h responder) serviceError(w http.ResponseWriter, r *http.Request, err error, notFound, failure string) {
	if ve, ok := financeErrors.AsValidationErrors(err); ok {
		h.respondError(w, http.StatusBadRequest, "Validation failed", ve.Messages())
		return
	}
	switch {
	case financeErrors.IsValidationError(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case financeErrors.IsNotFound(err):
		h.respondError(w, http.StatusNotFound, notFound)
	case financeErrors.IsConflict(err):
		h.respondError(w, http.StatusConflict, conflictMessage(err))
	default:
		logging.FromContext(r.Context()).Error(failure, logging.FieldError, err)
		h.respondError(w, http.StatusInternalServerError, failure)
	}
}

func conflictMessage(err error) string {
	if errors.Is(err, financeErrors.ErrCategoryExists) {
		return "Category already exists"
	}
	return "Resource already exists"
}

// maxRequestBodyBytes bounds every JSON body, a full bulk import included.
const maxRequestBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// parseDate accepts YYYY-MM-DD or RFC3339. dateOnly reports the first form.
func parseDate(value string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.DateOnly, value); err == nil {
		return t, true, nil
	}
	t, err = time.Parse(time.RFC3339, value)
	return t.UTC(), false, err
}

// parseEndDate returns an exclusive bound; a plain date covers that whole day.
func parseEndDate(value string) (time.Time, error) {
	t, dateOnly, err := parseDate(value)
	if err != nil {
		return t, err
	}
	if dateOnly {
		return t.AddDate(0, 0, 1), nil
	}
	return t, nil
}

func parsePositiveInt(value string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// parseMonthYear reads month and year query params, defaulting to the current ones.
func parseMonthYear(r *http.Request, now time.Time) (int, int, string) {
	month, year := int(now.Month()), now.Year()
	q := r.URL.Query()
	if v := q.Get("month"); v != "" {
		m, ok := parsePositiveInt(v)
		if !ok || m > 12 {
			return 0, 0, "Invalid month"
		}
		month = m
	}
	if v := q.Get("year"); v != "" {
		y, ok := parsePositiveInt(v)
		if !ok || y < 1970 || y > 9999 {
			return 0, 0, "Invalid year"
		}
		year = y
	}
	return month, year, ""
}
