package interfaces

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sebuszqo/FinanceTracker/internal/logging"
)

func capitalizeFirstLetter(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(string(s[0])) + s[1:]
}

// notFoundMessages maps path params to the 404 returned for a malformed id,
// so a bad id is indistinguishable from a missing record.
var notFoundMessages = map[string]string{
	"transactionID": "Transaction not found",
	"budgetID":      "Budget not found",
}

// ValidatePathParamsMiddleware rejects requests whose path params are not UUIDs.
func ValidatePathParamsMiddleware(respondError RespondErrorFunc, next http.Handler, params ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, param := range params {
			paramValue := r.PathValue(param)
			if paramValue == "" {
				respondError(w, http.StatusBadRequest, capitalizeFirstLetter(fmt.Sprintf("%s is required", param)))
				return
			}

			if _, err := uuid.Parse(paramValue); err != nil {
				logging.FromContext(r.Context()).Debug("invalid path param", "param", param, "value", paramValue)
				if msg, ok := notFoundMessages[param]; ok {
					respondError(w, http.StatusNotFound, msg)
					return
				}
				respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", param))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
