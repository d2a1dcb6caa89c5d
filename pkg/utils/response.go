package utils

import (
	"errors"
	"net/http"

	"zelora-backend/internal/domain"

	"github.com/goccy/go-json"
)

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// WriteDomainError maps business-rule sentinels to HTTP status codes and
// writes the error message. Callers may pass extra payload to return the
// current persisted state alongside the error.
func WriteDomainError(w http.ResponseWriter, err error, payload ...interface{}) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrCouponNotFound),
		errors.Is(err, domain.ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrCancellationWindowClosed),
		errors.Is(err, domain.ErrReturnWindowExpired),
		errors.Is(err, domain.ErrDuplicateReturn),
		errors.Is(err, domain.ErrCouponExpired),
		errors.Is(err, domain.ErrMinimumOrderNotMet):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrInsufficientStock):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidPaymentSignature):
		status = http.StatusBadRequest
	}

	body := map[string]interface{}{"error": err.Error()}
	if len(payload) > 0 && payload[0] != nil {
		body["data"] = payload[0]
	}
	WriteJSON(w, status, body)
}
