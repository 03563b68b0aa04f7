package handler

import (
	"errors"
	"net/http"

	"bhms-backend/internal/billing"

	"gorm.io/gorm"
)

// statusForError maps billing domain errors to HTTP status codes.
// Unknown errors fall back to 400 so service-level validation messages
// still reach the client.
func statusForError(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, billing.ErrConcurrentInvoiceConflict):
		return http.StatusConflict
	case errors.Is(err, billing.ErrInvoiceLocked):
		return http.StatusConflict
	case errors.Is(err, billing.ErrNoActiveTenant),
		errors.Is(err, billing.ErrMeterRegression),
		errors.Is(err, billing.ErrInvalidMeterReading),
		errors.Is(err, billing.ErrInvalidRate),
		errors.Is(err, billing.ErrInvalidCostComponent),
		errors.Is(err, billing.ErrInvalidServiceLine),
		errors.Is(err, billing.ErrProofRequired):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}
