package billing

import "errors"

// Domain errors for the billing core. Services wrap these with context via
// fmt.Errorf("...: %w", err); handlers map them to HTTP codes with errors.Is.
var (
	ErrInvalidMeterReading       = errors.New("invalid meter reading")
	ErrMeterRegression           = errors.New("meter reading is lower than the previous reading")
	ErrInvalidRate               = errors.New("unit rate must not be negative")
	ErrInvalidCostComponent      = errors.New("cost component must be a non-negative amount")
	ErrInvalidServiceLine        = errors.New("invalid service line")
	ErrNoActiveTenant            = errors.New("room has no active rental contract")
	ErrProofRequired             = errors.New("a transfer proof image is required")
	ErrInvoiceLocked             = errors.New("a paid invoice cannot be modified")
	ErrConcurrentInvoiceConflict = errors.New("room meters changed concurrently, please retry")
)
