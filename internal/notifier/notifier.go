package notifier

import "context"

// InvoiceSummary is the flattened invoice content rendered into the tenant e-mail.
type InvoiceSummary struct {
	InvoiceNo    string
	RoomName     string
	TenantName   string
	Month        int
	Year         int
	RoomPrice    string
	ElectricCost string
	WaterCost    string
	ServiceCost  string
	Total        string
	PaymentURL   string // public payment page for this invoice
}

// Notifier delivers invoice e-mails to tenants. Delivery is best-effort from the
// billing core's perspective: a failure is reported back to the caller but never
// rolls back the financial record.
type Notifier interface {
	SendInvoiceEmail(ctx context.Context, to string, summary InvoiceSummary) error
	ResendInvoiceEmail(ctx context.Context, to string, summary InvoiceSummary) error
}
