package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Price type values, mirroring the RoomService model constants. Kept here so the
// billing core stays free of persistence imports.
const (
	PriceFixed      = "FIXED"
	PriceUnitBased  = "UNIT_BASED"
	PricePercentage = "PERCENTAGE"
)

// RoomServiceInput is the snapshot of one service attached to a room, as read
// from persistence at preview/create time.
type RoomServiceInput struct {
	Name      string
	Price     decimal.Decimal
	Quantity  int
	PriceType string // FIXED, UNIT_BASED or PERCENTAGE
	Unit      string
}

// ServiceLine is one resolved billable line on an invoice.
type ServiceLine struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	PriceType string          `json:"price_type"`
	Unit      string          `json:"unit,omitempty"`
}

// AggregateServiceLines resolves a room's service snapshot into invoice lines and
// a subtotal. FIXED and UNIT_BASED lines total price * quantity; PERCENTAGE lines
// charge price% of the room rent (quantity ignored). Errors name the offending
// service so the caller can report which line is malformed.
func AggregateServiceLines(services []RoomServiceInput, roomPrice decimal.Decimal) ([]ServiceLine, decimal.Decimal, error) {
	lines := make([]ServiceLine, 0, len(services))
	subtotal := decimal.Zero

	for _, svc := range services {
		if svc.Price.IsNegative() {
			return nil, decimal.Zero, fmt.Errorf("%w: service %q has negative price %s", ErrInvalidServiceLine, svc.Name, svc.Price)
		}

		var lineTotal decimal.Decimal
		switch svc.PriceType {
		case PricePercentage:
			lineTotal = roomPrice.Mul(svc.Price).Div(decimal.NewFromInt(100)).Round(2)
		default:
			if svc.Quantity <= 0 {
				return nil, decimal.Zero, fmt.Errorf("%w: service %q has quantity %d", ErrInvalidServiceLine, svc.Name, svc.Quantity)
			}
			lineTotal = svc.Price.Mul(decimal.NewFromInt(int64(svc.Quantity))).Round(2)
		}

		if lineTotal.IsNegative() {
			return nil, decimal.Zero, fmt.Errorf("%w: service %q resolves to negative total %s", ErrInvalidServiceLine, svc.Name, lineTotal)
		}

		lines = append(lines, ServiceLine{
			Name:      svc.Name,
			Quantity:  svc.Quantity,
			UnitPrice: svc.Price,
			LineTotal: lineTotal,
			PriceType: svc.PriceType,
			Unit:      svc.Unit,
		})
		subtotal = subtotal.Add(lineTotal)
	}

	return lines, subtotal, nil
}
