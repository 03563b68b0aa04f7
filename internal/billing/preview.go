package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Severity tags a preview issue. Critical issues block sending the invoice;
// warnings are advisory only.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// Issue is one human-readable validation finding on a preview.
type Issue struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// PreviewInput carries everything needed to compute a would-be invoice for a room.
// Proposed readings are optional; when absent the preview shows zero usage against
// the resolved baseline.
type PreviewInput struct {
	RoomName      string
	RoomPrice     decimal.Decimal
	ElectricPrev  float64
	WaterPrev     float64
	ElectricFee   decimal.Decimal
	WaterFee      decimal.Decimal
	ElectricNext  *float64
	WaterNext     *float64
	Services      []RoomServiceInput
	ActiveTenants int
	// ExpectedTotal is an optional client-computed total, cross-checked against the
	// recomputed one within Tolerance. A mismatch is a warning, not a blocker.
	ExpectedTotal *decimal.Decimal
}

// Preview is an unpersisted invoice breakdown for owner review.
type Preview struct {
	RoomPrice     decimal.Decimal `json:"room_price"`
	ElectricPrev  float64         `json:"electric_prev"`
	ElectricNext  float64         `json:"electric_next"`
	ElectricUsage float64         `json:"electric_usage"`
	ElectricCost  decimal.Decimal `json:"electric_cost"`
	WaterPrev     float64         `json:"water_prev"`
	WaterNext     float64         `json:"water_next"`
	WaterUsage    float64         `json:"water_usage"`
	WaterCost     decimal.Decimal `json:"water_cost"`
	ServiceLines  []ServiceLine   `json:"service_lines"`
	ServiceCost   decimal.Decimal `json:"service_cost"`
	Total         decimal.Decimal `json:"total"`
	Issues        []Issue         `json:"issues"`
	CanSend       bool            `json:"can_send"`
}

// BuildPreview computes a best-effort invoice breakdown. It never fails: every
// validation finding is collected as an Issue so the UI can show all problems at
// once, while the rest of the breakdown stays usable. CanSend is true only when
// no critical issue was found.
func BuildPreview(in PreviewInput) Preview {
	p := Preview{
		RoomPrice:    in.RoomPrice,
		ElectricPrev: in.ElectricPrev,
		ElectricNext: in.ElectricPrev,
		WaterPrev:    in.WaterPrev,
		WaterNext:    in.WaterPrev,
		ElectricCost: decimal.Zero,
		WaterCost:    decimal.Zero,
		ServiceCost:  decimal.Zero,
	}

	critical := func(format string, args ...interface{}) {
		p.Issues = append(p.Issues, Issue{Message: fmt.Sprintf(format, args...), Severity: SeverityCritical})
	}
	warning := func(format string, args ...interface{}) {
		p.Issues = append(p.Issues, Issue{Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
	}

	if in.ActiveTenants <= 0 {
		critical("Room has no active rental contract")
	}

	p.ElectricUsage, p.ElectricCost = previewUtility(in.ElectricPrev, in.ElectricNext, in.ElectricFee, "electric", critical)
	if in.ElectricNext != nil {
		p.ElectricNext = *in.ElectricNext
	}
	p.WaterUsage, p.WaterCost = previewUtility(in.WaterPrev, in.WaterNext, in.WaterFee, "water", critical)
	if in.WaterNext != nil {
		p.WaterNext = *in.WaterNext
	}

	lines, subtotal, err := AggregateServiceLines(in.Services, in.RoomPrice)
	if err != nil {
		critical("%v", err)
	} else {
		p.ServiceLines = lines
		p.ServiceCost = subtotal
	}

	total, err := Total(in.RoomPrice, p.ElectricCost, p.WaterCost, p.ServiceCost)
	if err != nil {
		critical("%v", err)
	} else {
		p.Total = total
		if !total.IsPositive() {
			critical("invoice total %s must be greater than zero", total)
		}
		if in.ExpectedTotal != nil && !WithinTolerance(total, *in.ExpectedTotal) {
			warning("recomputed total %s differs from supplied total %s", total, in.ExpectedTotal)
		}
	}

	p.CanSend = true
	for _, issue := range p.Issues {
		if issue.Severity == SeverityCritical {
			p.CanSend = false
			break
		}
	}
	return p
}

func previewUtility(prev float64, next *float64, fee decimal.Decimal, label string, critical func(string, ...interface{})) (float64, decimal.Decimal) {
	if next == nil {
		return 0, decimal.Zero
	}
	usage, err := ValidateReading(prev, *next)
	if err != nil {
		critical("%s meter: %v", label, err)
		return 0, decimal.Zero
	}
	cost, err := UtilityCost(usage, fee)
	if err != nil {
		critical("%s cost: %v", label, err)
		return usage, decimal.Zero
	}
	return usage, cost
}
