package service

import (
	"context"
	"fmt"

	"bhms-backend/internal/billing"
	"bhms-backend/internal/model"
	"bhms-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type PreviewRequest struct {
	ElectricReading *float64 `json:"electric_reading"`
	WaterReading    *float64 `json:"water_reading"`
	// ExpectedTotal is the client-computed total, cross-checked server side.
	ExpectedTotal *string `json:"expected_total"`
}

type ServiceLineResponse struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
	PriceType string `json:"price_type"`
	Unit      string `json:"unit,omitempty"`
}

type PreviewIssue struct {
	Message  string `json:"message"`
	Severity string `json:"severity"` // critical or warning
}

type PreviewResponse struct {
	RoomID        string                `json:"room_id"`
	RoomName      string                `json:"room_name"`
	ActiveTenants int                   `json:"active_tenants"`
	RoomPrice     string                `json:"room_price"`
	ElectricPrev  float64               `json:"electric_prev"`
	ElectricNext  float64               `json:"electric_next"`
	ElectricUsage float64               `json:"electric_usage"`
	ElectricCost  string                `json:"electric_cost"`
	WaterPrev     float64               `json:"water_prev"`
	WaterNext     float64               `json:"water_next"`
	WaterUsage    float64               `json:"water_usage"`
	WaterCost     string                `json:"water_cost"`
	ServiceLines  []ServiceLineResponse `json:"service_lines"`
	ServiceCost   string                `json:"service_cost"`
	Total         string                `json:"total"`
	Issues        []PreviewIssue        `json:"issues"`
	CanSend       bool                  `json:"can_send"`
}

// --- Interface ---

// PreviewService computes a would-be invoice for owner review. It never
// persists or mutates anything.
type PreviewService interface {
	Preview(ctx context.Context, roomID string, req PreviewRequest) (PreviewResponse, error)
}

type previewService struct {
	roomRepo repository.RoomRepository
}

func NewPreviewService(roomRepo repository.RoomRepository) PreviewService {
	return &previewService{roomRepo: roomRepo}
}

// --- Implementation ---

func (s *previewService) Preview(ctx context.Context, roomID string, req PreviewRequest) (PreviewResponse, error) {
	id, err := uuid.Parse(roomID)
	if err != nil {
		return PreviewResponse{}, fmt.Errorf("invalid room id: %w", err)
	}

	room, err := s.roomRepo.FindByIDWithBilling(ctx, id)
	if err != nil {
		return PreviewResponse{}, fmt.Errorf("room not found: %w", err)
	}

	input := billing.PreviewInput{
		RoomName:      room.Name,
		RoomPrice:     room.RentPrice,
		ElectricPrev:  billing.ResolvePreviousReading(room.ElectricMeterNow, room.ElectricMeterAfter),
		WaterPrev:     billing.ResolvePreviousReading(room.WaterMeterNow, room.WaterMeterAfter),
		ElectricFee:   room.ElectricFee,
		WaterFee:      room.WaterFee,
		ElectricNext:  req.ElectricReading,
		WaterNext:     req.WaterReading,
		Services:      serviceInputs(room.Services),
		ActiveTenants: len(room.Contracts),
	}

	if req.ExpectedTotal != nil {
		expected, parseErr := decimal.NewFromString(*req.ExpectedTotal)
		if parseErr != nil {
			return PreviewResponse{}, fmt.Errorf("invalid expected_total: %w", parseErr)
		}
		input.ExpectedTotal = &expected
	}

	preview := billing.BuildPreview(input)
	return toPreviewResponse(room, len(room.Contracts), preview), nil
}

// --- Helpers ---

// serviceInputs snapshots a room's attached services for the billing core.
func serviceInputs(services []model.RoomService) []billing.RoomServiceInput {
	inputs := make([]billing.RoomServiceInput, 0, len(services))
	for _, rs := range services {
		inputs = append(inputs, billing.RoomServiceInput{
			Name:      rs.Service.Name,
			Price:     rs.Price,
			Quantity:  rs.Quantity,
			PriceType: rs.PriceType,
			Unit:      rs.Service.Unit,
		})
	}
	return inputs
}

func toPreviewResponse(room *model.Room, activeTenants int, p billing.Preview) PreviewResponse {
	lines := make([]ServiceLineResponse, 0, len(p.ServiceLines))
	for _, l := range p.ServiceLines {
		lines = append(lines, ServiceLineResponse{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
			LineTotal: l.LineTotal.StringFixed(2),
			PriceType: l.PriceType,
			Unit:      l.Unit,
		})
	}

	issues := make([]PreviewIssue, 0, len(p.Issues))
	for _, issue := range p.Issues {
		issues = append(issues, PreviewIssue{Message: issue.Message, Severity: string(issue.Severity)})
	}

	return PreviewResponse{
		RoomID:        room.ID.String(),
		RoomName:      room.Name,
		ActiveTenants: activeTenants,
		RoomPrice:     p.RoomPrice.StringFixed(2),
		ElectricPrev:  p.ElectricPrev,
		ElectricNext:  p.ElectricNext,
		ElectricUsage: p.ElectricUsage,
		ElectricCost:  p.ElectricCost.StringFixed(2),
		WaterPrev:     p.WaterPrev,
		WaterNext:     p.WaterNext,
		WaterUsage:    p.WaterUsage,
		WaterCost:     p.WaterCost.StringFixed(2),
		ServiceLines:  lines,
		ServiceCost:   p.ServiceCost.StringFixed(2),
		Total:         p.Total.StringFixed(2),
		Issues:        issues,
		CanSend:       p.CanSend,
	}
}
