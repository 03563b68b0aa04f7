package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"bhms-backend/internal/model"
	"bhms-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateRoomRequest struct {
	Name             string  `json:"name" binding:"required"`
	RentPrice        string  `json:"rent_price" binding:"required"`
	ElectricFee      string  `json:"electric_fee" binding:"required"`
	WaterFee         string  `json:"water_fee" binding:"required"`
	ElectricMeterNow float64 `json:"electric_meter_now" binding:"min=0"`
	WaterMeterNow    float64 `json:"water_meter_now" binding:"min=0"`
}

type UpdateRoomRequest struct {
	Name        *string `json:"name"`
	RentPrice   *string `json:"rent_price"`
	ElectricFee *string `json:"electric_fee"`
	WaterFee    *string `json:"water_fee"`
	Status      *string `json:"status" binding:"omitempty,oneof=EMPTY OCCUPIED LOCKED"`
	// Meter corrections outside invoicing land in the "after" columns so the next
	// invoice picks them up as the previous baseline.
	ElectricMeterAfter *float64 `json:"electric_meter_after"`
	WaterMeterAfter    *float64 `json:"water_meter_after"`
}

type AttachServiceRequest struct {
	ServiceID string  `json:"service_id" binding:"required"`
	Price     *string `json:"price"` // overrides catalog default when set
	Quantity  int     `json:"quantity" binding:"required,min=1"`
}

type UpdateRoomServiceRequest struct {
	Price    *string `json:"price"`
	Quantity *int    `json:"quantity" binding:"omitempty,min=1"`
}

type RoomServiceResponse struct {
	ServiceID string `json:"service_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	PriceType string `json:"price_type"`
	Unit      string `json:"unit,omitempty"`
}

type RoomResponse struct {
	ID                 string                `json:"id"`
	Name               string                `json:"name"`
	RentPrice          string                `json:"rent_price"`
	ElectricMeterNow   float64               `json:"electric_meter_now"`
	ElectricMeterAfter *float64              `json:"electric_meter_after"`
	WaterMeterNow      float64               `json:"water_meter_now"`
	WaterMeterAfter    *float64              `json:"water_meter_after"`
	ElectricFee        string                `json:"electric_fee"`
	WaterFee           string                `json:"water_fee"`
	Status             string                `json:"status"`
	Services           []RoomServiceResponse `json:"services,omitempty"`
	CreatedAt          string                `json:"created_at"`
}

// --- Interface ---

type RoomService interface {
	Create(ctx context.Context, actorID string, req CreateRoomRequest) (RoomResponse, error)
	Update(ctx context.Context, actorID, id string, req UpdateRoomRequest) (RoomResponse, error)
	Delete(ctx context.Context, actorID, id string) error
	Get(ctx context.Context, id string) (RoomResponse, error)
	List(ctx context.Context, status, search string, page, limit int) ([]RoomResponse, int64, error)

	AttachService(ctx context.Context, roomID string, req AttachServiceRequest) (RoomServiceResponse, error)
	UpdateService(ctx context.Context, roomID, serviceID string, req UpdateRoomServiceRequest) (RoomServiceResponse, error)
	DetachService(ctx context.Context, roomID, serviceID string) error
}

type roomService struct {
	roomRepo    repository.RoomRepository
	serviceRepo repository.ServiceRepository
	auditRepo   repository.AuditRepository
}

func NewRoomService(roomRepo repository.RoomRepository, serviceRepo repository.ServiceRepository, auditRepo repository.AuditRepository) RoomService {
	return &roomService{roomRepo: roomRepo, serviceRepo: serviceRepo, auditRepo: auditRepo}
}

// --- Implementation ---

func (s *roomService) Create(ctx context.Context, actorID string, req CreateRoomRequest) (RoomResponse, error) {
	rent, err := decimal.NewFromString(req.RentPrice)
	if err != nil {
		return RoomResponse{}, fmt.Errorf("invalid rent_price: %w", err)
	}
	electricFee, err := decimal.NewFromString(req.ElectricFee)
	if err != nil {
		return RoomResponse{}, fmt.Errorf("invalid electric_fee: %w", err)
	}
	waterFee, err := decimal.NewFromString(req.WaterFee)
	if err != nil {
		return RoomResponse{}, fmt.Errorf("invalid water_fee: %w", err)
	}
	if rent.IsNegative() || electricFee.IsNegative() || waterFee.IsNegative() {
		return RoomResponse{}, fmt.Errorf("prices and fees must not be negative")
	}

	room := model.Room{
		Name:             req.Name,
		RentPrice:        rent,
		ElectricFee:      electricFee,
		WaterFee:         waterFee,
		ElectricMeterNow: req.ElectricMeterNow,
		WaterMeterNow:    req.WaterMeterNow,
		Status:           model.RoomEmpty,
	}
	if err := s.roomRepo.Create(ctx, &room); err != nil {
		return RoomResponse{}, fmt.Errorf("failed to create room: %w", err)
	}

	s.audit(ctx, actorID, model.ActionCreateRoom, room.ID.String(), room.Name)
	return toRoomResponse(&room), nil
}

func (s *roomService) Update(ctx context.Context, actorID, id string, req UpdateRoomRequest) (RoomResponse, error) {
	roomID, err := uuid.Parse(id)
	if err != nil {
		return RoomResponse{}, fmt.Errorf("invalid room id: %w", err)
	}
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return RoomResponse{}, fmt.Errorf("room not found: %w", err)
	}

	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.RentPrice != nil {
		rent, parseErr := decimal.NewFromString(*req.RentPrice)
		if parseErr != nil || rent.IsNegative() {
			return RoomResponse{}, fmt.Errorf("invalid rent_price %q", *req.RentPrice)
		}
		room.RentPrice = rent
	}
	if req.ElectricFee != nil {
		fee, parseErr := decimal.NewFromString(*req.ElectricFee)
		if parseErr != nil || fee.IsNegative() {
			return RoomResponse{}, fmt.Errorf("invalid electric_fee %q", *req.ElectricFee)
		}
		room.ElectricFee = fee
	}
	if req.WaterFee != nil {
		fee, parseErr := decimal.NewFromString(*req.WaterFee)
		if parseErr != nil || fee.IsNegative() {
			return RoomResponse{}, fmt.Errorf("invalid water_fee %q", *req.WaterFee)
		}
		room.WaterFee = fee
	}
	if req.Status != nil {
		room.Status = *req.Status
	}
	if req.ElectricMeterAfter != nil {
		if *req.ElectricMeterAfter < room.ElectricMeterNow {
			return RoomResponse{}, fmt.Errorf("electric_meter_after %v is below the current baseline %v", *req.ElectricMeterAfter, room.ElectricMeterNow)
		}
		room.ElectricMeterAfter = req.ElectricMeterAfter
	}
	if req.WaterMeterAfter != nil {
		if *req.WaterMeterAfter < room.WaterMeterNow {
			return RoomResponse{}, fmt.Errorf("water_meter_after %v is below the current baseline %v", *req.WaterMeterAfter, room.WaterMeterNow)
		}
		room.WaterMeterAfter = req.WaterMeterAfter
	}

	if err := s.roomRepo.Update(ctx, room); err != nil {
		return RoomResponse{}, fmt.Errorf("failed to update room: %w", err)
	}

	s.audit(ctx, actorID, model.ActionUpdateRoom, room.ID.String(), room.Name)
	return toRoomResponse(room), nil
}

func (s *roomService) Delete(ctx context.Context, actorID, id string) error {
	roomID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid room id: %w", err)
	}
	if err := s.roomRepo.Delete(ctx, roomID); err != nil {
		return err
	}

	s.audit(ctx, actorID, model.ActionDeleteRoom, id, "")
	return nil
}

func (s *roomService) Get(ctx context.Context, id string) (RoomResponse, error) {
	roomID, err := uuid.Parse(id)
	if err != nil {
		return RoomResponse{}, fmt.Errorf("invalid room id: %w", err)
	}
	room, err := s.roomRepo.FindByIDWithBilling(ctx, roomID)
	if err != nil {
		return RoomResponse{}, fmt.Errorf("room not found: %w", err)
	}
	return toRoomResponse(room), nil
}

func (s *roomService) List(ctx context.Context, status, search string, page, limit int) ([]RoomResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	rooms, total, err := s.roomRepo.List(ctx, status, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch rooms: %w", err)
	}

	result := make([]RoomResponse, 0, len(rooms))
	for i := range rooms {
		result = append(result, toRoomResponse(&rooms[i]))
	}
	return result, total, nil
}

func (s *roomService) AttachService(ctx context.Context, roomID string, req AttachServiceRequest) (RoomServiceResponse, error) {
	rID, err := uuid.Parse(roomID)
	if err != nil {
		return RoomServiceResponse{}, fmt.Errorf("invalid room id: %w", err)
	}
	sID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return RoomServiceResponse{}, fmt.Errorf("invalid service id: %w", err)
	}

	if _, err := s.roomRepo.FindByID(ctx, rID); err != nil {
		return RoomServiceResponse{}, fmt.Errorf("room not found: %w", err)
	}
	catalog, err := s.serviceRepo.FindByID(ctx, sID)
	if err != nil {
		return RoomServiceResponse{}, fmt.Errorf("service not found: %w", err)
	}

	price := catalog.DefaultPrice
	if req.Price != nil {
		price, err = decimal.NewFromString(*req.Price)
		if err != nil || price.IsNegative() {
			return RoomServiceResponse{}, fmt.Errorf("invalid price %q", *req.Price)
		}
	}

	rs := model.RoomService{
		RoomID:    rID,
		ServiceID: sID,
		Service:   *catalog,
		Price:     price,
		Quantity:  req.Quantity,
		PriceType: catalog.PriceType,
	}
	if err := s.serviceRepo.AttachToRoom(ctx, &rs); err != nil {
		return RoomServiceResponse{}, fmt.Errorf("failed to attach service: %w", err)
	}
	return toRoomServiceResponse(&rs), nil
}

func (s *roomService) UpdateService(ctx context.Context, roomID, serviceID string, req UpdateRoomServiceRequest) (RoomServiceResponse, error) {
	rID, err := uuid.Parse(roomID)
	if err != nil {
		return RoomServiceResponse{}, fmt.Errorf("invalid room id: %w", err)
	}
	sID, err := uuid.Parse(serviceID)
	if err != nil {
		return RoomServiceResponse{}, fmt.Errorf("invalid service id: %w", err)
	}

	rs, err := s.serviceRepo.FindRoomService(ctx, rID, sID)
	if err != nil {
		return RoomServiceResponse{}, fmt.Errorf("room service not found: %w", err)
	}

	if req.Price != nil {
		price, parseErr := decimal.NewFromString(*req.Price)
		if parseErr != nil || price.IsNegative() {
			return RoomServiceResponse{}, fmt.Errorf("invalid price %q", *req.Price)
		}
		rs.Price = price
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return RoomServiceResponse{}, fmt.Errorf("quantity must be at least 1")
		}
		rs.Quantity = *req.Quantity
	}

	if err := s.serviceRepo.UpdateRoomService(ctx, rs); err != nil {
		return RoomServiceResponse{}, fmt.Errorf("failed to update room service: %w", err)
	}
	return toRoomServiceResponse(rs), nil
}

func (s *roomService) DetachService(ctx context.Context, roomID, serviceID string) error {
	rID, err := uuid.Parse(roomID)
	if err != nil {
		return fmt.Errorf("invalid room id: %w", err)
	}
	sID, err := uuid.Parse(serviceID)
	if err != nil {
		return fmt.Errorf("invalid service id: %w", err)
	}
	return s.serviceRepo.DetachFromRoom(ctx, rID, sID)
}

// audit records a room change; failures are logged, never surfaced.
func (s *roomService) audit(ctx context.Context, actorID, action, entityID, entityName string) {
	var userID *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		userID = &parsed
	}
	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		log.Printf("audit log failed for %s %s: %v", action, entityID, err)
	}
}

// --- Mapping ---

func toRoomResponse(room *model.Room) RoomResponse {
	resp := RoomResponse{
		ID:                 room.ID.String(),
		Name:               room.Name,
		RentPrice:          room.RentPrice.StringFixed(2),
		ElectricMeterNow:   room.ElectricMeterNow,
		ElectricMeterAfter: room.ElectricMeterAfter,
		WaterMeterNow:      room.WaterMeterNow,
		WaterMeterAfter:    room.WaterMeterAfter,
		ElectricFee:        room.ElectricFee.StringFixed(2),
		WaterFee:           room.WaterFee.StringFixed(2),
		Status:             room.Status,
		CreatedAt:          room.CreatedAt.Format(time.RFC3339),
	}
	for i := range room.Services {
		resp.Services = append(resp.Services, toRoomServiceResponse(&room.Services[i]))
	}
	return resp
}

func toRoomServiceResponse(rs *model.RoomService) RoomServiceResponse {
	return RoomServiceResponse{
		ServiceID: rs.ServiceID.String(),
		Name:      rs.Service.Name,
		Price:     rs.Price.StringFixed(2),
		Quantity:  rs.Quantity,
		PriceType: rs.PriceType,
		Unit:      rs.Service.Unit,
	}
}
