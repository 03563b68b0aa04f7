package service

import (
	"context"
	"fmt"
	"time"

	"bhms-backend/internal/model"
	"bhms-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateServiceRequest struct {
	Name         string `json:"name" binding:"required"`
	DefaultPrice string `json:"default_price" binding:"required"`
	PriceType    string `json:"price_type" binding:"required,oneof=FIXED UNIT_BASED PERCENTAGE"`
	Unit         string `json:"unit"`
	Description  string `json:"description"`
}

type UpdateServiceRequest struct {
	Name         *string `json:"name"`
	DefaultPrice *string `json:"default_price"`
	PriceType    *string `json:"price_type" binding:"omitempty,oneof=FIXED UNIT_BASED PERCENTAGE"`
	Unit         *string `json:"unit"`
	Description  *string `json:"description"`
}

type ServiceResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DefaultPrice string `json:"default_price"`
	PriceType    string `json:"price_type"`
	Unit         string `json:"unit,omitempty"`
	Description  string `json:"description,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// --- Interface ---

// CatalogService manages the billable add-on catalog.
type CatalogService interface {
	Create(ctx context.Context, req CreateServiceRequest) (ServiceResponse, error)
	Update(ctx context.Context, id string, req UpdateServiceRequest) (ServiceResponse, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, limit int) ([]ServiceResponse, int64, error)
}

type catalogService struct {
	serviceRepo repository.ServiceRepository
}

func NewCatalogService(serviceRepo repository.ServiceRepository) CatalogService {
	return &catalogService{serviceRepo: serviceRepo}
}

// --- Implementation ---

func (s *catalogService) Create(ctx context.Context, req CreateServiceRequest) (ServiceResponse, error) {
	price, err := decimal.NewFromString(req.DefaultPrice)
	if err != nil || price.IsNegative() {
		return ServiceResponse{}, fmt.Errorf("invalid default_price %q", req.DefaultPrice)
	}

	svc := model.Service{
		Name:         req.Name,
		DefaultPrice: price,
		PriceType:    req.PriceType,
		Unit:         req.Unit,
		Description:  req.Description,
	}
	if err := s.serviceRepo.Create(ctx, &svc); err != nil {
		return ServiceResponse{}, fmt.Errorf("failed to create service: %w", err)
	}
	return toServiceResponse(&svc), nil
}

func (s *catalogService) Update(ctx context.Context, id string, req UpdateServiceRequest) (ServiceResponse, error) {
	svcID, err := uuid.Parse(id)
	if err != nil {
		return ServiceResponse{}, fmt.Errorf("invalid service id: %w", err)
	}
	svc, err := s.serviceRepo.FindByID(ctx, svcID)
	if err != nil {
		return ServiceResponse{}, fmt.Errorf("service not found: %w", err)
	}

	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.DefaultPrice != nil {
		price, parseErr := decimal.NewFromString(*req.DefaultPrice)
		if parseErr != nil || price.IsNegative() {
			return ServiceResponse{}, fmt.Errorf("invalid default_price %q", *req.DefaultPrice)
		}
		svc.DefaultPrice = price
	}
	if req.PriceType != nil {
		svc.PriceType = *req.PriceType
	}
	if req.Unit != nil {
		svc.Unit = *req.Unit
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}

	if err := s.serviceRepo.Update(ctx, svc); err != nil {
		return ServiceResponse{}, fmt.Errorf("failed to update service: %w", err)
	}
	return toServiceResponse(svc), nil
}

func (s *catalogService) Delete(ctx context.Context, id string) error {
	svcID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid service id: %w", err)
	}
	return s.serviceRepo.Delete(ctx, svcID)
}

func (s *catalogService) List(ctx context.Context, page, limit int) ([]ServiceResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	services, total, err := s.serviceRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch services: %w", err)
	}

	result := make([]ServiceResponse, 0, len(services))
	for i := range services {
		result = append(result, toServiceResponse(&services[i]))
	}
	return result, total, nil
}

// --- Mapping ---

func toServiceResponse(svc *model.Service) ServiceResponse {
	return ServiceResponse{
		ID:           svc.ID.String(),
		Name:         svc.Name,
		DefaultPrice: svc.DefaultPrice.StringFixed(2),
		PriceType:    svc.PriceType,
		Unit:         svc.Unit,
		Description:  svc.Description,
		CreatedAt:    svc.CreatedAt.Format(time.RFC3339),
	}
}
