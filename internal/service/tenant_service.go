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

type CreateTenantRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	IDNumber string `json:"id_number"`
	Address  string `json:"address"`
}

type UpdateTenantRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
	IDNumber *string `json:"id_number"`
	Address  *string `json:"address"`
}

type TenantResponse struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	IDNumber  string `json:"id_number,omitempty"`
	Address   string `json:"address,omitempty"`
	CreatedAt string `json:"created_at"`
}

type CreateContractRequest struct {
	RoomID    string `json:"room_id" binding:"required"`
	TenantID  string `json:"tenant_id" binding:"required"`
	Deposit   string `json:"deposit"`
	StartDate string `json:"start_date" binding:"required"` // RFC3339 date
}

type ContractResponse struct {
	ID        string         `json:"id"`
	RoomID    string         `json:"room_id"`
	Tenant    TenantResponse `json:"tenant"`
	Deposit   string         `json:"deposit"`
	StartDate string         `json:"start_date"`
	EndDate   *string        `json:"end_date"`
	Status    string         `json:"status"`
}

// --- Interfaces ---

type TenantService interface {
	Create(ctx context.Context, actorID string, req CreateTenantRequest) (TenantResponse, error)
	Update(ctx context.Context, actorID, id string, req UpdateTenantRequest) (TenantResponse, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (TenantResponse, error)
	List(ctx context.Context, search string, page, limit int) ([]TenantResponse, int64, error)

	CreateContract(ctx context.Context, actorID string, req CreateContractRequest) (ContractResponse, error)
	EndContract(ctx context.Context, actorID, contractID string) (ContractResponse, error)
	ListContractsByRoom(ctx context.Context, roomID, status string) ([]ContractResponse, error)
}

type tenantService struct {
	tenantRepo   repository.TenantRepository
	contractRepo repository.ContractRepository
	roomRepo     repository.RoomRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewTenantService(
	tenantRepo repository.TenantRepository,
	contractRepo repository.ContractRepository,
	roomRepo repository.RoomRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) TenantService {
	return &tenantService{
		tenantRepo:   tenantRepo,
		contractRepo: contractRepo,
		roomRepo:     roomRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

// --- Implementation ---

func (s *tenantService) Create(ctx context.Context, actorID string, req CreateTenantRequest) (TenantResponse, error) {
	tenant := model.Tenant{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		IDNumber: req.IDNumber,
		Address:  req.Address,
	}
	if err := s.tenantRepo.Create(ctx, &tenant); err != nil {
		return TenantResponse{}, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.audit(ctx, actorID, model.ActionCreateTenant, tenant.ID.String(), tenant.FullName)
	return toTenantResponse(&tenant), nil
}

func (s *tenantService) Update(ctx context.Context, actorID, id string, req UpdateTenantRequest) (TenantResponse, error) {
	tenantID, err := uuid.Parse(id)
	if err != nil {
		return TenantResponse{}, fmt.Errorf("invalid tenant id: %w", err)
	}
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return TenantResponse{}, fmt.Errorf("tenant not found: %w", err)
	}

	if req.FullName != nil {
		tenant.FullName = *req.FullName
	}
	if req.Email != nil {
		tenant.Email = *req.Email
	}
	if req.Phone != nil {
		tenant.Phone = *req.Phone
	}
	if req.IDNumber != nil {
		tenant.IDNumber = *req.IDNumber
	}
	if req.Address != nil {
		tenant.Address = *req.Address
	}

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return TenantResponse{}, fmt.Errorf("failed to update tenant: %w", err)
	}

	s.audit(ctx, actorID, model.ActionUpdateTenant, tenant.ID.String(), tenant.FullName)
	return toTenantResponse(tenant), nil
}

func (s *tenantService) Delete(ctx context.Context, id string) error {
	tenantID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid tenant id: %w", err)
	}
	return s.tenantRepo.Delete(ctx, tenantID)
}

func (s *tenantService) Get(ctx context.Context, id string) (TenantResponse, error) {
	tenantID, err := uuid.Parse(id)
	if err != nil {
		return TenantResponse{}, fmt.Errorf("invalid tenant id: %w", err)
	}
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return TenantResponse{}, fmt.Errorf("tenant not found: %w", err)
	}
	return toTenantResponse(tenant), nil
}

func (s *tenantService) List(ctx context.Context, search string, page, limit int) ([]TenantResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	tenants, total, err := s.tenantRepo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch tenants: %w", err)
	}

	result := make([]TenantResponse, 0, len(tenants))
	for i := range tenants {
		result = append(result, toTenantResponse(&tenants[i]))
	}
	return result, total, nil
}

// CreateContract binds a tenant to a room and flips the room to OCCUPIED.
func (s *tenantService) CreateContract(ctx context.Context, actorID string, req CreateContractRequest) (ContractResponse, error) {
	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("invalid room id: %w", err)
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("invalid tenant id: %w", err)
	}
	startDate, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("invalid start_date: %w", err)
	}

	deposit := decimal.Zero
	if req.Deposit != "" {
		deposit, err = decimal.NewFromString(req.Deposit)
		if err != nil || deposit.IsNegative() {
			return ContractResponse{}, fmt.Errorf("invalid deposit %q", req.Deposit)
		}
	}

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("room not found: %w", err)
	}
	if room.Status == model.RoomLocked {
		return ContractResponse{}, fmt.Errorf("room %s is locked", room.Name)
	}
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("tenant not found: %w", err)
	}

	contract := model.Contract{
		RoomID:    roomID,
		TenantID:  tenantID,
		Tenant:    *tenant,
		Deposit:   deposit,
		StartDate: startDate,
		Status:    model.ContractActive,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.contractRepo.Create(txCtx, &contract); createErr != nil {
			return fmt.Errorf("failed to create contract: %w", createErr)
		}
		if room.Status == model.RoomEmpty {
			room.Status = model.RoomOccupied
			if updateErr := s.roomRepo.Update(txCtx, room); updateErr != nil {
				return fmt.Errorf("failed to update room status: %w", updateErr)
			}
		}
		s.audit(txCtx, actorID, model.ActionCreateContract, contract.ID.String(), room.Name)
		return nil
	})
	if err != nil {
		return ContractResponse{}, err
	}

	return toContractResponse(&contract), nil
}

// EndContract closes a rental; the room goes back to EMPTY when no active
// contract remains.
func (s *tenantService) EndContract(ctx context.Context, actorID, contractID string) (ContractResponse, error) {
	id, err := uuid.Parse(contractID)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("invalid contract id: %w", err)
	}

	contract, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("contract not found: %w", err)
	}
	if contract.Status == model.ContractEnded {
		return toContractResponse(contract), nil
	}

	now := time.Now()
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if endErr := s.contractRepo.End(txCtx, id, now); endErr != nil {
			return fmt.Errorf("failed to end contract: %w", endErr)
		}
		remaining, countErr := s.contractRepo.CountActiveByRoom(txCtx, contract.RoomID)
		if countErr != nil {
			return countErr
		}
		if remaining == 0 {
			room, loadErr := s.roomRepo.FindByID(txCtx, contract.RoomID)
			if loadErr != nil {
				return loadErr
			}
			if room.Status == model.RoomOccupied {
				room.Status = model.RoomEmpty
				if updateErr := s.roomRepo.Update(txCtx, room); updateErr != nil {
					return updateErr
				}
			}
		}
		s.audit(txCtx, actorID, model.ActionEndContract, contract.ID.String(), "")
		return nil
	})
	if err != nil {
		return ContractResponse{}, err
	}

	contract.Status = model.ContractEnded
	contract.EndDate = &now
	return toContractResponse(contract), nil
}

func (s *tenantService) ListContractsByRoom(ctx context.Context, roomID, status string) ([]ContractResponse, error) {
	id, err := uuid.Parse(roomID)
	if err != nil {
		return nil, fmt.Errorf("invalid room id: %w", err)
	}
	contracts, err := s.contractRepo.ListByRoom(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contracts: %w", err)
	}

	result := make([]ContractResponse, 0, len(contracts))
	for i := range contracts {
		result = append(result, toContractResponse(&contracts[i]))
	}
	return result, nil
}

// audit records a tenant or contract change; failures are logged, never surfaced.
func (s *tenantService) audit(ctx context.Context, actorID, action, entityID, entityName string) {
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

func toTenantResponse(t *model.Tenant) TenantResponse {
	return TenantResponse{
		ID:        t.ID.String(),
		FullName:  t.FullName,
		Email:     t.Email,
		Phone:     t.Phone,
		IDNumber:  t.IDNumber,
		Address:   t.Address,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}

func toContractResponse(c *model.Contract) ContractResponse {
	resp := ContractResponse{
		ID:        c.ID.String(),
		RoomID:    c.RoomID.String(),
		Tenant:    toTenantResponse(&c.Tenant),
		Deposit:   c.Deposit.StringFixed(2),
		StartDate: c.StartDate.Format(time.RFC3339),
		Status:    c.Status,
	}
	if c.EndDate != nil {
		s := c.EndDate.Format(time.RFC3339)
		resp.EndDate = &s
	}
	return resp
}
