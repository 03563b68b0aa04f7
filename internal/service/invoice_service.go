package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"bhms-backend/internal/billing"
	"bhms-backend/internal/model"
	"bhms-backend/internal/notifier"
	"bhms-backend/internal/repository"
	ws "bhms-backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateInvoiceRequest struct {
	Month           int     `json:"month" binding:"required,min=1,max=12"`
	Year            int     `json:"year" binding:"required,min=2000"`
	ElectricReading float64 `json:"electric_reading" binding:"required,min=0"`
	WaterReading    float64 `json:"water_reading" binding:"required,min=0"`
	QRImageURL      string  `json:"qr_image_url"`
}

// EditInvoiceRequest updates an unresolved invoice. Nil fields keep the current
// value; new readings are validated against the invoice's period-start snapshots.
type EditInvoiceRequest struct {
	Month           *int     `json:"month" binding:"omitempty,min=1,max=12"`
	Year            *int     `json:"year" binding:"omitempty,min=2000"`
	RoomPrice       *string  `json:"room_price"`
	ElectricReading *float64 `json:"electric_reading"`
	WaterReading    *float64 `json:"water_reading"`
	ServiceCost     *string  `json:"service_cost"`
	Status          *string  `json:"status" binding:"omitempty,oneof=PENDING OVERDUE"`
}

type InvoiceFilter struct {
	RoomID string
	Status string
	Month  int
	Year   int
	Page   int
	Limit  int
}

type PaymentBrief struct {
	ID            string `json:"id"`
	Method        string `json:"method"`
	Amount        string `json:"amount"`
	ProofImageURL string `json:"proof_image_url,omitempty"`
	Confirmed     bool   `json:"confirmed"`
	CreatedAt     string `json:"created_at"`
}

type InvoiceResponse struct {
	ID                    string         `json:"id"`
	InvoiceNo             string         `json:"invoice_no"`
	RoomID                string         `json:"room_id"`
	RoomName              string         `json:"room_name,omitempty"`
	Month                 int            `json:"month"`
	Year                  int            `json:"year"`
	RoomPrice             string         `json:"room_price"`
	ElectricReadingBefore float64        `json:"electric_reading_before"`
	ElectricReadingAfter  float64        `json:"electric_reading_after"`
	WaterReadingBefore    float64        `json:"water_reading_before"`
	WaterReadingAfter     float64        `json:"water_reading_after"`
	ElectricCost          string         `json:"electric_cost"`
	WaterCost             string         `json:"water_cost"`
	ServiceCost           string         `json:"service_cost"`
	TotalAmount           string         `json:"total_amount"`
	Status                string         `json:"status"`
	QRImageURL            string         `json:"qr_image_url,omitempty"`
	Payments              []PaymentBrief `json:"payments,omitempty"`
	CreatedAt             string         `json:"created_at"`
}

// InvoiceMutationResult reports a create/edit outcome including the notification
// side effect: "invoice created but e-mail failed" is a valid partial success.
type InvoiceMutationResult struct {
	Invoice           InvoiceResponse `json:"invoice"`
	Notified          bool            `json:"notified"`
	NotificationError string          `json:"notification_error,omitempty"`
}

// --- Interface ---

// InvoiceService owns the invoice state machine: PENDING -> PAID / OVERDUE,
// OVERDUE -> PAID, with PAID terminal.
type InvoiceService interface {
	Create(ctx context.Context, actorID, roomID string, req CreateInvoiceRequest) (InvoiceMutationResult, error)
	Edit(ctx context.Context, actorID, invoiceID string, req EditInvoiceRequest) (InvoiceMutationResult, error)
	MarkStatus(ctx context.Context, actorID, invoiceID, status string) (InvoiceResponse, error)
	Get(ctx context.Context, invoiceID string) (InvoiceResponse, error)
	List(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, int64, error)
}

type invoiceService struct {
	invoiceRepo   repository.InvoiceRepository
	roomRepo      repository.RoomRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
	notifier      notifier.Notifier
	hub           *ws.Hub
	publicBaseURL string
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	roomRepo repository.RoomRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	mailer notifier.Notifier,
	hub *ws.Hub,
	publicBaseURL string,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:   invoiceRepo,
		roomRepo:      roomRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
		notifier:      mailer,
		hub:           hub,
		publicBaseURL: publicBaseURL,
	}
}

// --- Implementation ---

// Create computes and persists an invoice from confirmed meter readings. Unlike
// preview, every validation failure here is fatal: this call gates a financial
// mutation. The meter advance and the invoice insert commit atomically; the
// tenant e-mail is sent after commit and reported as a partial outcome.
func (s *invoiceService) Create(ctx context.Context, actorID, roomID string, req CreateInvoiceRequest) (InvoiceMutationResult, error) {
	id, err := uuid.Parse(roomID)
	if err != nil {
		return InvoiceMutationResult{}, fmt.Errorf("invalid room id: %w", err)
	}

	room, err := s.roomRepo.FindByIDWithBilling(ctx, id)
	if err != nil {
		return InvoiceMutationResult{}, fmt.Errorf("room not found: %w", err)
	}

	if len(room.Contracts) == 0 {
		return InvoiceMutationResult{}, fmt.Errorf("cannot bill room %s: %w", room.Name, billing.ErrNoActiveTenant)
	}

	electricPrev := billing.ResolvePreviousReading(room.ElectricMeterNow, room.ElectricMeterAfter)
	waterPrev := billing.ResolvePreviousReading(room.WaterMeterNow, room.WaterMeterAfter)

	electricUsage, err := billing.ValidateReading(electricPrev, req.ElectricReading)
	if err != nil {
		return InvoiceMutationResult{}, fmt.Errorf("electric meter: %w", err)
	}
	waterUsage, err := billing.ValidateReading(waterPrev, req.WaterReading)
	if err != nil {
		return InvoiceMutationResult{}, fmt.Errorf("water meter: %w", err)
	}

	electricCost, err := billing.UtilityCost(electricUsage, room.ElectricFee)
	if err != nil {
		return InvoiceMutationResult{}, fmt.Errorf("electric cost: %w", err)
	}
	waterCost, err := billing.UtilityCost(waterUsage, room.WaterFee)
	if err != nil {
		return InvoiceMutationResult{}, fmt.Errorf("water cost: %w", err)
	}

	_, serviceCost, err := billing.AggregateServiceLines(serviceInputs(room.Services), room.RentPrice)
	if err != nil {
		return InvoiceMutationResult{}, err
	}

	total, err := billing.Total(room.RentPrice, electricCost, waterCost, serviceCost)
	if err != nil {
		return InvoiceMutationResult{}, err
	}
	if !total.IsPositive() {
		return InvoiceMutationResult{}, fmt.Errorf("invoice total %s must be greater than zero", total)
	}

	invoiceNo, err := s.generateInvoiceNo(ctx)
	if err != nil {
		return InvoiceMutationResult{}, fmt.Errorf("failed to generate invoice number: %w", err)
	}

	invoice := model.Invoice{
		InvoiceNo:             invoiceNo,
		RoomID:                room.ID,
		Month:                 req.Month,
		Year:                  req.Year,
		RoomPrice:             room.RentPrice,
		ElectricReadingBefore: electricPrev,
		ElectricReadingAfter:  req.ElectricReading,
		WaterReadingBefore:    waterPrev,
		WaterReadingAfter:     req.WaterReading,
		ElectricCost:          electricCost,
		WaterCost:             waterCost,
		ServiceCost:           serviceCost,
		TotalAmount:           total,
		Status:                model.InvoicePending,
		QRImageURL:            req.QRImageURL,
	}

	observed := repository.ObservedMeters(room)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// The compare-and-swap serializes concurrent creates for the same room:
		// the loser sees zero rows affected and must re-read fresh meters.
		if casErr := s.roomRepo.AdvanceMeters(txCtx, room.ID, observed, req.ElectricReading, req.WaterReading); casErr != nil {
			return casErr
		}
		if createErr := s.invoiceRepo.Create(txCtx, &invoice); createErr != nil {
			return fmt.Errorf("failed to create invoice: %w", createErr)
		}
		s.audit(txCtx, actorID, model.ActionCreateInvoice, invoice.InvoiceNo, room.Name, map[string]interface{}{
			"room_id": room.ID.String(), "total": total.StringFixed(2), "month": req.Month, "year": req.Year,
		})
		return nil
	})
	if err != nil {
		return InvoiceMutationResult{}, err
	}

	result := InvoiceMutationResult{Invoice: toInvoiceResponse(&invoice, room.Name), Notified: true}
	if notifyErr := s.notifyTenant(ctx, &invoice, room, false); notifyErr != nil {
		result.Notified = false
		result.NotificationError = notifyErr.Error()
	}

	s.broadcast(ws.EventInvoiceCreated, &invoice)
	return result, nil
}

// Edit recomputes an unresolved invoice from new inputs. The utility baseline is
// the invoice's period-start snapshot, so corrections always re-derive the cost
// from the original readings rather than stacking onto previous edits.
func (s *invoiceService) Edit(ctx context.Context, actorID, invoiceID string, req EditInvoiceRequest) (InvoiceMutationResult, error) {
	id, err := uuid.Parse(invoiceID)
	if err != nil {
		return InvoiceMutationResult{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	invoice, err := s.invoiceRepo.FindByIDWithRoom(ctx, id)
	if err != nil {
		return InvoiceMutationResult{}, fmt.Errorf("invoice not found: %w", err)
	}
	if invoice.Status == model.InvoicePaid {
		return InvoiceMutationResult{}, fmt.Errorf("invoice %s: %w", invoice.InvoiceNo, billing.ErrInvoiceLocked)
	}
	room := invoice.Room
	if room == nil {
		return InvoiceMutationResult{}, fmt.Errorf("invoice %s has no room", invoice.InvoiceNo)
	}

	oldTotal := invoice.TotalAmount
	oldElectricAfter := invoice.ElectricReadingAfter
	oldWaterAfter := invoice.WaterReadingAfter

	if req.Month != nil {
		if *req.Month < 1 || *req.Month > 12 {
			return InvoiceMutationResult{}, fmt.Errorf("month %d must be between 1 and 12", *req.Month)
		}
		invoice.Month = *req.Month
	}
	if req.Year != nil {
		if *req.Year < 2000 {
			return InvoiceMutationResult{}, fmt.Errorf("year %d must be 2000 or later", *req.Year)
		}
		invoice.Year = *req.Year
	}
	if req.RoomPrice != nil {
		price, parseErr := decimal.NewFromString(*req.RoomPrice)
		if parseErr != nil {
			return InvoiceMutationResult{}, fmt.Errorf("invalid room_price: %w", parseErr)
		}
		invoice.RoomPrice = price
	}
	if req.ServiceCost != nil {
		cost, parseErr := decimal.NewFromString(*req.ServiceCost)
		if parseErr != nil {
			return InvoiceMutationResult{}, fmt.Errorf("invalid service_cost: %w", parseErr)
		}
		invoice.ServiceCost = cost
	}
	if req.ElectricReading != nil {
		invoice.ElectricReadingAfter = *req.ElectricReading
	}
	if req.WaterReading != nil {
		invoice.WaterReadingAfter = *req.WaterReading
	}

	electricUsage, err := billing.ValidateReading(invoice.ElectricReadingBefore, invoice.ElectricReadingAfter)
	if err != nil {
		return InvoiceMutationResult{}, fmt.Errorf("electric meter: %w", err)
	}
	waterUsage, err := billing.ValidateReading(invoice.WaterReadingBefore, invoice.WaterReadingAfter)
	if err != nil {
		return InvoiceMutationResult{}, fmt.Errorf("water meter: %w", err)
	}

	invoice.ElectricCost, err = billing.UtilityCost(electricUsage, room.ElectricFee)
	if err != nil {
		return InvoiceMutationResult{}, fmt.Errorf("electric cost: %w", err)
	}
	invoice.WaterCost, err = billing.UtilityCost(waterUsage, room.WaterFee)
	if err != nil {
		return InvoiceMutationResult{}, fmt.Errorf("water cost: %w", err)
	}

	invoice.TotalAmount, err = billing.Total(invoice.RoomPrice, invoice.ElectricCost, invoice.WaterCost, invoice.ServiceCost)
	if err != nil {
		return InvoiceMutationResult{}, err
	}
	if !invoice.TotalAmount.IsPositive() {
		return InvoiceMutationResult{}, fmt.Errorf("invoice total %s must be greater than zero", invoice.TotalAmount)
	}

	if req.Status != nil {
		// PAID is reachable only through payment confirmation.
		invoice.Status = *req.Status
	}

	readingsChanged := invoice.ElectricReadingAfter != oldElectricAfter || invoice.WaterReadingAfter != oldWaterAfter
	materialChange := readingsChanged || !billing.WithinTolerance(invoice.TotalAmount, oldTotal)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if readingsChanged {
			freshRoom, loadErr := s.roomRepo.FindByID(txCtx, room.ID)
			if loadErr != nil {
				return fmt.Errorf("room not found: %w", loadErr)
			}
			// Re-anchor the room's baseline only while this invoice still closes
			// the latest period: the room's meters must match the invoice's
			// pre-edit readings. Editing an older period corrects the stored
			// invoice but must never move the meters backwards.
			if freshRoom.ElectricMeterNow == oldElectricAfter && freshRoom.WaterMeterNow == oldWaterAfter {
				observed := repository.ObservedMeters(freshRoom)
				if casErr := s.roomRepo.AdvanceMeters(txCtx, room.ID, observed, invoice.ElectricReadingAfter, invoice.WaterReadingAfter); casErr != nil {
					return casErr
				}
			}
		}
		if updateErr := s.invoiceRepo.Update(txCtx, invoice); updateErr != nil {
			return fmt.Errorf("failed to update invoice: %w", updateErr)
		}
		s.audit(txCtx, actorID, model.ActionEditInvoice, invoice.InvoiceNo, room.Name, map[string]interface{}{
			"total": invoice.TotalAmount.StringFixed(2), "material_change": materialChange,
		})
		return nil
	})
	if err != nil {
		return InvoiceMutationResult{}, err
	}

	result := InvoiceMutationResult{Invoice: toInvoiceResponse(invoice, room.Name), Notified: true}
	if materialChange {
		// Reload with active contracts; the invoice fetch carries the bare room only.
		billingRoom, loadErr := s.roomRepo.FindByIDWithBilling(ctx, room.ID)
		if loadErr == nil {
			loadErr = s.notifyTenant(ctx, invoice, billingRoom, true)
		}
		if loadErr != nil {
			result.Notified = false
			result.NotificationError = loadErr.Error()
		}
	}

	s.broadcast(ws.EventInvoiceUpdated, invoice)
	return result, nil
}

// MarkStatus applies a direct status transition: manual overdue-marking or a
// correction. Every transition is allowed except leaving PAID.
func (s *invoiceService) MarkStatus(ctx context.Context, actorID, invoiceID, status string) (InvoiceResponse, error) {
	if status != model.InvoicePending && status != model.InvoicePaid && status != model.InvoiceOverdue {
		return InvoiceResponse{}, fmt.Errorf("unknown invoice status %q", status)
	}

	id, err := uuid.Parse(invoiceID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		invoice, findErr = s.invoiceRepo.FindByID(txCtx, id)
		if findErr != nil {
			return fmt.Errorf("invoice not found: %w", findErr)
		}
		if invoice.Status == model.InvoicePaid && status != model.InvoicePaid {
			return fmt.Errorf("invoice %s: %w", invoice.InvoiceNo, billing.ErrInvoiceLocked)
		}
		if invoice.Status == status {
			return nil
		}
		if updateErr := s.invoiceRepo.UpdateStatus(txCtx, id, status); updateErr != nil {
			return fmt.Errorf("failed to update status: %w", updateErr)
		}
		invoice.Status = status
		s.audit(txCtx, actorID, model.ActionMarkInvoiceStatus, invoice.InvoiceNo, "", map[string]interface{}{"status": status})
		return nil
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	return toInvoiceResponse(invoice, ""), nil
}

func (s *invoiceService) Get(ctx context.Context, invoiceID string) (InvoiceResponse, error) {
	id, err := uuid.Parse(invoiceID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}
	invoice, err := s.invoiceRepo.FindByIDWithRoom(ctx, id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invoice not found: %w", err)
	}
	roomName := ""
	if invoice.Room != nil {
		roomName = invoice.Room.Name
	}
	return toInvoiceResponse(invoice, roomName), nil
}

func (s *invoiceService) List(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	invoices, total, err := s.invoiceRepo.List(ctx, repository.InvoiceListFilter{
		RoomID: filter.RoomID,
		Status: filter.Status,
		Month:  filter.Month,
		Year:   filter.Year,
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		roomName := ""
		if inv.Room != nil {
			roomName = inv.Room.Name
		}
		result = append(result, toInvoiceResponse(&inv, roomName))
	}
	return result, total, nil
}

// --- Helpers ---

func (s *invoiceService) generateInvoiceNo(ctx context.Context) (string, error) {
	today := time.Now().Format("20060102")
	prefix := "INV-" + today + "-"

	count, err := s.invoiceRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

// notifyTenant mails the first active tenant with an e-mail address. Returning an
// error here never undoes the financial write; the caller reports it as a
// partial outcome.
func (s *invoiceService) notifyTenant(ctx context.Context, invoice *model.Invoice, room *model.Room, resend bool) error {
	var tenant *model.Tenant
	for i := range room.Contracts {
		if room.Contracts[i].Tenant.Email != "" {
			tenant = &room.Contracts[i].Tenant
			break
		}
	}
	if tenant == nil {
		return fmt.Errorf("no active tenant with an e-mail address on room %s", room.Name)
	}

	summary := notifier.InvoiceSummary{
		InvoiceNo:    invoice.InvoiceNo,
		RoomName:     room.Name,
		TenantName:   tenant.FullName,
		Month:        invoice.Month,
		Year:         invoice.Year,
		RoomPrice:    invoice.RoomPrice.StringFixed(2),
		ElectricCost: invoice.ElectricCost.StringFixed(2),
		WaterCost:    invoice.WaterCost.StringFixed(2),
		ServiceCost:  invoice.ServiceCost.StringFixed(2),
		Total:        invoice.TotalAmount.StringFixed(2),
		PaymentURL:   fmt.Sprintf("%s/pay/%s", s.publicBaseURL, invoice.ID),
	}

	if resend {
		return s.notifier.ResendInvoiceEmail(ctx, tenant.Email, summary)
	}
	return s.notifier.SendInvoiceEmail(ctx, tenant.Email, summary)
}

// audit writes a log entry inside the surrounding transaction. Failures are
// logged but never abort a billing mutation.
func (s *invoiceService) audit(ctx context.Context, actorID, action, entityID, entityName string, details map[string]interface{}) {
	var userID *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		userID = &parsed
	}
	payload, _ := json.Marshal(details)
	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		log.Printf("audit log failed for %s %s: %v", action, entityID, err)
	}
}

func (s *invoiceService) broadcast(event string, invoice *model.Invoice) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastEvent(event, map[string]interface{}{
		"invoice_id": invoice.ID.String(),
		"invoice_no": invoice.InvoiceNo,
		"room_id":    invoice.RoomID.String(),
		"status":     invoice.Status,
		"total":      invoice.TotalAmount.StringFixed(2),
	})
}

// --- Mapping ---

func toInvoiceResponse(inv *model.Invoice, roomName string) InvoiceResponse {
	resp := InvoiceResponse{
		ID:                    inv.ID.String(),
		InvoiceNo:             inv.InvoiceNo,
		RoomID:                inv.RoomID.String(),
		RoomName:              roomName,
		Month:                 inv.Month,
		Year:                  inv.Year,
		RoomPrice:             inv.RoomPrice.StringFixed(2),
		ElectricReadingBefore: inv.ElectricReadingBefore,
		ElectricReadingAfter:  inv.ElectricReadingAfter,
		WaterReadingBefore:    inv.WaterReadingBefore,
		WaterReadingAfter:     inv.WaterReadingAfter,
		ElectricCost:          inv.ElectricCost.StringFixed(2),
		WaterCost:             inv.WaterCost.StringFixed(2),
		ServiceCost:           inv.ServiceCost.StringFixed(2),
		TotalAmount:           inv.TotalAmount.StringFixed(2),
		Status:                inv.Status,
		QRImageURL:            inv.QRImageURL,
		CreatedAt:             inv.CreatedAt.Format(time.RFC3339),
	}

	for _, p := range inv.Payments {
		resp.Payments = append(resp.Payments, PaymentBrief{
			ID:            p.ID.String(),
			Method:        p.Method,
			Amount:        p.Amount.StringFixed(2),
			ProofImageURL: p.ProofImageURL,
			Confirmed:     p.Confirmed,
			CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		})
	}

	return resp
}
