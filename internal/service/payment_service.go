package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"bhms-backend/internal/billing"
	"bhms-backend/internal/gateway"
	"bhms-backend/internal/model"
	"bhms-backend/internal/repository"
	"bhms-backend/internal/storage"
	ws "bhms-backend/internal/websocket"

	"github.com/google/uuid"
)

// --- DTOs ---

// ProofUpload is the tenant's transfer proof, already size/mime checked by the
// HTTP layer.
type ProofUpload struct {
	Filename string
	Reader   io.Reader
}

type PaymentResponse struct {
	ID            string `json:"id"`
	InvoiceID     string `json:"invoice_id"`
	Method        string `json:"method"`
	Amount        string `json:"amount"`
	ProofImageURL string `json:"proof_image_url,omitempty"`
	SnapToken     string `json:"snap_token,omitempty"`
	GatewayRef    string `json:"gateway_ref,omitempty"`
	Confirmed     bool   `json:"confirmed"`
	CreatedAt     string `json:"created_at"`
}

// --- Interface ---

// PaymentService reconciles payment submissions against invoices. Confirming a
// payment is the only path by which an invoice reaches PAID.
type PaymentService interface {
	Submit(ctx context.Context, invoiceID, method string, proof *ProofUpload) (PaymentResponse, error)
	Confirm(ctx context.Context, actorID, paymentID string) (PaymentResponse, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]PaymentResponse, error)
	HandleGatewayNotification(ctx context.Context, n gateway.Notification) error
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	invoiceRepo repository.InvoiceRepository
	roomRepo    repository.RoomRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	proofs      storage.ProofStorage
	gateway     gateway.Client
	hub         *ws.Hub
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	invoiceRepo repository.InvoiceRepository,
	roomRepo repository.RoomRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	proofs storage.ProofStorage,
	gw gateway.Client,
	hub *ws.Hub,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		roomRepo:    roomRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		proofs:      proofs,
		gateway:     gw,
		hub:         hub,
	}
}

// --- Implementation ---

func (s *paymentService) Submit(ctx context.Context, invoiceID, method string, proof *ProofUpload) (PaymentResponse, error) {
	id, err := uuid.Parse(invoiceID)
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	invoice, err := s.invoiceRepo.FindByIDWithRoom(ctx, id)
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("invoice not found: %w", err)
	}
	if invoice.Status == model.InvoicePaid {
		return PaymentResponse{}, fmt.Errorf("invoice %s is already paid: %w", invoice.InvoiceNo, billing.ErrInvoiceLocked)
	}

	payment := model.Payment{
		InvoiceID: invoice.ID,
		Method:    method,
		Amount:    invoice.TotalAmount,
	}

	switch method {
	case model.PaymentQRTransfer:
		if proof == nil || proof.Reader == nil {
			return PaymentResponse{}, fmt.Errorf("QR transfer for invoice %s: %w", invoice.InvoiceNo, billing.ErrProofRequired)
		}
		url, storeErr := s.proofs.Store(ctx, proof.Filename, proof.Reader)
		if storeErr != nil {
			return PaymentResponse{}, fmt.Errorf("failed to store transfer proof: %w", storeErr)
		}
		payment.ProofImageURL = url

	case model.PaymentCash:
		// Nothing to attach; waits for manual owner confirmation.

	case model.PaymentGateway:
		orderID := fmt.Sprintf("%s-%s", invoice.InvoiceNo, uuid.New().String()[:8])
		customerName, customerEmail := s.payerIdentity(ctx, invoice)
		tx, gwErr := s.gateway.CreateTransaction(ctx, orderID, invoice.TotalAmount.Round(0).IntPart(), customerName, customerEmail)
		if gwErr != nil {
			return PaymentResponse{}, gwErr
		}
		payment.GatewayRef = tx.OrderID
		payment.SnapToken = tx.Token

	default:
		return PaymentResponse{}, fmt.Errorf("unknown payment method %q", method)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.paymentRepo.Create(txCtx, &payment); createErr != nil {
			return fmt.Errorf("failed to create payment: %w", createErr)
		}
		s.audit(txCtx, "", model.ActionSubmitPayment, payment.ID.String(), invoice.InvoiceNo, method)
		return nil
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	s.broadcast(ws.EventPaymentSubmitted, &payment)
	return toPaymentResponse(&payment), nil
}

// Confirm marks a payment confirmed and transitions the parent invoice to PAID.
// It is idempotent: confirming an already-confirmed payment returns the current
// state without touching the invoice or notifying again.
func (s *paymentService) Confirm(ctx context.Context, actorID, paymentID string) (PaymentResponse, error) {
	id, err := uuid.Parse(paymentID)
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("invalid payment id: %w", err)
	}

	var payment *model.Payment
	alreadyConfirmed := false
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		payment, findErr = s.paymentRepo.FindByID(txCtx, id)
		if findErr != nil {
			return fmt.Errorf("payment not found: %w", findErr)
		}
		if payment.Confirmed {
			alreadyConfirmed = true
			return nil
		}

		now := time.Now()
		payment.Confirmed = true
		payment.ConfirmedAt = &now
		if parsed, parseErr := uuid.Parse(actorID); parseErr == nil {
			payment.ConfirmedBy = &parsed
		}

		if updateErr := s.paymentRepo.Update(txCtx, payment); updateErr != nil {
			return fmt.Errorf("failed to confirm payment: %w", updateErr)
		}
		if statusErr := s.invoiceRepo.UpdateStatus(txCtx, payment.InvoiceID, model.InvoicePaid); statusErr != nil {
			return fmt.Errorf("failed to mark invoice paid: %w", statusErr)
		}
		s.audit(txCtx, actorID, model.ActionConfirmPayment, payment.ID.String(), "", payment.Method)
		return nil
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	if !alreadyConfirmed {
		s.broadcast(ws.EventPaymentConfirmed, payment)
	}
	return toPaymentResponse(payment), nil
}

func (s *paymentService) ListByInvoice(ctx context.Context, invoiceID string) ([]PaymentResponse, error) {
	id, err := uuid.Parse(invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice id: %w", err)
	}
	payments, err := s.paymentRepo.ListByInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payments: %w", err)
	}

	result := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		result = append(result, toPaymentResponse(&payments[i]))
	}
	return result, nil
}

// HandleGatewayNotification processes the gateway's server-to-server callback.
// Settled transactions confirm the matching payment through the same idempotent
// path as a manual confirmation. Status changes through the gateway do not
// re-send the invoice e-mail.
func (s *paymentService) HandleGatewayNotification(ctx context.Context, n gateway.Notification) error {
	if err := s.gateway.VerifyNotification(n); err != nil {
		return err
	}
	if !n.Settled() {
		log.Printf("gateway notification for order %s ignored: status %s", n.OrderID, n.TransactionStatus)
		return nil
	}

	payment, err := s.paymentRepo.FindByGatewayRef(ctx, n.OrderID)
	if err != nil {
		return fmt.Errorf("no payment for gateway order %s: %w", n.OrderID, err)
	}

	_, err = s.Confirm(ctx, "", payment.ID.String())
	return err
}

// --- Helpers ---

// payerIdentity picks the active tenant used as the gateway customer.
func (s *paymentService) payerIdentity(ctx context.Context, invoice *model.Invoice) (string, string) {
	room, err := s.roomRepo.FindByIDWithBilling(ctx, invoice.RoomID)
	if err != nil {
		return "", ""
	}
	for i := range room.Contracts {
		t := room.Contracts[i].Tenant
		if t.Email != "" || t.FullName != "" {
			return t.FullName, t.Email
		}
	}
	return "", ""
}

func (s *paymentService) audit(ctx context.Context, actorID, action, entityID, entityName, method string) {
	var userID *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		userID = &parsed
	}
	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    fmt.Sprintf(`{"method":%q}`, method),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		log.Printf("audit log failed for %s %s: %v", action, entityID, err)
	}
}

func (s *paymentService) broadcast(event string, payment *model.Payment) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastEvent(event, map[string]interface{}{
		"payment_id": payment.ID.String(),
		"invoice_id": payment.InvoiceID.String(),
		"method":     payment.Method,
		"confirmed":  payment.Confirmed,
	})
}

// --- Mapping ---

func toPaymentResponse(p *model.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID.String(),
		InvoiceID:     p.InvoiceID.String(),
		Method:        p.Method,
		Amount:        p.Amount.StringFixed(2),
		ProofImageURL: p.ProofImageURL,
		SnapToken:     p.SnapToken,
		GatewayRef:    p.GatewayRef,
		Confirmed:     p.Confirmed,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}
