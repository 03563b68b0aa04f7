package service

import (
	"context"
	"strings"
	"testing"

	"bhms-backend/internal/billing"
	"bhms-backend/internal/gateway"
	"bhms-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentSubmit_QRTransferRequiresProof(t *testing.T) {
	env := newBillingEnv(t)
	_, created := seedBilledRoom(t, env)
	ctx := context.Background()

	_, err := env.paymentSvc.Submit(ctx, created.Invoice.ID, model.PaymentQRTransfer, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrProofRequired)

	payment, err := env.paymentSvc.Submit(ctx, created.Invoice.ID, model.PaymentQRTransfer, &ProofUpload{
		Filename: "transfer.jpg",
		Reader:   strings.NewReader("img-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://test/uploads/transfer.jpg", payment.ProofImageURL)
	assert.Equal(t, created.Invoice.TotalAmount, payment.Amount)
	assert.False(t, payment.Confirmed)
	assert.EqualValues(t, 1, auditCount(t, env.db, model.ActionSubmitPayment))
}

func TestPaymentSubmit_CashNeedsNoAttachment(t *testing.T) {
	env := newBillingEnv(t)
	_, created := seedBilledRoom(t, env)

	payment, err := env.paymentSvc.Submit(context.Background(), created.Invoice.ID, model.PaymentCash, nil)
	require.NoError(t, err)
	assert.Empty(t, payment.ProofImageURL)
	assert.False(t, payment.Confirmed)
}

func TestPaymentSubmit_GatewayCreatesCheckoutSession(t *testing.T) {
	env := newBillingEnv(t)
	_, created := seedBilledRoom(t, env)

	payment, err := env.paymentSvc.Submit(context.Background(), created.Invoice.ID, model.PaymentGateway, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(payment.GatewayRef, created.Invoice.InvoiceNo+"-"))
	assert.NotEmpty(t, payment.SnapToken)
	require.Len(t, env.gateway.Created, 1)
	assert.Equal(t, payment.GatewayRef, env.gateway.Created[0])
}

func TestListPaymentsByInvoice(t *testing.T) {
	env := newBillingEnv(t)
	_, created := seedBilledRoom(t, env)
	ctx := context.Background()

	_, err := env.paymentSvc.Submit(ctx, created.Invoice.ID, model.PaymentCash, nil)
	require.NoError(t, err)
	_, err = env.paymentSvc.Submit(ctx, created.Invoice.ID, model.PaymentQRTransfer, &ProofUpload{
		Filename: "transfer.jpg",
		Reader:   strings.NewReader("img-bytes"),
	})
	require.NoError(t, err)

	payments, err := env.paymentSvc.ListByInvoice(ctx, created.Invoice.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	_, err = env.paymentSvc.ListByInvoice(ctx, "not-a-uuid")
	require.Error(t, err)
}

func TestPaymentSubmit_RejectsUnknownMethod(t *testing.T) {
	env := newBillingEnv(t)
	_, created := seedBilledRoom(t, env)

	_, err := env.paymentSvc.Submit(context.Background(), created.Invoice.ID, "CHEQUE", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown payment method")
}

func TestPaymentSubmit_PaidInvoiceRejectsFurtherPayments(t *testing.T) {
	env := newBillingEnv(t)
	_, created := seedBilledRoom(t, env)
	ctx := context.Background()

	_, err := env.invoiceSvc.MarkStatus(ctx, uuid.NewString(), created.Invoice.ID, model.InvoicePaid)
	require.NoError(t, err)

	_, err = env.paymentSvc.Submit(ctx, created.Invoice.ID, model.PaymentCash, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrInvoiceLocked)
}

func TestPaymentConfirm_SettlesInvoice(t *testing.T) {
	env := newBillingEnv(t)
	_, created := seedBilledRoom(t, env)
	ctx := context.Background()

	submitted, err := env.paymentSvc.Submit(ctx, created.Invoice.ID, model.PaymentCash, nil)
	require.NoError(t, err)

	actor := uuid.NewString()
	confirmed, err := env.paymentSvc.Confirm(ctx, actor, submitted.ID)
	require.NoError(t, err)
	assert.True(t, confirmed.Confirmed)

	invoice := reloadInvoice(t, env.db, created.Invoice.ID)
	assert.Equal(t, model.InvoicePaid, invoice.Status)

	var stored model.Payment
	require.NoError(t, env.db.First(&stored, "id = ?", submitted.ID).Error)
	assert.True(t, stored.Confirmed)
	require.NotNil(t, stored.ConfirmedAt)
	require.NotNil(t, stored.ConfirmedBy)
	assert.Equal(t, actor, stored.ConfirmedBy.String())
}

func TestPaymentConfirm_IsIdempotent(t *testing.T) {
	env := newBillingEnv(t)
	_, created := seedBilledRoom(t, env)
	ctx := context.Background()

	submitted, err := env.paymentSvc.Submit(ctx, created.Invoice.ID, model.PaymentCash, nil)
	require.NoError(t, err)

	first, err := env.paymentSvc.Confirm(ctx, uuid.NewString(), submitted.ID)
	require.NoError(t, err)

	second, err := env.paymentSvc.Confirm(ctx, uuid.NewString(), submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.Confirmed)

	// The invoice stays PAID and the confirmation was audited exactly once.
	invoice := reloadInvoice(t, env.db, created.Invoice.ID)
	assert.Equal(t, model.InvoicePaid, invoice.Status)
	assert.EqualValues(t, 1, auditCount(t, env.db, model.ActionConfirmPayment))
}

func TestGatewayNotification_SettlementConfirmsPayment(t *testing.T) {
	env := newBillingEnv(t)
	_, created := seedBilledRoom(t, env)
	ctx := context.Background()

	submitted, err := env.paymentSvc.Submit(ctx, created.Invoice.ID, model.PaymentGateway, nil)
	require.NoError(t, err)

	err = env.paymentSvc.HandleGatewayNotification(ctx, gateway.Notification{
		OrderID:           submitted.GatewayRef,
		TransactionStatus: "settlement",
		StatusCode:        "200",
		GrossAmount:       "2355000.00",
	})
	require.NoError(t, err)

	invoice := reloadInvoice(t, env.db, created.Invoice.ID)
	assert.Equal(t, model.InvoicePaid, invoice.Status)

	var stored model.Payment
	require.NoError(t, env.db.First(&stored, "gateway_ref = ?", submitted.GatewayRef).Error)
	assert.True(t, stored.Confirmed)

	// Gateway settlements never re-send the invoice e-mail.
	assert.Len(t, env.notifier.Sent, 1) // the creation mail only
	assert.Empty(t, env.notifier.Resent)
}

func TestGatewayNotification_PendingStatusIsIgnored(t *testing.T) {
	env := newBillingEnv(t)
	_, created := seedBilledRoom(t, env)
	ctx := context.Background()

	submitted, err := env.paymentSvc.Submit(ctx, created.Invoice.ID, model.PaymentGateway, nil)
	require.NoError(t, err)

	err = env.paymentSvc.HandleGatewayNotification(ctx, gateway.Notification{
		OrderID:           submitted.GatewayRef,
		TransactionStatus: "pending",
		StatusCode:        "201",
		GrossAmount:       "2355000.00",
	})
	require.NoError(t, err)

	invoice := reloadInvoice(t, env.db, created.Invoice.ID)
	assert.Equal(t, model.InvoicePending, invoice.Status)
}

func TestGatewayNotification_BadSignatureIsRejected(t *testing.T) {
	env := newBillingEnv(t)
	_, created := seedBilledRoom(t, env)
	ctx := context.Background()

	submitted, err := env.paymentSvc.Submit(ctx, created.Invoice.ID, model.PaymentGateway, nil)
	require.NoError(t, err)

	env.gateway.VerifyErr = assert.AnError
	err = env.paymentSvc.HandleGatewayNotification(ctx, gateway.Notification{
		OrderID:           submitted.GatewayRef,
		TransactionStatus: "settlement",
		StatusCode:        "200",
		GrossAmount:       "2355000.00",
	})
	require.Error(t, err)

	invoice := reloadInvoice(t, env.db, created.Invoice.ID)
	assert.Equal(t, model.InvoicePending, invoice.Status)
}

func TestMidtransSignatureVerification(t *testing.T) {
	// Signature format: sha512(order_id + status_code + gross_amount + server_key).
	client := gateway.NewMidtransClient("test-server-key", false)

	n := gateway.Notification{
		OrderID:     "INV-20260701-00001-abcd1234",
		StatusCode:  "200",
		GrossAmount: "2355000.00",
		// Precomputed over the fields above with server key "test-server-key".
		SignatureKey: gateway.SignNotification("INV-20260701-00001-abcd1234", "200", "2355000.00", "test-server-key"),
	}
	require.NoError(t, client.VerifyNotification(n))

	n.SignatureKey = "tampered"
	require.Error(t, client.VerifyNotification(n))
}
