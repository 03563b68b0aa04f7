package gateway

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// SnapTransaction is the gateway's handle for a hosted checkout session.
type SnapTransaction struct {
	OrderID     string
	Token       string
	RedirectURL string
}

// Notification is the gateway's server-to-server callback payload.
type Notification struct {
	OrderID           string `json:"order_id" binding:"required"`
	TransactionStatus string `json:"transaction_status" binding:"required"`
	StatusCode        string `json:"status_code" binding:"required"`
	GrossAmount       string `json:"gross_amount" binding:"required"`
	SignatureKey      string `json:"signature_key" binding:"required"`
	FraudStatus       string `json:"fraud_status"`
}

// Settled reports whether the notification represents a completed payment.
func (n Notification) Settled() bool {
	switch n.TransactionStatus {
	case "settlement":
		return true
	case "capture":
		return n.FraudStatus == "" || n.FraudStatus == "accept"
	default:
		return false
	}
}

// Client is the payment-gateway collaborator. The protocol itself lives behind
// this boundary; the billing core only creates checkout sessions and verifies
// callback signatures.
type Client interface {
	CreateTransaction(ctx context.Context, orderID string, grossAmount int64, customerName, customerEmail string) (*SnapTransaction, error)
	VerifyNotification(n Notification) error
}

type midtransClient struct {
	snap      snap.Client
	serverKey string
}

// NewMidtransClient configures the Snap client. useProduction selects the
// production environment, otherwise the sandbox.
func NewMidtransClient(serverKey string, useProduction bool) Client {
	c := &midtransClient{serverKey: serverKey}
	env := midtrans.Sandbox
	if useProduction {
		env = midtrans.Production
	}
	c.snap.New(serverKey, env)
	return c
}

func (c *midtransClient) CreateTransaction(ctx context.Context, orderID string, grossAmount int64, customerName, customerEmail string) (*SnapTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if grossAmount <= 0 {
		return nil, fmt.Errorf("invalid gross amount %d for order %s", grossAmount, orderID)
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: grossAmount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: customerName,
			Email: customerEmail,
		},
	}

	resp, err := c.snap.CreateTransaction(req)
	if err != nil {
		return nil, fmt.Errorf("gateway transaction failed for order %s: %w", orderID, err)
	}

	return &SnapTransaction{
		OrderID:     orderID,
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// SignNotification computes the callback signature over the notification fields:
// sha512(order_id + status_code + gross_amount + server_key).
func SignNotification(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// VerifyNotification checks the callback signature.
func (c *midtransClient) VerifyNotification(n Notification) error {
	if SignNotification(n.OrderID, n.StatusCode, n.GrossAmount, c.serverKey) != n.SignatureKey {
		return fmt.Errorf("invalid gateway signature for order %s", n.OrderID)
	}
	return nil
}
