package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentMethod enum constants
const (
	PaymentQRTransfer = "QR_TRANSFER"
	PaymentCash       = "CASH"
	PaymentGateway    = "GATEWAY"
)

// Payment records one settlement attempt against an invoice. Exactly one confirmed
// payment is sufficient to mark the invoice PAID; retries stay as unconfirmed rows.
type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Invoice       *Invoice        `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
	Method        string          `gorm:"type:varchar(20);not null" json:"method"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	ProofImageURL string          `gorm:"type:text" json:"proof_image_url"` // required for QR_TRANSFER
	GatewayRef    string          `gorm:"type:varchar(100);index" json:"gateway_ref"` // Snap order id for GATEWAY
	SnapToken     string          `gorm:"type:text" json:"snap_token,omitempty"`
	Confirmed     bool            `gorm:"not null;default:false;index" json:"confirmed"`
	ConfirmedBy   *uuid.UUID      `gorm:"type:uuid" json:"confirmed_by"`
	ConfirmedAt   *time.Time      `json:"confirmed_at"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
