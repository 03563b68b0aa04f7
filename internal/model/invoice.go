package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus enum constants. PAID is terminal.
const (
	InvoicePending = "PENDING"
	InvoicePaid    = "PAID"
	InvoiceOverdue = "OVERDUE"
)

// Invoice is a monthly bill for a room: rent snapshot + metered utility costs +
// service add-ons. The reading columns snapshot the billing period so edits can
// recompute against the original baseline even after the room's meters advanced.
//
// Invariant: TotalAmount == RoomPrice + ElectricCost + WaterCost + ServiceCost
// within a 0.01 tolerance. Cost fields are immutable once status is PAID.
type Invoice struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNo             string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoice_no"`
	RoomID                uuid.UUID       `gorm:"type:uuid;not null;index" json:"room_id"`
	Room                  *Room           `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Month                 int             `gorm:"not null" json:"month"`
	Year                  int             `gorm:"not null" json:"year"`
	RoomPrice             decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"room_price"`
	ElectricReadingBefore float64         `gorm:"not null" json:"electric_reading_before"`
	ElectricReadingAfter  float64         `gorm:"not null" json:"electric_reading_after"`
	WaterReadingBefore    float64         `gorm:"not null" json:"water_reading_before"`
	WaterReadingAfter     float64         `gorm:"not null" json:"water_reading_after"`
	ElectricCost          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"electric_cost"`
	WaterCost             decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"water_cost"`
	ServiceCost           decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"service_cost"`
	TotalAmount           decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	Status                string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	QRImageURL            string          `gorm:"type:text" json:"qr_image_url"` // owner's bank transfer QR shown on the payment page
	Payments              []Payment       `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
	CreatedAt             time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
