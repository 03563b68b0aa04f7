package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceType enum constants
const (
	PriceFixed      = "FIXED"
	PriceUnitBased  = "UNIT_BASED"
	PricePercentage = "PERCENTAGE"
)

// Service is a catalog entry for a billable add-on (parking, wifi, cleaning, ...).
type Service struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string          `gorm:"type:varchar(100);not null" json:"name"`
	DefaultPrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"default_price"`
	PriceType    string          `gorm:"type:varchar(20);not null;default:'FIXED'" json:"price_type"`
	Unit         string          `gorm:"type:varchar(30)" json:"unit"` // e.g. "person", "vehicle"
	Description  string          `gorm:"type:text" json:"description"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// RoomService attaches a catalog service to a room, possibly overriding the
// catalog default price. Read as an immutable snapshot at invoice-preview time.
type RoomService struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_room_service,unique" json:"room_id"`
	ServiceID uuid.UUID       `gorm:"type:uuid;not null;index:idx_room_service,unique" json:"service_id"`
	Service   Service         `gorm:"foreignKey:ServiceID" json:"service"`
	Price     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"price"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	PriceType string          `gorm:"type:varchar(20);not null" json:"price_type"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (rs *RoomService) BeforeCreate(tx *gorm.DB) error {
	if rs.ID == uuid.Nil {
		rs.ID = uuid.New()
	}
	return nil
}
