package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RoomStatus enum constants
const (
	RoomEmpty    = "EMPTY"
	RoomOccupied = "OCCUPIED"
	RoomLocked   = "LOCKED"
)

// Room represents a rentable unit inside a boarding house.
//
// ElectricMeterNow/WaterMeterNow hold the reading that opened the current billing
// period. ElectricMeterAfter/WaterMeterAfter hold the most recent reading entered
// outside invoicing (contract edit); when set, they take precedence as the previous
// baseline for the next invoice. Meter columns only advance through the invoice
// create/edit compare-and-swap path and never decrease.
type Room struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	HouseID            *uuid.UUID      `gorm:"type:uuid;index" json:"house_id"`
	Name               string          `gorm:"type:varchar(100);not null" json:"name"`
	RentPrice          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"rent_price"`
	ElectricMeterNow   float64         `gorm:"not null;default:0" json:"electric_meter_now"`
	ElectricMeterAfter *float64        `json:"electric_meter_after"`
	WaterMeterNow      float64         `gorm:"not null;default:0" json:"water_meter_now"`
	WaterMeterAfter    *float64        `json:"water_meter_after"`
	ElectricFee        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"electric_fee"` // rate per kWh
	WaterFee           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"water_fee"`    // rate per m3
	Status             string          `gorm:"type:varchar(20);not null;default:'EMPTY';index" json:"status"`
	Services           []RoomService   `gorm:"foreignKey:RoomID" json:"services,omitempty"`
	Contracts          []Contract      `gorm:"foreignKey:RoomID" json:"contracts,omitempty"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
