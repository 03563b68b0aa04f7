package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContractStatus enum constants
const (
	ContractActive = "ACTIVE"
	ContractEnded  = "ENDED"
)

// Tenant is a person renting (or having rented) a room.
type Tenant struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FullName  string         `gorm:"type:varchar(255);not null" json:"full_name"`
	Email     string         `gorm:"type:varchar(255);index" json:"email"`
	Phone     string         `gorm:"type:varchar(20)" json:"phone"`
	IDNumber  string         `gorm:"type:varchar(30)" json:"id_number"`
	Address   string         `gorm:"type:text" json:"address"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Contract binds a tenant to a room for a period. A room's active-contract count
// is the numberOfTenants input to invoice preview/creation.
type Contract struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"room_id"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Tenant    Tenant          `gorm:"foreignKey:TenantID" json:"tenant"`
	Deposit   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"deposit"`
	StartDate time.Time       `gorm:"not null" json:"start_date"`
	EndDate   *time.Time      `json:"end_date"`
	Status    string          `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Contract) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
