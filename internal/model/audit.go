package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateRoom     = "CREATE_ROOM"
	ActionUpdateRoom     = "UPDATE_ROOM"
	ActionDeleteRoom     = "DELETE_ROOM"
	ActionCreateTenant   = "CREATE_TENANT"
	ActionUpdateTenant   = "UPDATE_TENANT"
	ActionCreateContract = "CREATE_CONTRACT"
	ActionEndContract    = "END_CONTRACT"

	// Billing actions
	ActionCreateInvoice     = "CREATE_INVOICE"
	ActionEditInvoice       = "EDIT_INVOICE"
	ActionMarkInvoiceStatus = "MARK_INVOICE_STATUS"
	ActionSubmitPayment     = "SUBMIT_PAYMENT"
	ActionConfirmPayment    = "CONFIRM_PAYMENT"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable for gateway callbacks and public payment page actions
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/invoice no)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:text" json:"details"`                       // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
