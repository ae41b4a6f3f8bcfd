package models

import (
	"time"

	"github.com/google/uuid"
)

// AutomationAuditModel represents the database model for the automation audit log
type AutomationAuditModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ReservationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Action        string    `gorm:"type:varchar(32);not null;index"`
	Urgency       *string   `gorm:"type:varchar(16)"`
	Recipient     *string   `gorm:"type:varchar(255)"`
	Success       bool      `gorm:"not null"`
	ErrorText     *string   `gorm:"type:text"`
	SentAt        time.Time `gorm:"type:timestamptz;not null;index"`

	Reservation *ReservationModel `gorm:"foreignKey:ReservationID"`
}

func (AutomationAuditModel) TableName() string {
	return "automation_audit_log"
}
