package models

import (
	"time"

	"github.com/google/uuid"
)

// DriverModel represents the database model for Drivers
type DriverModel struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name   string    `gorm:"type:varchar(128);not null;index"`
	Email  string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone  *string   `gorm:"type:varchar(32)"`
	Active bool      `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (DriverModel) TableName() string {
	return "drivers"
}
