package models

import (
	"time"

	"github.com/google/uuid"
)

// VehicleModel represents the database model for Vehicles
type VehicleModel struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Plate string    `gorm:"type:varchar(16);not null;uniqueIndex"`

	Brand string `gorm:"type:varchar(64);not null"`
	Model string `gorm:"type:varchar(64);not null"`
	Color string `gorm:"type:varchar(32)"`
	Year  int    `gorm:"type:integer"`

	CurrentOdometer int        `gorm:"type:integer;not null;default:0;check:current_odometer >= 0"`
	Status          string     `gorm:"type:vehicle_status;not null;default:'available';index"`
	LastUsedAt      *time.Time `gorm:"type:timestamptz"`
	CooldownUntil   *time.Time `gorm:"type:timestamptz"`

	LastServiceOdometer  int        `gorm:"type:integer;not null;default:0"`
	NextServiceOdometer  int        `gorm:"type:integer;not null"`
	NextRevisionOdometer int        `gorm:"type:integer;not null"`
	LastRevisionAt       *time.Time `gorm:"type:timestamptz"`
	NextRevisionDue      *time.Time `gorm:"type:timestamptz"`
	ServiceMarginKm      int        `gorm:"type:integer;not null;default:500"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (VehicleModel) TableName() string {
	return "vehicles"
}

// MaintenanceRecordModel represents the database model for maintenance history
type MaintenanceRecordModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	VehicleID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind        string    `gorm:"type:varchar(16);not null"`
	Odometer    int       `gorm:"type:integer;not null"`
	ConfirmedBy string    `gorm:"type:varchar(128);not null"`
	Notes       *string   `gorm:"type:text"`
	PerformedAt time.Time `gorm:"type:timestamptz;not null"`
	CreatedAt   time.Time `gorm:"not null"`

	Vehicle *VehicleModel `gorm:"foreignKey:VehicleID"`
}

func (MaintenanceRecordModel) TableName() string {
	return "maintenance_records"
}
