package vehicle

import (
	"time"

	"github.com/google/uuid"
)

// VehicleStatus represents the operational status of a fleet vehicle
type VehicleStatus string

const (
	StatusAvailable    VehicleStatus = "available"     // Free for assignment
	StatusInUse        VehicleStatus = "in_use"        // Out on an active trip
	StatusUnavailable  VehicleStatus = "unavailable"   // Admin-withheld
	StatusAwaitingWash VehicleStatus = "awaiting_wash" // Post-trip cooldown (cleaning/inspection)
	StatusMaintenance  VehicleStatus = "maintenance"   // In the shop
)

// Vehicle represents a fleet vehicle entity in the domain
type Vehicle struct {
	ID    uuid.UUID
	Plate string

	// Descriptive
	Brand string
	Model string
	Color string
	Year  int

	// Mutable state
	CurrentOdometer int
	Status          VehicleStatus
	LastUsedAt      *time.Time
	CooldownUntil   *time.Time

	// Maintenance configuration
	LastServiceOdometer  int
	NextServiceOdometer  int
	NextRevisionOdometer int
	LastRevisionAt       *time.Time
	NextRevisionDue      *time.Time
	ServiceMarginKm      int

	// Metadata
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MaintenanceKind distinguishes the two independently tracked thresholds.
type MaintenanceKind string

const (
	KindService  MaintenanceKind = "service"
	KindRevision MaintenanceKind = "revision"
)

// MaintenanceRecord is an append-only confirmation of performed maintenance.
type MaintenanceRecord struct {
	ID          uuid.UUID
	VehicleID   uuid.UUID
	Kind        MaintenanceKind
	Odometer    int
	ConfirmedBy string
	Notes       *string
	PerformedAt time.Time
	CreatedAt   time.Time
}

// Filter represents filtering options for listing vehicles
type Filter struct {
	Status *VehicleStatus
	Plate  string
	Search string

	Page     int
	PageSize int
}
