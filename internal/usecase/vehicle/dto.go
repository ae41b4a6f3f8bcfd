package vehicle

import (
	"time"

	domainVehicle "fleet-reserve/internal/domain/vehicle"
	"fleet-reserve/internal/usecase/maintenance"

	"github.com/google/uuid"
)

// Request DTOs
type CreateVehicleRequest struct {
	Plate           string `json:"plate" validate:"required,min=5,max=10"`
	Brand           string `json:"brand" validate:"required,min=2,max=50"`
	Model           string `json:"model" validate:"required,min=1,max=50"`
	Color           string `json:"color" validate:"omitempty,max=30"`
	Year            int    `json:"year" validate:"required,min=1990,max=2100"`
	CurrentOdometer int    `json:"current_odometer" validate:"min=0"`
	// ServiceMarginKm left out of the payload takes the fleet default; an
	// explicit 0 registers a vehicle with no margin.
	ServiceMarginKm *int `json:"service_margin_km" validate:"omitempty,min=0"`
}

type UpdateVehicleRequest struct {
	Brand  *string `json:"brand" validate:"omitempty,min=2,max=50"`
	Model  *string `json:"model" validate:"omitempty,min=1,max=50"`
	Color  *string `json:"color" validate:"omitempty,max=30"`
	Status *string `json:"status" validate:"omitempty,oneof=available unavailable maintenance"`
}

type ConfirmRevisionRequest struct {
	ConfirmedBy string  `json:"confirmed_by" validate:"required,min=2,max=100"`
	Notes       *string `json:"notes" validate:"omitempty,max=500"`
}

// Response DTOs
type VehicleResponse struct {
	ID              uuid.UUID  `json:"id"`
	Plate           string     `json:"plate"`
	Brand           string     `json:"brand"`
	Model           string     `json:"model"`
	Color           string     `json:"color,omitempty"`
	Year            int        `json:"year"`
	CurrentOdometer int        `json:"current_odometer"`
	Status          string     `json:"status"`
	LastUsedAt      *time.Time `json:"last_used_at,omitempty"`
	CooldownUntil   *time.Time `json:"cooldown_until,omitempty"`

	Maintenance maintenance.Report `json:"maintenance"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MaintenanceAlertResponse struct {
	VehicleID       uuid.UUID `json:"vehicle_id"`
	Plate           string    `json:"plate"`
	OverallStatus   string    `json:"overall_status"`
	KmUntilService  int       `json:"km_until_service"`
	KmUntilRevision int       `json:"km_until_revision"`
	MarginRemaining int       `json:"margin_remaining"`
	Blocked         bool      `json:"blocked"`
}

type MaintenanceRecordResponse struct {
	ID          uuid.UUID `json:"id"`
	Kind        string    `json:"kind"`
	Odometer    int       `json:"odometer"`
	ConfirmedBy string    `json:"confirmed_by"`
	Notes       *string   `json:"notes,omitempty"`
	PerformedAt time.Time `json:"performed_at"`
}

func ToVehicleResponse(v *domainVehicle.Vehicle, report maintenance.Report) *VehicleResponse {
	return &VehicleResponse{
		ID:              v.ID,
		Plate:           v.Plate,
		Brand:           v.Brand,
		Model:           v.Model,
		Color:           v.Color,
		Year:            v.Year,
		CurrentOdometer: v.CurrentOdometer,
		Status:          string(v.Status),
		LastUsedAt:      v.LastUsedAt,
		CooldownUntil:   v.CooldownUntil,
		Maintenance:     report,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

func ToMaintenanceRecordResponse(rec *domainVehicle.MaintenanceRecord) *MaintenanceRecordResponse {
	return &MaintenanceRecordResponse{
		ID:          rec.ID,
		Kind:        string(rec.Kind),
		Odometer:    rec.Odometer,
		ConfirmedBy: rec.ConfirmedBy,
		Notes:       rec.Notes,
		PerformedAt: rec.PerformedAt,
	}
}
