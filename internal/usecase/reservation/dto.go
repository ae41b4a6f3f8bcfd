package reservation

import (
	"time"

	domainReservation "fleet-reserve/internal/domain/reservation"

	"github.com/google/uuid"
)

// Request DTOs
type CreateReservationRequest struct {
	DriverID     uuid.UUID   `json:"driver_id" validate:"required"`
	VehicleID    *uuid.UUID  `json:"vehicle_id" validate:"omitempty"`
	CompanionIDs []uuid.UUID `json:"companion_ids" validate:"omitempty,max=4"`
	PickupDate   string      `json:"pickup_date" validate:"required,tripdate"`
	ReturnDate   string      `json:"return_date" validate:"required,tripdate"`
	Destinations []string    `json:"destinations" validate:"required,min=1,max=10"`
}

type FinalizeTripRequest struct {
	EndOdometer int `json:"end_odometer" validate:"required,min=0"`
}

type CancelReservationRequest struct {
	Reason string `json:"reason" validate:"required,min=5,max=500"`
}

type AvailabilityRequest struct {
	PickupDate string `form:"pickup" validate:"required,tripdate"`
	ReturnDate string `form:"return" validate:"required,tripdate"`
}

// Response DTOs
type ReservationResponse struct {
	ID            uuid.UUID   `json:"id"`
	VehicleID     uuid.UUID   `json:"vehicle_id"`
	VehiclePlate  string      `json:"vehicle_plate,omitempty"`
	DriverID      uuid.UUID   `json:"driver_id"`
	CompanionIDs  []uuid.UUID `json:"companion_ids,omitempty"`
	PickupDate    string      `json:"pickup_date"`
	ReturnDate    string      `json:"return_date"`
	Destinations  []string    `json:"destinations"`
	Status        string      `json:"status"`
	StartOdometer int         `json:"start_odometer"`
	EndOdometer   *int        `json:"end_odometer,omitempty"`
	PendingKm     bool        `json:"pending_km"`
	AutoCompleted bool        `json:"auto_completed"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`

	// ConfirmationEmail reports the notification side effect separately from
	// the reservation itself: "sent", "failed" or "" when not applicable.
	ConfirmationEmail string `json:"confirmation_email,omitempty"`
}

type AvailableVehicleResponse struct {
	VehicleID        uuid.UUID `json:"vehicle_id"`
	Plate            string    `json:"plate"`
	Brand            string    `json:"brand"`
	Model            string    `json:"model"`
	CurrentOdometer  int       `json:"current_odometer"`
	DaysSinceLastUse int       `json:"days_since_last_use"`
	NeverUsed        bool      `json:"never_used"`
}

func ToReservationResponse(r *domainReservation.Reservation, plate string) *ReservationResponse {
	return &ReservationResponse{
		ID:            r.ID,
		VehicleID:     r.VehicleID,
		VehiclePlate:  plate,
		DriverID:      r.DriverID,
		CompanionIDs:  r.CompanionIDs,
		PickupDate:    r.PickupDate.Format(DateLayout),
		ReturnDate:    r.ReturnDate.Format(DateLayout),
		Destinations:  r.Destinations,
		Status:        string(r.Status),
		StartOdometer: r.StartOdometer,
		EndOdometer:   r.EndOdometer,
		PendingKm:     r.PendingMileage(),
		AutoCompleted: r.AutoCompleted,
		CompletedAt:   r.CompletedAt,
		CreatedAt:     r.CreatedAt,
	}
}
