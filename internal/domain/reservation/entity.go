package reservation

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a reservation
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed" // Terminal
	StatusCancelled Status = "cancelled" // Terminal
)

// Reservation represents a trip booking for exactly one vehicle and one
// primary driver. Pickup and return are inclusive calendar dates.
type Reservation struct {
	ID        uuid.UUID
	VehicleID uuid.UUID
	DriverID  uuid.UUID

	// Companions ride along but do not own the mileage obligation.
	CompanionIDs []uuid.UUID

	PickupDate time.Time
	ReturnDate time.Time

	// Ordered, trimmed, deduplicated, non-empty.
	Destinations []string

	Status        Status
	StartOdometer int
	// EndOdometer stays nil while mileage is pending.
	EndOdometer   *int
	AutoCompleted bool
	CompletedAt   *time.Time
	CancelReason  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PendingMileage reports whether the trip was closed without a driver-supplied
// odometer reading.
func (r *Reservation) PendingMileage() bool {
	return r.Status == StatusCompleted && r.EndOdometer == nil
}

// Overlaps applies the standard closed-interval overlap test between this
// reservation and [pickup, ret].
func (r *Reservation) Overlaps(pickup, ret time.Time) bool {
	return !r.PickupDate.After(ret) && !r.ReturnDate.Before(pickup)
}

// DateOnly truncates t to its calendar day in t's location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween counts whole calendar days from one date to another. Both
// arguments are read as calendar dates and re-anchored in UTC, so a DST
// transition inside the span cannot shorten the count. Negative spans clamp
// to zero.
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	days := int(t.Sub(f).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Filter represents filtering options for listing reservations
type Filter struct {
	Status    *Status
	VehicleID *uuid.UUID
	DriverID  *uuid.UUID

	PickupAfter  *time.Time
	ReturnBefore *time.Time

	PendingMileage *bool

	Page     int
	PageSize int
}
