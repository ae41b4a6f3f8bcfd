package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for reservation repository operations.
// The guarded mutations re-validate their precondition inside a database
// transaction so concurrent callers cannot both succeed on stale reads.
type Repository interface {
	// CreateGuarded inserts r after re-checking, under a row lock on the
	// vehicle, that no active reservation overlaps r's date range. Returns
	// ErrOverlappingDates when the slot was taken in the meantime.
	CreateGuarded(ctx context.Context, r *Reservation) error

	GetByID(ctx context.Context, reservationID uuid.UUID) (*Reservation, error)
	List(ctx context.Context, filter *Filter) ([]*Reservation, int64, error)

	// ListActiveByVehicle returns active reservations for the overlap filter.
	ListActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]*Reservation, error)

	// LastCompletedReturn returns the most recent completed trip's return date
	// for the vehicle, or nil when the vehicle has never completed a trip.
	LastCompletedReturn(ctx context.Context, vehicleID uuid.UUID) (*time.Time, error)

	// FinalizeGuarded closes the trip with endOdometer. Inside the transaction
	// it re-checks that the reservation is finalizable and that endOdometer
	// does not regress the trip's start reading, then applies the reservation
	// update, the vehicle odometer raise and, when the trip was still active,
	// the post-trip cooldown, as one unit.
	FinalizeGuarded(ctx context.Context, reservationID uuid.UUID, endOdometer int, at time.Time, cooldownUntil time.Time) (*Reservation, error)

	// AutoComplete transitions an active reservation to completed without an
	// odometer reading (the pending-mileage path). No-op error ErrNotActive
	// when the reservation was already closed by a concurrent pass.
	AutoComplete(ctx context.Context, reservationID uuid.UUID, at time.Time) error

	Cancel(ctx context.Context, reservationID uuid.UUID, reason string, at time.Time) error

	// ListActiveDueBy returns active reservations whose return date is on or
	// before cutoff, bounded by limit.
	ListActiveDueBy(ctx context.Context, cutoff time.Time, limit int) ([]*Reservation, error)

	// ListPendingMileage returns completed reservations still missing their
	// end odometer, bounded by limit.
	ListPendingMileage(ctx context.Context, limit int) ([]*Reservation, error)

	// ListPendingByDriver surfaces the driver's unresolved mileage obligations.
	ListPendingByDriver(ctx context.Context, driverID uuid.UUID) ([]*Reservation, error)
}
