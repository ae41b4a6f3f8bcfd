package vehicle

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for vehicle repository operations
type Repository interface {
	Create(ctx context.Context, v *Vehicle) error
	GetByID(ctx context.Context, vehicleID uuid.UUID) (*Vehicle, error)
	GetByPlate(ctx context.Context, plate string) (*Vehicle, error)
	Update(ctx context.Context, v *Vehicle) error
	List(ctx context.Context, filter *Filter) ([]*Vehicle, int64, error)
	ListByStatus(ctx context.Context, status VehicleStatus) ([]*Vehicle, error)
	UpdateStatus(ctx context.Context, vehicleID uuid.UUID, status VehicleStatus) error

	// BeginCooldown puts the vehicle into the post-trip wash/inspection window.
	BeginCooldown(ctx context.Context, vehicleID uuid.UUID, until time.Time) error

	// ReleaseCooldowns returns vehicles whose cooldown window has elapsed to the
	// available pool and reports how many were released.
	ReleaseCooldowns(ctx context.Context, now time.Time) (int64, error)

	// ApplyRevision atomically appends the confirmation record and advances the
	// vehicle's maintenance thresholds.
	ApplyRevision(ctx context.Context, rec *MaintenanceRecord, nextServiceOdometer, nextRevisionOdometer int, nextRevisionDue time.Time) error

	ListMaintenanceRecords(ctx context.Context, vehicleID uuid.UUID) ([]*MaintenanceRecord, error)
}
