package driver

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for driver repository operations
type Repository interface {
	Create(ctx context.Context, d *Driver) error
	GetByID(ctx context.Context, driverID uuid.UUID) (*Driver, error)
	GetByEmail(ctx context.Context, email string) (*Driver, error)
	Update(ctx context.Context, d *Driver) error
	List(ctx context.Context, filter *Filter) ([]*Driver, int64, error)
	Deactivate(ctx context.Context, driverID uuid.UUID) error
}
