package automation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists the automation audit trail.
type Repository interface {
	Append(ctx context.Context, entry *AuditEntry) error

	// LastSuccessfulReminder returns the time of the latest successful
	// reminder for the reservation, or nil when none was ever sent.
	LastSuccessfulReminder(ctx context.Context, reservationID uuid.UUID) (*time.Time, error)

	ListByReservation(ctx context.Context, reservationID uuid.UUID) ([]*AuditEntry, error)
}
