package vehicle

import (
	"context"
	"time"
)

// Availability is a vehicle enriched with its idle-time ranking key.
type Availability struct {
	Vehicle *Vehicle

	// DaysSinceLastUse counts days since the vehicle's last completed trip
	// returned, or since fleet onboarding when it has never been used.
	DaysSinceLastUse int

	// NeverUsed vehicles sort ahead of everything else (infinitely idle).
	NeverUsed bool
}

// AvailabilityQuery is the optimized server-evaluated availability path. The
// client-evaluated resolver is the reference semantics; implementations must
// return the exact same pool in the exact same order.
type AvailabilityQuery interface {
	RankedAvailable(ctx context.Context, pickup, ret, today time.Time) ([]Availability, error)
}
