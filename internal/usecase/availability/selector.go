package availability

import (
	domainVehicle "fleet-reserve/internal/domain/vehicle"

	"github.com/google/uuid"
)

// SelectBest returns the head of the resolver-ordered pool. The second return
// is false when the pool is empty; callers must treat that as "no vehicle
// available for these dates" and must not proceed with a reservation.
func SelectBest(pool []domainVehicle.Availability) (domainVehicle.Availability, bool) {
	if len(pool) == 0 {
		return domainVehicle.Availability{}, false
	}
	return pool[0], true
}

// Reselect is the date-change transition: given a freshly resolved pool and
// the previously selected vehicle, it keeps the previous choice only while it
// is still in the pool and otherwise clears it and picks the new head. This
// is one explicit step, so a stale selection can never survive a range change.
func Reselect(pool []domainVehicle.Availability, previous *uuid.UUID) (domainVehicle.Availability, bool) {
	if previous != nil {
		for _, entry := range pool {
			if entry.Vehicle.ID == *previous {
				return entry, true
			}
		}
	}
	return SelectBest(pool)
}
