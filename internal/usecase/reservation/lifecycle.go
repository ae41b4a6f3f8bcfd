package reservation

import (
	"fmt"

	domainReservation "fleet-reserve/internal/domain/reservation"
	appErrors "fleet-reserve/pkg/errors"
)

// State machine for reservation status transitions
var validTransitions = map[domainReservation.Status][]domainReservation.Status{
	domainReservation.StatusActive: {
		domainReservation.StatusCompleted,
		domainReservation.StatusCancelled,
	},
	domainReservation.StatusCompleted: {
		// Terminal state - no transitions
	},
	domainReservation.StatusCancelled: {
		// Terminal state - no transitions
	},
}

// ValidateStatusTransition checks if status transition is allowed
func ValidateStatusTransition(currentStatus, newStatus domainReservation.Status) error {
	allowedStatuses, exists := validTransitions[currentStatus]
	if !exists {
		return appErrors.NewAppError(
			appErrors.CodeInvalidTransition,
			fmt.Sprintf("Unknown current status: %s", currentStatus),
			nil,
		)
	}

	for _, allowed := range allowedStatuses {
		if newStatus == allowed {
			return nil
		}
	}

	return appErrors.NewAppError(
		appErrors.CodeInvalidTransition,
		fmt.Sprintf("Cannot transition from %s to %s", currentStatus, newStatus),
		nil,
	)
}

// GetAllowedTransitions returns allowed next statuses
func GetAllowedTransitions(currentStatus domainReservation.Status) []domainReservation.Status {
	return validTransitions[currentStatus]
}
