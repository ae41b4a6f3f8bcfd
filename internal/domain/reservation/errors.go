package reservation

import "errors"

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrOverlappingDates    = errors.New("vehicle already reserved for an overlapping period")
	ErrInvalidOdometer     = errors.New("end odometer below trip start reading")
	ErrAlreadyFinalized    = errors.New("reservation already has a final odometer reading")
	ErrNotActive           = errors.New("reservation is not active")
	ErrTerminalState       = errors.New("reservation is in a terminal state")
)
