package errors

import (
	"errors"
	"fmt"
)

// Error codes carried by AppError. Handlers map these to HTTP statuses and
// the admin surface uses them to decide whether a retry affordance is shown.
const (
	CodeDataUnavailable    = "DATA_UNAVAILABLE"
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeNotificationFailed = "NOTIFICATION_FAILED"
	CodeInvalidOdometer    = "INVALID_ODOMETER"
	CodeOverlapping        = "OVERLAPPING_RESERVATION"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeNoVehicle          = "NO_VEHICLE_AVAILABLE"
)

var (
	ErrInvalidDateRange     = errors.New("return date must not be before pickup date")
	ErrPickupInPast         = errors.New("pickup date must be today or later")
	ErrNoDestination        = errors.New("at least one destination is required")
	ErrDuplicateDestination = errors.New("duplicate destination")
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf extracts the AppError code from err, or empty when err is not an AppError.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsRetryable reports whether err belongs to the transient class that the
// backoff wrapper may retry. Validation and not-found failures are final.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case CodeValidation, CodeNotFound, CodeInvalidOdometer, CodeOverlapping, CodeInvalidTransition, CodeNoVehicle:
		return false
	}
	return true
}
