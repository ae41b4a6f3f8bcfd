package vehicle

import "errors"

var (
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrPlateAlreadyExists = errors.New("vehicle plate already registered")
	ErrInvalidStatus      = errors.New("invalid vehicle status")
)
