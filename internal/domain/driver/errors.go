package driver

import "errors"

var (
	ErrDriverNotFound      = errors.New("driver not found")
	ErrDriverAlreadyExists = errors.New("driver already registered")
	ErrDriverInactive      = errors.New("driver is deactivated")
)
