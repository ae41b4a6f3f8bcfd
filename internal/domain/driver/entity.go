package driver

import (
	"time"

	"github.com/google/uuid"
)

// Driver represents a conductor allowed to take fleet vehicles out
type Driver struct {
	ID     uuid.UUID
	Name   string
	Email  string
	Phone  *string
	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter represents filtering options for listing drivers
type Filter struct {
	Active *bool
	Search string

	Page     int
	PageSize int
}
