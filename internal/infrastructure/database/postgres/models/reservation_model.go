package models

import (
	"time"

	"github.com/google/uuid"
)

// ReservationModel represents the database model for Reservations.
// Double-booking is also guarded at the schema level: the migration adds
//
//	EXCLUDE USING gist (vehicle_id WITH =, daterange(pickup_date, return_date, '[]') WITH &&)
//	WHERE (status = 'active')
//
// so a racing insert that slips past the transactional re-check still fails.
type ReservationModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	VehicleID uuid.UUID `gorm:"type:uuid;not null;index"`
	DriverID  uuid.UUID `gorm:"type:uuid;not null;index"`

	PickupDate time.Time `gorm:"type:date;not null;index"`
	ReturnDate time.Time `gorm:"type:date;not null;index"`

	Status        string     `gorm:"type:reservation_status;not null;default:'active';index"`
	StartOdometer int        `gorm:"type:integer;not null"`
	EndOdometer   *int       `gorm:"type:integer"`
	AutoCompleted bool       `gorm:"not null;default:false"`
	CompletedAt   *time.Time `gorm:"type:timestamptz"`
	CancelReason  *string    `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`

	Vehicle      *VehicleModel                 `gorm:"foreignKey:VehicleID"`
	Driver       *DriverModel                  `gorm:"foreignKey:DriverID"`
	Destinations []ReservationDestinationModel `gorm:"foreignKey:ReservationID"`
	Companions   []ReservationCompanionModel   `gorm:"foreignKey:ReservationID"`
}

func (ReservationModel) TableName() string {
	return "reservations"
}

// ReservationDestinationModel keeps the ordered destination list.
type ReservationDestinationModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ReservationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Position      int       `gorm:"type:integer;not null"`
	Destination   string    `gorm:"type:varchar(255);not null"`
}

func (ReservationDestinationModel) TableName() string {
	return "reservation_destinations"
}

// ReservationCompanionModel links companion drivers to a reservation.
type ReservationCompanionModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ReservationID uuid.UUID `gorm:"type:uuid;not null;index"`
	DriverID      uuid.UUID `gorm:"type:uuid;not null"`

	Driver *DriverModel `gorm:"foreignKey:DriverID"`
}

func (ReservationCompanionModel) TableName() string {
	return "reservation_companions"
}
