package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleet-reserve/internal/domain/reservation"
	"fleet-reserve/internal/domain/vehicle"
	"fleet-reserve/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationRepository struct {
	db *DB
}

func NewReservationRepository(db *DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// CreateGuarded re-validates the overlap invariant inside the transaction.
// The vehicle row is locked first so two concurrent creations for the same
// vehicle serialize on it; the schema-level exclusion constraint backs this up.
func (r *ReservationRepository) CreateGuarded(ctx context.Context, res *reservation.Reservation) error {
	res.ID = uuid.New()
	res.CreatedAt = time.Now()
	res.UpdatedAt = time.Now()
	if res.Status == "" {
		res.Status = reservation.StatusActive
	}

	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var veh models.VehicleModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", res.VehicleID).
			First(&veh).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return vehicle.ErrVehicleNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock vehicle: %w", err)
		}

		var overlapping int64
		err = tx.Model(&models.ReservationModel{}).
			Where("vehicle_id = ? AND status = ?", res.VehicleID, string(reservation.StatusActive)).
			Where("pickup_date <= ? AND return_date >= ?", res.ReturnDate, res.PickupDate).
			Count(&overlapping).Error
		if err != nil {
			return fmt.Errorf("failed to check overlapping reservations: %w", err)
		}
		if overlapping > 0 {
			return reservation.ErrOverlappingDates
		}

		// Start odometer is captured from the locked row, not a stale read.
		res.StartOdometer = veh.CurrentOdometer

		dbModel := toReservationModel(res)
		if err := tx.Create(dbModel).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}

		for i, dest := range res.Destinations {
			destModel := &models.ReservationDestinationModel{
				ID:            uuid.New(),
				ReservationID: res.ID,
				Position:      i,
				Destination:   dest,
			}
			if err := tx.Create(destModel).Error; err != nil {
				return fmt.Errorf("failed to save destination: %w", err)
			}
		}

		for _, companionID := range res.CompanionIDs {
			compModel := &models.ReservationCompanionModel{
				ID:            uuid.New(),
				ReservationID: res.ID,
				DriverID:      companionID,
			}
			if err := tx.Create(compModel).Error; err != nil {
				return fmt.Errorf("failed to save companion: %w", err)
			}
		}

		return nil
	})
}

func (r *ReservationRepository) GetByID(ctx context.Context, reservationID uuid.UUID) (*reservation.Reservation, error) {
	var dbModel models.ReservationModel
	err := r.db.DB.WithContext(ctx).
		Preload("Destinations", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Companions").
		Where("id = ?", reservationID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, reservation.ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	return toReservationEntity(&dbModel), nil
}

func (r *ReservationRepository) List(ctx context.Context, filter *reservation.Filter) ([]*reservation.Reservation, int64, error) {
	var dbModels []models.ReservationModel
	var total int64

	db := r.db.DB.WithContext(ctx).Model(&models.ReservationModel{}).
		Preload("Destinations", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Companions")

	if filter.Status != nil {
		db = db.Where("status = ?", string(*filter.Status))
	}
	if filter.VehicleID != nil {
		db = db.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.DriverID != nil {
		db = db.Where("driver_id = ?", *filter.DriverID)
	}
	if filter.PickupAfter != nil {
		db = db.Where("pickup_date >= ?", *filter.PickupAfter)
	}
	if filter.ReturnBefore != nil {
		db = db.Where("return_date <= ?", *filter.ReturnBefore)
	}
	if filter.PendingMileage != nil {
		if *filter.PendingMileage {
			db = db.Where("status = ? AND end_odometer IS NULL", string(reservation.StatusCompleted))
		} else {
			db = db.Where("end_odometer IS NOT NULL OR status <> ?", string(reservation.StatusCompleted))
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	err := db.Order("pickup_date DESC, created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}

	reservations := make([]*reservation.Reservation, 0, len(dbModels))
	for i := range dbModels {
		reservations = append(reservations, toReservationEntity(&dbModels[i]))
	}

	return reservations, total, nil
}

func (r *ReservationRepository) ListActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]*reservation.Reservation, error) {
	var dbModels []models.ReservationModel

	err := r.db.DB.WithContext(ctx).
		Where("vehicle_id = ? AND status = ?", vehicleID, string(reservation.StatusActive)).
		Order("pickup_date ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active reservations: %w", err)
	}

	reservations := make([]*reservation.Reservation, 0, len(dbModels))
	for i := range dbModels {
		reservations = append(reservations, toReservationEntity(&dbModels[i]))
	}

	return reservations, nil
}

func (r *ReservationRepository) LastCompletedReturn(ctx context.Context, vehicleID uuid.UUID) (*time.Time, error) {
	var dbModel models.ReservationModel
	err := r.db.DB.WithContext(ctx).
		Where("vehicle_id = ? AND status = ?", vehicleID, string(reservation.StatusCompleted)).
		Order("return_date DESC").
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last completed return: %w", err)
	}

	ret := dbModel.ReturnDate
	return &ret, nil
}

// FinalizeGuarded applies the full completion unit atomically: reservation
// status and end odometer, vehicle odometer raise, last-used stamp and the
// post-trip cooldown. Odometer monotonicity is re-checked against the locked
// vehicle row, never against a snapshot the caller took earlier.
func (r *ReservationRepository) FinalizeGuarded(ctx context.Context, reservationID uuid.UUID, endOdometer int, at time.Time, cooldownUntil time.Time) (*reservation.Reservation, error) {
	var out *reservation.Reservation

	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var resModel models.ReservationModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", reservationID).
			First(&resModel).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return reservation.ErrReservationNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock reservation: %w", err)
		}

		wasActive := reservation.Status(resModel.Status) == reservation.StatusActive

		switch reservation.Status(resModel.Status) {
		case reservation.StatusActive:
			// Normal completion.
		case reservation.StatusCompleted:
			// Only the pending-mileage path may be finalized again.
			if resModel.EndOdometer != nil {
				return reservation.ErrAlreadyFinalized
			}
		default:
			return reservation.ErrTerminalState
		}

		if endOdometer < resModel.StartOdometer {
			return reservation.ErrInvalidOdometer
		}

		var veh models.VehicleModel
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", resModel.VehicleID).
			First(&veh).Error
		if err != nil {
			return fmt.Errorf("failed to lock vehicle: %w", err)
		}

		// A live trip must not report a reading below the vehicle's current
		// odometer. Pending-mileage trips may record a lower historical
		// reading; the conditional raise below keeps the vehicle monotonic.
		if wasActive && endOdometer < veh.CurrentOdometer {
			return reservation.ErrInvalidOdometer
		}

		updates := map[string]interface{}{
			"status":       string(reservation.StatusCompleted),
			"end_odometer": endOdometer,
			"completed_at": at,
			"updated_at":   at,
		}
		if err := tx.Model(&resModel).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to finalize reservation: %w", err)
		}

		vehUpdates := map[string]interface{}{
			"last_used_at": at,
			"updated_at":   at,
		}
		if endOdometer > veh.CurrentOdometer {
			vehUpdates["current_odometer"] = endOdometer
		}
		if wasActive {
			vehUpdates["status"] = string(vehicle.StatusAwaitingWash)
			vehUpdates["cooldown_until"] = cooldownUntil
		}
		if err := tx.Model(&veh).Updates(vehUpdates).Error; err != nil {
			return fmt.Errorf("failed to update vehicle after trip: %w", err)
		}

		resModel.Status = string(reservation.StatusCompleted)
		resModel.EndOdometer = &endOdometer
		resModel.CompletedAt = &at
		out = toReservationEntity(&resModel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// AutoComplete closes an overdue trip without a reading. The status filter in
// the WHERE clause makes re-invocation a no-op instead of a double write.
func (r *ReservationRepository) AutoComplete(ctx context.Context, reservationID uuid.UUID, at time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.ReservationModel{}).
		Where("id = ? AND status = ?", reservationID, string(reservation.StatusActive)).
		Updates(map[string]interface{}{
			"status":         string(reservation.StatusCompleted),
			"auto_completed": true,
			"completed_at":   at,
			"updated_at":     at,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to auto-complete reservation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return reservation.ErrNotActive
	}

	return nil
}

func (r *ReservationRepository) Cancel(ctx context.Context, reservationID uuid.UUID, reason string, at time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.ReservationModel{}).
		Where("id = ? AND status = ?", reservationID, string(reservation.StatusActive)).
		Updates(map[string]interface{}{
			"status":        string(reservation.StatusCancelled),
			"cancel_reason": reason,
			"updated_at":    at,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to cancel reservation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return reservation.ErrNotActive
	}

	return nil
}

func (r *ReservationRepository) ListActiveDueBy(ctx context.Context, cutoff time.Time, limit int) ([]*reservation.Reservation, error) {
	var dbModels []models.ReservationModel

	db := r.db.DB.WithContext(ctx).
		Where("status = ? AND return_date <= ?", string(reservation.StatusActive), cutoff).
		Order("return_date ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}

	if err := db.Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list due reservations: %w", err)
	}

	reservations := make([]*reservation.Reservation, 0, len(dbModels))
	for i := range dbModels {
		reservations = append(reservations, toReservationEntity(&dbModels[i]))
	}

	return reservations, nil
}

func (r *ReservationRepository) ListPendingMileage(ctx context.Context, limit int) ([]*reservation.Reservation, error) {
	var dbModels []models.ReservationModel

	db := r.db.DB.WithContext(ctx).
		Where("status = ? AND end_odometer IS NULL", string(reservation.StatusCompleted)).
		Order("return_date ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}

	if err := db.Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending-mileage reservations: %w", err)
	}

	reservations := make([]*reservation.Reservation, 0, len(dbModels))
	for i := range dbModels {
		reservations = append(reservations, toReservationEntity(&dbModels[i]))
	}

	return reservations, nil
}

func (r *ReservationRepository) ListPendingByDriver(ctx context.Context, driverID uuid.UUID) ([]*reservation.Reservation, error) {
	var dbModels []models.ReservationModel

	err := r.db.DB.WithContext(ctx).
		Where("driver_id = ? AND status = ? AND end_odometer IS NULL",
			driverID, string(reservation.StatusCompleted)).
		Order("return_date ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reservations for driver: %w", err)
	}

	reservations := make([]*reservation.Reservation, 0, len(dbModels))
	for i := range dbModels {
		reservations = append(reservations, toReservationEntity(&dbModels[i]))
	}

	return reservations, nil
}

func toReservationModel(res *reservation.Reservation) *models.ReservationModel {
	return &models.ReservationModel{
		ID:            res.ID,
		VehicleID:     res.VehicleID,
		DriverID:      res.DriverID,
		PickupDate:    res.PickupDate,
		ReturnDate:    res.ReturnDate,
		Status:        string(res.Status),
		StartOdometer: res.StartOdometer,
		EndOdometer:   res.EndOdometer,
		AutoCompleted: res.AutoCompleted,
		CompletedAt:   res.CompletedAt,
		CancelReason:  res.CancelReason,
		CreatedAt:     res.CreatedAt,
		UpdatedAt:     res.UpdatedAt,
	}
}

func toReservationEntity(m *models.ReservationModel) *reservation.Reservation {
	destinations := make([]string, 0, len(m.Destinations))
	for _, d := range m.Destinations {
		destinations = append(destinations, d.Destination)
	}

	companions := make([]uuid.UUID, 0, len(m.Companions))
	for _, c := range m.Companions {
		companions = append(companions, c.DriverID)
	}

	return &reservation.Reservation{
		ID:            m.ID,
		VehicleID:     m.VehicleID,
		DriverID:      m.DriverID,
		CompanionIDs:  companions,
		PickupDate:    m.PickupDate,
		ReturnDate:    m.ReturnDate,
		Destinations:  destinations,
		Status:        reservation.Status(m.Status),
		StartOdometer: m.StartOdometer,
		EndOdometer:   m.EndOdometer,
		AutoCompleted: m.AutoCompleted,
		CompletedAt:   m.CompletedAt,
		CancelReason:  m.CancelReason,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
