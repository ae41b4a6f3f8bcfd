package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleet-reserve/internal/domain/vehicle"
	"fleet-reserve/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VehicleRepository struct {
	db *DB
}

func NewVehicleRepository(db *DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) Create(ctx context.Context, v *vehicle.Vehicle) error {
	v.ID = uuid.New()
	v.CreatedAt = time.Now()
	v.UpdatedAt = time.Now()
	if v.Status == "" {
		v.Status = vehicle.StatusAvailable
	}

	dbModel := toVehicleModel(v)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if isUniqueViolation(err) {
			return vehicle.ErrPlateAlreadyExists
		}
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	v.ID = dbModel.ID
	return nil
}

func (r *VehicleRepository) GetByID(ctx context.Context, vehicleID uuid.UUID) (*vehicle.Vehicle, error) {
	var dbModel models.VehicleModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", vehicleID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, vehicle.ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	return toVehicleEntity(&dbModel), nil
}

func (r *VehicleRepository) GetByPlate(ctx context.Context, plate string) (*vehicle.Vehicle, error) {
	var dbModel models.VehicleModel
	err := r.db.DB.WithContext(ctx).
		Where("plate = ?", strings.ToUpper(strings.TrimSpace(plate))).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, vehicle.ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle by plate: %w", err)
	}

	return toVehicleEntity(&dbModel), nil
}

func (r *VehicleRepository) Update(ctx context.Context, v *vehicle.Vehicle) error {
	v.UpdatedAt = time.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&models.VehicleModel{}).
		Where("id = ?", v.ID).
		Updates(map[string]interface{}{
			"plate":                  v.Plate,
			"brand":                  v.Brand,
			"model":                  v.Model,
			"color":                  v.Color,
			"year":                   v.Year,
			"status":                 string(v.Status),
			"last_used_at":           v.LastUsedAt,
			"cooldown_until":         v.CooldownUntil,
			"last_service_odometer":  v.LastServiceOdometer,
			"next_service_odometer":  v.NextServiceOdometer,
			"next_revision_odometer": v.NextRevisionOdometer,
			"last_revision_at":       v.LastRevisionAt,
			"next_revision_due":      v.NextRevisionDue,
			"service_margin_km":      v.ServiceMarginKm,
			"updated_at":             v.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update vehicle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return vehicle.ErrVehicleNotFound
	}

	return nil
}

func (r *VehicleRepository) List(ctx context.Context, filter *vehicle.Filter) ([]*vehicle.Vehicle, int64, error) {
	var dbModels []models.VehicleModel
	var total int64

	db := r.db.DB.WithContext(ctx).Model(&models.VehicleModel{})

	if filter.Status != nil {
		db = db.Where("status = ?", string(*filter.Status))
	}
	if filter.Plate != "" {
		db = db.Where("plate = ?", strings.ToUpper(strings.TrimSpace(filter.Plate)))
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		db = db.Where("plate ILIKE ? OR brand ILIKE ? OR model ILIKE ?", search, search, search)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	err := db.Order("plate ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vehicles: %w", err)
	}

	vehicles := make([]*vehicle.Vehicle, 0, len(dbModels))
	for i := range dbModels {
		vehicles = append(vehicles, toVehicleEntity(&dbModels[i]))
	}

	return vehicles, total, nil
}

func (r *VehicleRepository) ListByStatus(ctx context.Context, status vehicle.VehicleStatus) ([]*vehicle.Vehicle, error) {
	var dbModels []models.VehicleModel

	err := r.db.DB.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("plate ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles by status: %w", err)
	}

	vehicles := make([]*vehicle.Vehicle, 0, len(dbModels))
	for i := range dbModels {
		vehicles = append(vehicles, toVehicleEntity(&dbModels[i]))
	}

	return vehicles, nil
}

func (r *VehicleRepository) UpdateStatus(ctx context.Context, vehicleID uuid.UUID, status vehicle.VehicleStatus) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.VehicleModel{}).
		Where("id = ?", vehicleID).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update vehicle status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return vehicle.ErrVehicleNotFound
	}

	return nil
}

func (r *VehicleRepository) BeginCooldown(ctx context.Context, vehicleID uuid.UUID, until time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.VehicleModel{}).
		Where("id = ?", vehicleID).
		Updates(map[string]interface{}{
			"status":         string(vehicle.StatusAwaitingWash),
			"cooldown_until": until,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to begin cooldown: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return vehicle.ErrVehicleNotFound
	}

	return nil
}

func (r *VehicleRepository) ReleaseCooldowns(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Model(&models.VehicleModel{}).
		Where("status = ? AND cooldown_until IS NOT NULL AND cooldown_until <= ?",
			string(vehicle.StatusAwaitingWash), now).
		Updates(map[string]interface{}{
			"status":         string(vehicle.StatusAvailable),
			"cooldown_until": nil,
			"updated_at":     now,
		})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to release cooldowns: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (r *VehicleRepository) ApplyRevision(ctx context.Context, rec *vehicle.MaintenanceRecord, nextServiceOdometer, nextRevisionOdometer int, nextRevisionDue time.Time) error {
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now()

	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(toMaintenanceRecordModel(rec)).Error; err != nil {
			return fmt.Errorf("failed to insert maintenance record: %w", err)
		}

		updates := map[string]interface{}{
			"last_service_odometer":  rec.Odometer,
			"next_service_odometer":  nextServiceOdometer,
			"next_revision_odometer": nextRevisionOdometer,
			"last_revision_at":       rec.PerformedAt,
			"next_revision_due":      nextRevisionDue,
			"updated_at":             time.Now(),
		}

		result := tx.Model(&models.VehicleModel{}).
			Where("id = ?", rec.VehicleID).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to advance maintenance thresholds: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return vehicle.ErrVehicleNotFound
		}

		// A blocked vehicle returns to service once the revision is confirmed.
		return tx.Model(&models.VehicleModel{}).
			Where("id = ? AND status = ?", rec.VehicleID, string(vehicle.StatusMaintenance)).
			Update("status", string(vehicle.StatusAvailable)).Error
	})
}

func (r *VehicleRepository) ListMaintenanceRecords(ctx context.Context, vehicleID uuid.UUID) ([]*vehicle.MaintenanceRecord, error) {
	var dbModels []models.MaintenanceRecordModel

	err := r.db.DB.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("performed_at DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance records: %w", err)
	}

	records := make([]*vehicle.MaintenanceRecord, 0, len(dbModels))
	for i := range dbModels {
		records = append(records, toMaintenanceRecordEntity(&dbModels[i]))
	}

	return records, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key value")
}

func toVehicleModel(v *vehicle.Vehicle) *models.VehicleModel {
	return &models.VehicleModel{
		ID:                   v.ID,
		Plate:                strings.ToUpper(strings.TrimSpace(v.Plate)),
		Brand:                v.Brand,
		Model:                v.Model,
		Color:                v.Color,
		Year:                 v.Year,
		CurrentOdometer:      v.CurrentOdometer,
		Status:               string(v.Status),
		LastUsedAt:           v.LastUsedAt,
		CooldownUntil:        v.CooldownUntil,
		LastServiceOdometer:  v.LastServiceOdometer,
		NextServiceOdometer:  v.NextServiceOdometer,
		NextRevisionOdometer: v.NextRevisionOdometer,
		LastRevisionAt:       v.LastRevisionAt,
		NextRevisionDue:      v.NextRevisionDue,
		ServiceMarginKm:      v.ServiceMarginKm,
		CreatedAt:            v.CreatedAt,
		UpdatedAt:            v.UpdatedAt,
	}
}

func toVehicleEntity(m *models.VehicleModel) *vehicle.Vehicle {
	return &vehicle.Vehicle{
		ID:                   m.ID,
		Plate:                m.Plate,
		Brand:                m.Brand,
		Model:                m.Model,
		Color:                m.Color,
		Year:                 m.Year,
		CurrentOdometer:      m.CurrentOdometer,
		Status:               vehicle.VehicleStatus(m.Status),
		LastUsedAt:           m.LastUsedAt,
		CooldownUntil:        m.CooldownUntil,
		LastServiceOdometer:  m.LastServiceOdometer,
		NextServiceOdometer:  m.NextServiceOdometer,
		NextRevisionOdometer: m.NextRevisionOdometer,
		LastRevisionAt:       m.LastRevisionAt,
		NextRevisionDue:      m.NextRevisionDue,
		ServiceMarginKm:      m.ServiceMarginKm,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func toMaintenanceRecordModel(rec *vehicle.MaintenanceRecord) *models.MaintenanceRecordModel {
	return &models.MaintenanceRecordModel{
		ID:          rec.ID,
		VehicleID:   rec.VehicleID,
		Kind:        string(rec.Kind),
		Odometer:    rec.Odometer,
		ConfirmedBy: rec.ConfirmedBy,
		Notes:       rec.Notes,
		PerformedAt: rec.PerformedAt,
		CreatedAt:   rec.CreatedAt,
	}
}

func toMaintenanceRecordEntity(m *models.MaintenanceRecordModel) *vehicle.MaintenanceRecord {
	return &vehicle.MaintenanceRecord{
		ID:          m.ID,
		VehicleID:   m.VehicleID,
		Kind:        vehicle.MaintenanceKind(m.Kind),
		Odometer:    m.Odometer,
		ConfirmedBy: m.ConfirmedBy,
		Notes:       m.Notes,
		PerformedAt: m.PerformedAt,
		CreatedAt:   m.CreatedAt,
	}
}
