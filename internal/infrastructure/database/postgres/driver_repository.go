package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleet-reserve/internal/domain/driver"
	"fleet-reserve/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DriverRepository struct {
	db *DB
}

func NewDriverRepository(db *DB) *DriverRepository {
	return &DriverRepository{db: db}
}

func (r *DriverRepository) Create(ctx context.Context, d *driver.Driver) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()
	d.Active = true

	dbModel := toDriverModel(d)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if isUniqueViolation(err) {
			return driver.ErrDriverAlreadyExists
		}
		return fmt.Errorf("failed to create driver: %w", err)
	}

	d.ID = dbModel.ID
	return nil
}

func (r *DriverRepository) GetByID(ctx context.Context, driverID uuid.UUID) (*driver.Driver, error) {
	var dbModel models.DriverModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", driverID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, driver.ErrDriverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}

	return toDriverEntity(&dbModel), nil
}

func (r *DriverRepository) GetByEmail(ctx context.Context, email string) (*driver.Driver, error) {
	var dbModel models.DriverModel
	err := r.db.DB.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, driver.ErrDriverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get driver by email: %w", err)
	}

	return toDriverEntity(&dbModel), nil
}

func (r *DriverRepository) Update(ctx context.Context, d *driver.Driver) error {
	d.UpdatedAt = time.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&models.DriverModel{}).
		Where("id = ?", d.ID).
		Updates(map[string]interface{}{
			"name":       d.Name,
			"email":      strings.ToLower(strings.TrimSpace(d.Email)),
			"phone":      d.Phone,
			"active":     d.Active,
			"updated_at": d.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update driver: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return driver.ErrDriverNotFound
	}

	return nil
}

func (r *DriverRepository) List(ctx context.Context, filter *driver.Filter) ([]*driver.Driver, int64, error) {
	var dbModels []models.DriverModel
	var total int64

	db := r.db.DB.WithContext(ctx).Model(&models.DriverModel{})

	if filter.Active != nil {
		db = db.Where("active = ?", *filter.Active)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		db = db.Where("name ILIKE ? OR email ILIKE ?", search, search)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count drivers: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	err := db.Order("name ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list drivers: %w", err)
	}

	drivers := make([]*driver.Driver, 0, len(dbModels))
	for i := range dbModels {
		drivers = append(drivers, toDriverEntity(&dbModels[i]))
	}

	return drivers, total, nil
}

// Deactivate marks the driver inactive. Drivers are never hard-deleted so
// historical reservations keep a valid reference.
func (r *DriverRepository) Deactivate(ctx context.Context, driverID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DriverModel{}).
		Where("id = ?", driverID).
		Updates(map[string]interface{}{
			"active":     false,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to deactivate driver: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return driver.ErrDriverNotFound
	}

	return nil
}

func toDriverModel(d *driver.Driver) *models.DriverModel {
	return &models.DriverModel{
		ID:        d.ID,
		Name:      d.Name,
		Email:     strings.ToLower(strings.TrimSpace(d.Email)),
		Phone:     d.Phone,
		Active:    d.Active,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toDriverEntity(m *models.DriverModel) *driver.Driver {
	return &driver.Driver{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
