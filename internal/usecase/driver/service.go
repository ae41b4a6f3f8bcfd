package driver

import (
	"context"
	"errors"

	domainDriver "fleet-reserve/internal/domain/driver"
	"fleet-reserve/internal/logger"
	appErrors "fleet-reserve/pkg/errors"
	"fleet-reserve/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var validate = validator.New()

// Service implements driver use cases
type Service struct {
	driverRepo domainDriver.Repository
}

// NewService creates a new driver service
func NewService(driverRepo domainDriver.Repository) *Service {
	return &Service{driverRepo: driverRepo}
}

func (s *Service) Create(ctx context.Context, req *CreateDriverRequest) (*DriverResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	email, err := utils.ValidateAndSanitizeEmail(req.Email)
	if err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid email", err)
	}

	if _, err := s.driverRepo.GetByEmail(ctx, email); err == nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation,
			"Email already registered", domainDriver.ErrDriverAlreadyExists)
	} else if !errors.Is(err, domainDriver.ErrDriverNotFound) {
		return nil, err
	}

	d := &domainDriver.Driver{
		Name:   utils.SanitizeString(req.Name),
		Email:  email,
		Phone:  req.Phone,
		Active: true,
	}
	if err := s.driverRepo.Create(ctx, d); err != nil {
		return nil, err
	}

	logger.Info("Driver registered",
		zap.String("driver_id", d.ID.String()),
		zap.String("event", "driver_registered"),
	)

	return ToDriverResponse(d), nil
}

func (s *Service) Get(ctx context.Context, driverID uuid.UUID) (*DriverResponse, error) {
	d, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	return ToDriverResponse(d), nil
}

func (s *Service) Update(ctx context.Context, driverID uuid.UUID, req *UpdateDriverRequest) (*DriverResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	d, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		d.Name = utils.SanitizeString(*req.Name)
	}
	if req.Phone != nil {
		d.Phone = req.Phone
	}

	if err := s.driverRepo.Update(ctx, d); err != nil {
		return nil, err
	}
	return ToDriverResponse(d), nil
}

func (s *Service) List(ctx context.Context, filter *domainDriver.Filter) ([]*DriverResponse, int64, error) {
	drivers, total, err := s.driverRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, ToDriverResponse(d))
	}
	return out, total, nil
}

// Deactivate removes the driver from service without deleting history;
// reservations keep pointing at the row.
func (s *Service) Deactivate(ctx context.Context, driverID uuid.UUID) error {
	if err := s.driverRepo.Deactivate(ctx, driverID); err != nil {
		return err
	}

	logger.Info("Driver deactivated",
		zap.String("driver_id", driverID.String()),
		zap.String("event", "driver_deactivated"),
	)
	return nil
}
