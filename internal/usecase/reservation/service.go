package reservation

import (
	"context"
	"errors"
	"time"

	domainDriver "fleet-reserve/internal/domain/driver"
	domainReservation "fleet-reserve/internal/domain/reservation"
	domainVehicle "fleet-reserve/internal/domain/vehicle"
	"fleet-reserve/internal/logger"
	"fleet-reserve/internal/notification"
	"fleet-reserve/internal/usecase/availability"
	appErrors "fleet-reserve/pkg/errors"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// Service implements reservation use cases
type Service struct {
	reservationRepo domainReservation.Repository
	vehicleRepo     domainVehicle.Repository
	driverRepo      domainDriver.Repository
	resolver        *availability.Resolver
	notifier        notification.Sender
	clock           clockz.Clock
	loc             *time.Location
	cooldownDays    int
}

// NewService creates a new reservation service
func NewService(
	reservationRepo domainReservation.Repository,
	vehicleRepo domainVehicle.Repository,
	driverRepo domainDriver.Repository,
	resolver *availability.Resolver,
	notifier notification.Sender,
	clock clockz.Clock,
	loc *time.Location,
	cooldownDays int,
) *Service {
	if clock == nil {
		clock = clockz.RealClock
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		reservationRepo: reservationRepo,
		vehicleRepo:     vehicleRepo,
		driverRepo:      driverRepo,
		resolver:        resolver,
		notifier:        notifier,
		clock:           clock,
		loc:             loc,
		cooldownDays:    cooldownDays,
	}
}

// Create books a trip. When the request pins no vehicle the best candidate is
// auto-assigned from the ranked pool. The overlap check is repeated inside the
// insert transaction, so a pool computed from a stale read can never produce a
// double booking.
func (s *Service) Create(ctx context.Context, req *CreateReservationRequest) (*ReservationResponse, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	today := domainReservation.DateOnly(s.clock.Now().In(s.loc))
	pickup, ret, err := ParseDateRange(req.PickupDate, req.ReturnDate, today, s.loc)
	if err != nil {
		return nil, err
	}

	destinations, err := NormalizeDestinations(req.Destinations)
	if err != nil {
		return nil, err
	}

	driver, err := s.driverRepo.GetByID(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}
	if !driver.Active {
		return nil, appErrors.NewAppError(appErrors.CodeValidation,
			"Driver is deactivated", domainDriver.ErrDriverInactive)
	}

	companions, err := s.checkCompanions(ctx, req.DriverID, req.CompanionIDs)
	if err != nil {
		return nil, err
	}

	pool, err := s.resolver.FindAvailable(ctx, pickup, ret)
	if err != nil {
		return nil, err
	}

	chosen, ok := availability.Reselect(pool, req.VehicleID)
	if !ok {
		return nil, appErrors.NewAppError(appErrors.CodeNoVehicle,
			"No vehicle available for the requested dates", nil)
	}
	if req.VehicleID != nil && chosen.Vehicle.ID != *req.VehicleID {
		// The pinned vehicle fell out of the pool between the client's read
		// and this request.
		return nil, appErrors.NewAppError(appErrors.CodeNoVehicle,
			"Requested vehicle is no longer available for these dates", nil)
	}

	res := &domainReservation.Reservation{
		VehicleID:    chosen.Vehicle.ID,
		DriverID:     driver.ID,
		CompanionIDs: companions,
		PickupDate:   pickup,
		ReturnDate:   ret,
		Destinations: destinations,
		Status:       domainReservation.StatusActive,
	}

	if err := s.reservationRepo.CreateGuarded(ctx, res); err != nil {
		if errors.Is(err, domainReservation.ErrOverlappingDates) {
			return nil, appErrors.NewAppError(appErrors.CodeOverlapping,
				"Vehicle was booked by a concurrent request", err)
		}
		return nil, err
	}

	// Same-day pickups take the vehicle out of the pool immediately.
	if pickup.Equal(today) {
		if err := s.vehicleRepo.UpdateStatus(ctx, chosen.Vehicle.ID, domainVehicle.StatusInUse); err != nil {
			logger.Warn("Could not flip vehicle to in_use",
				zap.String("vehicle_id", chosen.Vehicle.ID.String()),
				zap.Error(err),
			)
		}
	}

	logger.Info("Reservation created",
		zap.String("reservation_id", res.ID.String()),
		zap.String("vehicle_id", chosen.Vehicle.ID.String()),
		zap.String("driver_id", driver.ID.String()),
		zap.String("pickup_date", pickup.Format(DateLayout)),
		zap.String("return_date", ret.Format(DateLayout)),
		zap.String("event", "reservation_created"),
	)

	resp := ToReservationResponse(res, chosen.Vehicle.Plate)
	resp.ConfirmationEmail = s.sendConfirmation(ctx, driver, chosen.Vehicle.Plate, res)
	return resp, nil
}

// sendConfirmation is best effort: the reservation stands whether or not the
// email goes out, and the outcome is reported to the caller separately.
func (s *Service) sendConfirmation(ctx context.Context, driver *domainDriver.Driver, plate string, res *domainReservation.Reservation) string {
	if s.notifier == nil {
		return ""
	}

	msg := notification.ReservationConfirmation(driver.Name, plate, res.PickupDate, res.ReturnDate, res.Destinations)
	msg.Recipient = driver.Email

	if err := s.notifier.Send(ctx, msg); err != nil {
		logger.Error("Confirmation email failed",
			zap.String("reservation_id", res.ID.String()),
			zap.String("recipient", driver.Email),
			zap.Error(err),
		)
		return "failed"
	}
	return "sent"
}

func (s *Service) checkCompanions(ctx context.Context, driverID uuid.UUID, companionIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(companionIDs) == 0 {
		return nil, nil
	}

	seen := make(map[uuid.UUID]struct{}, len(companionIDs))
	out := make([]uuid.UUID, 0, len(companionIDs))
	for _, id := range companionIDs {
		if id == driverID {
			return nil, appErrors.NewAppError(appErrors.CodeValidation,
				"Primary driver cannot be listed as a companion", nil)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		companion, err := s.driverRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !companion.Active {
			return nil, appErrors.NewAppError(appErrors.CodeValidation,
				"Companion "+companion.Name+" is deactivated", domainDriver.ErrDriverInactive)
		}
		out = append(out, id)
	}
	return out, nil
}

// Finalize records the trip's end odometer. It closes active trips and
// resolves pending-mileage trips alike; the precondition checks live inside
// the repository transaction.
func (s *Service) Finalize(ctx context.Context, reservationID uuid.UUID, req *FinalizeTripRequest) (*ReservationResponse, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	now := s.clock.Now().In(s.loc)
	cooldownUntil := domainReservation.DateOnly(now).AddDate(0, 0, s.cooldownDays)

	res, err := s.reservationRepo.FinalizeGuarded(ctx, reservationID, req.EndOdometer, now, cooldownUntil)
	if err != nil {
		switch {
		case errors.Is(err, domainReservation.ErrInvalidOdometer):
			return nil, appErrors.NewAppError(appErrors.CodeInvalidOdometer,
				"End odometer below the trip's start reading", err)
		case errors.Is(err, domainReservation.ErrAlreadyFinalized),
			errors.Is(err, domainReservation.ErrTerminalState):
			return nil, appErrors.NewAppError(appErrors.CodeInvalidTransition,
				"Reservation cannot be finalized in its current state", err)
		}
		return nil, err
	}

	logger.Info("Trip finalized",
		zap.String("reservation_id", res.ID.String()),
		zap.Int("end_odometer", req.EndOdometer),
		zap.String("event", "trip_finalized"),
	)

	return ToReservationResponse(res, ""), nil
}

// Cancel voids an active reservation and returns its vehicle to the pool.
func (s *Service) Cancel(ctx context.Context, reservationID uuid.UUID, req *CancelReservationRequest) error {
	if err := ValidateStruct(req); err != nil {
		return appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	res, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if err := ValidateStatusTransition(res.Status, domainReservation.StatusCancelled); err != nil {
		return err
	}

	now := s.clock.Now().In(s.loc)
	if err := s.reservationRepo.Cancel(ctx, reservationID, req.Reason, now); err != nil {
		if errors.Is(err, domainReservation.ErrNotActive) {
			return appErrors.NewAppError(appErrors.CodeInvalidTransition,
				"Reservation was already closed", err)
		}
		return err
	}

	// A cancelled trip never happened; no wash window applies. Only an
	// in_use vehicle is released, an admin-withheld one keeps its status.
	if v, err := s.vehicleRepo.GetByID(ctx, res.VehicleID); err == nil && v.Status == domainVehicle.StatusInUse {
		if err := s.vehicleRepo.UpdateStatus(ctx, res.VehicleID, domainVehicle.StatusAvailable); err != nil {
			logger.Warn("Could not release vehicle after cancellation",
				zap.String("vehicle_id", res.VehicleID.String()),
				zap.Error(err),
			)
		}
	}

	logger.Info("Reservation cancelled",
		zap.String("reservation_id", reservationID.String()),
		zap.String("event", "reservation_cancelled"),
	)
	return nil
}

func (s *Service) Get(ctx context.Context, reservationID uuid.UUID) (*ReservationResponse, error) {
	res, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	plate := ""
	if v, err := s.vehicleRepo.GetByID(ctx, res.VehicleID); err == nil {
		plate = v.Plate
	}
	return ToReservationResponse(res, plate), nil
}

func (s *Service) List(ctx context.Context, filter *domainReservation.Filter) ([]*ReservationResponse, int64, error) {
	items, total, err := s.reservationRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*ReservationResponse, 0, len(items))
	for _, res := range items {
		out = append(out, ToReservationResponse(res, ""))
	}
	return out, total, nil
}

// PendingForDriver lists the driver's completed trips that still owe a final
// odometer reading.
func (s *Service) PendingForDriver(ctx context.Context, driverID uuid.UUID) ([]*ReservationResponse, error) {
	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return nil, err
	}

	pending, err := s.reservationRepo.ListPendingByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	out := make([]*ReservationResponse, 0, len(pending))
	for _, res := range pending {
		out = append(out, ToReservationResponse(res, ""))
	}
	return out, nil
}

// Availability resolves the ranked free pool for a requested range; the
// read-only counterpart of Create's auto-assignment.
func (s *Service) Availability(ctx context.Context, req *AvailabilityRequest) ([]*AvailableVehicleResponse, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	today := domainReservation.DateOnly(s.clock.Now().In(s.loc))
	pickup, ret, err := ParseDateRange(req.PickupDate, req.ReturnDate, today, s.loc)
	if err != nil {
		return nil, err
	}

	pool, err := s.resolver.FindAvailable(ctx, pickup, ret)
	if err != nil {
		return nil, err
	}

	out := make([]*AvailableVehicleResponse, 0, len(pool))
	for _, entry := range pool {
		out = append(out, &AvailableVehicleResponse{
			VehicleID:        entry.Vehicle.ID,
			Plate:            entry.Vehicle.Plate,
			Brand:            entry.Vehicle.Brand,
			Model:            entry.Vehicle.Model,
			CurrentOdometer:  entry.Vehicle.CurrentOdometer,
			DaysSinceLastUse: entry.DaysSinceLastUse,
			NeverUsed:        entry.NeverUsed,
		})
	}
	return out, nil
}
