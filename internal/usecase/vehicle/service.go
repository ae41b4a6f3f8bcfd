package vehicle

import (
	"context"
	"sort"
	"strings"
	"time"

	domainVehicle "fleet-reserve/internal/domain/vehicle"
	"fleet-reserve/internal/logger"
	"fleet-reserve/internal/notification"
	"fleet-reserve/internal/usecase/maintenance"
	appErrors "fleet-reserve/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

var validate = validator.New()

// Intervals are the maintenance policy applied when a revision is confirmed.
type Intervals struct {
	ServiceKm      int
	RevisionKm     int
	RevisionMonths int
}

func DefaultIntervals() Intervals {
	return Intervals{ServiceKm: 10000, RevisionKm: 10000, RevisionMonths: 6}
}

// Service implements vehicle use cases
type Service struct {
	vehicleRepo     domainVehicle.Repository
	engine          *maintenance.Engine
	notifier        notification.Sender
	clock           clockz.Clock
	loc             *time.Location
	intervals       Intervals
	defaultMarginKm int
	adminEmail      string
}

// NewService creates a new vehicle service
func NewService(
	vehicleRepo domainVehicle.Repository,
	engine *maintenance.Engine,
	notifier notification.Sender,
	clock clockz.Clock,
	loc *time.Location,
	intervals Intervals,
	defaultMarginKm int,
	adminEmail string,
) *Service {
	if clock == nil {
		clock = clockz.RealClock
	}
	if loc == nil {
		loc = time.UTC
	}
	if intervals.ServiceKm <= 0 {
		intervals = DefaultIntervals()
	}
	if defaultMarginKm <= 0 {
		defaultMarginKm = 500
	}
	return &Service{
		vehicleRepo:     vehicleRepo,
		engine:          engine,
		notifier:        notifier,
		clock:           clock,
		loc:             loc,
		intervals:       intervals,
		defaultMarginKm: defaultMarginKm,
		adminEmail:      adminEmail,
	}
}

func (s *Service) Create(ctx context.Context, req *CreateVehicleRequest) (*VehicleResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	plate := normalizePlate(req.Plate)

	margin := s.defaultMarginKm
	if req.ServiceMarginKm != nil {
		margin = *req.ServiceMarginKm
	}

	v := &domainVehicle.Vehicle{
		Plate:                plate,
		Brand:                strings.TrimSpace(req.Brand),
		Model:                strings.TrimSpace(req.Model),
		Color:                strings.TrimSpace(req.Color),
		Year:                 req.Year,
		CurrentOdometer:      req.CurrentOdometer,
		Status:               domainVehicle.StatusAvailable,
		LastServiceOdometer:  req.CurrentOdometer,
		NextServiceOdometer:  req.CurrentOdometer + s.intervals.ServiceKm,
		NextRevisionOdometer: req.CurrentOdometer + s.intervals.RevisionKm,
		ServiceMarginKm:      margin,
	}

	if err := s.vehicleRepo.Create(ctx, v); err != nil {
		return nil, err
	}

	logger.Info("Vehicle registered",
		zap.String("vehicle_id", v.ID.String()),
		zap.String("plate", plate),
		zap.String("event", "vehicle_registered"),
	)

	return ToVehicleResponse(v, s.engine.Evaluate(v)), nil
}

// Get returns the vehicle with its maintenance report derived on read.
func (s *Service) Get(ctx context.Context, vehicleID uuid.UUID) (*VehicleResponse, error) {
	v, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	return ToVehicleResponse(v, s.engine.Evaluate(v)), nil
}

func (s *Service) GetByPlate(ctx context.Context, plate string) (*VehicleResponse, error) {
	v, err := s.vehicleRepo.GetByPlate(ctx, normalizePlate(plate))
	if err != nil {
		return nil, err
	}
	return ToVehicleResponse(v, s.engine.Evaluate(v)), nil
}

func (s *Service) Update(ctx context.Context, vehicleID uuid.UUID, req *UpdateVehicleRequest) (*VehicleResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	v, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	if req.Brand != nil {
		v.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.Model != nil {
		v.Model = strings.TrimSpace(*req.Model)
	}
	if req.Color != nil {
		v.Color = strings.TrimSpace(*req.Color)
	}
	if req.Status != nil {
		// Only the admin-controlled states may be set directly; in_use and
		// awaiting_wash belong to the trip lifecycle.
		next := domainVehicle.VehicleStatus(*req.Status)
		switch next {
		case domainVehicle.StatusAvailable, domainVehicle.StatusUnavailable, domainVehicle.StatusMaintenance:
			v.Status = next
		default:
			return nil, appErrors.NewAppError(appErrors.CodeValidation,
				"Status cannot be set directly", domainVehicle.ErrInvalidStatus)
		}
	}

	if err := s.vehicleRepo.Update(ctx, v); err != nil {
		return nil, err
	}
	return ToVehicleResponse(v, s.engine.Evaluate(v)), nil
}

func (s *Service) List(ctx context.Context, filter *domainVehicle.Filter) ([]*VehicleResponse, int64, error) {
	vehicles, total, err := s.vehicleRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, ToVehicleResponse(v, s.engine.Evaluate(v)))
	}
	return out, total, nil
}

// ConfirmRevision records that the workshop performed the revision and
// advances both maintenance horizons from the vehicle's current reading. A
// blocked vehicle returns to the available pool as part of the same write.
func (s *Service) ConfirmRevision(ctx context.Context, vehicleID uuid.UUID, req *ConfirmRevisionRequest) (*VehicleResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	v, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().In(s.loc)
	rec := &domainVehicle.MaintenanceRecord{
		VehicleID:   vehicleID,
		Kind:        domainVehicle.KindRevision,
		Odometer:    v.CurrentOdometer,
		ConfirmedBy: strings.TrimSpace(req.ConfirmedBy),
		Notes:       req.Notes,
		PerformedAt: now,
	}

	nextService := v.CurrentOdometer + s.intervals.ServiceKm
	nextRevision := v.CurrentOdometer + s.intervals.RevisionKm
	nextDue := now.AddDate(0, s.intervals.RevisionMonths, 0)

	if err := s.vehicleRepo.ApplyRevision(ctx, rec, nextService, nextRevision, nextDue); err != nil {
		return nil, err
	}

	logger.Info("Revision confirmed",
		zap.String("vehicle_id", vehicleID.String()),
		zap.Int("odometer", v.CurrentOdometer),
		zap.Int("next_revision_odometer", nextRevision),
		zap.String("event", "revision_confirmed"),
	)

	return s.Get(ctx, vehicleID)
}

// MaintenanceAlerts scans the fleet and returns every vehicle whose derived
// status is past OK, worst first.
func (s *Service) MaintenanceAlerts(ctx context.Context) ([]*MaintenanceAlertResponse, error) {
	vehicles, _, err := s.vehicleRepo.List(ctx, &domainVehicle.Filter{})
	if err != nil {
		return nil, err
	}

	var alerts []*MaintenanceAlertResponse
	for _, v := range vehicles {
		report := s.engine.Evaluate(v)
		if report.OverallStatus == maintenance.StatusOK {
			continue
		}
		alerts = append(alerts, &MaintenanceAlertResponse{
			VehicleID:       v.ID,
			Plate:           v.Plate,
			OverallStatus:   string(report.OverallStatus),
			KmUntilService:  report.KmUntilService,
			KmUntilRevision: report.KmUntilRevision,
			MarginRemaining: report.MarginRemaining,
			Blocked:         report.Blocked(),
		})
	}

	sortAlerts(alerts)
	return alerts, nil
}

// NotifyBlocked emails the fleet admin about every blocked vehicle. Delivery
// failures are logged and skipped; the scan itself never fails on them.
func (s *Service) NotifyBlocked(ctx context.Context) (int, error) {
	if s.notifier == nil || s.adminEmail == "" {
		return 0, nil
	}

	alerts, err := s.MaintenanceAlerts(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, alert := range alerts {
		if !alert.Blocked {
			continue
		}
		msg := notification.MaintenanceAlert(alert.Plate, alert.OverallStatus, alert.KmUntilRevision, alert.MarginRemaining)
		msg.Recipient = s.adminEmail
		if err := s.notifier.Send(ctx, msg); err != nil {
			logger.Error("Maintenance alert email failed",
				zap.String("plate", alert.Plate),
				zap.Error(err),
			)
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *Service) MaintenanceHistory(ctx context.Context, vehicleID uuid.UUID) ([]*MaintenanceRecordResponse, error) {
	if _, err := s.vehicleRepo.GetByID(ctx, vehicleID); err != nil {
		return nil, err
	}

	records, err := s.vehicleRepo.ListMaintenanceRecords(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	out := make([]*MaintenanceRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, ToMaintenanceRecordResponse(rec))
	}
	return out, nil
}

func normalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// sortAlerts orders worst first, plate ascending inside a tier.
func sortAlerts(alerts []*MaintenanceAlertResponse) {
	rank := func(a *MaintenanceAlertResponse) int {
		switch {
		case a.Blocked:
			return 0
		case a.KmUntilRevision <= 0 || a.KmUntilService <= 0:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		if rank(alerts[i]) != rank(alerts[j]) {
			return rank(alerts[i]) < rank(alerts[j])
		}
		return alerts[i].Plate < alerts[j].Plate
	})
}
