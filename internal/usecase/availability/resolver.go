package availability

import (
	"context"
	"sort"
	"time"

	domainReservation "fleet-reserve/internal/domain/reservation"
	domainVehicle "fleet-reserve/internal/domain/vehicle"
	"fleet-reserve/internal/logger"
	"fleet-reserve/internal/usecase/maintenance"
	appErrors "fleet-reserve/pkg/errors"
	"fleet-reserve/pkg/retry"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// VehicleSource is the slice of the vehicle repository the resolver reads.
type VehicleSource interface {
	ListByStatus(ctx context.Context, status domainVehicle.VehicleStatus) ([]*domainVehicle.Vehicle, error)
}

// ReservationSource is the slice of the reservation repository the resolver reads.
type ReservationSource interface {
	ListActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]*domainReservation.Reservation, error)
	LastCompletedReturn(ctx context.Context, vehicleID uuid.UUID) (*time.Time, error)
}

// Resolver computes the conflict-free, maintenance-cleared vehicle pool for a
// requested date range. It is a pure read: no call path here writes anything.
type Resolver struct {
	vehicleRepo     VehicleSource
	reservationRepo ReservationSource
	fastQuery       domainVehicle.AvailabilityQuery
	engine          *maintenance.Engine
	clock           clockz.Clock
	loc             *time.Location
	retryPolicy     retry.Policy
}

func NewResolver(
	vehicleRepo VehicleSource,
	reservationRepo ReservationSource,
	fastQuery domainVehicle.AvailabilityQuery,
	engine *maintenance.Engine,
	clock clockz.Clock,
	loc *time.Location,
	retryPolicy retry.Policy,
) *Resolver {
	if clock == nil {
		clock = clockz.RealClock
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{
		vehicleRepo:     vehicleRepo,
		reservationRepo: reservationRepo,
		fastQuery:       fastQuery,
		engine:          engine,
		clock:           clock,
		loc:             loc,
		retryPolicy:     retryPolicy,
	}
}

// FindAvailable returns the ranked pool of vehicles free for the inclusive
// range [pickup, ret]. It tries the server-evaluated query first and falls
// back to the client-evaluated reference path, which must produce identical
// results; the fallback exists for resilience, not different semantics.
func (r *Resolver) FindAvailable(ctx context.Context, pickup, ret time.Time) ([]domainVehicle.Availability, error) {
	pickup = domainReservation.DateOnly(pickup)
	ret = domainReservation.DateOnly(ret)

	if ret.Before(pickup) {
		return nil, appErrors.NewAppError(appErrors.CodeValidation,
			"return date must not be before pickup date", appErrors.ErrInvalidDateRange)
	}

	today := domainReservation.DateOnly(r.clock.Now().In(r.loc))

	if r.fastQuery != nil {
		pool, err := r.fastQuery.RankedAvailable(ctx, pickup, ret, today)
		if err == nil {
			return pool, nil
		}
		logger.Warn("Server-side availability query failed, using client-side path",
			zap.Error(err),
		)
	}

	return r.findAvailableClientSide(ctx, pickup, ret, today)
}

func (r *Resolver) findAvailableClientSide(ctx context.Context, pickup, ret, today time.Time) ([]domainVehicle.Availability, error) {
	var candidates []*domainVehicle.Vehicle
	err := r.retryPolicy.Do(ctx, func() error {
		var listErr error
		candidates, listErr = r.vehicleRepo.ListByStatus(ctx, domainVehicle.StatusAvailable)
		return listErr
	})
	if err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeDataUnavailable,
			"could not load vehicle pool", err)
	}

	pool := make([]domainVehicle.Availability, 0, len(candidates))
	for _, v := range candidates {
		if r.engine.Evaluate(v).Blocked() {
			continue
		}

		free, err := r.isFreeFor(ctx, v.ID, pickup, ret)
		if err != nil {
			return nil, err
		}
		if !free {
			continue
		}

		entry, err := r.enrichIdleTime(ctx, v, today)
		if err != nil {
			return nil, err
		}
		pool = append(pool, entry)
	}

	Rank(pool)
	return pool, nil
}

func (r *Resolver) isFreeFor(ctx context.Context, vehicleID uuid.UUID, pickup, ret time.Time) (bool, error) {
	var active []*domainReservation.Reservation
	err := r.retryPolicy.Do(ctx, func() error {
		var listErr error
		active, listErr = r.reservationRepo.ListActiveByVehicle(ctx, vehicleID)
		return listErr
	})
	if err != nil {
		return false, appErrors.NewAppError(appErrors.CodeDataUnavailable,
			"could not load active reservations", err)
	}

	for _, res := range active {
		if res.Overlaps(pickup, ret) {
			return false, nil
		}
	}
	return true, nil
}

func (r *Resolver) enrichIdleTime(ctx context.Context, v *domainVehicle.Vehicle, today time.Time) (domainVehicle.Availability, error) {
	var lastReturn *time.Time
	err := r.retryPolicy.Do(ctx, func() error {
		var qErr error
		lastReturn, qErr = r.reservationRepo.LastCompletedReturn(ctx, v.ID)
		return qErr
	})
	if err != nil {
		return domainVehicle.Availability{}, appErrors.NewAppError(appErrors.CodeDataUnavailable,
			"could not load usage history", err)
	}

	if lastReturn == nil {
		return domainVehicle.Availability{
			Vehicle:          v,
			DaysSinceLastUse: domainReservation.DaysBetween(v.CreatedAt.In(r.loc), today),
			NeverUsed:        true,
		}, nil
	}

	return domainVehicle.Availability{
		Vehicle:          v,
		DaysSinceLastUse: domainReservation.DaysBetween(*lastReturn, today),
	}, nil
}

// Rank orders the pool by the assignment rule: never-used vehicles first, then
// longest idle first, ties broken by plate so the ordering is deterministic.
func Rank(pool []domainVehicle.Availability) {
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if a.NeverUsed != b.NeverUsed {
			return a.NeverUsed
		}
		if a.DaysSinceLastUse != b.DaysSinceLastUse {
			return a.DaysSinceLastUse > b.DaysSinceLastUse
		}
		return a.Vehicle.Plate < b.Vehicle.Plate
	})
}
