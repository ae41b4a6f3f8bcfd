package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	domainReservation "fleet-reserve/internal/domain/reservation"
	domainVehicle "fleet-reserve/internal/domain/vehicle"
	"fleet-reserve/internal/logger"
	"fleet-reserve/internal/usecase/maintenance"
	appErrors "fleet-reserve/pkg/errors"
	"fleet-reserve/pkg/retry"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
)

func init() {
	_ = logger.Init("development")
}

type fakeVehicleSource struct {
	vehicles []*domainVehicle.Vehicle
	err      error
}

func (f *fakeVehicleSource) ListByStatus(_ context.Context, _ domainVehicle.VehicleStatus) ([]*domainVehicle.Vehicle, error) {
	return f.vehicles, f.err
}

type fakeReservationSource struct {
	active      map[uuid.UUID][]*domainReservation.Reservation
	lastReturns map[uuid.UUID]*time.Time
}

func (f *fakeReservationSource) ListActiveByVehicle(_ context.Context, vehicleID uuid.UUID) ([]*domainReservation.Reservation, error) {
	return f.active[vehicleID], nil
}

func (f *fakeReservationSource) LastCompletedReturn(_ context.Context, vehicleID uuid.UUID) (*time.Time, error) {
	return f.lastReturns[vehicleID], nil
}

func testVehicle(plate string, createdDaysAgo int, now time.Time) *domainVehicle.Vehicle {
	return &domainVehicle.Vehicle{
		ID:                   uuid.New(),
		Plate:                plate,
		Status:               domainVehicle.StatusAvailable,
		CurrentOdometer:      5000,
		NextServiceOdometer:  15000,
		NextRevisionOdometer: 15000,
		ServiceMarginKm:      500,
		CreatedAt:            now.AddDate(0, 0, -createdDaysAgo),
	}
}

func newTestResolver(vs *fakeVehicleSource, rs *fakeReservationSource, clock clockz.Clock) *Resolver {
	policy := retry.Policy{MaxAttempts: 1}
	engine := maintenance.NewEngine(maintenance.DefaultThresholds())
	return NewResolver(vs, rs, nil, engine, clock, time.UTC, policy)
}

func TestFindAvailableRejectsInvertedRange(t *testing.T) {
	clock := clockz.NewFakeClock()
	r := newTestResolver(&fakeVehicleSource{}, &fakeReservationSource{}, clock)

	now := clock.Now()
	_, err := r.FindAvailable(context.Background(), now.AddDate(0, 0, 3), now)
	if appErrors.CodeOf(err) != appErrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFindAvailableExcludesOverlaps(t *testing.T) {
	clock := clockz.NewFakeClock()
	now := clock.Now()
	today := domainReservation.DateOnly(now)

	free := testVehicle("AAA1234", 30, now)
	busy := testVehicle("BBB5678", 30, now)

	rs := &fakeReservationSource{
		active: map[uuid.UUID][]*domainReservation.Reservation{
			busy.ID: {{
				VehicleID:  busy.ID,
				Status:     domainReservation.StatusActive,
				PickupDate: today.AddDate(0, 0, 2),
				ReturnDate: today.AddDate(0, 0, 4),
			}},
		},
		lastReturns: map[uuid.UUID]*time.Time{},
	}
	r := newTestResolver(&fakeVehicleSource{vehicles: []*domainVehicle.Vehicle{free, busy}}, rs, clock)

	pool, err := r.FindAvailable(context.Background(), today.AddDate(0, 0, 3), today.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("FindAvailable: %v", err)
	}
	if len(pool) != 1 || pool[0].Vehicle.ID != free.ID {
		t.Fatalf("expected only the free vehicle, got %d entries", len(pool))
	}

	// Adjacent, non-overlapping range keeps both.
	pool, err = r.FindAvailable(context.Background(), today.AddDate(0, 0, 5), today.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("FindAvailable: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("expected both vehicles for a non-overlapping range, got %d", len(pool))
	}
}

func TestFindAvailableExcludesBlockedVehicles(t *testing.T) {
	clock := clockz.NewFakeClock()
	now := clock.Now()
	today := domainReservation.DateOnly(now)

	ok := testVehicle("AAA1234", 30, now)
	blocked := testVehicle("BBB5678", 30, now)
	blocked.CurrentOdometer = 15500 // margin exhausted

	rs := &fakeReservationSource{lastReturns: map[uuid.UUID]*time.Time{}}
	r := newTestResolver(&fakeVehicleSource{vehicles: []*domainVehicle.Vehicle{ok, blocked}}, rs, clock)

	pool, err := r.FindAvailable(context.Background(), today, today.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("FindAvailable: %v", err)
	}
	for _, entry := range pool {
		if entry.Vehicle.ID == blocked.ID {
			t.Fatal("blocked vehicle must never be offered")
		}
	}
	if len(pool) != 1 {
		t.Fatalf("expected a single candidate, got %d", len(pool))
	}
}

func TestFindAvailableRanksByIdleTime(t *testing.T) {
	clock := clockz.NewFakeClock()
	now := clock.Now()
	today := domainReservation.DateOnly(now)

	neverUsed := testVehicle("CCC0001", 90, now)
	idleTen := testVehicle("AAA0002", 90, now)
	idleThree := testVehicle("BBB0003", 90, now)

	tenDaysAgo := today.AddDate(0, 0, -10)
	threeDaysAgo := today.AddDate(0, 0, -3)
	rs := &fakeReservationSource{
		lastReturns: map[uuid.UUID]*time.Time{
			idleTen.ID:   &tenDaysAgo,
			idleThree.ID: &threeDaysAgo,
		},
	}
	vs := &fakeVehicleSource{vehicles: []*domainVehicle.Vehicle{idleThree, idleTen, neverUsed}}
	r := newTestResolver(vs, rs, clock)

	pool, err := r.FindAvailable(context.Background(), today, today.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("FindAvailable: %v", err)
	}
	if len(pool) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(pool))
	}
	if pool[0].Vehicle.ID != neverUsed.ID || !pool[0].NeverUsed {
		t.Fatalf("expected never-used vehicle first, got %s", pool[0].Vehicle.Plate)
	}
	if pool[1].Vehicle.ID != idleTen.ID {
		t.Fatalf("expected the 10-day-idle vehicle second, got %s", pool[1].Vehicle.Plate)
	}
	if pool[1].DaysSinceLastUse != 10 {
		t.Fatalf("expected 10 idle days, got %d", pool[1].DaysSinceLastUse)
	}
	if pool[2].Vehicle.ID != idleThree.ID {
		t.Fatalf("expected the 3-day-idle vehicle last, got %s", pool[2].Vehicle.Plate)
	}
}

func TestFindAvailableTieBreaksByPlate(t *testing.T) {
	clock := clockz.NewFakeClock()
	now := clock.Now()
	today := domainReservation.DateOnly(now)

	second := testVehicle("ZZZ0001", 45, now)
	first := testVehicle("AAA0001", 45, now)

	rs := &fakeReservationSource{lastReturns: map[uuid.UUID]*time.Time{}}
	r := newTestResolver(&fakeVehicleSource{vehicles: []*domainVehicle.Vehicle{second, first}}, rs, clock)

	pool, err := r.FindAvailable(context.Background(), today, today)
	if err != nil {
		t.Fatalf("FindAvailable: %v", err)
	}
	if pool[0].Vehicle.Plate != "AAA0001" || pool[1].Vehicle.Plate != "ZZZ0001" {
		t.Fatalf("expected plate-order tie break, got %s then %s",
			pool[0].Vehicle.Plate, pool[1].Vehicle.Plate)
	}
}

func TestFindAvailablePropagatesDataUnavailable(t *testing.T) {
	clock := clockz.NewFakeClock()
	vs := &fakeVehicleSource{err: errors.New("connection reset")}
	r := newTestResolver(vs, &fakeReservationSource{}, clock)

	today := domainReservation.DateOnly(clock.Now())
	_, err := r.FindAvailable(context.Background(), today, today)
	if appErrors.CodeOf(err) != appErrors.CodeDataUnavailable {
		t.Fatalf("expected DATA_UNAVAILABLE, got %v", err)
	}
}
