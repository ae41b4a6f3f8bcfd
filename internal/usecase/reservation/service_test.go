package reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	domainDriver "fleet-reserve/internal/domain/driver"
	domainReservation "fleet-reserve/internal/domain/reservation"
	domainVehicle "fleet-reserve/internal/domain/vehicle"
	"fleet-reserve/internal/logger"
	"fleet-reserve/internal/notification"
	"fleet-reserve/internal/usecase/availability"
	"fleet-reserve/internal/usecase/maintenance"
	appErrors "fleet-reserve/pkg/errors"
	"fleet-reserve/pkg/retry"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
)

func init() {
	_ = logger.Init("development")
}

type fakeReservationRepo struct {
	items map[uuid.UUID]*domainReservation.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{items: make(map[uuid.UUID]*domainReservation.Reservation)}
}

func (f *fakeReservationRepo) CreateGuarded(_ context.Context, r *domainReservation.Reservation) error {
	for _, existing := range f.items {
		if existing.VehicleID == r.VehicleID &&
			existing.Status == domainReservation.StatusActive &&
			existing.Overlaps(r.PickupDate, r.ReturnDate) {
			return domainReservation.ErrOverlappingDates
		}
	}
	r.ID = uuid.New()
	f.items[r.ID] = r
	return nil
}

func (f *fakeReservationRepo) GetByID(_ context.Context, id uuid.UUID) (*domainReservation.Reservation, error) {
	r, ok := f.items[id]
	if !ok {
		return nil, domainReservation.ErrReservationNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReservationRepo) List(_ context.Context, _ *domainReservation.Filter) ([]*domainReservation.Reservation, int64, error) {
	out := make([]*domainReservation.Reservation, 0, len(f.items))
	for _, r := range f.items {
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeReservationRepo) ListActiveByVehicle(_ context.Context, vehicleID uuid.UUID) ([]*domainReservation.Reservation, error) {
	var out []*domainReservation.Reservation
	for _, r := range f.items {
		if r.VehicleID == vehicleID && r.Status == domainReservation.StatusActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) LastCompletedReturn(_ context.Context, vehicleID uuid.UUID) (*time.Time, error) {
	var last *time.Time
	for _, r := range f.items {
		if r.VehicleID == vehicleID && r.Status == domainReservation.StatusCompleted {
			ret := r.ReturnDate
			if last == nil || ret.After(*last) {
				last = &ret
			}
		}
	}
	return last, nil
}

func (f *fakeReservationRepo) FinalizeGuarded(_ context.Context, id uuid.UUID, endOdometer int, at time.Time, _ time.Time) (*domainReservation.Reservation, error) {
	r, ok := f.items[id]
	if !ok {
		return nil, domainReservation.ErrReservationNotFound
	}
	switch r.Status {
	case domainReservation.StatusActive:
	case domainReservation.StatusCompleted:
		if r.EndOdometer != nil {
			return nil, domainReservation.ErrAlreadyFinalized
		}
	default:
		return nil, domainReservation.ErrTerminalState
	}
	if endOdometer < r.StartOdometer {
		return nil, domainReservation.ErrInvalidOdometer
	}
	r.Status = domainReservation.StatusCompleted
	r.EndOdometer = &endOdometer
	r.CompletedAt = &at
	copied := *r
	return &copied, nil
}

func (f *fakeReservationRepo) AutoComplete(_ context.Context, id uuid.UUID, at time.Time) error {
	r, ok := f.items[id]
	if !ok || r.Status != domainReservation.StatusActive {
		return domainReservation.ErrNotActive
	}
	r.Status = domainReservation.StatusCompleted
	r.AutoCompleted = true
	r.CompletedAt = &at
	return nil
}

func (f *fakeReservationRepo) Cancel(_ context.Context, id uuid.UUID, reason string, _ time.Time) error {
	r, ok := f.items[id]
	if !ok || r.Status != domainReservation.StatusActive {
		return domainReservation.ErrNotActive
	}
	r.Status = domainReservation.StatusCancelled
	r.CancelReason = &reason
	return nil
}

func (f *fakeReservationRepo) ListActiveDueBy(_ context.Context, cutoff time.Time, _ int) ([]*domainReservation.Reservation, error) {
	var out []*domainReservation.Reservation
	for _, r := range f.items {
		if r.Status == domainReservation.StatusActive && !r.ReturnDate.After(cutoff) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) ListPendingMileage(_ context.Context, _ int) ([]*domainReservation.Reservation, error) {
	var out []*domainReservation.Reservation
	for _, r := range f.items {
		if r.PendingMileage() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) ListPendingByDriver(_ context.Context, driverID uuid.UUID) ([]*domainReservation.Reservation, error) {
	var out []*domainReservation.Reservation
	for _, r := range f.items {
		if r.DriverID == driverID && r.PendingMileage() {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeVehicleRepo struct {
	vehicles map[uuid.UUID]*domainVehicle.Vehicle
}

func newFakeVehicleRepo(vehicles ...*domainVehicle.Vehicle) *fakeVehicleRepo {
	f := &fakeVehicleRepo{vehicles: make(map[uuid.UUID]*domainVehicle.Vehicle)}
	for _, v := range vehicles {
		f.vehicles[v.ID] = v
	}
	return f
}

func (f *fakeVehicleRepo) Create(_ context.Context, v *domainVehicle.Vehicle) error {
	f.vehicles[v.ID] = v
	return nil
}

func (f *fakeVehicleRepo) GetByID(_ context.Context, id uuid.UUID) (*domainVehicle.Vehicle, error) {
	v, ok := f.vehicles[id]
	if !ok {
		return nil, domainVehicle.ErrVehicleNotFound
	}
	return v, nil
}

func (f *fakeVehicleRepo) GetByPlate(_ context.Context, plate string) (*domainVehicle.Vehicle, error) {
	for _, v := range f.vehicles {
		if v.Plate == plate {
			return v, nil
		}
	}
	return nil, domainVehicle.ErrVehicleNotFound
}

func (f *fakeVehicleRepo) Update(_ context.Context, v *domainVehicle.Vehicle) error {
	f.vehicles[v.ID] = v
	return nil
}

func (f *fakeVehicleRepo) List(_ context.Context, _ *domainVehicle.Filter) ([]*domainVehicle.Vehicle, int64, error) {
	out := make([]*domainVehicle.Vehicle, 0, len(f.vehicles))
	for _, v := range f.vehicles {
		out = append(out, v)
	}
	return out, int64(len(out)), nil
}

func (f *fakeVehicleRepo) ListByStatus(_ context.Context, status domainVehicle.VehicleStatus) ([]*domainVehicle.Vehicle, error) {
	var out []*domainVehicle.Vehicle
	for _, v := range f.vehicles {
		if v.Status == status {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVehicleRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domainVehicle.VehicleStatus) error {
	v, ok := f.vehicles[id]
	if !ok {
		return domainVehicle.ErrVehicleNotFound
	}
	v.Status = status
	return nil
}

func (f *fakeVehicleRepo) BeginCooldown(_ context.Context, id uuid.UUID, until time.Time) error {
	v, ok := f.vehicles[id]
	if !ok {
		return domainVehicle.ErrVehicleNotFound
	}
	v.Status = domainVehicle.StatusAwaitingWash
	v.CooldownUntil = &until
	return nil
}

func (f *fakeVehicleRepo) ReleaseCooldowns(_ context.Context, now time.Time) (int64, error) {
	var released int64
	for _, v := range f.vehicles {
		if v.Status == domainVehicle.StatusAwaitingWash && v.CooldownUntil != nil && !v.CooldownUntil.After(now) {
			v.Status = domainVehicle.StatusAvailable
			v.CooldownUntil = nil
			released++
		}
	}
	return released, nil
}

func (f *fakeVehicleRepo) ApplyRevision(_ context.Context, rec *domainVehicle.MaintenanceRecord, nextServiceOdometer, nextRevisionOdometer int, nextRevisionDue time.Time) error {
	v, ok := f.vehicles[rec.VehicleID]
	if !ok {
		return domainVehicle.ErrVehicleNotFound
	}
	v.NextServiceOdometer = nextServiceOdometer
	v.NextRevisionOdometer = nextRevisionOdometer
	v.NextRevisionDue = &nextRevisionDue
	return nil
}

func (f *fakeVehicleRepo) ListMaintenanceRecords(_ context.Context, _ uuid.UUID) ([]*domainVehicle.MaintenanceRecord, error) {
	return nil, nil
}

type fakeDriverRepo struct {
	drivers map[uuid.UUID]*domainDriver.Driver
}

func newFakeDriverRepo(drivers ...*domainDriver.Driver) *fakeDriverRepo {
	f := &fakeDriverRepo{drivers: make(map[uuid.UUID]*domainDriver.Driver)}
	for _, d := range drivers {
		f.drivers[d.ID] = d
	}
	return f
}

func (f *fakeDriverRepo) Create(_ context.Context, d *domainDriver.Driver) error {
	f.drivers[d.ID] = d
	return nil
}

func (f *fakeDriverRepo) GetByID(_ context.Context, id uuid.UUID) (*domainDriver.Driver, error) {
	d, ok := f.drivers[id]
	if !ok {
		return nil, domainDriver.ErrDriverNotFound
	}
	return d, nil
}

func (f *fakeDriverRepo) GetByEmail(_ context.Context, email string) (*domainDriver.Driver, error) {
	for _, d := range f.drivers {
		if d.Email == email {
			return d, nil
		}
	}
	return nil, domainDriver.ErrDriverNotFound
}

func (f *fakeDriverRepo) Update(_ context.Context, d *domainDriver.Driver) error {
	f.drivers[d.ID] = d
	return nil
}

func (f *fakeDriverRepo) List(_ context.Context, _ *domainDriver.Filter) ([]*domainDriver.Driver, int64, error) {
	return nil, 0, nil
}

func (f *fakeDriverRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	d, ok := f.drivers[id]
	if !ok {
		return domainDriver.ErrDriverNotFound
	}
	d.Active = false
	return nil
}

type recordingSender struct {
	sent []notification.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg notification.Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

type serviceFixture struct {
	svc     *Service
	resRepo *fakeReservationRepo
	vehRepo *fakeVehicleRepo
	drvRepo *fakeDriverRepo
	sender  *recordingSender
	clock   clockz.Clock
	today   time.Time
	vehicle *domainVehicle.Vehicle
	driver  *domainDriver.Driver
}

func newServiceFixture() *serviceFixture {
	clock := clockz.NewFakeClock()
	today := domainReservation.DateOnly(clock.Now())

	veh := &domainVehicle.Vehicle{
		ID:                   uuid.New(),
		Plate:                "ABC1D23",
		Brand:                "Fiat",
		Model:                "Argo",
		Status:               domainVehicle.StatusAvailable,
		CurrentOdometer:      12000,
		NextServiceOdometer:  22000,
		NextRevisionOdometer: 22000,
		ServiceMarginKm:      500,
		CreatedAt:            today.AddDate(0, 0, -30),
	}
	drv := &domainDriver.Driver{
		ID:     uuid.New(),
		Name:   "Ana Souza",
		Email:  "ana@example.com",
		Active: true,
	}

	resRepo := newFakeReservationRepo()
	vehRepo := newFakeVehicleRepo(veh)
	drvRepo := newFakeDriverRepo(drv)
	sender := &recordingSender{}

	engine := maintenance.NewEngine(maintenance.DefaultThresholds())
	policy := retry.Policy{MaxAttempts: 1}
	resolver := availability.NewResolver(vehRepo, resRepo, nil, engine, clock, time.UTC, policy)

	svc := NewService(resRepo, vehRepo, drvRepo, resolver, sender, clock, time.UTC, 2)
	return &serviceFixture{
		svc:     svc,
		resRepo: resRepo,
		vehRepo: vehRepo,
		drvRepo: drvRepo,
		sender:  sender,
		clock:   clock,
		today:   today,
		vehicle: veh,
		driver:  drv,
	}
}

func (f *serviceFixture) createRequest(pickupOffset, returnOffset int) *CreateReservationRequest {
	return &CreateReservationRequest{
		DriverID:     f.driver.ID,
		PickupDate:   f.today.AddDate(0, 0, pickupOffset).Format(DateLayout),
		ReturnDate:   f.today.AddDate(0, 0, returnOffset).Format(DateLayout),
		Destinations: []string{"Campinas"},
	}
}

func TestCreateAssignsVehicleAndSendsConfirmation(t *testing.T) {
	f := newServiceFixture()

	resp, err := f.svc.Create(context.Background(), f.createRequest(1, 3))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if resp.VehicleID != f.vehicle.ID {
		t.Fatalf("expected auto-assignment to pick %s, got %s", f.vehicle.ID, resp.VehicleID)
	}
	if resp.ConfirmationEmail != "sent" {
		t.Fatalf("expected confirmation email sent, got %q", resp.ConfirmationEmail)
	}
	if len(f.sender.sent) != 1 || f.sender.sent[0].Recipient != f.driver.Email {
		t.Fatalf("confirmation not delivered to driver: %+v", f.sender.sent)
	}
	// Pickup is tomorrow, so the vehicle stays in the pool for now.
	if f.vehicle.Status != domainVehicle.StatusAvailable {
		t.Fatalf("vehicle status changed early: %s", f.vehicle.Status)
	}
}

func TestCreateSameDayPickupFlipsVehicleInUse(t *testing.T) {
	f := newServiceFixture()

	if _, err := f.svc.Create(context.Background(), f.createRequest(0, 2)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if f.vehicle.Status != domainVehicle.StatusInUse {
		t.Fatalf("expected in_use for same-day pickup, got %s", f.vehicle.Status)
	}
}

func TestCreateRejectsOverlap(t *testing.T) {
	f := newServiceFixture()

	if _, err := f.svc.Create(context.Background(), f.createRequest(1, 4)); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := f.svc.Create(context.Background(), f.createRequest(3, 5))
	if err == nil {
		t.Fatal("expected overlapping reservation to be rejected")
	}
	if code := appErrors.CodeOf(err); code != appErrors.CodeNoVehicle {
		t.Fatalf("expected NO_VEHICLE_AVAILABLE for exhausted pool, got %s", code)
	}

	// Adjacent range on the same vehicle is fine.
	if _, err := f.svc.Create(context.Background(), f.createRequest(5, 6)); err != nil {
		t.Fatalf("adjacent range rejected: %v", err)
	}
}

func TestCreateGuardCatchesConcurrentBooking(t *testing.T) {
	f := newServiceFixture()

	// The other booking lands after the pool was resolved; simulate by
	// inserting directly against the repository.
	other := &domainReservation.Reservation{
		VehicleID:  f.vehicle.ID,
		DriverID:   f.driver.ID,
		PickupDate: f.today.AddDate(0, 0, 1),
		ReturnDate: f.today.AddDate(0, 0, 3),
		Status:     domainReservation.StatusActive,
	}

	pinned := f.vehicle.ID
	req := f.createRequest(2, 4)
	req.VehicleID = &pinned

	if err := f.resRepo.CreateGuarded(context.Background(), other); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	_, err := f.svc.Create(context.Background(), req)
	if err == nil {
		t.Fatal("expected concurrent booking to be rejected")
	}
	if code := appErrors.CodeOf(err); code != appErrors.CodeNoVehicle && code != appErrors.CodeOverlapping {
		t.Fatalf("unexpected error code %s", code)
	}
}

func TestCreateRejectsInactiveDriver(t *testing.T) {
	f := newServiceFixture()
	f.driver.Active = false

	_, err := f.svc.Create(context.Background(), f.createRequest(1, 2))
	if !errors.Is(err, domainDriver.ErrDriverInactive) {
		t.Fatalf("expected inactive driver rejection, got %v", err)
	}
}

func TestCreateRejectsDriverAsCompanion(t *testing.T) {
	f := newServiceFixture()
	req := f.createRequest(1, 2)
	req.CompanionIDs = []uuid.UUID{f.driver.ID}

	_, err := f.svc.Create(context.Background(), req)
	if code := appErrors.CodeOf(err); code != appErrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateEmailFailureDoesNotFailReservation(t *testing.T) {
	f := newServiceFixture()
	f.sender.err = errors.New("smtp down")

	resp, err := f.svc.Create(context.Background(), f.createRequest(1, 2))
	if err != nil {
		t.Fatalf("Create failed on email error: %v", err)
	}
	if resp.ConfirmationEmail != "failed" {
		t.Fatalf("expected failed email outcome, got %q", resp.ConfirmationEmail)
	}
	if len(f.resRepo.items) != 1 {
		t.Fatal("reservation was not persisted")
	}
}

func TestFinalizeClosesTrip(t *testing.T) {
	f := newServiceFixture()

	created, err := f.svc.Create(context.Background(), f.createRequest(0, 1))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	resp, err := f.svc.Finalize(context.Background(), created.ID, &FinalizeTripRequest{EndOdometer: 12500})
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if resp.Status != string(domainReservation.StatusCompleted) {
		t.Fatalf("expected completed, got %s", resp.Status)
	}
	if resp.EndOdometer == nil || *resp.EndOdometer != 12500 {
		t.Fatalf("end odometer not recorded: %+v", resp.EndOdometer)
	}
	if resp.PendingKm {
		t.Fatal("finalized trip still reports pending mileage")
	}
}

func TestFinalizeRejectsOdometerRegression(t *testing.T) {
	f := newServiceFixture()

	created, err := f.svc.Create(context.Background(), f.createRequest(0, 1))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stored := f.resRepo.items[created.ID]
	stored.StartOdometer = 12000

	_, err = f.svc.Finalize(context.Background(), created.ID, &FinalizeTripRequest{EndOdometer: 11999})
	if code := appErrors.CodeOf(err); code != appErrors.CodeInvalidOdometer {
		t.Fatalf("expected INVALID_ODOMETER, got %v", err)
	}
	if stored.Status != domainReservation.StatusActive {
		t.Fatal("rejected finalize must not change the reservation")
	}
}

func TestFinalizeResolvesPendingMileage(t *testing.T) {
	f := newServiceFixture()

	created, err := f.svc.Create(context.Background(), f.createRequest(0, 1))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Auto-completion closed the trip without a reading.
	if err := f.resRepo.AutoComplete(context.Background(), created.ID, f.clock.Now()); err != nil {
		t.Fatalf("AutoComplete failed: %v", err)
	}

	pending, err := f.svc.PendingForDriver(context.Background(), f.driver.ID)
	if err != nil {
		t.Fatalf("PendingForDriver failed: %v", err)
	}
	if len(pending) != 1 || !pending[0].PendingKm {
		t.Fatalf("expected one pending-mileage trip, got %+v", pending)
	}

	if _, err := f.svc.Finalize(context.Background(), created.ID, &FinalizeTripRequest{EndOdometer: 12100}); err != nil {
		t.Fatalf("late Finalize failed: %v", err)
	}

	// A second reading on the same trip must be refused.
	_, err = f.svc.Finalize(context.Background(), created.ID, &FinalizeTripRequest{EndOdometer: 12200})
	if code := appErrors.CodeOf(err); code != appErrors.CodeInvalidTransition {
		t.Fatalf("expected INVALID_TRANSITION on double finalize, got %v", err)
	}
}

func TestCancelFreesVehicle(t *testing.T) {
	f := newServiceFixture()

	created, err := f.svc.Create(context.Background(), f.createRequest(0, 2))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if f.vehicle.Status != domainVehicle.StatusInUse {
		t.Fatalf("expected in_use after same-day create, got %s", f.vehicle.Status)
	}

	if err := f.svc.Cancel(context.Background(), created.ID, &CancelReservationRequest{Reason: "trip called off"}); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if f.vehicle.Status != domainVehicle.StatusAvailable {
		t.Fatalf("expected vehicle released, got %s", f.vehicle.Status)
	}

	err = f.svc.Cancel(context.Background(), created.ID, &CancelReservationRequest{Reason: "cancel again"})
	if code := appErrors.CodeOf(err); code != appErrors.CodeInvalidTransition {
		t.Fatalf("expected INVALID_TRANSITION on double cancel, got %v", err)
	}
}

func TestAvailabilityEndpointMirrorsResolver(t *testing.T) {
	f := newServiceFixture()

	out, err := f.svc.Availability(context.Background(), &AvailabilityRequest{
		PickupDate: f.today.AddDate(0, 0, 1).Format(DateLayout),
		ReturnDate: f.today.AddDate(0, 0, 2).Format(DateLayout),
	})
	if err != nil {
		t.Fatalf("Availability failed: %v", err)
	}
	if len(out) != 1 || out[0].Plate != "ABC1D23" {
		t.Fatalf("unexpected pool: %+v", out)
	}
	if !out[0].NeverUsed {
		t.Fatal("vehicle with no completed trips should rank as never used")
	}
}
