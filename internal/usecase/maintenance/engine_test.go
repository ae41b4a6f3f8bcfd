package maintenance

import (
	"testing"

	"fleet-reserve/internal/domain/vehicle"
)

func newVehicle(current, nextService, nextRevision, margin int) *vehicle.Vehicle {
	return &vehicle.Vehicle{
		CurrentOdometer:      current,
		NextServiceOdometer:  nextService,
		NextRevisionOdometer: nextRevision,
		ServiceMarginKm:      margin,
	}
}

func TestEvaluateRevisionTiers(t *testing.T) {
	engine := NewEngine(DefaultThresholds())

	tests := []struct {
		name     string
		current  int
		expected Status
	}{
		{"well before due", 5000, StatusOK},
		{"approaching band", 9100, StatusApproaching},
		{"approaching boundary", 9000, StatusApproaching},
		{"urgent band", 9600, StatusUrgent},
		{"urgent boundary", 9500, StatusUrgent},
		{"exactly due", 10000, StatusOverdueWithinMargin},
		{"past due within margin", 10300, StatusOverdueWithinMargin},
		{"last km of margin", 10499, StatusOverdueWithinMargin},
		{"margin exhausted", 10500, StatusOverdueBlocked},
		{"well past margin", 10600, StatusOverdueBlocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newVehicle(tt.current, 20000, 10000, 500)
			report := engine.Evaluate(v)
			if report.RevisionStatus != tt.expected {
				t.Fatalf("odometer %d: expected %s, got %s", tt.current, tt.expected, report.RevisionStatus)
			}
		})
	}
}

func TestEvaluateMarginBoundary(t *testing.T) {
	engine := NewEngine(DefaultThresholds())

	within := engine.Evaluate(newVehicle(10499, 20000, 10000, 500))
	if within.Blocked() {
		t.Fatalf("expected odometer 10499 to remain usable, got %s", within.RevisionStatus)
	}
	if within.MarginRemaining != 1 {
		t.Fatalf("expected 1 km of margin left, got %d", within.MarginRemaining)
	}

	blocked := engine.Evaluate(newVehicle(10500, 20000, 10000, 500))
	if !blocked.Blocked() {
		t.Fatalf("expected odometer 10500 to be blocked, got %s", blocked.RevisionStatus)
	}
}

func TestEvaluateServiceTrackHasNoMargin(t *testing.T) {
	engine := NewEngine(DefaultThresholds())

	// Service overdue never blocks; only the revision margin does.
	report := engine.Evaluate(newVehicle(12000, 10000, 30000, 500))
	if report.ServiceStatus != StatusOverdue {
		t.Fatalf("expected service overdue, got %s", report.ServiceStatus)
	}
	if report.Blocked() {
		t.Fatal("service track must never block the vehicle")
	}
	if report.OverallStatus != StatusOverdue {
		t.Fatalf("expected overall overdue, got %s", report.OverallStatus)
	}
}

func TestEvaluateTracksAreIndependent(t *testing.T) {
	engine := NewEngine(DefaultThresholds())

	report := engine.Evaluate(newVehicle(9800, 50000, 10000, 500))
	if report.ServiceStatus != StatusOK {
		t.Fatalf("expected service OK, got %s", report.ServiceStatus)
	}
	if report.RevisionStatus != StatusUrgent {
		t.Fatalf("expected revision urgent, got %s", report.RevisionStatus)
	}
	if report.OverallStatus != StatusUrgent {
		t.Fatalf("expected overall to take the worse track, got %s", report.OverallStatus)
	}
}

func TestEvaluateIsPure(t *testing.T) {
	engine := NewEngine(DefaultThresholds())
	v := newVehicle(10300, 20000, 10000, 500)

	first := engine.Evaluate(v)
	second := engine.Evaluate(v)
	if first != second {
		t.Fatalf("repeated evaluation diverged: %+v vs %+v", first, second)
	}
	if v.CurrentOdometer != 10300 {
		t.Fatal("Evaluate must not mutate the vehicle")
	}
}

func TestEvaluateReportsDistances(t *testing.T) {
	engine := NewEngine(DefaultThresholds())

	report := engine.Evaluate(newVehicle(8000, 9000, 12000, 500))
	if report.KmUntilService != 1000 {
		t.Fatalf("expected 1000 km until service, got %d", report.KmUntilService)
	}
	if report.KmUntilRevision != 4000 {
		t.Fatalf("expected 4000 km until revision, got %d", report.KmUntilRevision)
	}
	if report.MarginRemaining != 4500 {
		t.Fatalf("expected 4500 km of margin remaining, got %d", report.MarginRemaining)
	}
}
