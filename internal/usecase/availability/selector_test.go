package availability

import (
	"testing"

	domainVehicle "fleet-reserve/internal/domain/vehicle"

	"github.com/google/uuid"
)

func entry(plate string, idleDays int, neverUsed bool) domainVehicle.Availability {
	return domainVehicle.Availability{
		Vehicle:          &domainVehicle.Vehicle{ID: uuid.New(), Plate: plate},
		DaysSinceLastUse: idleDays,
		NeverUsed:        neverUsed,
	}
}

func TestSelectBestTakesHead(t *testing.T) {
	a := entry("AAA0001", 45, true)
	b := entry("BBB0002", 10, false)
	c := entry("CCC0003", 3, false)

	pool := []domainVehicle.Availability{a, b, c}
	Rank(pool)

	best, ok := SelectBest(pool)
	if !ok {
		t.Fatal("expected a selection")
	}
	if best.Vehicle.ID != a.Vehicle.ID {
		t.Fatalf("expected never-used vehicle, got %s", best.Vehicle.Plate)
	}

	pool = []domainVehicle.Availability{b, c}
	Rank(pool)
	best, ok = SelectBest(pool)
	if !ok || best.Vehicle.ID != b.Vehicle.ID {
		t.Fatalf("expected the longest-idle vehicle, got %s", best.Vehicle.Plate)
	}
}

func TestSelectBestEmptyPool(t *testing.T) {
	if _, ok := SelectBest(nil); ok {
		t.Fatal("empty pool must yield no selection")
	}
}

func TestRankIsDeterministicForTies(t *testing.T) {
	x := entry("XYZ9999", 0, true)
	y := entry("ABC1111", 0, true)

	pool := []domainVehicle.Availability{x, y}
	Rank(pool)
	if pool[0].Vehicle.Plate != "ABC1111" {
		t.Fatalf("tied never-used vehicles must order by plate, got %s first", pool[0].Vehicle.Plate)
	}
}

func TestReselectClearsStaleChoice(t *testing.T) {
	a := entry("AAA0001", 20, false)
	b := entry("BBB0002", 5, false)
	gone := uuid.New()

	pool := []domainVehicle.Availability{a, b}
	Rank(pool)

	// Previous choice vanished from the new pool: pick the new head.
	selected, ok := Reselect(pool, &gone)
	if !ok || selected.Vehicle.ID != a.Vehicle.ID {
		t.Fatalf("expected selection to reset to pool head, got %v", selected.Vehicle)
	}

	// Previous choice still available: keep it even when not the head.
	keep := b.Vehicle.ID
	selected, ok = Reselect(pool, &keep)
	if !ok || selected.Vehicle.ID != b.Vehicle.ID {
		t.Fatal("expected previous selection to survive while still in the pool")
	}

	if _, ok := Reselect(nil, &keep); ok {
		t.Fatal("empty pool must clear the selection entirely")
	}
}
