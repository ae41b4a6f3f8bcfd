package reservation

import (
	"testing"
	"time"
)

func TestDaysBetweenCountsCalendarDays(t *testing.T) {
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	if got := DaysBetween(from, from); got != 0 {
		t.Fatalf("same day = %d, want 0", got)
	}
	if got := DaysBetween(from, from.AddDate(0, 0, 14)); got != 14 {
		t.Fatalf("two weeks = %d, want 14", got)
	}
	if got := DaysBetween(from.AddDate(0, 0, 3), from); got != 0 {
		t.Fatalf("negative span = %d, want 0", got)
	}
}

func TestDaysBetweenAcrossSpringForward(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// The clock skips an hour on 2026-03-08, so the elapsed duration between
	// these midnights is 14 days minus one hour. The count must still be 14.
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, loc)
	to := time.Date(2026, 3, 15, 0, 0, 0, 0, loc)

	if got := DaysBetween(from, to); got != 14 {
		t.Fatalf("days across DST transition = %d, want 14", got)
	}
}

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	from := time.Date(2026, 8, 10, 23, 45, 0, 0, loc)
	to := time.Date(2026, 8, 11, 0, 15, 0, 0, loc)

	if got := DaysBetween(from, to); got != 1 {
		t.Fatalf("adjacent dates = %d, want 1", got)
	}
}

func TestOverlapsClosedInterval(t *testing.T) {
	res := &Reservation{
		PickupDate: time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
		ReturnDate: time.Date(2026, 7, 12, 0, 0, 0, 0, time.UTC),
	}

	day := func(d int) time.Time { return time.Date(2026, 7, d, 0, 0, 0, 0, time.UTC) }

	if !res.Overlaps(day(12), day(14)) {
		t.Fatal("shared boundary day must overlap")
	}
	if res.Overlaps(day(13), day(15)) {
		t.Fatal("adjacent range must not overlap")
	}
}
