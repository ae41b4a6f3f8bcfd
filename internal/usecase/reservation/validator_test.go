package reservation

import (
	"errors"
	"testing"
	"time"

	appErrors "fleet-reserve/pkg/errors"
)

func TestParseDateRange(t *testing.T) {
	loc := time.UTC
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)

	t.Run("valid range", func(t *testing.T) {
		pickup, ret, err := ParseDateRange("2025-03-11", "2025-03-14", today, loc)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !pickup.Equal(time.Date(2025, 3, 11, 0, 0, 0, 0, loc)) {
			t.Fatalf("wrong pickup: %v", pickup)
		}
		if !ret.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, loc)) {
			t.Fatalf("wrong return: %v", ret)
		}
	})

	t.Run("single day trip", func(t *testing.T) {
		if _, _, err := ParseDateRange("2025-03-10", "2025-03-10", today, loc); err != nil {
			t.Fatalf("same-day range must be valid: %v", err)
		}
	})

	t.Run("pickup in past", func(t *testing.T) {
		_, _, err := ParseDateRange("2025-03-09", "2025-03-12", today, loc)
		if !errors.Is(err, appErrors.ErrPickupInPast) {
			t.Fatalf("expected past-pickup rejection, got %v", err)
		}
	})

	t.Run("inverted range", func(t *testing.T) {
		_, _, err := ParseDateRange("2025-03-14", "2025-03-11", today, loc)
		if !errors.Is(err, appErrors.ErrInvalidDateRange) {
			t.Fatalf("expected inverted-range rejection, got %v", err)
		}
	})

	t.Run("malformed date", func(t *testing.T) {
		_, _, err := ParseDateRange("11/03/2025", "2025-03-14", today, loc)
		if code := appErrors.CodeOf(err); code != appErrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestNormalizeDestinations(t *testing.T) {
	t.Run("trims and keeps order", func(t *testing.T) {
		got, err := NormalizeDestinations([]string{"  Campinas ", "Santos", "", "Sorocaba"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"Campinas", "Santos", "Sorocaba"}
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("got %v, want %v", got, want)
			}
		}
	})

	t.Run("rejects case-insensitive duplicates", func(t *testing.T) {
		_, err := NormalizeDestinations([]string{"Santos", "santos"})
		if !errors.Is(err, appErrors.ErrDuplicateDestination) {
			t.Fatalf("expected duplicate rejection, got %v", err)
		}
	})

	t.Run("rejects empty after cleaning", func(t *testing.T) {
		_, err := NormalizeDestinations([]string{"  ", ""})
		if !errors.Is(err, appErrors.ErrNoDestination) {
			t.Fatalf("expected no-destination rejection, got %v", err)
		}
	})
}
