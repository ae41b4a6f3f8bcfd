package reservation

import (
	"strings"
	"time"

	appErrors "fleet-reserve/pkg/errors"
	"fleet-reserve/pkg/utils"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("tripdate", validateTripDate)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// DateLayout is the wire format for pickup and return dates.
const DateLayout = "2006-01-02"

func validateTripDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// ParseDateRange parses and checks the requested range in the fleet timezone.
// Pickup in the past and inverted ranges are rejected here, at the edge.
func ParseDateRange(pickupStr, returnStr string, today time.Time, loc *time.Location) (pickup, ret time.Time, err error) {
	pickup, err = time.ParseInLocation(DateLayout, pickupStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.NewAppError(appErrors.CodeValidation,
			"invalid pickup date, expected YYYY-MM-DD", err)
	}
	ret, err = time.ParseInLocation(DateLayout, returnStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.NewAppError(appErrors.CodeValidation,
			"invalid return date, expected YYYY-MM-DD", err)
	}

	if pickup.Before(today) {
		return time.Time{}, time.Time{}, appErrors.NewAppError(appErrors.CodeValidation,
			"pickup date must be today or later", appErrors.ErrPickupInPast)
	}
	if ret.Before(pickup) {
		return time.Time{}, time.Time{}, appErrors.NewAppError(appErrors.CodeValidation,
			"return date must not be before pickup date", appErrors.ErrInvalidDateRange)
	}

	return pickup, ret, nil
}

// NormalizeDestinations trims, drops empties, rejects duplicates and keeps the
// original order.
func NormalizeDestinations(raw []string) ([]string, error) {
	cleaned := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, dest := range raw {
		dest = utils.SanitizeString(dest)
		if dest == "" {
			continue
		}

		key := strings.ToLower(dest)
		if _, dup := seen[key]; dup {
			return nil, appErrors.NewAppError(appErrors.CodeValidation,
				"duplicate destination: "+dest, appErrors.ErrDuplicateDestination)
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, dest)
	}

	if len(cleaned) == 0 {
		return nil, appErrors.NewAppError(appErrors.CodeValidation,
			"at least one destination is required", appErrors.ErrNoDestination)
	}

	return cleaned, nil
}
