// Package units provides the display units accepted by the report: lift
// weight units and report timezones. All calculations stay in kilograms and
// centimetres; conversion only happens when text is printed.
package units

import (
	"fmt"
	"time"
)

// Weight unit constants
const (
	KG = "kg"
	LB = "lb"
)

// ValidWeightUnits contains all valid weight unit values
var ValidWeightUnits = []string{KG, LB}

const poundsPerKilogram = 2.20462262185

// IsValid checks if the given unit is in the list of valid weight units
func IsValid(unit string) bool {
	for _, validUnit := range ValidWeightUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "kg, lb"
}

// ConvertWeight converts a weight in kilograms to the target units.
func ConvertWeight(weightKG float64, targetUnits string) float64 {
	switch targetUnits {
	case LB:
		return weightKG * poundsPerKilogram
	default:
		return weightKG
	}
}

// FormatWeight renders a kilogram weight for the report header. Pounds are
// shown alongside kilograms since the NIOSH inputs are always metric.
func FormatWeight(weightKG int, targetUnits string) string {
	if targetUnits == LB {
		return fmt.Sprintf("%d kg (%.1f lb)", weightKG, ConvertWeight(float64(weightKG), LB))
	}
	return fmt.Sprintf("%d kg", weightKG)
}

// IsTimezoneValid checks if the given timezone is valid by attempting to load it from the tz database
func IsTimezoneValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// ConvertTime converts a time to the specified timezone for display.
func ConvertTime(t time.Time, targetTimezone string) (time.Time, error) {
	if targetTimezone == "" || targetTimezone == "Local" {
		return t.Local(), nil
	}
	if targetTimezone == "UTC" {
		return t.UTC(), nil
	}

	loc, err := time.LoadLocation(targetTimezone)
	if err != nil {
		return t, fmt.Errorf("failed to load timezone %s: %w", targetTimezone, err)
	}
	return t.In(loc), nil
}
