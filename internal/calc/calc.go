// Package calc implements the waybill arithmetic: elapsed time,
// distance, and fuel accounting. All functions are pure and expect
// already-validated inputs.
package calc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Round2 rounds fuel volumes to two decimal places; every liter value
// in the bot is stored and displayed with this precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Elapsed computes the duration between two normalized "HH:MM" values.
// When end is earlier than start the trip is assumed to cross midnight
// and a full day is added, so the result is always in (0, 24] hours.
func Elapsed(start, end string) (hours, minutes int, decimal float64) {
	sh, sm := splitClock(start)
	eh, em := splitClock(end)
	total := (eh*60 + em) - (sh*60 + sm)
	if total <= 0 {
		total += 24 * 60
	}
	hours = total / 60
	minutes = total % 60
	decimal = math.Round(float64(total)/60*100) / 100
	return hours, minutes, decimal
}

func splitClock(s string) (int, int) {
	parts := strings.SplitN(s, ":", 2)
	h, _ := strconv.Atoi(parts[0])
	m := 0
	if len(parts) == 2 {
		m, _ = strconv.Atoi(parts[1])
	}
	return h, m
}

// FormatDuration renders an hour/minute pair like "9 ч 30 мин".
func FormatDuration(hours, minutes int) string {
	if minutes == 0 {
		return fmt.Sprintf("%d ч", hours)
	}
	return fmt.Sprintf("%d ч %d мин", hours, minutes)
}

// Distance is the odometer delta. Callers reject negative values before
// the waybill reaches the save stage.
func Distance(odoStart, odoEnd float64) float64 {
	return Round2(odoEnd - odoStart)
}

// NormConsumption is the expected fuel use for the distance at the
// vehicle's rated liters per 100 km.
func NormConsumption(distance, fuelRatePer100 float64) float64 {
	return Round2(distance * fuelRatePer100 / 100)
}

// OveruseByIdle derives overuse liters from engine idle time.
func OveruseByIdle(idleHours, idleRate float64) float64 {
	return Round2(idleHours * idleRate)
}

// ActualConsumption is norm plus overuse minus economy.
func ActualConsumption(norm, overuse, economy float64) float64 {
	return Round2(norm + overuse - economy)
}

// FuelBalance is the computed tank level at the end of the trip.
func FuelBalance(fuelStart, fuelRefuel, actual float64) float64 {
	return Round2(fuelStart + fuelRefuel - actual)
}

// BackDeriveRefuel reconstructs the refuel amount when the user enters
// the ending balance directly instead of the refueled liters.
func BackDeriveRefuel(enteredEnd, computedEnd float64) float64 {
	return Round2(math.Max(0, enteredEnd-computedEnd))
}

// SpecificConsumption is actual fuel per 100 km, or 0 when the vehicle
// did not move.
func SpecificConsumption(actual, distance float64) float64 {
	if distance <= 0 {
		return 0
	}
	return Round2(actual / distance * 100)
}
