// Package validate parses user-entered time-of-day and decimal values.
package validate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrFormat reports input that does not parse at all.
var ErrFormat = errors.New("invalid format")

// ErrRange reports a parsed value outside the allowed bounds.
var ErrRange = errors.New("out of range")

// NoBound disables a bound in ParseNumber.
var NoBound = math.NaN()

// ParseTime accepts HH:MM or HH.MM, optionally with a seconds suffix,
// and returns the value normalized to zero-padded "HH:MM".
func ParseTime(s string) (string, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", ":")
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return "", false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return "", false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return "", false
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return "", false
		}
	}
	return fmt.Sprintf("%02d:%02d", h, m), true
}

// ParseNumber parses a decimal with either '.' or ',' as the separator
// and checks it against optional bounds (pass NoBound to skip one).
func ParseNumber(s string, min, max float64) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	v, err := strconv.ParseFloat(s, 64)
	// ParseFloat accepts "NaN" and "Inf" spellings; neither is a quantity
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrFormat
	}
	if !math.IsNaN(min) && v < min {
		return 0, fmt.Errorf("%w: minimum %s", ErrRange, trimFloat(min))
	}
	if !math.IsNaN(max) && v > max {
		return 0, fmt.Errorf("%w: maximum %s", ErrRange, trimFloat(max))
	}
	return v, nil
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
