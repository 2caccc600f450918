package frame

import (
	"math"
	"strconv"
	"strings"
)

// ParseFloat coerces a raw cell to float64. Empty and non-numeric input
// yields NaN.
func ParseFloat(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// IsNumeric reports whether a non-empty raw cell parses as a number
func IsNumeric(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// MissingOrZero reports whether v is NaN or exactly zero
func MissingOrZero(v float64) bool {
	return math.IsNaN(v) || v == 0
}

// FillNaN returns fill when v is NaN
func FillNaN(v, fill float64) float64 {
	if math.IsNaN(v) {
		return fill
	}
	return v
}
