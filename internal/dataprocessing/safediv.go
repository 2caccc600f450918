package dataprocessing

import "math"

// SafeDivide divides n by d, returning NaN when d is zero or either operand
// is missing.
func SafeDivide(n, d float64) float64 {
	if d == 0 || math.IsNaN(d) || math.IsNaN(n) {
		return math.NaN()
	}
	return n / d
}

// SafeDiv divides num by den element-wise. Positions beyond the shorter
// slice are NaN.
func SafeDiv(num, den []float64) []float64 {
	out := make([]float64, len(num))
	for i := range num {
		if i >= len(den) {
			out[i] = math.NaN()
			continue
		}
		out[i] = SafeDivide(num[i], den[i])
	}
	return out
}
