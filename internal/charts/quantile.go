package charts

import (
	"math"
	"sort"
)

// Quantile returns the q-th quantile of the finite values using linear
// interpolation between closest ranks. It returns NaN when no finite value
// exists.
func Quantile(values []float64, q float64) float64 {
	sorted := finiteSorted(values)
	return quantileSorted(sorted, q)
}

func finiteSorted(values []float64) []float64 {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sorted = append(sorted, v)
	}
	sort.Float64s(sorted)
	return sorted
}

func quantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	index := q * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
