package dataprocessing

import (
	"math"
	"sort"

	"github.com/DieMov/PYTHOM/internal/frame"
)

// TopRows returns the row indices of the n largest values of column, in
// descending order. Missing values rank last and ties keep row order.
// It returns nil when the column does not exist.
func TopRows(t *frame.Table, column string, n int) []int {
	if !t.Has(column) || n <= 0 {
		return nil
	}
	values := t.Floats(column)
	rows := make([]int, len(values))
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(a, b int) bool {
		va, vb := values[rows[a]], values[rows[b]]
		if math.IsNaN(va) {
			return false
		}
		if math.IsNaN(vb) {
			return true
		}
		return va > vb
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}
