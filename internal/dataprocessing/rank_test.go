package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DieMov/PYTHOM/internal/frame"
)

func TestTopRows(t *testing.T) {
	table, err := frame.New(frame.FloatColumn(ColumnDebtCost, []float64{5, nan, 9, 5, 1, nan, 7}))
	require.NoError(t, err)

	tests := []struct {
		name string
		n    int
		want []int
	}{
		{"top three", 3, []int{2, 6, 0}},
		{"ties keep row order", 4, []int{2, 6, 0, 3}},
		{"missing last", 7, []int{2, 6, 0, 3, 4, 1, 5}},
		{"n beyond length", 20, []int{2, 6, 0, 3, 4, 1, 5}},
		{"zero", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TopRows(table, ColumnDebtCost, tt.n))
		})
	}
}

func TestTopRows_MissingColumn(t *testing.T) {
	table, err := frame.New(frame.FloatColumn("otra", []float64{1}))
	require.NoError(t, err)

	assert.Nil(t, TopRows(table, ColumnDebtCost, 15))
}
