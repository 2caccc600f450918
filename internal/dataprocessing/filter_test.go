package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/DieMov/PYTHOM/internal/errors"
	"github.com/DieMov/PYTHOM/internal/frame"
	"github.com/DieMov/PYTHOM/internal/shared/testutil"
)

var nan = math.NaN()

// filterTable builds a table with every filter column set from fill(row, col)
func filterTable(t *testing.T, rows int, fill func(r, c int) float64, extra ...frame.Column) *frame.Table {
	t.Helper()
	var cols []frame.Column
	for c, name := range FilterColumns() {
		vals := make([]float64, rows)
		for r := range vals {
			vals[r] = fill(r, c)
		}
		cols = append(cols, frame.FloatColumn(name, vals))
	}
	cols = append(cols, extra...)
	table, err := frame.New(cols...)
	require.NoError(t, err)
	return table
}

func TestFilterDegenerate_TwoRecordExample(t *testing.T) {
	// Record 0 is all zero/NaN; record 1 has outstanding Actual = 100
	pattern := []float64{0, 0, nan}
	table := filterTable(t, 2, func(r, c int) float64 {
		if r == 1 && c == 0 {
			return 100
		}
		return pattern[c%len(pattern)]
	}, frame.StringColumn(ColumnSeller, []string{"V-cero", "V-activo"}, nil))

	logger, _ := testutil.NewTestLogger(t)
	res, err := FilterDegenerate(context.Background(), table, logger)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, []string{"V-cero"}, res.DroppedSellers)
	assert.True(t, res.HasSellerColumn)
	require.Equal(t, 1, res.Table.Len())
	sellers, _ := res.Table.Strings(ColumnSeller)
	assert.Equal(t, []string{"V-activo"}, sellers)
}

func TestFilterDegenerate_KeepsAnyNonZero(t *testing.T) {
	cols := len(FilterColumns())
	for c := 0; c < cols; c++ {
		table := filterTable(t, 1, func(_, col int) float64 {
			if col == c {
				return -3.5
			}
			return nan
		})

		res, err := FilterDegenerate(context.Background(), table, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Dropped, "column %s alone keeps the record", FilterColumns()[c])
		assert.Equal(t, 1, res.Table.Len())
	}
}

func TestFilterDegenerate_IgnoresNonFilterColumns(t *testing.T) {
	table := filterTable(t, 1, func(_, _ int) float64 { return 0 },
		frame.FloatColumn(Outstanding(Trailing(7)), []float64{999}))

	res, err := FilterDegenerate(context.Background(), table, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Dropped, "T-07 is not a filter column")
	assert.Equal(t, 0, res.Table.Len())
	assert.Equal(t, table.Names(), res.Table.Names(), "columns survive an empty result")
}

func TestFilterDegenerate_MissingColumn(t *testing.T) {
	table, err := frame.New(
		frame.FloatColumn(Outstanding(PeriodActual), []float64{1}),
		frame.FloatColumn(Outstanding(Trailing(1)), []float64{1}),
	)
	require.NoError(t, err)

	_, err = FilterDegenerate(context.Background(), table, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingColumn))
	assert.Contains(t, err.Error(), "Saldo Insoluto T-12")
	assert.NotContains(t, err.Error(), `"Saldo Insoluto Actual"`)
}

func TestFilterDegenerate_WithoutSellerColumn(t *testing.T) {
	table := filterTable(t, 2, func(r, _ int) float64 { return float64(r) })

	logger, handler := testutil.NewTestLogger(t)
	res, err := FilterDegenerate(context.Background(), table, logger)
	require.NoError(t, err)

	assert.False(t, res.HasSellerColumn)
	assert.Nil(t, res.DroppedSellers)
	assert.Equal(t, 1, res.Dropped)
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "dropped sellers not listed")
}

func TestFilterDegenerate_MissingSellerShownAsNaN(t *testing.T) {
	table := filterTable(t, 1, func(_, _ int) float64 { return 0 },
		frame.StringColumn(ColumnSeller, []string{""}, []bool{true}))

	res, err := FilterDegenerate(context.Background(), table, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"NaN"}, res.DroppedSellers)
}
