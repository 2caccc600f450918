package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DieMov/PYTHOM/internal/frame"
	"github.com/DieMov/PYTHOM/internal/shared/testutil"
)

var defaultRates = Rates{MonthlyInterest: 0.65 / 12, MonthlyFundingCost: 0.11 / 12}

func TestDerive(t *testing.T) {
	table, err := frame.New(
		frame.FloatColumn(Outstanding(PeriodActual), []float64{1000, nan, 50}),
		frame.FloatColumn(Overdue(PeriodActual), []float64{200, 10, nan}),
	)
	require.NoError(t, err)

	ok, err := Derive(context.Background(), table, defaultRates, nil)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, []string{
		Outstanding(PeriodActual), Overdue(PeriodActual),
		ColumnVigente, ColumnInterest, ColumnDebtCost,
	}, table.Names())

	vigente := table.Floats(ColumnVigente)
	interest := table.Floats(ColumnInterest)
	debt := table.Floats(ColumnDebtCost)

	assert.Equal(t, 800.0, vigente[0])
	assert.InDelta(t, 800*(0.65/12), interest[0], 1e-9)
	assert.InDelta(t, 1000*(0.11/12), debt[0], 1e-9)

	// Missing outstanding propagates to everything
	assert.True(t, math.IsNaN(vigente[1]))
	assert.True(t, math.IsNaN(interest[1]))
	assert.True(t, math.IsNaN(debt[1]))

	// Missing overdue only affects vigente and interest
	assert.True(t, math.IsNaN(vigente[2]))
	assert.True(t, math.IsNaN(interest[2]))
	assert.InDelta(t, 50*(0.11/12), debt[2], 1e-9)
}

func TestDerive_SkippedWithoutBalances(t *testing.T) {
	table, err := frame.New(frame.FloatColumn(Outstanding(PeriodActual), []float64{1000}))
	require.NoError(t, err)

	logger, handler := testutil.NewTestLogger(t)
	ok, err := Derive(context.Background(), table, defaultRates, logger)
	require.NoError(t, err)

	assert.False(t, ok)
	assert.False(t, table.Has(ColumnDebtCost))
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "Derived metrics skipped")
}

func TestSafeDivide(t *testing.T) {
	tests := []struct {
		name string
		n, d float64
		want float64
	}{
		{"regular", 10, 4, 2.5},
		{"negative", -9, 3, -3},
		{"zero numerator", 0, 5, 0},
		{"zero denominator", 10, 0, nan},
		{"zero over zero", 0, 0, nan},
		{"missing denominator", 10, nan, nan},
		{"missing numerator", nan, 4, nan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeDivide(tt.n, tt.d)
			if math.IsNaN(tt.want) {
				assert.True(t, math.IsNaN(got))
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSafeDiv(t *testing.T) {
	got := SafeDiv([]float64{1, 2, 3, 4}, []float64{2, 0, nan})

	require.Len(t, got, 4)
	assert.Equal(t, 0.5, got[0])
	assert.True(t, math.IsNaN(got[1]))
	assert.True(t, math.IsNaN(got[2]))
	assert.True(t, math.IsNaN(got[3]), "no denominator")

	for _, v := range got {
		assert.False(t, math.IsInf(v, 0))
	}
}
