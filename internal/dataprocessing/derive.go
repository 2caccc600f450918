package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DieMov/PYTHOM/internal/frame"
)

// Rates are the flat monthly multipliers used for derived metrics
type Rates struct {
	MonthlyInterest    float64
	MonthlyFundingCost float64
}

// Derive appends SaldoInsolutoVigente, InteresGenerado and ServiciodeDeuda
// when both current balances exist. Missing operands give missing results.
// It reports whether the columns were added.
func Derive(ctx context.Context, t *frame.Table, rates Rates, logger *slog.Logger) (bool, error) {
	if logger == nil {
		logger = slog.Default()
	}

	outCol, dueCol := Outstanding(PeriodActual), Overdue(PeriodActual)
	if missing := t.Missing(outCol, dueCol); len(missing) > 0 {
		logger.WarnContext(ctx, "Derived metrics skipped, columns not found",
			slog.Any("columns", missing))
		return false, nil
	}

	outstanding := t.Floats(outCol)
	overdue := t.Floats(dueCol)

	vigente := make([]float64, len(outstanding))
	interest := make([]float64, len(outstanding))
	debtCost := make([]float64, len(outstanding))
	for i := range outstanding {
		// NaN propagates through the arithmetic
		vigente[i] = outstanding[i] - overdue[i]
		interest[i] = vigente[i] * rates.MonthlyInterest
		debtCost[i] = outstanding[i] * rates.MonthlyFundingCost
	}

	for _, c := range []frame.Column{
		frame.FloatColumn(ColumnVigente, vigente),
		frame.FloatColumn(ColumnInterest, interest),
		frame.FloatColumn(ColumnDebtCost, debtCost),
	} {
		if err := t.SetFloats(c.Name, c.Floats); err != nil {
			return false, fmt.Errorf("derive %s: %w", c.Name, err)
		}
	}

	logger.DebugContext(ctx, "Derived metrics computed",
		slog.Float64("monthly_interest", rates.MonthlyInterest),
		slog.Float64("monthly_funding_cost", rates.MonthlyFundingCost))

	return true, nil
}
