package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/DieMov/PYTHOM/internal/frame"
)

// PairStats counts the rate cells changed for one period
type PairStats struct {
	Period string
	// Filled counts rates set to 0 because capital was disbursed.
	Filled int
	// Cleared counts rates set to missing because nothing was disbursed.
	Cleared int
}

// ReconcileStats summarizes the capital/FPD reconciliation
type ReconcileStats struct {
	Pairs []PairStats
	// Skipped lists periods where either column is absent.
	Skipped []string
}

// Reconcile aligns each "% FPD <p>" column with its "Capital Dispersado <p>"
// column, in place. Rate columns are coerced to numbers first. Then, with
// missing capital read as 0:
//
//	capital != 0 and rate missing     -> rate = 0
//	capital == 0 and rate missing or 0 -> rate = missing
//
// Both conditions are evaluated on the values before either rule applies.
func Reconcile(ctx context.Context, t *frame.Table, logger *slog.Logger) (ReconcileStats, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var stats ReconcileStats
	periods := Periods()

	for _, p := range periods {
		name := FPD(p)
		if !t.Has(name) {
			continue
		}
		if err := t.SetFloats(name, t.Floats(name)); err != nil {
			return stats, fmt.Errorf("coerce %s: %w", name, err)
		}
	}

	for _, p := range periods {
		capCol, rateCol := Capital(p), FPD(p)
		if !t.HasAll(capCol, rateCol) {
			stats.Skipped = append(stats.Skipped, p)
			continue
		}

		capital := t.Floats(capCol)
		rate := t.Floats(rateCol)
		ps := PairStats{Period: p}

		for i := range rate {
			c := frame.FillNaN(capital[i], 0)
			switch {
			case c != 0 && math.IsNaN(rate[i]):
				rate[i] = 0
				ps.Filled++
			case c == 0 && frame.FillNaN(rate[i], 0) == 0:
				if !math.IsNaN(rate[i]) {
					ps.Cleared++
				}
				rate[i] = math.NaN()
			}
		}

		if err := t.SetFloats(rateCol, rate); err != nil {
			return stats, fmt.Errorf("reconcile %s: %w", rateCol, err)
		}
		stats.Pairs = append(stats.Pairs, ps)
	}

	logger.DebugContext(ctx, "Capital and FPD reconciled",
		slog.Int("pairs", len(stats.Pairs)),
		slog.Any("skipped_periods", stats.Skipped))

	return stats, nil
}
