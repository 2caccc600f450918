package dataprocessing

import (
	"context"
	"log/slog"

	apperrors "github.com/DieMov/PYTHOM/internal/errors"
	"github.com/DieMov/PYTHOM/internal/frame"
)

// naDisplay stands for a missing seller in the dropped list
const naDisplay = "NaN"

// FilterResult describes the outcome of the degenerate-row filter
type FilterResult struct {
	Table   *frame.Table
	Dropped int
	// DroppedSellers holds the Vendedor of each dropped record, in row order.
	DroppedSellers []string
	// HasSellerColumn is false when the input has no Vendedor column.
	HasSellerColumn bool
}

// FilterDegenerate removes records whose filter balances are all missing or
// zero. Every filter column must exist; otherwise a MISSING_COLUMN error is
// returned and nothing is filtered.
func FilterDegenerate(ctx context.Context, t *frame.Table, logger *slog.Logger) (*FilterResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	required := FilterColumns()
	if missing := t.Missing(required...); len(missing) > 0 {
		return nil, apperrors.NewMissingColumnError(missing)
	}

	values := make([][]float64, len(required))
	for i, name := range required {
		values[i] = t.Floats(name)
	}

	keep := make([]int, 0, t.Len())
	var dropped []int
	for r := 0; r < t.Len(); r++ {
		degenerate := true
		for _, col := range values {
			if !frame.MissingOrZero(col[r]) {
				degenerate = false
				break
			}
		}
		if degenerate {
			dropped = append(dropped, r)
		} else {
			keep = append(keep, r)
		}
	}

	res := &FilterResult{
		Dropped:         len(dropped),
		HasSellerColumn: t.Has(ColumnSeller),
	}
	if res.HasSellerColumn {
		sellers, na := t.Strings(ColumnSeller)
		res.DroppedSellers = make([]string, 0, len(dropped))
		for _, r := range dropped {
			if na[r] {
				res.DroppedSellers = append(res.DroppedSellers, naDisplay)
				continue
			}
			res.DroppedSellers = append(res.DroppedSellers, sellers[r])
		}
	} else {
		logger.WarnContext(ctx, "Column not found, dropped sellers not listed",
			slog.String("column", ColumnSeller))
	}

	filtered, err := t.Take(keep)
	if err != nil {
		return nil, err
	}
	res.Table = filtered

	logger.InfoContext(ctx, "Degenerate rows removed",
		slog.Int("dropped", res.Dropped),
		slog.Int("remaining", filtered.Len()))

	return res, nil
}
