package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	apperrors "github.com/DieMov/PYTHOM/internal/errors"
	"github.com/DieMov/PYTHOM/internal/frame"
)

// AggregateStats summarizes a group-by
type AggregateStats struct {
	Groups int
	// ExcludedRows counts records with a missing key.
	ExcludedRows int
	// Summed lists the balance columns that were present and summed.
	Summed []string
}

type groupKey [3]string

func (k groupKey) less(o groupKey) bool {
	for i := range k {
		if c := strings.Compare(k[i], o[i]); c != 0 {
			return c < 0
		}
	}
	return false
}

// Aggregate sums the balance columns per (Región, Zona, Sucursal), skipping
// records with a missing key. Missing balances count as nothing, so a group
// with no values sums to 0. Rows come out sorted by key.
func Aggregate(ctx context.Context, t *frame.Table, logger *slog.Logger) (*frame.Table, AggregateStats, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var stats AggregateStats
	if missing := t.Missing(KeyColumns...); len(missing) > 0 {
		return nil, stats, apperrors.NewMissingColumnError(missing)
	}

	for _, c := range SumColumns() {
		if t.Has(c) {
			stats.Summed = append(stats.Summed, c)
		}
	}

	keyed, excluded, err := withFullKey(t)
	if err != nil {
		return nil, stats, err
	}
	stats.ExcludedRows = excluded

	keyVals := make([][]string, len(KeyColumns))
	for i, k := range KeyColumns {
		keyVals[i], _ = keyed.Strings(k)
	}
	values := make([][]float64, len(stats.Summed))
	for i, c := range stats.Summed {
		values[i] = keyed.Floats(c)
	}

	// gota's Series.Sum propagates NaN; missing balances must add nothing.
	index := make(map[groupKey]int)
	var keys []groupKey
	var sums [][]float64
	for r := 0; r < keyed.Len(); r++ {
		var key groupKey
		for i := range KeyColumns {
			key[i] = keyVals[i][r]
		}

		g, ok := index[key]
		if !ok {
			g = len(keys)
			index[key] = g
			keys = append(keys, key)
			sums = append(sums, make([]float64, len(stats.Summed)))
		}
		for c, col := range values {
			if v := col[r]; !math.IsNaN(v) {
				sums[g][c] += v
			}
		}
	}

	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return keys[order[a]].less(keys[order[b]]) })

	cols := make([]frame.Column, 0, len(KeyColumns)+len(stats.Summed))
	for i, k := range KeyColumns {
		vals := make([]string, len(order))
		for j, g := range order {
			vals[j] = keys[g][i]
		}
		cols = append(cols, frame.StringColumn(k, vals, nil))
	}
	for c, name := range stats.Summed {
		vals := make([]float64, len(order))
		for j, g := range order {
			vals[j] = sums[g][c]
		}
		cols = append(cols, frame.FloatColumn(name, vals))
	}

	out, err := frame.New(cols...)
	if err != nil {
		return nil, stats, err
	}
	stats.Groups = out.Len()

	if stats.ExcludedRows > 0 {
		logger.WarnContext(ctx, "Records without full hierarchy excluded from aggregation",
			slog.Int("records", stats.ExcludedRows))
	}
	logger.InfoContext(ctx, "Aggregated by branch",
		slog.Int("groups", stats.Groups),
		slog.Int("summed_columns", len(stats.Summed)))

	return out, stats, nil
}

// withFullKey keeps the records whose Región, Zona and Sucursal are all
// present and reports how many were left out
func withFullKey(t *frame.Table) (*frame.Table, int, error) {
	missing := make([]bool, t.Len())
	for _, k := range KeyColumns {
		_, na := t.Strings(k)
		for r, isNA := range na {
			missing[r] = missing[r] || isNA
		}
	}
	keep := make([]int, 0, t.Len())
	for r, m := range missing {
		if !m {
			keep = append(keep, r)
		}
	}
	kept, err := t.Take(keep)
	if err != nil {
		return nil, 0, err
	}
	return kept, t.Len() - len(keep), nil
}

// AddRatios appends ICV and ICV T-01..T-12 to an aggregate table, each the
// overdue sum over the outstanding sum of its period. Periods missing either
// sum are skipped. It returns the names of the added columns.
func AddRatios(agg *frame.Table) ([]string, error) {
	var added []string
	for _, p := range Periods() {
		num, den := Overdue(p), Outstanding(p)
		if !agg.HasAll(num, den) {
			continue
		}
		name := ICV(p)
		if err := agg.SetFloats(name, SafeDiv(agg.Floats(num), agg.Floats(den))); err != nil {
			return added, err
		}
		added = append(added, name)
	}
	return added, nil
}
