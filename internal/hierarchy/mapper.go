package hierarchy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DieMov/PYTHOM/internal/frame"
)

// Column names written by the join
const (
	RegionColumn = "Región"
	ZoneColumn   = "Zona"
	BranchColumn = "Sucursal"
)

// JoinStats summarizes a join
type JoinStats struct {
	Matched   int
	Unmatched int
	// UnknownBranches lists distinct unmatched branch names in first-seen order.
	UnknownBranches []string
	// Skipped is true when the input has no branch column.
	Skipped bool
}

// Mapper attaches region and zone to records by branch name
type Mapper struct {
	table  *Table
	logger *slog.Logger
}

// NewMapper creates a mapper over table
func NewMapper(table *Table, logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{table: table, logger: logger}
}

// Join left-joins the branch table onto t. Unknown or missing branches get
// missing region and zone. The result starts with Región, Zona, Sucursal
// followed by the remaining columns in source order.
func (m *Mapper) Join(ctx context.Context, t *frame.Table) (*frame.Table, JoinStats, error) {
	var stats JoinStats

	for _, c := range m.table.Conflicts() {
		m.logger.WarnContext(ctx, "Duplicate branch in hierarchy, keeping first entry",
			slog.String("sucursal", c.Branch),
			slog.String("kept_zone", c.Kept.Zone),
			slog.String("dropped_zone", c.Dropped.Zone))
	}

	src := t
	if present := existing(t, RegionColumn, ZoneColumn); len(present) > 0 {
		m.logger.WarnContext(ctx, "Input already has hierarchy columns, replacing them",
			slog.Any("columns", present))
		dropped, err := t.Drop(present...)
		if err != nil {
			return nil, stats, fmt.Errorf("drop hierarchy columns: %w", err)
		}
		src = dropped
	}

	n := src.Len()
	var branches []string
	var branchNA []bool
	if src.Has(BranchColumn) {
		branches, branchNA = src.Strings(BranchColumn)
	} else {
		m.logger.WarnContext(ctx, "Column not found, records stay unmapped",
			slog.String("column", BranchColumn))
		stats.Skipped = true
		branches = make([]string, n)
		branchNA = allTrue(n)
	}

	regions := make([]string, n)
	zones := make([]string, n)
	regionNA := make([]bool, n)
	zoneNA := make([]bool, n)
	seen := make(map[string]bool)

	for i := 0; i < n; i++ {
		if branchNA[i] {
			regionNA[i], zoneNA[i] = true, true
			if !stats.Skipped {
				stats.Unmatched++
			}
			continue
		}
		e, ok := m.table.Lookup(branches[i])
		if !ok {
			regionNA[i], zoneNA[i] = true, true
			stats.Unmatched++
			if !seen[branches[i]] {
				seen[branches[i]] = true
				stats.UnknownBranches = append(stats.UnknownBranches, branches[i])
			}
			continue
		}
		regions[i], zones[i] = e.Region, e.Zone
		stats.Matched++
	}

	out, err := src.Reorder()
	if err != nil {
		return nil, stats, err
	}
	if stats.Skipped {
		if err := out.SetStrings(BranchColumn, branches, branchNA); err != nil {
			return nil, stats, err
		}
	}
	if err := out.SetStrings(RegionColumn, regions, regionNA); err != nil {
		return nil, stats, err
	}
	if err := out.SetStrings(ZoneColumn, zones, zoneNA); err != nil {
		return nil, stats, err
	}

	out, err = out.Reorder(RegionColumn, ZoneColumn, BranchColumn)
	if err != nil {
		return nil, stats, err
	}

	if len(stats.UnknownBranches) > 0 {
		m.logger.WarnContext(ctx, "Branches not found in hierarchy",
			slog.Int("records", stats.Unmatched),
			slog.Any("sucursales", stats.UnknownBranches))
	}
	m.logger.InfoContext(ctx, "Hierarchy joined",
		slog.Int("matched", stats.Matched),
		slog.Int("unmatched", stats.Unmatched))

	return out, stats, nil
}

func existing(t *frame.Table, names ...string) []string {
	var out []string
	for _, n := range names {
		if t.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

func allTrue(n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = true
	}
	return out
}
