package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/DieMov/PYTHOM/internal/frame"
	"github.com/DieMov/PYTHOM/internal/hierarchy"
	"github.com/DieMov/PYTHOM/internal/infrastructure"
)

// Stage names, used for spans and the stage duration metric
const (
	StageLoad      = "load"
	StageFilter    = "filter"
	StageReconcile = "reconcile"
	StageJoin      = "join"
	StageDerive    = "derive"
	StageAggregate = "aggregate"
)

// Options configure a pipeline. Zero values are valid.
type Options struct {
	Rates   Rates
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *infrastructure.RunMetrics
}

// Result carries every product of a run
type Result struct {
	Source string
	Loaded int

	Filter    *FilterResult
	Reconcile ReconcileStats
	Join      hierarchy.JoinStats
	Derived   bool

	// Enriched is the filtered, reconciled, mapped and derived record table.
	Enriched *frame.Table
	// Aggregate has one row per branch with summed balances and ICV ratios.
	Aggregate      *frame.Table
	AggregateStats AggregateStats
	Ratios         []string
}

// Pipeline runs load, filter, reconcile, join, derive and aggregate in order
type Pipeline struct {
	loader  *Loader
	mapper  *hierarchy.Mapper
	rates   Rates
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.RunMetrics
}

// NewPipeline creates a pipeline joining records against table
func NewPipeline(table *hierarchy.Table, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "pipeline")

	return &Pipeline{
		loader:  NewLoader(logger),
		mapper:  hierarchy.NewMapper(table, logger),
		rates:   opts.Rates,
		logger:  logger,
		tracer:  opts.Tracer,
		metrics: opts.Metrics,
	}
}

// Run loads the workbook at path and processes it
func (p *Pipeline) Run(ctx context.Context, path string) (*Result, error) {
	var table *frame.Table
	err := p.stage(ctx, StageLoad, func(ctx context.Context) error {
		var err error
		table, err = p.loader.Load(ctx, path)
		if err != nil {
			return err
		}
		infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
			"rows":    table.Len(),
			"columns": len(table.Names()),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	res, err := p.Process(ctx, table)
	if err != nil {
		return nil, err
	}
	res.Source = path
	return res, nil
}

// Process runs every stage after loading on an in-memory table
func (p *Pipeline) Process(ctx context.Context, table *frame.Table) (*Result, error) {
	res := &Result{Loaded: table.Len()}
	if p.metrics != nil {
		p.metrics.RowsLoaded.Set(float64(res.Loaded))
	}

	err := p.stage(ctx, StageFilter, func(ctx context.Context) error {
		var err error
		res.Filter, err = FilterDegenerate(ctx, table, p.logger)
		if err != nil {
			return err
		}
		infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
			"rows.dropped": res.Filter.Dropped,
			"rows.kept":    res.Filter.Table.Len(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	records := res.Filter.Table
	if p.metrics != nil {
		p.metrics.RowsDropped.Set(float64(res.Filter.Dropped))
	}

	err = p.stage(ctx, StageReconcile, func(ctx context.Context) error {
		var err error
		res.Reconcile, err = Reconcile(ctx, records, p.logger)
		if err != nil {
			return err
		}
		infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
			"pairs": len(res.Reconcile.Pairs),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if p.metrics != nil {
		for _, ps := range res.Reconcile.Pairs {
			p.metrics.RowsReconciled.WithLabelValues(ps.Period).Set(float64(ps.Filled + ps.Cleared))
		}
	}

	err = p.stage(ctx, StageJoin, func(ctx context.Context) error {
		var err error
		records, res.Join, err = p.mapper.Join(ctx, records)
		if err != nil {
			return err
		}
		infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
			"branches.unmatched": res.Join.Unmatched,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if p.metrics != nil {
		p.metrics.BranchesUnmapped.Set(float64(res.Join.Unmatched))
	}

	err = p.stage(ctx, StageDerive, func(ctx context.Context) error {
		var err error
		res.Derived, err = Derive(ctx, records, p.rates, p.logger)
		if err != nil {
			return err
		}
		infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
			"derived": res.Derived,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Enriched = records

	err = p.stage(ctx, StageAggregate, func(ctx context.Context) error {
		var err error
		res.Aggregate, res.AggregateStats, err = Aggregate(ctx, records, p.logger)
		if err != nil {
			return err
		}
		res.Ratios, err = AddRatios(res.Aggregate)
		if err != nil {
			return err
		}
		infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
			"groups":        res.AggregateStats.Groups,
			"rows.excluded": res.AggregateStats.ExcludedRows,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if p.metrics != nil {
		p.metrics.Groups.Set(float64(res.AggregateStats.Groups))
	}

	return res, nil
}

// stage runs fn inside a span and records its duration
func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	ctx, span := infrastructure.StartStage(ctx, p.tracer, name)
	defer span.End()

	err := fn(ctx)
	p.metrics.ObserveStage(name, start)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		p.logger.ErrorContext(ctx, "Stage failed",
			slog.String("stage", name),
			slog.String("error", err.Error()))
		return err
	}

	span.SetAttributes(attribute.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}
