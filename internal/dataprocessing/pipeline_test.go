package dataprocessing

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "github.com/DieMov/PYTHOM/internal/errors"
	"github.com/DieMov/PYTHOM/internal/hierarchy"
	"github.com/DieMov/PYTHOM/internal/infrastructure"
	shared "github.com/DieMov/PYTHOM/internal/shared/testutil"
)

func pipelineHierarchy() *hierarchy.Table {
	return hierarchy.NewTable([]hierarchy.Entry{
		{Region: "Núcleo Uno", Zone: "Conexión Naucalpan", Branch: "Satélite 1"},
		{Region: "Red Sureste", Zone: "Zona Selva Alta", Branch: "Villa Norte"},
	})
}

// portfolioWorkbook writes four records: two in Satélite 1, one in an
// unknown branch and one degenerate record.
func portfolioWorkbook(t *testing.T) string {
	header := []string{"Vendedor", "Sucursal"}
	header = append(header, FilterColumns()...)
	header = append(header, Overdue(PeriodActual), Capital(PeriodActual), FPD(PeriodActual))

	row := func(seller, branch string, outstanding, overdue, capital interface{}, fpd interface{}) []interface{} {
		r := []interface{}{seller, branch, outstanding}
		for i := 1; i < len(FilterColumns()); i++ {
			r = append(r, 0)
		}
		return append(r, overdue, capital, fpd)
	}

	return shared.WriteWorkbook(t, "cartera.xlsx", header, [][]interface{}{
		row("V1", "Satélite 1", 1000, 200, 500, nil),
		row("V2", "Satélite 1", 500, 100, 0, 0),
		row("V3", "Sucursal Nueva", 300, 0, 100, 0.1),
		row("V4", "Villa Norte", 0, 0, 0, nil),
	})
}

func TestPipeline_Run(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	metrics := infrastructure.NewRunMetrics()
	logger, _ := shared.NewTestLogger(t)

	p := NewPipeline(pipelineHierarchy(), Options{
		Rates:   defaultRates,
		Logger:  logger,
		Tracer:  tp.Tracer("test"),
		Metrics: metrics,
	})

	path := portfolioWorkbook(t)
	res, err := p.Run(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, res.Source)
	assert.Equal(t, 4, res.Loaded)
	assert.Equal(t, 1, res.Filter.Dropped)
	assert.Equal(t, []string{"V4"}, res.Filter.DroppedSellers)
	assert.True(t, res.Derived)

	// Enriched table: hierarchy columns first, derived columns last
	names := res.Enriched.Names()
	assert.Equal(t, []string{ColumnRegion, ColumnZone, ColumnBranch, ColumnSeller}, names[:4])
	assert.Equal(t, []string{ColumnVigente, ColumnInterest, ColumnDebtCost}, names[len(names)-3:])
	assert.Equal(t, 3, res.Enriched.Len())

	// Unknown branch is kept with missing region
	_, regionNA := res.Enriched.Strings(ColumnRegion)
	assert.Equal(t, []bool{false, false, true}, regionNA)
	assert.Equal(t, []string{"Sucursal Nueva"}, res.Join.UnknownBranches)

	// Reconciliation: 500/missing -> 0, 0/0 -> missing, 100/0.1 untouched
	fpd := res.Enriched.Floats(FPD(PeriodActual))
	assert.Equal(t, 0.0, fpd[0])
	assert.True(t, math.IsNaN(fpd[1]))
	assert.Equal(t, 0.1, fpd[2])

	assert.Equal(t, []float64{800, 400, 300}, res.Enriched.Floats(ColumnVigente))

	// Aggregate: only the mapped branch forms a group
	require.Equal(t, 1, res.Aggregate.Len())
	assert.Equal(t, 1, res.AggregateStats.ExcludedRows)
	assert.Equal(t, []float64{1500}, res.Aggregate.Floats(Outstanding(PeriodActual)))
	assert.Equal(t, []float64{300}, res.Aggregate.Floats(Overdue(PeriodActual)))
	assert.Equal(t, []float64{0.2}, res.Aggregate.Floats(ColumnICV))
	assert.Contains(t, res.Ratios, ColumnICV)

	// Metrics
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.RowsLoaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RowsDropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.BranchesUnmapped))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Groups))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.RowsReconciled.WithLabelValues(PeriodActual)))

	// One span per stage, in order
	var spans []string
	for _, s := range recorder.Ended() {
		spans = append(spans, s.Name())
	}
	assert.Equal(t, []string{StageLoad, StageFilter, StageReconcile, StageJoin, StageDerive, StageAggregate}, spans)

	// Stage results are carried on the spans
	attrs := func(span sdktrace.ReadOnlySpan) map[string]attribute.Value {
		out := make(map[string]attribute.Value)
		for _, kv := range span.Attributes() {
			out[string(kv.Key)] = kv.Value
		}
		return out
	}
	ended := recorder.Ended()
	assert.Equal(t, int64(4), attrs(ended[0])["rows"].AsInt64())
	assert.Equal(t, int64(1), attrs(ended[1])["rows.dropped"].AsInt64())
	assert.Equal(t, int64(3), attrs(ended[1])["rows.kept"].AsInt64())
	assert.Equal(t, int64(1), attrs(ended[3])["branches.unmatched"].AsInt64())
	assert.True(t, attrs(ended[4])["derived"].AsBool())
	assert.Equal(t, int64(1), attrs(ended[5])["groups"].AsInt64())
}

func TestPipeline_Run_MissingInput(t *testing.T) {
	p := NewPipeline(pipelineHierarchy(), Options{Rates: defaultRates})

	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "absent.xlsx"))

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingInput))
}

func TestPipeline_Run_MissingFilterColumn(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	path := shared.WriteWorkbook(t, "in.xlsx",
		[]string{"Sucursal", "Saldo Insoluto Actual"},
		[][]interface{}{{"Satélite 1", 10}})

	p := NewPipeline(pipelineHierarchy(), Options{Rates: defaultRates, Tracer: tp.Tracer("test")})
	res, err := p.Run(context.Background(), path)

	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingColumn))

	ended := recorder.Ended()
	require.Len(t, ended, 2, "stops at the filter stage")
	assert.Equal(t, StageFilter, ended[1].Name())
	assert.NotEmpty(t, ended[1].Events(), "error recorded on the span")
}

func TestPipeline_Run_HeaderWithTrailingSpace(t *testing.T) {
	header := []string{"Sucursal"}
	for _, c := range FilterColumns() {
		if c == Outstanding(PeriodActual) {
			c += " "
		}
		header = append(header, c)
	}
	row := []interface{}{"Satélite 1"}
	for range FilterColumns() {
		row = append(row, 10)
	}
	path := shared.WriteWorkbook(t, "in.xlsx", header, [][]interface{}{row})

	res, err := NewPipeline(pipelineHierarchy(), Options{Rates: defaultRates}).Run(context.Background(), path)

	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingColumn))
	assert.Contains(t, err.Error(), `"Saldo Insoluto Actual"`)
}
