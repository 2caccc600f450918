package report

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/DieMov/PYTHOM/internal/dataprocessing"
	"github.com/DieMov/PYTHOM/internal/frame"
)

// missingCell is printed for NA cells
const missingCell = "NaN"

// Options controls the console summary
type Options struct {
	TopN        int
	PreviewRows int
}

// Reporter prints the human-facing run summary. Structured diagnostics go to
// the logger; the summary itself goes to out.
type Reporter struct {
	out     io.Writer
	printer *message.Printer
	logger  *slog.Logger
}

// NewReporter creates a reporter writing to out
func NewReporter(out io.Writer, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{
		out:     out,
		printer: message.NewPrinter(language.English),
		logger:  logger,
	}
}

// Summary prints every section for a completed pipeline run, in order
func (r *Reporter) Summary(res *dataprocessing.Result, options Options) {
	r.Loaded(res.Source, res.Loaded)
	if res.Filter != nil {
		r.FilterSummary(res.Filter)
	}
	r.Preview(res.Aggregate, options.PreviewRows)
	r.TopDebtService(res.Enriched, options.TopN)
	r.TotalOutstanding(res.Enriched)
}

// Loaded prints the dataset banner
func (r *Reporter) Loaded(path string, rows int) {
	r.printer.Fprintf(r.out, "Excel cargado: %s | Filas: %d\n", path, rows)
}

// FilterSummary prints the sellers of the dropped records and their count
func (r *Reporter) FilterSummary(res *dataprocessing.FilterResult) {
	fmt.Fprintln(r.out, "\nVendedores con todas las columnas en 0 o nulas:")
	if !res.HasSellerColumn {
		fmt.Fprintf(r.out, "(No existe columna '%s' en tu archivo.)\n", dataprocessing.ColumnSeller)
	} else if len(res.DroppedSellers) == 0 {
		fmt.Fprintln(r.out, "(ninguno)")
	} else {
		for _, seller := range res.DroppedSellers {
			fmt.Fprintln(r.out, seller)
		}
	}
	fmt.Fprintf(r.out, "Se limpiaron %d filas con todos los saldos 0/NaN.\n", res.Dropped)
}

// previewColumns are shown, when present, after the branch keys
var previewColumns = []string{
	dataprocessing.Outstanding(dataprocessing.PeriodActual),
	dataprocessing.Overdue(dataprocessing.PeriodActual),
	dataprocessing.ColumnICV,
}

// Preview prints the first rows of the branch aggregate
func (r *Reporter) Preview(agg *frame.Table, rows int) {
	if agg == nil || rows <= 0 {
		return
	}
	fmt.Fprintln(r.out, "\nVista rápida por sucursal:")
	if agg.Len() == 0 {
		fmt.Fprintln(r.out, "(sin sucursales agregadas)")
		return
	}

	var columns []string
	candidates := append(append([]string{}, dataprocessing.KeyColumns...), previewColumns...)
	for _, name := range candidates {
		if agg.Has(name) {
			columns = append(columns, name)
		}
	}

	n := rows
	if agg.Len() < n {
		n = agg.Len()
	}
	index := make([]int, n)
	for i := range index {
		index[i] = i
	}
	r.table(agg, columns, index)
}

// TopDebtService prints the n records with the largest ServiciodeDeuda
func (r *Reporter) TopDebtService(t *frame.Table, n int) {
	if t == nil || !t.Has(dataprocessing.ColumnDebtCost) {
		fmt.Fprintf(r.out, "\n(No existe columna '%s')\n", dataprocessing.ColumnDebtCost)
		r.logger.Warn("Top debt service skipped",
			slog.String("missing_column", dataprocessing.ColumnDebtCost))
		return
	}
	fmt.Fprintf(r.out, "\nTOP %d por Servicio de Deuda:\n", n)
	columns := []string{
		dataprocessing.ColumnBranch,
		dataprocessing.ColumnRegion,
		dataprocessing.ColumnZone,
		dataprocessing.ColumnDebtCost,
	}
	r.table(t, columns, dataprocessing.TopRows(t, dataprocessing.ColumnDebtCost, n))
}

// TotalOutstanding prints and returns the sum of Saldo Insoluto Actual.
// ok is false when the column is absent.
func (r *Reporter) TotalOutstanding(t *frame.Table) (total decimal.Decimal, ok bool) {
	column := dataprocessing.Outstanding(dataprocessing.PeriodActual)
	if t == nil || !t.Has(column) {
		return decimal.Zero, false
	}
	total = SumDecimal(t.Floats(column))
	fmt.Fprintf(r.out, "\nSuma total '%s': %s\n\n", column, r.Money(total))
	return total, true
}

// FiguresSaved notes where the static figures went; nothing is printed for zero
func (r *Reporter) FiguresSaved(dir string, n int) {
	if n == 0 {
		return
	}
	fmt.Fprintf(r.out, "\nPNG guardados en %s (%d)\n", dir, n)
}

// Exported prints the export confirmation
func (r *Reporter) Exported(path string) {
	fmt.Fprintf(r.out, "\nExportado: %s\n", path)
}

// Money formats v as a dollar amount with thousands separators and two
// decimals, rounding half away from zero without leaving decimal arithmetic.
func (r *Reporter) Money(v decimal.Decimal) string {
	rounded := v.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	abs := rounded.Abs()
	cents := abs.StringFixed(2)
	return "$" + sign + r.printer.Sprintf("%d", abs.IntPart()) + cents[len(cents)-3:]
}

// SumDecimal adds the finite values exactly; missing values contribute nothing
func SumDecimal(values []float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total
}

// table prints the given rows and columns aligned, with the row index first.
// Absent columns print as missing.
func (r *Reporter) table(t *frame.Table, columns []string, rows []int) {
	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(columns, "\t"))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, name := range columns {
			cells[i] = r.cell(t, name, row)
		}
		fmt.Fprintf(tw, "%d\t%s\t\n", row, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		r.logger.Warn("Failed to write report table", slog.String("error", err.Error()))
	}
}

func (r *Reporter) cell(t *frame.Table, name string, row int) string {
	if !t.Has(name) {
		return missingCell
	}
	v, ok := t.Value(name, row)
	if !ok {
		return missingCell
	}
	if f, isFloat := v.(float64); isFloat {
		return r.printer.Sprintf("%v", number.Decimal(f, number.Scale(2)))
	}
	return fmt.Sprint(v)
}
