package dataprocessing

import "fmt"

// Period labels. Actual is the current month, T-01..T-12 the trailing months.
const (
	PeriodActual  = "Actual"
	TrailingCount = 12
)

// Column names used by the pipeline
const (
	ColumnSeller    = "Vendedor"
	ColumnRegion    = "Región"
	ColumnZone      = "Zona"
	ColumnBranch    = "Sucursal"
	ColumnVigente   = "SaldoInsolutoVigente"
	ColumnInterest  = "InteresGenerado"
	ColumnDebtCost  = "ServiciodeDeuda"
	ColumnICV       = "ICV"
	ColumnFPDActual = "% FPD Actual"
	// ColumnFPDActualAlt is the unspaced spelling found in some exports.
	ColumnFPDActualAlt = "%FPD Actual"
)

// KeyColumns are the grouping keys, in output order
var KeyColumns = []string{ColumnRegion, ColumnZone, ColumnBranch}

// Trailing returns the label of the i-th trailing month, e.g. T-03
func Trailing(i int) string {
	return fmt.Sprintf("T-%02d", i)
}

// Periods returns Actual followed by T-01..T-12
func Periods() []string {
	out := make([]string, 0, TrailingCount+1)
	out = append(out, PeriodActual)
	for i := 1; i <= TrailingCount; i++ {
		out = append(out, Trailing(i))
	}
	return out
}

// Outstanding returns the outstanding balance column for a period
func Outstanding(period string) string { return "Saldo Insoluto " + period }

// Overdue returns the overdue balance column for a period
func Overdue(period string) string { return "Saldo Insoluto Vencido " + period }

// Capital returns the disbursed capital column for a period
func Capital(period string) string { return "Capital Dispersado " + period }

// FPD returns the first-payment-default rate column for a period
func FPD(period string) string { return "% FPD " + period }

// ICV returns the delinquency ratio column for a period
func ICV(period string) string {
	if period == PeriodActual {
		return ColumnICV
	}
	return ColumnICV + " " + period
}

// FilterColumns are the balances checked by the degenerate-row filter
func FilterColumns() []string {
	cols := []string{Outstanding(PeriodActual)}
	for i := 1; i <= 6; i++ {
		cols = append(cols, Outstanding(Trailing(i)))
	}
	return append(cols, Outstanding(Trailing(12)))
}

// SumColumns are the balances summed by the aggregator, in output order
func SumColumns() []string {
	cols := []string{Outstanding(PeriodActual), Overdue(PeriodActual)}
	for i := 1; i <= TrailingCount; i++ {
		cols = append(cols, Outstanding(Trailing(i)))
	}
	for i := 1; i <= TrailingCount; i++ {
		cols = append(cols, Overdue(Trailing(i)))
	}
	return cols
}

// isNumericFamily reports whether a column belongs to a balance family and is
// always read as a number.
func isNumericFamily(name string) bool {
	for _, p := range Periods() {
		switch name {
		case Outstanding(p), Overdue(p), Capital(p), FPD(p):
			return true
		}
	}
	return name == ColumnFPDActualAlt
}

// isTextColumn reports whether a column is always read as text
func isTextColumn(name string) bool {
	switch name {
	case ColumnSeller, ColumnRegion, ColumnZone, ColumnBranch:
		return true
	}
	return false
}
