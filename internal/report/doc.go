// Package report prints the console summary of a run: the loaded-rows
// banner, the degenerate-row diagnostic, a branch aggregate preview, the top
// records by debt service and the total outstanding balance.
//
// Amounts are summed with shopspring/decimal and formatted with
// golang.org/x/text thousands separators.
package report
