// Package dataprocessing turns the branch portfolio workbook into enriched
// records and per-branch aggregates.
//
// # Stages
//
// A Pipeline runs the stages in a fixed order, each inside a trace span:
//
//  1. Load: the first sheet of the workbook becomes a frame.Table
//  2. Filter: records whose filter balances are all missing or zero are dropped
//  3. Reconcile: "% FPD <p>" rates are aligned with "Capital Dispersado <p>"
//  4. Join: Región and Zona are attached from the hierarchy table
//  5. Derive: SaldoInsolutoVigente, InteresGenerado and ServiciodeDeuda
//  6. Aggregate: balances summed per (Región, Zona, Sucursal), then ICV ratios
//
// Each stage is also exported on its own so it can be tested and reused:
//
//	res, err := dataprocessing.FilterDegenerate(ctx, table, logger)
//	stats, err := dataprocessing.Reconcile(ctx, res.Table, logger)
//
// # Missing Data
//
// Float columns use NaN for missing values. Cells that do not parse as a
// number become NaN rather than an error. Ratios are computed with SafeDiv,
// which yields NaN for zero or missing denominators.
//
// # Errors
//
// Missing filter columns return a MISSING_COLUMN AppError and an absent
// workbook a MISSING_INPUT one. Optional columns that are absent only skip
// their step with a diagnostic.
package dataprocessing
