// Package shared holds helpers used across the sucursales packages that do
// not belong to any single pipeline stage.
//
// The testutil subpackage provides:
//
//	- BufferedSlogHandler, a slog handler capturing records for assertions
//	- WriteWorkbook and ReadWorkbook, small excelize fixtures
//
// Production code must not import testutil.
package shared
