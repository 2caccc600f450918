package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/DieMov/PYTHOM/internal/errors"
	"github.com/DieMov/PYTHOM/internal/frame"
)

// DefaultSheet is the sheet name of exported workbooks
const DefaultSheet = "Sheet1"

// WriteOptions configures workbook export
type WriteOptions struct {
	// FrontColumns are moved to the start, in order, when present.
	FrontColumns []string
	// BoldHeader styles the header row.
	BoldHeader bool
}

// XLSXWriter exports tables as single-sheet workbooks
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates a new workbook writer
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger}
}

// Write saves t to path: header row first, numbers as numeric cells and
// missing or non-finite values as blank cells. Failures are STORAGE errors.
func (w *XLSXWriter) Write(ctx context.Context, path string, t *frame.Table, options WriteOptions) error {
	ordered, err := t.Reorder(options.FrontColumns...)
	if err != nil {
		return apperrors.NewStorageError("failed to order columns", err)
	}

	w.logger.InfoContext(ctx, "Writing workbook",
		slog.String("file_path", path),
		slog.Int("record_count", ordered.Len()),
		slog.Int("column_count", len(ordered.Names())))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err).WithContext("path", path)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			w.logger.WarnContext(ctx, "Failed to close workbook", slog.String("error", err.Error()))
		}
	}()

	if err := writeSheet(f, ordered, options); err != nil {
		return apperrors.NewStorageError("failed to write sheet", err).WithContext("path", path)
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save workbook", err).WithContext("path", path)
	}

	w.logger.InfoContext(ctx, "Workbook written successfully",
		slog.String("file_path", path),
		slog.Int("records_written", ordered.Len()))
	return nil
}

func writeSheet(f *excelize.File, t *frame.Table, options WriteOptions) error {
	sw, err := f.NewStreamWriter(DefaultSheet)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	headerStyle := 0
	if options.BoldHeader {
		headerStyle, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("create header style: %w", err)
		}
	}

	names := t.Names()
	header := make([]interface{}, len(names))
	for i, name := range names {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	floats := make(map[string][]float64)
	texts := make(map[string][]string)
	missing := make(map[string][]bool)
	for _, name := range names {
		if t.Kind(name) == frame.KindFloat {
			floats[name] = t.Floats(name)
			continue
		}
		texts[name], missing[name] = t.Strings(name)
	}

	row := make([]interface{}, len(names))
	for r := 0; r < t.Len(); r++ {
		for c, name := range names {
			row[c] = cellValue(r, floats[name], texts[name], missing[name])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", r+2, err)
		}
	}

	return sw.Flush()
}

// cellValue returns nil for cells that must stay blank
func cellValue(r int, floats []float64, texts []string, missing []bool) interface{} {
	if floats != nil {
		v := floats[r]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	}
	if missing[r] {
		return nil
	}
	return texts[r]
}
