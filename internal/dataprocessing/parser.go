package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/DieMov/PYTHOM/internal/errors"
	"github.com/DieMov/PYTHOM/internal/frame"
)

// Loader reads the first sheet of an xlsx workbook into a table
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a workbook loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads the workbook at path. Row 1 is the header. Balance columns and
// columns whose every non-empty cell is a number become float columns, with
// NaN for empty or non-numeric cells; the rest stay text.
func (l *Loader) Load(ctx context.Context, path string) (*frame.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.NewMissingInputError(path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook has no sheets", nil).WithContext("path", path)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err).
			WithContext("path", path)
	}

	table, err := buildTable(rows)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to build table", err).WithContext("path", path)
	}

	l.logger.InfoContext(ctx, "Workbook loaded",
		slog.String("file", path),
		slog.String("sheet", sheet),
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(table.Names())))

	return table, nil
}

// buildTable turns raw sheet rows into typed columns
func buildTable(rows [][]string) (*frame.Table, error) {
	if len(rows) == 0 {
		return frame.New()
	}

	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}

	headers := headerNames(rows[0], width)
	body := rows[1:]

	cols := make([]frame.Column, 0, width)
	for c, name := range headers {
		cells := make([]string, len(body))
		for r, row := range body {
			if c < len(row) {
				cells[r] = row[c]
			}
		}
		cols = append(cols, typedColumn(name, cells))
	}

	return frame.New(cols...)
}

// headerNames disambiguates the header row, keeping the text as written
// (surrounding spaces included). Empty headers become "Unnamed: <index>" and
// repeated names get ".1", ".2", ... suffixes.
func headerNames(row []string, width int) []string {
	names := make([]string, width)
	used := make(map[string]bool, width)
	counts := make(map[string]int, width)

	for i := 0; i < width; i++ {
		name := ""
		if i < len(row) {
			name = row[i]
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}

		if used[name] {
			base := name
			for {
				counts[base]++
				name = fmt.Sprintf("%s.%d", base, counts[base])
				if !used[name] {
					break
				}
			}
		}
		used[name] = true
		names[i] = name
	}

	return names
}

func typedColumn(name string, cells []string) frame.Column {
	if isTextColumn(name) || !(isNumericFamily(name) || allNumeric(cells)) {
		na := make([]bool, len(cells))
		for i, c := range cells {
			na[i] = strings.TrimSpace(c) == ""
		}
		return frame.StringColumn(name, cells, na)
	}

	values := make([]float64, len(cells))
	for i, c := range cells {
		values[i] = frame.ParseFloat(c)
	}
	return frame.FloatColumn(name, values)
}

// allNumeric reports whether every non-empty cell parses as a number. A
// column with no values counts as numeric.
func allNumeric(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) == "" {
			continue
		}
		if !frame.IsNumeric(c) {
			return false
		}
	}
	return true
}
