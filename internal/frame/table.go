package frame

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// naString is the literal gota stores as a missing string element.
const naString = "NaN"

// Kind identifies the storage type of a column.
type Kind int

const (
	// KindString columns hold text; missing cells are NA.
	KindString Kind = iota
	// KindFloat columns hold float64; missing cells are NaN.
	KindFloat
)

// String returns the kind name used in logs
func (k Kind) String() string {
	if k == KindFloat {
		return "float"
	}
	return "string"
}

// Table is an ordered column table backed by a gota DataFrame.
// Float columns use NaN for missing values, string columns use NA.
type Table struct {
	df dataframe.DataFrame
}

// Column is the input shape for building a table column by column
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Strings []string
	// NA marks missing string cells; nil means none are missing.
	NA []bool
}

// FloatColumn builds a float column
func FloatColumn(name string, values []float64) Column {
	return Column{Name: name, Kind: KindFloat, Floats: values}
}

// StringColumn builds a string column where na[i] marks a missing cell.
func StringColumn(name string, values []string, na []bool) Column {
	return Column{Name: name, Kind: KindString, Strings: values, NA: na}
}

// New builds a table from columns. All columns must have the same length and
// names must be unique.
func New(cols ...Column) (*Table, error) {
	seen := make(map[string]bool, len(cols))
	list := make([]series.Series, 0, len(cols))
	rows := -1
	for _, c := range cols {
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		seen[c.Name] = true

		s := c.series()
		if rows >= 0 && s.Len() != rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, s.Len(), rows)
		}
		rows = s.Len()
		list = append(list, s)
	}
	return fromSeries(list)
}

func fromSeries(list []series.Series) (*Table, error) {
	if len(list) == 0 {
		return &Table{}, nil
	}
	df := dataframe.New(list...)
	if df.Err != nil {
		return nil, fmt.Errorf("build dataframe: %w", df.Err)
	}
	return &Table{df: df}, nil
}

func (c Column) series() series.Series {
	if c.Kind == KindFloat {
		vals := make([]float64, len(c.Floats))
		copy(vals, c.Floats)
		return series.New(vals, series.Float, c.Name)
	}
	vals := make([]string, len(c.Strings))
	for i, v := range c.Strings {
		if i < len(c.NA) && c.NA[i] {
			vals[i] = naString
			continue
		}
		vals[i] = v
	}
	return series.New(vals, series.String, c.Name)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return t.df.Nrow()
}

// Names returns the column names in order
func (t *Table) Names() []string {
	return t.df.Names()
}

// Has reports whether the column exists
func (t *Table) Has(name string) bool {
	for _, n := range t.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// HasAll reports whether every named column exists
func (t *Table) HasAll(names ...string) bool {
	return len(t.Missing(names...)) == 0
}

// Missing returns the names that are not columns of the table, in input order
func (t *Table) Missing(names ...string) []string {
	var out []string
	for _, n := range names {
		if !t.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// Kind returns the storage kind of a column
func (t *Table) Kind(name string) Kind {
	if t.df.Col(name).Type() == series.Float {
		return KindFloat
	}
	return KindString
}

// Floats returns a copy of the column coerced to float64. Missing and
// non-numeric cells are NaN. It returns nil if the column does not exist.
func (t *Table) Floats(name string) []float64 {
	if !t.Has(name) {
		return nil
	}
	col := t.df.Col(name)
	if col.Type() == series.Float {
		return col.Float()
	}
	records := col.Records()
	out := make([]float64, len(records))
	for i, r := range records {
		if col.Elem(i).IsNA() {
			out[i] = math.NaN()
			continue
		}
		out[i] = ParseFloat(r)
	}
	return out
}

// Strings returns the column as text plus a missing mask. Missing cells are
// returned as empty strings. It returns nil slices if the column does not exist.
func (t *Table) Strings(name string) ([]string, []bool) {
	if !t.Has(name) {
		return nil, nil
	}
	col := t.df.Col(name)
	records := col.Records()
	vals := make([]string, len(records))
	na := make([]bool, len(records))
	for i, r := range records {
		if col.Elem(i).IsNA() {
			na[i] = true
			continue
		}
		vals[i] = r
	}
	return vals, na
}

// Value returns the cell at (name, row) as float64 or string. ok is false when
// the cell is missing.
func (t *Table) Value(name string, row int) (value interface{}, ok bool) {
	col := t.df.Col(name)
	elem := col.Elem(row)
	if elem.IsNA() {
		return nil, false
	}
	if col.Type() == series.Float {
		f := elem.Float()
		if math.IsNaN(f) {
			return nil, false
		}
		return f, true
	}
	return elem.String(), true
}

// SetFloats replaces the column, or appends it when absent
func (t *Table) SetFloats(name string, values []float64) error {
	return t.set(FloatColumn(name, values))
}

// SetStrings replaces the column, or appends it when absent
func (t *Table) SetStrings(name string, values []string, na []bool) error {
	return t.set(StringColumn(name, values, na))
}

func (t *Table) set(c Column) error {
	s := c.series()
	if t.df.Ncol() > 0 && s.Len() != t.Len() {
		return fmt.Errorf("column %q has %d rows, table has %d", c.Name, s.Len(), t.Len())
	}
	if t.df.Ncol() == 0 {
		tbl, err := fromSeries([]series.Series{s})
		if err != nil {
			return err
		}
		t.df = tbl.df
		return nil
	}
	df := t.df.Mutate(s)
	if df.Err != nil {
		return fmt.Errorf("set column %q: %w", c.Name, df.Err)
	}
	t.df = df
	return nil
}

// Take returns a new table containing the given rows in the given order
func (t *Table) Take(rows []int) (*Table, error) {
	if t.df.Ncol() == 0 {
		return &Table{}, nil
	}
	n := t.Len()
	for _, r := range rows {
		if r < 0 || r >= n {
			return nil, fmt.Errorf("row %d out of range", r)
		}
	}
	if rows == nil {
		rows = []int{}
	}
	df := t.df.Subset(rows)
	if df.Err != nil {
		return nil, fmt.Errorf("take rows: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// Reorder returns a new table with the named columns first (in the given
// order, skipping absent ones) followed by the rest in their current order.
func (t *Table) Reorder(first ...string) (*Table, error) {
	if t.df.Ncol() == 0 {
		return &Table{}, nil
	}
	front := make(map[string]bool, len(first))
	order := make([]string, 0, t.df.Ncol())
	for _, name := range first {
		if !t.Has(name) || front[name] {
			continue
		}
		front[name] = true
		order = append(order, name)
	}
	for _, name := range t.Names() {
		if !front[name] {
			order = append(order, name)
		}
	}
	df := t.df.Select(order)
	if df.Err != nil {
		return nil, fmt.Errorf("reorder columns: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// Drop returns a new table without the named columns. Absent names are ignored.
func (t *Table) Drop(names ...string) (*Table, error) {
	seen := make(map[string]bool, len(names))
	var drop []string
	for _, n := range names {
		if t.Has(n) && !seen[n] {
			seen[n] = true
			drop = append(drop, n)
		}
	}
	switch {
	case len(drop) == t.df.Ncol():
		return &Table{}, nil
	case len(drop) == 0:
		return &Table{df: t.df.Copy()}, nil
	}
	df := t.df.Drop(drop)
	if df.Err != nil {
		return nil, fmt.Errorf("drop columns: %w", df.Err)
	}
	return &Table{df: df}, nil
}
