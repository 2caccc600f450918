package charts

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/DieMov/PYTHOM/internal/dataprocessing"
	apperrors "github.com/DieMov/PYTHOM/internal/errors"
	"github.com/DieMov/PYTHOM/internal/frame"
)

// ErrNoData is returned by figure builders when nothing is left to plot
var ErrNoData = errors.New("no data to plot")

// naLabel names missing categories on axes and in legends
const naLabel = "NaN"

// oblique projection of the depth axis
const (
	depthScale = 0.5
	depthAngle = math.Pi / 6
)

var barColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}

// Figure is a plot ready for rendering plus the data table shown next to it
// by interactive renderers.
type Figure struct {
	// Name is a short file-name stem.
	Name   string
	Title  string
	Plot   *plot.Plot
	Width  vg.Length
	Height vg.Length

	Columns []string
	Rows    [][]string
}

// Point is one record of the 3-D scatter
type Point struct {
	Branch, Region, Zone string
	X, Y, Z              float64
}

// ScatterColumns are the coordinate columns of the 3-D scatter
type ScatterColumns struct {
	X, Y, Z string
}

// DebtServiceBar plots the n records with the largest ServiciodeDeuda by
// Sucursal. Missing amounts rank last and are drawn as zero.
func DebtServiceBar(t *frame.Table, n int) (*Figure, error) {
	if missing := t.Missing(dataprocessing.ColumnDebtCost, dataprocessing.ColumnBranch); len(missing) > 0 {
		return nil, apperrors.NewMissingColumnError(missing)
	}
	rows := dataprocessing.TopRows(t, dataprocessing.ColumnDebtCost, n)
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	debt := t.Floats(dataprocessing.ColumnDebtCost)
	branches, branchNA := t.Strings(dataprocessing.ColumnBranch)

	values := make(plotter.Values, len(rows))
	labels := make([]string, len(rows))
	table := make([][]string, len(rows))
	for i, r := range rows {
		values[i] = debt[r]
		if math.IsNaN(values[i]) {
			values[i] = 0
		}
		labels[i] = label(branches[r], branchNA[r])
		table[i] = []string{labels[i], formatFloat(debt[r])}
	}

	title := fmt.Sprintf("Top %d Sucursales por Servicio de Deuda", n)
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = dataprocessing.ColumnDebtCost

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.Font.Size = vg.Points(8)

	return &Figure{
		Name:    "top_servicio_deuda",
		Title:   title,
		Plot:    p,
		Width:   10 * vg.Inch,
		Height:  5 * vg.Inch,
		Columns: []string{dataprocessing.ColumnBranch, dataprocessing.ColumnDebtCost},
		Rows:    table,
	}, nil
}

// ICVBox draws one box of ICV per value of groupColumn. Rows whose ICV falls
// outside the [lower, upper] quantile range are dropped first; outliers are
// not drawn.
func ICVBox(agg *frame.Table, groupColumn string, lower, upper float64) (*Figure, error) {
	if missing := agg.Missing(dataprocessing.ColumnICV, groupColumn); len(missing) > 0 {
		return nil, apperrors.NewMissingColumnError(missing)
	}

	icv := agg.Floats(dataprocessing.ColumnICV)
	sorted := finiteSorted(icv)
	if len(sorted) == 0 {
		return nil, ErrNoData
	}
	lo, hi := quantileSorted(sorted, lower), quantileSorted(sorted, upper)

	groups, groupNA := agg.Strings(groupColumn)
	byGroup := make(map[string]plotter.Values)
	for i, v := range icv {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
			continue
		}
		g := label(groups[i], groupNA[i])
		byGroup[g] = append(byGroup[g], v)
	}
	if len(byGroup) == 0 {
		return nil, ErrNoData
	}

	names := make([]string, 0, len(byGroup))
	for g := range byGroup {
		names = append(names, g)
	}
	sort.Strings(names)

	title := fmt.Sprintf("ICV por %s (recortado p%s–p%s)", groupColumn, percent(lower), percent(upper))
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = dataprocessing.ColumnICV

	table := make([][]string, len(names))
	for i, g := range names {
		box, err := plotter.NewBoxPlot(vg.Points(20), float64(i), byGroup[g])
		if err != nil {
			return nil, fmt.Errorf("box plot %q: %w", g, err)
		}
		box.GlyphStyle.Radius = 0
		p.Add(box)

		median := Quantile(byGroup[g], 0.5)
		table[i] = []string{g, strconv.Itoa(len(byGroup[g])), formatFloat(median)}
	}

	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	return &Figure{
		Name:    "icv_" + groupColumn,
		Title:   title,
		Plot:    p,
		Width:   12 * vg.Inch,
		Height:  5 * vg.Inch,
		Columns: []string{groupColumn, "n", "mediana"},
		Rows:    table,
	}, nil
}

// ResolveScatterColumns picks the 3-D coordinate columns: capital, FPD
// rate (either spelling) and outstanding balance, all for the current period.
func ResolveScatterColumns(t *frame.Table) (ScatterColumns, error) {
	cols := ScatterColumns{
		X: dataprocessing.Capital(dataprocessing.PeriodActual),
		Z: dataprocessing.Outstanding(dataprocessing.PeriodActual),
	}
	for _, candidate := range []string{dataprocessing.ColumnFPDActualAlt, dataprocessing.ColumnFPDActual} {
		if t.Has(candidate) {
			cols.Y = candidate
			break
		}
	}

	required := append([]string{cols.X, cols.Z}, dataprocessing.KeyColumns...)
	missing := t.Missing(required...)
	if cols.Y == "" {
		missing = append(missing, dataprocessing.ColumnFPDActual)
	}
	if len(missing) > 0 {
		return ScatterColumns{}, apperrors.NewMissingColumnError(missing)
	}
	return cols, nil
}

// ScatterPoints collects the records with all three coordinates present
func ScatterPoints(t *frame.Table, cols ScatterColumns) []Point {
	xs, ys, zs := t.Floats(cols.X), t.Floats(cols.Y), t.Floats(cols.Z)
	branches, branchNA := t.Strings(dataprocessing.ColumnBranch)
	regions, regionNA := t.Strings(dataprocessing.ColumnRegion)
	zones, zoneNA := t.Strings(dataprocessing.ColumnZone)

	var points []Point
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) || !finite(zs[i]) {
			continue
		}
		points = append(points, Point{
			Branch: label(branches[i], branchNA[i]),
			Region: label(regions[i], regionNA[i]),
			Zone:   label(zones[i], zoneNA[i]),
			X:      xs[i],
			Y:      ys[i],
			Z:      zs[i],
		})
	}
	return points
}

// ClipPoints keeps the points at or below the q-th quantile on every axis
func ClipPoints(points []Point, q float64) []Point {
	xs, ys, zs := coordinates(points)
	xq, yq, zq := Quantile(xs, q), Quantile(ys, q), Quantile(zs, q)

	var out []Point
	for _, pt := range points {
		if pt.X <= xq && pt.Y <= yq && pt.Z <= zq {
			out = append(out, pt)
		}
	}
	return out
}

// Scatter3D projects the points obliquely onto the plane: x and y span the
// front face and z recedes at 30 degrees. Points are colored by Región.
func Scatter3D(name, title string, points []Point, cols ScatterColumns) (*Figure, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}

	xs, ys, zs := coordinates(points)
	nx, ny, nz := normalize(xs), normalize(ys), normalize(zs)

	byRegion := make(map[string]plotter.XYs)
	for i, pt := range points {
		px := nx[i] + depthScale*nz[i]*math.Cos(depthAngle)
		py := ny[i] + depthScale*nz[i]*math.Sin(depthAngle)
		byRegion[pt.Region] = append(byRegion[pt.Region], plotter.XY{X: px, Y: py})
	}
	regions := make([]string, 0, len(byRegion))
	for r := range byRegion {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	p.Legend.Top = true

	if err := addFrame(p, cols); err != nil {
		return nil, err
	}

	for i, region := range regions {
		s, err := plotter.NewScatter(byRegion[region])
		if err != nil {
			return nil, fmt.Errorf("scatter %q: %w", region, err)
		}
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(2)
		s.GlyphStyle.Color = plotutil.Color(i)
		p.Add(s)
		p.Legend.Add(region, s)
	}

	rows := make([][]string, len(points))
	for i, pt := range points {
		rows[i] = []string{pt.Branch, pt.Region, pt.Zone, formatFloat(pt.X), formatFloat(pt.Y), formatFloat(pt.Z)}
	}

	return &Figure{
		Name:   name,
		Title:  title,
		Plot:   p,
		Width:  8 * vg.Inch,
		Height: 6 * vg.Inch,
		Columns: []string{
			dataprocessing.ColumnBranch, dataprocessing.ColumnRegion, dataprocessing.ColumnZone,
			cols.X, cols.Y, cols.Z,
		},
		Rows: rows,
	}, nil
}

// addFrame draws the three projected unit axes with their labels
func addFrame(p *plot.Plot, cols ScatterColumns) error {
	dx := depthScale * math.Cos(depthAngle)
	dy := depthScale * math.Sin(depthAngle)
	axes := []plotter.XYs{
		{{X: 0, Y: 0}, {X: 1, Y: 0}},
		{{X: 0, Y: 0}, {X: 0, Y: 1}},
		{{X: 0, Y: 0}, {X: dx, Y: dy}},
	}
	for _, xy := range axes {
		line, err := plotter.NewLine(xy)
		if err != nil {
			return fmt.Errorf("axis line: %w", err)
		}
		line.Color = color.Gray{Y: 96}
		p.Add(line)
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: dx, Y: dy}},
		Labels: []string{cols.X, cols.Y, cols.Z},
	})
	if err != nil {
		return fmt.Errorf("axis labels: %w", err)
	}
	p.Add(labels)
	return nil
}

func coordinates(points []Point) (xs, ys, zs []float64) {
	xs = make([]float64, len(points))
	ys = make([]float64, len(points))
	zs = make([]float64, len(points))
	for i, pt := range points {
		xs[i], ys[i], zs[i] = pt.X, pt.Y, pt.Z
	}
	return xs, ys, zs
}

// normalize maps values onto [0, 1]; a constant axis maps to 0.5
func normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := floats.Min(values), floats.Max(values)
	span := hi - lo
	for i, v := range values {
		if span == 0 {
			out[i] = 0.5
			continue
		}
		out[i] = (v - lo) / span
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func label(value string, na bool) string {
	if na {
		return naLabel
	}
	return value
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return naLabel
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func percent(q float64) string {
	return strconv.FormatFloat(q*100, 'f', 0, 64)
}
