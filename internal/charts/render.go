package charts

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

//go:embed templates/figure.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/figure.html"))

// Renderer variants, also used as metric labels
const (
	VariantInteractive = "interactive"
	VariantStatic      = "static"
)

// maxTableRows bounds the point table of interactive pages
const maxTableRows = 500

// Renderer writes a figure in one output format
type Renderer interface {
	Name() string
	Extension() string
	Render(w io.Writer, fig *Figure) error
}

// HTMLRenderer renders a page with the figure as inline SVG followed by its
// data table
type HTMLRenderer struct{}

// NewHTMLRenderer creates the interactive renderer
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

// Name returns the variant label
func (r *HTMLRenderer) Name() string { return VariantInteractive }

// Extension returns the file extension of rendered pages
func (r *HTMLRenderer) Extension() string { return ".html" }

type pageData struct {
	Title     string
	SVG       template.HTML
	Columns   []string
	Rows      [][]string
	Truncated bool
	Total     int
}

// Render writes the page to w
func (r *HTMLRenderer) Render(w io.Writer, fig *Figure) error {
	if fig == nil || fig.Plot == nil {
		return fmt.Errorf("empty figure")
	}
	wt, err := fig.Plot.WriterTo(fig.Width, fig.Height, "svg")
	if err != nil {
		return fmt.Errorf("svg canvas: %w", err)
	}
	var svg bytes.Buffer
	if _, err := wt.WriteTo(&svg); err != nil {
		return fmt.Errorf("draw svg: %w", err)
	}

	data := pageData{
		Title:   fig.Title,
		SVG:     template.HTML(svg.String()),
		Columns: fig.Columns,
		Rows:    fig.Rows,
		Total:   len(fig.Rows),
	}
	if len(data.Rows) > maxTableRows {
		data.Rows = data.Rows[:maxTableRows]
		data.Truncated = true
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("execute page template: %w", err)
	}
	return nil
}

// PNGRenderer rasterizes figures at a fixed resolution
type PNGRenderer struct {
	DPI int
}

// NewPNGRenderer creates the static renderer
func NewPNGRenderer(dpi int) *PNGRenderer {
	return &PNGRenderer{DPI: dpi}
}

// Name returns the variant label
func (r *PNGRenderer) Name() string { return VariantStatic }

// Extension returns the file extension of rendered images
func (r *PNGRenderer) Extension() string { return ".png" }

// Render writes the PNG to w
func (r *PNGRenderer) Render(w io.Writer, fig *Figure) error {
	if fig == nil || fig.Plot == nil {
		return fmt.Errorf("empty figure")
	}
	c := vgimg.NewWith(vgimg.UseWH(fig.Width, fig.Height), vgimg.UseDPI(r.DPI))
	fig.Plot.Draw(draw.New(c))
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
