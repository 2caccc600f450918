package charts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/DieMov/PYTHOM/internal/dataprocessing"
	apperrors "github.com/DieMov/PYTHOM/internal/errors"
	"github.com/DieMov/PYTHOM/internal/frame"
	"github.com/DieMov/PYTHOM/internal/infrastructure"
)

// Options controls which figures are built and where static copies go
type Options struct {
	TopN        int
	ClipLower   float64
	ClipUpper   float64
	ScatterClip float64
	// ScatterFigure and ScatterClippedFigure are the PNG paths of the 3-D
	// figures; an empty path skips saving.
	ScatterFigure        string
	ScatterClippedFigure string
}

// Stats summarizes a chart run
type Stats struct {
	Presented []string
	Skipped   []string
	Failed    []string
	Saved     []string
}

// Generator builds the run figures, saves the 3-D PNGs and presents every
// figure. No failure here stops the run.
type Generator struct {
	presenter *Presenter
	static    Renderer
	options   Options
	logger    *slog.Logger
}

// NewGenerator creates a generator. static renders the PNGs saved to the
// figures directory.
func NewGenerator(presenter *Presenter, static Renderer, options Options, logger *slog.Logger) *Generator {
	return &Generator{
		presenter: presenter,
		static:    static,
		options:   options,
		logger:    infrastructure.WithComponent(logger, "charts"),
	}
}

// Generate builds and presents the figures for a pipeline result
func (g *Generator) Generate(ctx context.Context, res *dataprocessing.Result) Stats {
	var stats Stats

	g.show(ctx, &stats, "top_servicio_deuda", func() (*Figure, error) {
		return DebtServiceBar(res.Enriched, g.options.TopN)
	})
	for _, group := range []string{dataprocessing.ColumnZone, dataprocessing.ColumnRegion} {
		g.show(ctx, &stats, "icv_"+group, func() (*Figure, error) {
			return ICVBox(res.Aggregate, group, g.options.ClipLower, g.options.ClipUpper)
		})
	}

	g.scatter(ctx, &stats, res.Enriched)

	g.logger.InfoContext(ctx, "Charts completed",
		slog.Int("presented", len(stats.Presented)),
		slog.Int("skipped", len(stats.Skipped)),
		slog.Int("failed", len(stats.Failed)),
		slog.Int("saved", len(stats.Saved)))
	return stats
}

// scatter builds the full and clipped 3-D figures, saving a PNG of each
func (g *Generator) scatter(ctx context.Context, stats *Stats, t *frame.Table) {
	cols, err := ResolveScatterColumns(t)
	if err != nil {
		g.skip(ctx, stats, "scatter3d", err)
		return
	}
	points := ScatterPoints(t, cols)

	variants := []struct {
		name, file, title string
		points            []Point
	}{
		{
			name:   "scatter3d",
			file:   g.options.ScatterFigure,
			title:  fmt.Sprintf("3D: %s vs %s vs %s", cols.Y, cols.X, cols.Z),
			points: points,
		},
		{
			name:   "scatter3d_p" + percent(g.options.ScatterClip),
			file:   g.options.ScatterClippedFigure,
			title:  fmt.Sprintf("3D (p%s clip): %s vs %s vs %s", percent(g.options.ScatterClip), cols.Y, cols.X, cols.Z),
			points: ClipPoints(points, g.options.ScatterClip),
		},
	}

	for _, v := range variants {
		fig, err := Scatter3D(v.name, v.title, v.points, cols)
		if err != nil {
			g.skip(ctx, stats, v.name, err)
			continue
		}
		if path := v.file; path != "" {
			if err := g.save(path, fig); err != nil {
				g.logger.ErrorContext(ctx, "Failed to save figure",
					slog.String("figure", v.name),
					slog.String("path", path),
					slog.String("error", err.Error()))
			} else {
				stats.Saved = append(stats.Saved, path)
			}
		}
		g.present(ctx, stats, fig)
	}
}

func (g *Generator) show(ctx context.Context, stats *Stats, name string, build func() (*Figure, error)) {
	fig, err := build()
	if err != nil {
		g.skip(ctx, stats, name, err)
		return
	}
	g.present(ctx, stats, fig)
}

func (g *Generator) present(ctx context.Context, stats *Stats, fig *Figure) {
	if _, err := g.presenter.Present(ctx, fig); err != nil {
		stats.Failed = append(stats.Failed, fig.Name)
		g.logger.ErrorContext(ctx, "Figure not presented",
			slog.String("figure", fig.Name),
			slog.String("error", err.Error()))
		return
	}
	stats.Presented = append(stats.Presented, fig.Name)
}

// skip records a figure that could not be built. Missing columns and empty
// data are expected; anything else is a build failure.
func (g *Generator) skip(ctx context.Context, stats *Stats, name string, err error) {
	if apperrors.IsType(err, apperrors.ErrTypeMissingColumn) || errors.Is(err, ErrNoData) {
		stats.Skipped = append(stats.Skipped, name)
		g.logger.WarnContext(ctx, "Chart skipped",
			slog.String("figure", name),
			slog.String("reason", err.Error()))
		return
	}
	stats.Failed = append(stats.Failed, name)
	g.logger.ErrorContext(ctx, "Chart build failed",
		slog.String("figure", name),
		slog.String("error", err.Error()))
}

func (g *Generator) save(path string, fig *Figure) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create figures directory", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create figure file", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = apperrors.NewStorageError("failed to close figure file", cerr)
		}
	}()

	if err := g.static.Render(f, fig); err != nil {
		return apperrors.NewRenderError("failed to render figure", err)
	}
	return nil
}
