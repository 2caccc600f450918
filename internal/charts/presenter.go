package charts

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	apperrors "github.com/DieMov/PYTHOM/internal/errors"
	"github.com/DieMov/PYTHOM/internal/infrastructure"
)

// Presenter renders a figure with the first renderer that succeeds and hands
// the result to the opener
type Presenter struct {
	renderers  []Renderer
	opener     Opener
	tempDir    string
	tempPrefix string
	logger     *slog.Logger
	metrics    *infrastructure.RunMetrics
}

// PresenterOption configures a Presenter
type PresenterOption func(*Presenter)

// WithTempDir places rendered files in dir instead of the system temp dir
func WithTempDir(dir string) PresenterOption {
	return func(p *Presenter) { p.tempDir = dir }
}

// WithTempPrefix sets the file-name prefix of rendered files
func WithTempPrefix(prefix string) PresenterOption {
	return func(p *Presenter) { p.tempPrefix = prefix }
}

// WithMetrics counts renders and renderer failures
func WithMetrics(m *infrastructure.RunMetrics) PresenterOption {
	return func(p *Presenter) { p.metrics = m }
}

// NewPresenter creates a presenter trying renderers in order
func NewPresenter(renderers []Renderer, opener Opener, logger *slog.Logger, opts ...PresenterOption) *Presenter {
	if opener == nil {
		opener = NoopOpener{}
	}
	p := &Presenter{
		renderers: renderers,
		opener:    opener,
		logger:    infrastructure.WithComponent(logger, "presenter"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Present renders fig and opens it, returning the rendered file path.
// A renderer failure falls through to the next renderer; a RENDER error is
// returned only when every renderer failed. Opener failures are logged.
func (p *Presenter) Present(ctx context.Context, fig *Figure) (string, error) {
	var lastErr error
	for _, r := range p.renderers {
		path, err := p.renderTemp(r, fig)
		if err != nil {
			lastErr = err
			p.logger.WarnContext(ctx, "Renderer failed, trying next",
				slog.String("figure", fig.Name),
				slog.String("renderer", r.Name()),
				slog.String("error", err.Error()))
			if p.metrics != nil {
				p.metrics.RenderFailures.WithLabelValues(r.Name()).Inc()
			}
			continue
		}

		if p.metrics != nil {
			p.metrics.ChartsRendered.WithLabelValues(r.Name()).Inc()
		}
		p.logger.InfoContext(ctx, "Figure rendered",
			slog.String("figure", fig.Name),
			slog.String("renderer", r.Name()),
			slog.String("path", path))

		if err := p.opener.Open(path); err != nil {
			p.logger.WarnContext(ctx, "Failed to open viewer",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
		return path, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no renderers configured")
	}
	return "", apperrors.NewRenderError("all renderers failed", lastErr).WithContext("figure", fig.Name)
}

// renderTemp renders into a fresh temp file, closed before returning.
// The file is removed when rendering fails.
func (p *Presenter) renderTemp(r Renderer, fig *Figure) (path string, err error) {
	f, err := os.CreateTemp(p.tempDir, p.tempPrefix+fig.Name+"-*"+r.Extension())
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	name := f.Name()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			path, err = "", fmt.Errorf("close temp file: %w", cerr)
		}
		if err != nil {
			os.Remove(name)
		}
	}()

	if err := r.Render(f, fig); err != nil {
		return "", err
	}
	return name, nil
}
