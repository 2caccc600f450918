package charts

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/DieMov/PYTHOM/internal/errors"
	"github.com/DieMov/PYTHOM/internal/infrastructure"
	shared "github.com/DieMov/PYTHOM/internal/shared/testutil"
)

type fakeRenderer struct {
	name  string
	ext   string
	err   error
	calls int
}

func (f *fakeRenderer) Name() string      { return f.name }
func (f *fakeRenderer) Extension() string { return f.ext }

func (f *fakeRenderer) Render(w io.Writer, fig *Figure) error {
	f.calls++
	if f.err != nil {
		io.WriteString(w, "partial")
		return f.err
	}
	_, err := io.WriteString(w, f.name+":"+fig.Name)
	return err
}

type recordingOpener struct {
	paths []string
	err   error
}

func (o *recordingOpener) Open(path string) error {
	o.paths = append(o.paths, path)
	return o.err
}

func TestPresenter_FirstRendererWins(t *testing.T) {
	dir := t.TempDir()
	interactive := &fakeRenderer{name: VariantInteractive, ext: ".html"}
	static := &fakeRenderer{name: VariantStatic, ext: ".png"}
	opener := &recordingOpener{}

	p := NewPresenter([]Renderer{interactive, static}, opener, nil, WithTempDir(dir), WithTempPrefix("test-"))
	path, err := p.Present(context.Background(), &Figure{Name: "bar"})
	require.NoError(t, err)

	assert.Equal(t, 1, interactive.calls)
	assert.Equal(t, 0, static.calls)
	assert.Equal(t, []string{path}, opener.paths)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, ".html", filepath.Ext(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "interactive:bar", string(content), "file is flushed and closed before opening")
}

func TestPresenter_FallsBackToStatic(t *testing.T) {
	dir := t.TempDir()
	metrics := infrastructure.NewRunMetrics()
	logger, handler := shared.NewTestLogger(t)
	interactive := &fakeRenderer{name: VariantInteractive, ext: ".html", err: errors.New("svg failed")}
	static := &fakeRenderer{name: VariantStatic, ext: ".png"}
	opener := &recordingOpener{}

	p := NewPresenter([]Renderer{interactive, static}, opener, logger, WithTempDir(dir), WithMetrics(metrics))
	path, err := p.Present(context.Background(), &Figure{Name: "box"})
	require.NoError(t, err)

	assert.Equal(t, ".png", filepath.Ext(path))
	assert.Equal(t, []string{path}, opener.paths)
	assert.True(t, handler.ContainsMessage("Renderer failed, trying next"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "failed rendering is removed")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RenderFailures.WithLabelValues(VariantInteractive)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ChartsRendered.WithLabelValues(VariantStatic)))
}

func TestPresenter_AllRenderersFail(t *testing.T) {
	opener := &recordingOpener{}
	p := NewPresenter([]Renderer{
		&fakeRenderer{name: VariantInteractive, ext: ".html", err: errors.New("svg failed")},
		&fakeRenderer{name: VariantStatic, ext: ".png", err: errors.New("png failed")},
	}, opener, nil, WithTempDir(t.TempDir()))

	path, err := p.Present(context.Background(), &Figure{Name: "scatter"})

	assert.Empty(t, path)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRender))
	assert.Contains(t, err.Error(), "png failed")
	assert.Empty(t, opener.paths)
}

func TestPresenter_OpenerFailureIsNotFatal(t *testing.T) {
	logger, handler := shared.NewTestLogger(t)
	opener := &recordingOpener{err: errors.New("no viewer")}
	p := NewPresenter([]Renderer{&fakeRenderer{name: VariantStatic, ext: ".png"}}, opener, logger, WithTempDir(t.TempDir()))

	path, err := p.Present(context.Background(), &Figure{Name: "bar"})

	require.NoError(t, err)
	assert.NotEmpty(t, path)
	assert.True(t, handler.ContainsMessage("Failed to open viewer"))
}

func TestPresenter_NoRenderers(t *testing.T) {
	p := NewPresenter(nil, nil, nil)

	_, err := p.Present(context.Background(), &Figure{Name: "bar"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRender))
}

func TestRenderers(t *testing.T) {
	fig, err := DebtServiceBar(recordTable(t), 3)
	require.NoError(t, err)

	t.Run("html", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewHTMLRenderer().Render(&buf, fig))
		page := buf.String()
		assert.Contains(t, page, "<svg")
		assert.Contains(t, page, "<th>Sucursal</th>")
		assert.Contains(t, page, "<td>Gamma</td>")
	})

	t.Run("png", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPNGRenderer(72).Render(&buf, fig))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
	})

	t.Run("empty figure", func(t *testing.T) {
		assert.Error(t, NewHTMLRenderer().Render(io.Discard, &Figure{}))
		assert.Error(t, NewPNGRenderer(72).Render(io.Discard, nil))
	})
}
