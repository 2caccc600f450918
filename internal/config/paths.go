package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every file location used by a run, resolved against a base
// directory. This is the single source of truth for file paths.
type Paths struct {
	BaseDir    string
	InputFile  string
	OutputFile string
	FiguresDir string
	LogFile    string
	Hierarchy  string
	Metrics    string
}

// GetPaths resolves the configured locations against the current working
// directory, where the original workbook is expected to live.
func GetPaths(cfg *Config) (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %v", err)
	}
	return ResolvePaths(cfg, wd), nil
}

// ResolvePaths resolves relative locations in cfg against baseDir
func ResolvePaths(cfg *Config, baseDir string) *Paths {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	return &Paths{
		BaseDir:    baseDir,
		InputFile:  resolve(cfg.Input.File),
		OutputFile: resolve(cfg.Output.File),
		FiguresDir: resolve(cfg.Output.FiguresDir),
		LogFile:    resolve(cfg.Logging.FilePath),
		Hierarchy:  resolve(cfg.Hierarchy.File),
		Metrics:    resolve(cfg.Metrics.Textfile),
	}
}

// GetFigurePath returns the path of a named figure inside the figures directory
func (p *Paths) GetFigurePath(filename string) string {
	return filepath.Join(p.FiguresDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution() {
	slog.Default().Info("Path resolution",
		slog.String("base_dir", p.BaseDir),
		slog.Group("files",
			slog.String("input", p.InputFile),
			slog.Bool("input_exists", FileExists(p.InputFile)),
			slog.String("output", p.OutputFile),
			slog.String("figures_dir", p.FiguresDir),
			slog.String("hierarchy", p.Hierarchy),
			slog.String("metrics", p.Metrics),
		),
	)
}
