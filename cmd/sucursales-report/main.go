package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/DieMov/PYTHOM/internal/charts"
	"github.com/DieMov/PYTHOM/internal/config"
	"github.com/DieMov/PYTHOM/internal/dataprocessing"
	apperrors "github.com/DieMov/PYTHOM/internal/errors"
	"github.com/DieMov/PYTHOM/internal/exporter"
	"github.com/DieMov/PYTHOM/internal/hierarchy"
	"github.com/DieMov/PYTHOM/internal/infrastructure"
	"github.com/DieMov/PYTHOM/internal/report"
	"github.com/DieMov/PYTHOM/internal/validation"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		os.Exit(1)
	}
}

// cliFlags holds command line overrides; empty values keep the configuration
type cliFlags struct {
	configFile string
	input      string
	output     string
	figures    string
	logLevel   string
	noCharts   bool
	noOpen     bool
	staticOnly bool
}

func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.StringVar(&f.configFile, "config", "", "configuration file (defaults to sucursales.yaml when present)")
	fs.StringVar(&f.input, "in", "", "input workbook")
	fs.StringVar(&f.output, "out", "", "output workbook")
	fs.StringVar(&f.figures, "figures", "", "directory for saved figures")
	fs.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.BoolVar(&f.noCharts, "no-charts", false, "skip every chart")
	fs.BoolVar(&f.noOpen, "no-open", false, "render charts without opening a viewer")
	fs.BoolVar(&f.staticOnly, "static-only", false, "render charts as PNG only")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// apply overlays the flags onto cfg
func (f *cliFlags) apply(cfg *config.Config) {
	if f.input != "" {
		cfg.Input.File = f.input
	}
	if f.output != "" {
		cfg.Output.File = f.output
	}
	if f.figures != "" {
		cfg.Output.FiguresDir = f.figures
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.noCharts {
		cfg.Charts.Enabled = false
	}
	if f.noOpen {
		cfg.Charts.OpenViewer = false
	}
	if f.staticOnly {
		cfg.Charts.Interactive = false
	}
}

// run executes one report. A failure is logged before the log file closes.
func run(ctx context.Context, args []string, stdout io.Writer) (err error) {
	logger := slog.Default()
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "Run failed",
				slog.String("error", err.Error()),
				slog.String("error_type", string(apperrors.TypeOf(err))))
		}
		infrastructure.CloseLogFile()
	}()

	flags, err := parseFlags(args)
	if err != nil {
		return apperrors.NewConfigError("invalid arguments", err)
	}

	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return apperrors.NewConfigError("failed to load configuration", err)
	}
	flags.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return apperrors.NewConfigError("invalid configuration", err)
	}

	initialized, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return apperrors.NewConfigError("failed to initialize logger", err)
	}
	logger = initialized

	ctx = infrastructure.EnsureTraceID(ctx)
	logger.InfoContext(ctx, "Starting run",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion))

	tracing, err := infrastructure.InitializeTracing(cfg.Tracing, logger)
	if err != nil {
		return apperrors.NewConfigError("failed to initialize tracing", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Tracing shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics := infrastructure.NewRunMetrics()

	paths, err := config.GetPaths(cfg)
	if err != nil {
		return apperrors.NewConfigError("failed to resolve paths", err)
	}
	paths.LogPathResolution()
	if paths.Metrics != "" {
		defer func() {
			if err := metrics.WriteTextfile(paths.Metrics); err != nil {
				logger.WarnContext(ctx, "Failed to write metrics textfile", slog.String("error", err.Error()))
			}
		}()
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputWorkbook(paths.InputFile); err != nil {
		return err
	}
	if err := validator.ValidateOutputWorkbook(paths.OutputFile); err != nil {
		return err
	}

	branches, err := hierarchy.Load(paths.Hierarchy)
	if err != nil {
		return err
	}

	pipeline := dataprocessing.NewPipeline(branches, dataprocessing.Options{
		Rates: dataprocessing.Rates{
			MonthlyInterest:    cfg.Rates.MonthlyInterest(),
			MonthlyFundingCost: cfg.Rates.MonthlyFundingCost(),
		},
		Logger:  logger,
		Tracer:  tracing.Tracer,
		Metrics: metrics,
	})
	res, err := pipeline.Run(ctx, paths.InputFile)
	if err != nil {
		return err
	}

	reporter := report.NewReporter(stdout, logger)
	reporter.Summary(res, report.Options{
		TopN:        cfg.Report.TopN,
		PreviewRows: cfg.Report.PreviewRows,
	})

	if cfg.Charts.Enabled {
		stats := renderCharts(ctx, cfg, paths, res, logger, metrics)
		reporter.FiguresSaved(paths.FiguresDir, len(stats.Saved))
	} else {
		logger.InfoContext(ctx, "Charts disabled")
	}

	writer := exporter.NewXLSXWriter(logger)
	if err := writer.Write(ctx, paths.OutputFile, res.Enriched, exporter.WriteOptions{
		FrontColumns: dataprocessing.KeyColumns,
		BoldHeader:   true,
	}); err != nil {
		return err
	}
	reporter.Exported(paths.OutputFile)

	logger.InfoContext(ctx, "Run completed",
		slog.String("output", paths.OutputFile),
		slog.Int("records", res.Enriched.Len()),
		slog.Int("branches", res.Aggregate.Len()))
	return nil
}

// renderCharts builds and presents the figures. Failures are logged only.
func renderCharts(ctx context.Context, cfg *config.Config, paths *config.Paths, res *dataprocessing.Result,
	logger *slog.Logger, metrics *infrastructure.RunMetrics) charts.Stats {
	static := charts.NewPNGRenderer(cfg.Charts.DPI)
	renderers := []charts.Renderer{static}
	if cfg.Charts.Interactive {
		renderers = []charts.Renderer{charts.NewHTMLRenderer(), static}
	}

	var opener charts.Opener = charts.NoopOpener{}
	if cfg.Charts.OpenViewer {
		opener = charts.NewBrowserOpener(logger)
	}

	presenter := charts.NewPresenter(renderers, opener, logger,
		charts.WithTempPrefix(config.DefaultTempFilePrefix),
		charts.WithMetrics(metrics))

	generator := charts.NewGenerator(presenter, static, charts.Options{
		TopN:                 cfg.Report.TopN,
		ClipLower:            cfg.Charts.ClipLower,
		ClipUpper:            cfg.Charts.ClipUpper,
		ScatterClip:          cfg.Charts.ScatterClip,
		ScatterFigure:        paths.GetFigurePath(config.Scatter3DFigure),
		ScatterClippedFigure: paths.GetFigurePath(config.Scatter3DClippedFigure),
	}, logger)

	return generator.Generate(ctx, res)
}
