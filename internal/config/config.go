package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Rates     RatesConfig     `yaml:"rates" envconfig:"RATES"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Charts    ChartsConfig    `yaml:"charts" envconfig:"CHARTS"`
	Hierarchy HierarchyConfig `yaml:"hierarchy" envconfig:"HIERARCHY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Tracing   TracingConfig   `yaml:"tracing" envconfig:"TRACING"`
	Metrics   MetricsConfig   `yaml:"metrics" envconfig:"METRICS"`
}

// InputConfig locates the source workbook
type InputConfig struct {
	File string `yaml:"file" envconfig:"FILE" validate:"required"`
}

// OutputConfig locates the exported workbook and figure images
type OutputConfig struct {
	File       string `yaml:"file" envconfig:"FILE" validate:"required"`
	FiguresDir string `yaml:"figures_dir" envconfig:"FIGURES_DIR" validate:"required"`
}

// RatesConfig holds the annual rates used for derived metrics
type RatesConfig struct {
	InterestAnnual    float64 `yaml:"interest_annual" envconfig:"INTEREST_ANNUAL" validate:"gte=0"`
	FundingCostAnnual float64 `yaml:"funding_cost_annual" envconfig:"FUNDING_COST_ANNUAL" validate:"gte=0"`
}

// MonthlyInterest returns the flat monthly interest multiplier
func (r RatesConfig) MonthlyInterest() float64 {
	return r.InterestAnnual / MonthsPerYear
}

// MonthlyFundingCost returns the flat monthly funding-cost multiplier
func (r RatesConfig) MonthlyFundingCost() float64 {
	return r.FundingCostAnnual / MonthsPerYear
}

// ReportConfig controls console reporting
type ReportConfig struct {
	TopN        int `yaml:"top_n" envconfig:"TOP_N" validate:"gt=0"`
	PreviewRows int `yaml:"preview_rows" envconfig:"PREVIEW_ROWS" validate:"gte=0"`
}

// ChartsConfig controls chart rendering and presentation
type ChartsConfig struct {
	Enabled     bool    `yaml:"enabled" envconfig:"ENABLED"`
	Interactive bool    `yaml:"interactive" envconfig:"INTERACTIVE"`
	OpenViewer  bool    `yaml:"open_viewer" envconfig:"OPEN_VIEWER"`
	ClipLower   float64 `yaml:"clip_lower" envconfig:"CLIP_LOWER" validate:"gte=0,lte=1"`
	ClipUpper   float64 `yaml:"clip_upper" envconfig:"CLIP_UPPER" validate:"gte=0,lte=1,gtfield=ClipLower"`
	ScatterClip float64 `yaml:"scatter_clip" envconfig:"SCATTER_CLIP" validate:"gt=0,lte=1"`
	DPI         int     `yaml:"dpi" envconfig:"DPI" validate:"gt=0"`
}

// HierarchyConfig optionally replaces the embedded branch table
type HierarchyConfig struct {
	File string `yaml:"file" envconfig:"FILE"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TracingConfig controls pipeline stage tracing
type TracingConfig struct {
	Enabled bool `yaml:"enabled" envconfig:"ENABLED"`
	// Output is "stdout", "stderr" or a file path.
	Output string `yaml:"output" envconfig:"OUTPUT"`
}

// MetricsConfig controls the run metrics textfile
type MetricsConfig struct {
	// Textfile, when set, receives the run metrics in Prometheus text format.
	Textfile string `yaml:"textfile" envconfig:"TEXTFILE"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{File: DefaultInputFile},
		Output: OutputConfig{
			File:       DefaultOutputFile,
			FiguresDir: DefaultFiguresDir,
		},
		Rates: RatesConfig{
			InterestAnnual:    DefaultInterestRateAnnual,
			FundingCostAnnual: DefaultFundingCostRateAnnual,
		},
		Report: ReportConfig{
			TopN:        DefaultTopN,
			PreviewRows: DefaultPreviewRows,
		},
		Charts: ChartsConfig{
			Enabled:     true,
			Interactive: true,
			OpenViewer:  true,
			ClipLower:   DefaultClipLower,
			ClipUpper:   DefaultClipUpper,
			ScatterClip: DefaultScatterClip,
			DPI:         DefaultDPI,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Tracing: TracingConfig{
			Enabled: false,
			Output:  "stderr",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, an
// optional .env file and the environment, in increasing precedence.
// An empty configFile searches the usual locations.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// Fields without a matching variable keep their current value
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadDotEnv loads variables from a .env file when one exists. Variables
// already present in the environment win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return godotenv.Load(path)
}

// Validate checks field constraints and normalizes values
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)

	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging file path required for output %q", c.Logging.Output)
	}

	if c.Tracing.Enabled && c.Tracing.Output == "" {
		return fmt.Errorf("tracing output required when tracing is enabled")
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"sucursales.yaml",
		"configs/sucursales.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}
