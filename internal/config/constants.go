package config

// Application constants
const (
	// Application Info
	AppName    = "sucursales-report"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces environment variables (SUCURSALES_INPUT_FILE, ...)
	EnvPrefix = "SUCURSALES"

	// Default file locations, relative to the working directory
	DefaultInputFile  = "Limpia_250811_master_reto_sucursales (version 1).xlsx"
	DefaultOutputFile = "resultadoS.xlsx"
	DefaultFiguresDir = "figuras_dimex"
	DefaultLogFile    = "logs/sucursales.log"

	// Figure file names written to the figures directory
	Scatter3DFigure        = "H_scatter3D_fdp_capital_saldo.png"
	Scatter3DClippedFigure = "H_scatter3D_fdp_capital_saldo_p99.png"

	// Annual rates, applied as flat monthly multipliers (rate / 12)
	DefaultInterestRateAnnual    = 0.65
	DefaultFundingCostRateAnnual = 0.11
	MonthsPerYear                = 12

	// Reporting
	DefaultTopN        = 15
	DefaultPreviewRows = 5

	// Chart settings
	DefaultClipLower      = 0.01
	DefaultClipUpper      = 0.99
	DefaultScatterClip    = 0.99
	DefaultDPI            = 140
	DefaultTempFilePrefix = "sucursales-"
)
