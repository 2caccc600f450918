// Package config provides configuration for the sucursales report.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later ones winning:
//
//	1. Default values (Default)
//	2. A YAML file (sucursales.yaml or configs/sucursales.yaml, or -config)
//	3. A .env file in the working directory, when present
//	4. Environment variables prefixed SUCURSALES_
//	5. Command-line flags, applied by the caller
//
// # Environment Variables
//
// Nested fields join their names with underscores:
//
//	SUCURSALES_INPUT_FILE=cartera.xlsx
//	SUCURSALES_OUTPUT_FILE=resultado.xlsx
//	SUCURSALES_RATES_INTEREST_ANNUAL=0.65
//	SUCURSALES_CHARTS_OPEN_VIEWER=false
//	SUCURSALES_LOGGING_LEVEL=debug
//
// # Paths
//
// Relative locations resolve against the working directory through Paths,
// which also creates the output and figures directories.
package config
