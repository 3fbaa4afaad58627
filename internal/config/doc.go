// Package config loads the dashboard pipeline configuration and holds the
// fixed lookup tables (sector mapping, SDG labels, disclosure placeholders).
//
// # Configuration Sources
//
// Values are resolved in increasing order of precedence:
//
//  1. Default()
//  2. A YAML file (config.yaml, configs/config.yaml or $NABII_CONFIG)
//  3. Environment variables prefixed with NABII_
//  4. Command line flags applied by the binaries
//
// Environment variables follow the nesting of the Config struct:
//
//	NABII_DATASET_INPUT_PATH=deals.xlsx
//	NABII_OUTPUT_DIR=data
//	NABII_DASHBOARD_HOME_COUNTRY=Zambia
//	NABII_PIPELINE_PARALLEL=false
//	NABII_LOGGING_LEVEL=debug
//
// # Validation
//
// Load validates the result with go-playground/validator struct tags.
package config
