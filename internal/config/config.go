package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "nabii/internal/errors"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "NABII"

// Config represents the complete application configuration
type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset" envconfig:"DATASET"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Dashboard DashboardConfig `yaml:"dashboard" envconfig:"DASHBOARD"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// DatasetConfig locates the deal spreadsheet
type DatasetConfig struct {
	InputPath string `yaml:"input_path" envconfig:"INPUT_PATH" validate:"required"`
	SheetName string `yaml:"sheet_name" envconfig:"SHEET_NAME"`
}

// OutputConfig controls where dashboard documents are written
type OutputConfig struct {
	Dir             string `yaml:"dir" envconfig:"DIR" validate:"required"`
	EnrichedCSV     bool   `yaml:"enriched_csv" envconfig:"ENRICHED_CSV"`
	EnrichedParquet bool   `yaml:"enriched_parquet" envconfig:"ENRICHED_PARQUET"`
}

// DashboardConfig holds the knobs that shape the dashboard documents
type DashboardConfig struct {
	HomeCountry string `yaml:"home_country" envconfig:"HOME_COUNTRY" validate:"required"`
	TopDeals    int    `yaml:"top_deals" envconfig:"TOP_DEALS" validate:"min=0"`
	RootLabel   string `yaml:"root_label" envconfig:"ROOT_LABEL" validate:"required"`
}

// PipelineConfig controls step scheduling
type PipelineConfig struct {
	Parallel      bool          `yaml:"parallel" envconfig:"PARALLEL"`
	Workers       int           `yaml:"workers" envconfig:"WORKERS" validate:"min=0"`
	RetryAttempts int           `yaml:"retry_attempts" envconfig:"RETRY_ATTEMPTS" validate:"min=0,max=10"`
	RetryDelay    time.Duration `yaml:"retry_delay" envconfig:"RETRY_DELAY" validate:"min=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"min=0,max=1"`
}

// ServerConfig contains HTTP server configuration for the dashboard
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	StaticDir       string        `yaml:"static_dir" envconfig:"STATIC_DIR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	OpenBrowser     bool          `yaml:"open_browser" envconfig:"OPEN_BROWSER"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// Load builds the configuration from defaults, an optional YAML file and
// NABII_* environment variables, in increasing order of precedence.
// An empty path searches the usual locations.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).WithContext("path", path)
		}
	}

	// Only variables that are actually set override the values above
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
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

// Validate checks field constraints and normalises derived values
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Dashboard.HomeCountry = strings.TrimSpace(c.Dashboard.HomeCountry)

	if err := validator.New().Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
		return env
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{
			InputPath: DefaultInputPath,
		},
		Output: OutputConfig{
			Dir:             DefaultOutputDir,
			EnrichedCSV:     true,
			EnrichedParquet: true,
		},
		Dashboard: DashboardConfig{
			HomeCountry: DefaultHomeCountry,
			TopDeals:    DefaultTopDeals,
			RootLabel:   DefaultRootLabel,
		},
		Pipeline: PipelineConfig{
			Parallel:      true,
			RetryAttempts: 2,
			RetryDelay:    200 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "console",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
		Server: ServerConfig{
			Port:            8000,
			StaticDir:       ".",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			OpenBrowser:     true,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     100,
			Burst:   50,
		},
	}
}
