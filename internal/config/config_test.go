package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nabii/internal/errors"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults only",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultHomeCountry, cfg.Dashboard.HomeCountry)
				assert.Equal(t, 10, cfg.Dashboard.TopDeals)
				assert.Equal(t, "data", cfg.Output.Dir)
				assert.Equal(t, 8000, cfg.Server.Port)
				assert.True(t, cfg.Pipeline.Parallel)
				assert.Equal(t, 200*time.Millisecond, cfg.Pipeline.RetryDelay)
			},
		},
		{
			name: "file overrides defaults",
			file: `
dataset:
  input_path: deals.xlsx
dashboard:
  top_deals: 5
pipeline:
  retry_delay: 1s
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "deals.xlsx", cfg.Dataset.InputPath)
				assert.Equal(t, 5, cfg.Dashboard.TopDeals)
				assert.Equal(t, time.Second, cfg.Pipeline.RetryDelay)
				assert.Equal(t, DefaultRootLabel, cfg.Dashboard.RootLabel)
			},
		},
		{
			name: "env overrides file",
			file: "dashboard:\n  home_country: Kenya\n",
			env: map[string]string{
				"NABII_DASHBOARD_HOME_COUNTRY": "Malawi",
				"NABII_PIPELINE_PARALLEL":      "false",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "Malawi", cfg.Dashboard.HomeCountry)
				assert.False(t, cfg.Pipeline.Parallel)
			},
		},
		{
			name:    "invalid log level",
			env:     map[string]string{"NABII_LOGGING_LEVEL": "verbose"},
			wantErr: true,
		},
		{
			name:    "negative top deals",
			file:    "dashboard:\n  top_deals: -1\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "dashboard: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestValidateFillsLogFile(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "both"

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)
}

func TestMapSector(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"Biopharmaceuticals", "Healthcare & Education", true},
		{"Pharmaceuticals", "Healthcare & Education", true},
		{"Telecommunications", "Technology & Digital Services", true},
		{"Tourism", CatchAllSector, true},
		{"Agriculture", "", false},
		{"tourism", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := MapSector(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSDGName(t *testing.T) {
	assert.Equal(t, "No Poverty", SDGName(1))
	assert.Equal(t, "Climate Action", SDGName(13))
	assert.Equal(t, "Partnerships", SDGName(17))
	assert.Equal(t, UnknownSDGLabel, SDGName(0))
	assert.Equal(t, UnknownSDGLabel, SDGName(18))
}

func TestIsDisclosurePlaceholder(t *testing.T) {
	for _, text := range []string{"Undisclosed", "undisclosed", "  not disclosed ", "NOT DISCLOSED"} {
		assert.True(t, IsDisclosurePlaceholder(text), text)
	}
	for _, text := range []string{"", "USD 2.5m", "undisclosed amount", "N/A"} {
		assert.False(t, IsDisclosurePlaceholder(text), text)
	}
}
