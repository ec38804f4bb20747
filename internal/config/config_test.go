package config

import (
	"testing"

	"likertlab/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"LIKERT_DATA_FILE", "LIKERT_EXPERIMENT", "LIKERT_CONF_LEVEL", "LIKERT_EQUAL_VAR",
		"LIKERT_OUTPUT_FORMAT", "LIKERT_OUTPUT_PATH", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Data.Experiment)
	assert.Equal(t, 0.95, cfg.Analysis.ConfidenceLevel)
	assert.False(t, cfg.Analysis.EqualVariance)
	assert.Equal(t, FormatText, cfg.Output.Format)
	assert.Equal(t, "INFO", cfg.Log.Level)

	err = cfg.Validate()
	require.Error(t, err, "data file is required")
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("LIKERT_DATA_FILE", "survey.csv")
	t.Setenv("LIKERT_EXPERIMENT", "2")
	t.Setenv("LIKERT_CONF_LEVEL", "0.9")
	t.Setenv("LIKERT_EQUAL_VAR", "true")
	t.Setenv("LIKERT_OUTPUT_FORMAT", "JSON")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "survey.csv", cfg.Data.File)
	assert.Equal(t, 2, cfg.Data.Experiment)
	assert.Equal(t, 0.9, cfg.Analysis.ConfidenceLevel)
	assert.True(t, cfg.Analysis.EqualVariance)
	assert.Equal(t, FormatJSON, cfg.Output.Format)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
}

func TestLoad_RejectsMalformedValues(t *testing.T) {
	tests := map[string]string{
		"LIKERT_EXPERIMENT": "two",
		"LIKERT_CONF_LEVEL": "high",
		"LIKERT_EQUAL_VAR":  "maybe",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestValidate_Constraints(t *testing.T) {
	base := func() *Config {
		return &Config{
			Data:     DataConfig{File: "survey.csv", Experiment: 1},
			Analysis: AnalysisConfig{ConfidenceLevel: 0.95},
			Output:   OutputConfig{Format: FormatText},
			Log:      LogConfig{Level: "INFO"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"confidence level one", func(c *Config) { c.Analysis.ConfidenceLevel = 1 }, false},
		{"confidence level zero", func(c *Config) { c.Analysis.ConfidenceLevel = 0 }, false},
		{"negative experiment", func(c *Config) { c.Data.Experiment = -1 }, false},
		{"unknown format", func(c *Config) { c.Output.Format = "pdf" }, false},
		{"unknown log level", func(c *Config) { c.Log.Level = "LOUD" }, false},
		{"html format", func(c *Config) { c.Output.Format = FormatHTML }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
