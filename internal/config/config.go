package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"likertlab/domain/stats"
	"likertlab/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Output formats understood by the report renderer
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Analysis AnalysisConfig
	Output   OutputConfig
	Log      LogConfig
}

// DataConfig selects the input file and experiment
type DataConfig struct {
	File       string `validate:"required"`
	Sheet      string // XLSX worksheet; the first sheet when empty
	Experiment int    `validate:"gte=0"`
}

// AnalysisConfig holds statistical settings
type AnalysisConfig struct {
	ConfidenceLevel float64 `validate:"gt=0,lt=1"`
	EqualVariance   bool
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Format string `validate:"oneof=text json yaml markdown html"`
	Path   string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `validate:"omitempty,oneof=ERROR WARN INFO DEBUG TRACE"`
}

// Load reads configuration from environment variables.
// The data file may still be empty; callers fill it from flags and then call Validate.
func Load() (*Config, error) {
	experiment, err := getEnvIntOrDefault("LIKERT_EXPERIMENT", 1)
	if err != nil {
		return nil, err
	}
	confLevel, err := getEnvFloatOrDefault("LIKERT_CONF_LEVEL", stats.DefaultConfidenceLevel)
	if err != nil {
		return nil, err
	}
	equalVar, err := getEnvBoolOrDefault("LIKERT_EQUAL_VAR", false)
	if err != nil {
		return nil, err
	}

	return &Config{
		Data: DataConfig{
			File:       getEnvOrDefault("LIKERT_DATA_FILE", ""),
			Sheet:      getEnvOrDefault("LIKERT_SHEET", ""),
			Experiment: experiment,
		},
		Analysis: AnalysisConfig{
			ConfidenceLevel: confLevel,
			EqualVariance:   equalVar,
		},
		Output: OutputConfig{
			Format: strings.ToLower(getEnvOrDefault("LIKERT_OUTPUT_FORMAT", FormatText)),
			Path:   getEnvOrDefault("LIKERT_OUTPUT_PATH", ""),
		},
		Log: LogConfig{
			Level: strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
		},
	}, nil
}

var validate = validator.New()

// Validate checks the struct constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return errors.ConfigInvalid(fmt.Sprintf("%s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
		return errors.Wrap(errors.ConfigInvalid(err.Error()), "configuration validation failed")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", key, value))
	}
	return intValue, nil
}

func getEnvFloatOrDefault(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be a number, got %q", key, value))
	}
	return floatValue, nil
}

func getEnvBoolOrDefault(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	boolValue, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, errors.ConfigInvalid(fmt.Sprintf("%s must be a boolean, got %q", key, value))
	}
	return boolValue, nil
}
