package config

import (
	"os"
	"strconv"

	"surveymetrics/internal"
	"surveymetrics/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Log    LogConfig
	Sweep  SweepConfig
	Survey SurveyConfig
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// SweepConfig holds sweep execution settings
type SweepConfig struct {
	// Workers caps concurrent slice evaluations. Zero means one worker
	// per CPU.
	Workers int
}

// SurveyConfig holds synthetic survey generation settings
type SurveyConfig struct {
	Seed       int64
	Fields     int
	Nights     int
	VisitsMean float64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Log:    loadLogConfig(),
		Sweep:  loadSweepConfig(),
		Survey: loadSurveyConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}
}

func loadSweepConfig() SweepConfig {
	return SweepConfig{
		Workers: getEnvIntOrDefault("SWEEP_WORKERS", 0),
	}
}

func loadSurveyConfig() SurveyConfig {
	return SurveyConfig{
		Seed:       getEnvInt64OrDefault("SURVEY_SEED", 42),
		Fields:     getEnvIntOrDefault("SURVEY_FIELDS", 12),
		Nights:     getEnvIntOrDefault("SURVEY_NIGHTS", 120),
		VisitsMean: getEnvFloatOrDefault("SURVEY_VISITS_MEAN", 40),
	}
}

func validateConfig(config *Config) error {
	if _, ok := internal.ParseLogLevel(config.Log.Level); !ok {
		return errors.ConfigInvalid("LOG_LEVEL must be one of ERROR, WARN, INFO, DEBUG")
	}
	if config.Sweep.Workers < 0 {
		return errors.ConfigInvalid("SWEEP_WORKERS cannot be negative")
	}
	if config.Survey.Fields <= 0 {
		return errors.ConfigInvalid("SURVEY_FIELDS must be positive")
	}
	if config.Survey.Nights <= 0 {
		return errors.ConfigInvalid("SURVEY_NIGHTS must be positive")
	}
	if config.Survey.VisitsMean <= 0 {
		return errors.ConfigInvalid("SURVEY_VISITS_MEAN must be positive")
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

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
