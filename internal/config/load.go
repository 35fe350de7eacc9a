package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads path, applies defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfigWithEnvOverrides is LoadConfig followed by environment
// overrides. An empty path starts from Default.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides reads MOBILITYWATCH_SECTION_FIELD variables. Values
// that do not parse are ignored.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("MOBILITYWATCH_EXPORT_PREFIX"); val != "" {
		cfg.Export.Prefix = val
	}
	if val := os.Getenv("MOBILITYWATCH_EXPORT_ALL_SCOPE"); val != "" {
		cfg.Export.AllScope = val
	}
	if val := os.Getenv("MOBILITYWATCH_EXPORT_OUTPUT_DIR"); val != "" {
		cfg.Export.OutputDir = val
	}
	if val := os.Getenv("MOBILITYWATCH_EXPORT_PRETTY_JSON"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Export.PrettyJSON = &b
		}
	}
	if val := os.Getenv("MOBILITYWATCH_EXPORT_PNG_SCALE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Export.PNGScale = f
		}
	}
	if val := os.Getenv("MOBILITYWATCH_EXPORT_CHART_SCALE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Export.ChartScale = f
		}
	}
	if val := os.Getenv("MOBILITYWATCH_EXPORT_CONCURRENCY"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Export.Concurrency = i
		}
	}

	if val := os.Getenv("MOBILITYWATCH_HTTP_RETRY_COUNT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.HTTP.RetryCount = i
		}
	}
	if val := os.Getenv("MOBILITYWATCH_HTTP_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.HTTP.TimeOut = d
		}
	}
	if val := os.Getenv("MOBILITYWATCH_HTTP_USER_AGENT"); val != "" {
		cfg.HTTP.UserAgent = val
	}
	if val := os.Getenv("MOBILITYWATCH_HTTP_BASE_URL"); val != "" {
		cfg.HTTP.BaseURL = val
	}

	if val := os.Getenv("MOBILITYWATCH_LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
}
