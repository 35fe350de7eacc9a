// Package config loads the exporter settings from YAML, with defaults and
// MOBILITYWATCH_* environment overrides.
package config

import "github.com/pwnholic/mobilitywatch/internal/clients"

type Config struct {
	Export ExportConfig              `yaml:"export"`
	HTTP   clients.HTTPClientOptions `yaml:"http"`
	Log    LogConfig                 `yaml:"log"`
}

type ExportConfig struct {
	// Prefix starts every generated filename.
	Prefix string `yaml:"prefix"`
	// AllScope is the scope value that is left out of filenames.
	AllScope  string `yaml:"all_scope"`
	OutputDir string `yaml:"output_dir"`
	Product   string `yaml:"product"`
	// PrettyJSON is a pointer so an explicit false survives defaulting.
	PrettyJSON  *bool   `yaml:"pretty_json"`
	PNGScale    float64 `yaml:"png_scale"`
	ChartScale  float64 `yaml:"chart_scale"`
	Concurrency int     `yaml:"concurrency"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Pretty reports whether JSON exports are indented.
func (e ExportConfig) Pretty() bool {
	return e.PrettyJSON == nil || *e.PrettyJSON
}

// Default is the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}
