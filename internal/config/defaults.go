package config

import "time"

const (
	DefaultPrefix      = "ea-mobility-watch"
	DefaultAllScope    = "all"
	DefaultOutputDir   = "exports"
	DefaultProduct     = "EA Mobility Watch Dashboard"
	DefaultPNGScale    = 2.0
	DefaultChartScale  = 1.5
	DefaultConcurrency = 4

	DefaultRetryCount       = 3
	DefaultRetryWaitTime    = time.Second
	DefaultRetryMaxWaitTime = 5 * time.Second
	DefaultTimeout          = 30 * time.Second
	DefaultUserAgent        = "mobilitywatch/1.0"

	DefaultLogLevel = "info"
)

// ApplyDefaults fills every zero field.
func ApplyDefaults(cfg *Config) {
	e := &cfg.Export
	if e.Prefix == "" {
		e.Prefix = DefaultPrefix
	}
	if e.AllScope == "" {
		e.AllScope = DefaultAllScope
	}
	if e.OutputDir == "" {
		e.OutputDir = DefaultOutputDir
	}
	if e.Product == "" {
		e.Product = DefaultProduct
	}
	if e.PrettyJSON == nil {
		pretty := true
		e.PrettyJSON = &pretty
	}
	if e.PNGScale == 0 {
		e.PNGScale = DefaultPNGScale
	}
	if e.ChartScale == 0 {
		e.ChartScale = DefaultChartScale
	}
	if e.Concurrency == 0 {
		e.Concurrency = DefaultConcurrency
	}

	h := &cfg.HTTP
	if h.RetryCount == 0 {
		h.RetryCount = DefaultRetryCount
	}
	if h.RetryWaitTime == 0 {
		h.RetryWaitTime = DefaultRetryWaitTime
	}
	if h.RetryMaxWaitTime == 0 {
		h.RetryMaxWaitTime = DefaultRetryMaxWaitTime
	}
	if h.TimeOut == 0 {
		h.TimeOut = DefaultTimeout
	}
	if h.UserAgent == "" {
		h.UserAgent = DefaultUserAgent
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}
