package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pwnholic/mobilitywatch/internal"
)

// FieldError is a validation failure for one dotted config path.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "configuration validation failed: " + e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:", len(e.Errors))
	for _, err := range e.Errors {
		sb.WriteString("\n  - " + err.Error())
	}
	return sb.String()
}

func Validate(cfg *Config) error {
	var errs []FieldError
	add := func(field, format string, args ...any) {
		errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	e := cfg.Export
	if strings.ContainsAny(e.Prefix, `/\`) {
		add("export.prefix", "must not contain path separators")
	}
	if e.PNGScale <= 0 || e.PNGScale > 8 {
		add("export.png_scale", "must be in (0, 8], got %v", e.PNGScale)
	}
	if e.ChartScale <= 0 || e.ChartScale > 8 {
		add("export.chart_scale", "must be in (0, 8], got %v", e.ChartScale)
	}
	if e.Concurrency < 1 {
		add("export.concurrency", "must be >= 1, got %d", e.Concurrency)
	}

	h := cfg.HTTP
	if h.RetryCount < 0 {
		add("http.retry_count", "must be >= 0")
	}
	if h.RetryMaxWaitTime < h.RetryWaitTime {
		add("http.retry_max_wait_time", "must be >= retry_wait_time")
	}
	if h.TimeOut < 0 {
		add("http.timeout", "must be >= 0")
	}
	if h.BaseURL != "" {
		if u, err := url.Parse(h.BaseURL); err != nil || u.Host == "" {
			add("http.base_url", "invalid URL %q", h.BaseURL)
		}
	}

	if _, err := internal.ParseLevel(cfg.Log.Level); err != nil {
		add("log.level", "%v", err)
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
