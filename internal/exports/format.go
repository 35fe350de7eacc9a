// Package exports turns dashboard data and charts into downloadable files.
package exports

import (
	"fmt"
	"strings"
)

type Format int

const (
	CSV Format = iota + 1
	JSON
	PNG
	SVG
	PDF
)

// Formats lists every supported format in menu order.
var Formats = []Format{CSV, JSON, PNG, SVG, PDF}

func (f Format) String() string {
	switch f {
	case CSV:
		return "csv"
	case JSON:
		return "json"
	case PNG:
		return "png"
	case SVG:
		return "svg"
	case PDF:
		return "pdf"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// Ext is the file extension written for f.
func (f Format) Ext() string {
	return f.String()
}

func (f Format) MIME() string {
	switch f {
	case CSV:
		return "text/csv;charset=utf-8"
	case JSON:
		return "application/json"
	case PNG:
		return "image/png"
	case SVG:
		return "image/svg+xml;charset=utf-8"
	case PDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, f := range Formats {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown export format %q", s)
}

// ParseFormats parses a comma separated list such as "csv,json,pdf".
// Duplicates are dropped.
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	seen := make(map[Format]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no export format in %q", s)
	}
	return out, nil
}
