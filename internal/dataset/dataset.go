// Package dataset holds the per-country displacement figures the dashboard
// exports, and knows how to load them from YAML, JSON or JSONC.
package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pwnholic/mobilitywatch/internal/exports"
	"github.com/pwnholic/mobilitywatch/internal/table"
)

// AllCode is the aggregate entry for the whole IGAD region.
const AllCode = "ALL"

var ErrUnknownCountry = errors.New("unknown country")

type CountryInfo struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
}

type Country struct {
	TotalDisplaced      int64       `yaml:"totalDisplaced" json:"totalDisplaced"`
	TotalIDPs           int64       `yaml:"totalIDPs" json:"totalIDPs"`
	Returnees           int64       `yaml:"returnees" json:"returnees"`
	ClimateDisplaced    int64       `yaml:"climateDisplaced" json:"climateDisplaced"`
	ConflictDisplaced   int64       `yaml:"conflictDisplaced" json:"conflictDisplaced"`
	DisplacementByCause table.Table `yaml:"displacementByCause" json:"displacementByCause"`
	MonthlyTrend        table.Table `yaml:"monthlyTrend" json:"monthlyTrend"`
	QuarterlyData       table.Table `yaml:"quarterlyData" json:"quarterlyData"`
}

// Complete is the full-dashboard view of c.
func (c Country) Complete() exports.CompleteData {
	return exports.CompleteData{
		TotalDisplaced:      c.TotalDisplaced,
		TotalIDPs:           c.TotalIDPs,
		ClimateDisplaced:    c.ClimateDisplaced,
		Returnees:           c.Returnees,
		DisplacementByCause: c.DisplacementByCause,
		MonthlyTrend:        c.MonthlyTrend,
		QuarterlyData:       c.QuarterlyData,
	}
}

// SummaryStats is the headline metrics table for c.
func (c Country) SummaryStats() table.Table {
	return exports.SummaryStats(c.Complete())
}

type Dataset struct {
	Countries []CountryInfo      `yaml:"countries" json:"countries"`
	Data      map[string]Country `yaml:"data" json:"data"`
}

// Lookup returns the entry for code, matched case-insensitively. The "all"
// scope maps to the ALL aggregate.
func (d *Dataset) Lookup(code string) (Country, error) {
	key := strings.ToUpper(strings.TrimSpace(code))
	if key == "" {
		key = AllCode
	}
	c, ok := d.Data[key]
	if !ok {
		return Country{}, fmt.Errorf("%w: %q", ErrUnknownCountry, code)
	}
	return c, nil
}

// Name is the display name for code, falling back to the code itself.
func (d *Dataset) Name(code string) string {
	for _, c := range d.Countries {
		if strings.EqualFold(c.Code, code) {
			return c.Name
		}
	}
	return code
}

// Codes lists the country codes that have data, ALL first.
func (d *Dataset) Codes() []string {
	codes := make([]string, 0, len(d.Data))
	for code := range d.Data {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		if codes[i] == AllCode || codes[j] == AllCode {
			return codes[i] == AllCode
		}
		return codes[i] < codes[j]
	})
	return codes
}

func (d *Dataset) validate() error {
	if len(d.Data) == 0 {
		return errors.New("dataset has no country data")
	}
	normalized := make(map[string]Country, len(d.Data))
	for code, c := range d.Data {
		key := strings.ToUpper(code)
		if _, dup := normalized[key]; dup {
			return fmt.Errorf("duplicate country code %q", key)
		}
		if c.TotalDisplaced < 0 || c.TotalIDPs < 0 || c.Returnees < 0 || c.ClimateDisplaced < 0 || c.ConflictDisplaced < 0 {
			return fmt.Errorf("country %s: negative total", key)
		}
		normalized[key] = c
	}
	d.Data = normalized
	return nil
}
