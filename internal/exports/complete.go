package exports

import (
	"context"
	"strings"
	"time"

	"github.com/pwnholic/mobilitywatch/internal/report"
	"github.com/pwnholic/mobilitywatch/internal/table"
)

const (
	CompleteBase = "complete-data"
	Source       = "EA Mobility Watch Dashboard"

	isoMillis = "2006-01-02T15:04:05.000Z"
)

// CompleteData is everything the dashboard shows for one scope.
type CompleteData struct {
	TotalDisplaced      int64
	TotalIDPs           int64
	ClimateDisplaced    int64
	Returnees           int64
	DisplacementByCause table.Table
	MonthlyTrend        table.Table
	QuarterlyData       table.Table
}

// SummaryStats is the headline metrics table.
func SummaryStats(d CompleteData) table.Table {
	return table.Table{
		table.R("metric", "Total Displaced", "value", d.TotalDisplaced, "category", "Overall"),
		table.R("metric", "Total IDPs", "value", d.TotalIDPs, "category", "Overall"),
		table.R("metric", "Climate-Induced Displacement", "value", d.ClimateDisplaced, "category", "Climate"),
		table.R("metric", "Returns", "value", d.Returnees, "category", "Returns"),
	}
}

type completeMetadata struct {
	ExportDate string `json:"exportDate"`
	Country    string `json:"country"`
	Source     string `json:"source"`
}

type completeDocument struct {
	Metadata            completeMetadata `json:"metadata"`
	Summary             table.Table      `json:"summary"`
	DisplacementByCause table.Table      `json:"displacementByCause"`
	MonthlyTrend        table.Table      `json:"monthlyTrend"`
	QuarterlyData       table.Table      `json:"quarterlyData"`
}

func nonNil(t table.Table) table.Table {
	if t == nil {
		return table.Table{}
	}
	return t
}

func (e *Exporter) now() time.Time {
	if e.Namer != nil && e.Namer.Now != nil {
		return e.Namer.Now()
	}
	return time.Now()
}

func (e *Exporter) completeDocument(d CompleteData, scope string) completeDocument {
	country := scope
	if country == "" {
		country = e.namer().AllScope
	}
	if country == "" {
		country = DefaultAllScope
	}
	return completeDocument{
		Metadata: completeMetadata{
			ExportDate: e.now().UTC().Format(isoMillis),
			Country:    country,
			Source:     Source,
		},
		Summary:             SummaryStats(d),
		DisplacementByCause: nonNil(d.DisplacementByCause),
		MonthlyTrend:        nonNil(d.MonthlyTrend),
		QuarterlyData:       nonNil(d.QuarterlyData),
	}
}

// ExportComplete saves every dashboard section in one file: a JSON
// document, a sectioned CSV or a multi-section PDF.
func (e *Exporter) ExportComplete(ctx context.Context, f Format, d CompleteData, scope string) error {
	doc := e.completeDocument(d, scope)

	switch f {
	case JSON:
		data, err := table.ToJSON(doc, e.PrettyJSON)
		if err != nil {
			e.alert(dataFailed, err)
			return nil
		}
		return e.save(data, CompleteBase, scope, JSON)
	case CSV:
		return e.save([]byte(completeCSV(doc)), CompleteBase, scope, CSV)
	case PDF:
		country := scope
		if country == "" || strings.EqualFold(country, e.namer().AllScope) {
			country = "All IGAD"
		}
		data, err := e.Composer.DashboardReport(ctx, report.DashboardInfo{Title: Source, Country: country}, dashboardSections(doc))
		if err != nil {
			e.alert(pdfFailed, err)
			return nil
		}
		return e.save(data, CompleteBase, scope, PDF)
	case PNG, SVG:
		e.log().Warn("Complete export does not support %s", f)
		return nil
	}
	e.log().Warn("Unknown export format: %s", f)
	return nil
}

func completeCSV(doc completeDocument) string {
	var b strings.Builder
	b.WriteString("# EA Mobility Watch - Complete Data Export\n")
	b.WriteString("# Export Date: " + doc.Metadata.ExportDate + "\n")
	b.WriteString("# Country: " + doc.Metadata.Country + "\n\n")

	sections := []struct {
		title string
		t     table.Table
	}{
		{"Summary Statistics", doc.Summary},
		{"Displacement by Cause", doc.DisplacementByCause},
		{"Monthly Trends", doc.MonthlyTrend},
		{"Quarterly Data", doc.QuarterlyData},
	}
	for i, s := range sections {
		b.WriteString("# " + s.title + "\n")
		b.WriteString(table.ToCSV(s.t, nil))
		if i < len(sections)-1 {
			b.WriteString("\n\n")
		} else {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// label returns the first present, non-empty field of names.
func label(rec table.Record, names ...string) any {
	for _, name := range names {
		if v, ok := rec.Get(name); ok && v != nil && v != "" {
			return v
		}
	}
	return ""
}

// number returns rec[name], or 0 when it is missing or null.
func number(rec table.Record, name string) any {
	if v, ok := rec.Get(name); ok && v != nil && v != "" {
		return v
	}
	return int64(0)
}

func dashboardSections(doc completeDocument) []report.Section {
	rows := func(t table.Table, cells func(table.Record) []any) [][]any {
		out := make([][]any, len(t))
		for i, rec := range t {
			out[i] = cells(rec)
		}
		return out
	}

	return []report.Section{
		{
			Title:   "Summary Statistics",
			Headers: []string{"Metric", "Value", "Category"},
			Rows: rows(doc.Summary, func(r table.Record) []any {
				return []any{label(r, "metric"), number(r, "value"), label(r, "category")}
			}),
		},
		{
			Title:   "Displacement by Cause",
			Headers: []string{"Cause", "Value", "Percentage"},
			Rows: rows(doc.DisplacementByCause, func(r table.Record) []any {
				return []any{label(r, "cause", "name"), number(r, "value"), table.Stringify(number(r, "percentage")) + "%"}
			}),
		},
		{
			Title:   "Monthly Trends",
			Headers: []string{"Month", "Climate", "Conflict"},
			Rows: rows(doc.MonthlyTrend, func(r table.Record) []any {
				return []any{label(r, "month"), number(r, "climate"), number(r, "conflict")}
			}),
		},
		{
			Title:   "Quarterly Breakdown",
			Headers: []string{"Quarter", "Drought", "Flood", "Conflict"},
			Rows: rows(doc.QuarterlyData, func(r table.Record) []any {
				return []any{label(r, "quarter"), number(r, "drought"), number(r, "flood"), number(r, "conflict")}
			}),
		},
	}
}
