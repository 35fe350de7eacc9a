package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pwnholic/mobilitywatch/internal/table"
	"github.com/pwnholic/mobilitywatch/internal/visual"
)

// Section names double as export filename bases.
const (
	SectionSummary   = "summary"
	SectionCause     = "displacement-by-cause"
	SectionMonthly   = "monthly-trend"
	SectionQuarterly = "quarterly-data"
	SectionDrivers   = "climate-vs-conflict"
	SectionComplete  = "complete"
)

// SectionNames lists every exportable dashboard panel.
var SectionNames = []string{SectionSummary, SectionCause, SectionMonthly, SectionQuarterly, SectionDrivers}

// Section is one dashboard panel: its rows and the chart drawn from them.
type Section struct {
	Name  string
	Title string
	Data  table.Table
	Chart *visual.Chart
}

// Section builds the named panel for c.
func (c Country) Section(name string) (Section, error) {
	switch name {
	case SectionSummary:
		t := c.SummaryStats()
		return Section{Name: name, Title: "Summary Statistics", Data: t,
			Chart: columnChart(visual.Bar, "Summary Statistics", t, "metric", "value")}, nil
	case SectionCause:
		ch := columnChart(visual.Pie, "Displacement by Cause", c.DisplacementByCause, "cause", "value")
		if len(ch.Categories) == 0 {
			ch = columnChart(visual.Pie, "Displacement by Cause", c.DisplacementByCause, "name", "value")
		}
		return Section{Name: name, Title: ch.Title, Data: c.DisplacementByCause, Chart: ch}, nil
	case SectionMonthly:
		return Section{Name: name, Title: "Monthly Trends", Data: c.MonthlyTrend,
			Chart: columnChart(visual.Line, "Monthly Trends", c.MonthlyTrend, "month", "climate", "conflict", "total")}, nil
	case SectionQuarterly:
		return Section{Name: name, Title: "Quarterly Breakdown", Data: c.QuarterlyData,
			Chart: columnChart(visual.Bar, "Quarterly Breakdown", c.QuarterlyData, "quarter", "drought", "flood", "conflict")}, nil
	case SectionDrivers:
		return Section{Name: name, Title: "Climate vs Conflict", Data: c.MonthlyTrend,
			Chart: columnChart(visual.Area, "Climate vs Conflict", c.MonthlyTrend, "month", "climate", "conflict")}, nil
	}
	return Section{}, fmt.Errorf("unknown section %q (want one of %s or %s)", name, strings.Join(SectionNames, ", "), SectionComplete)
}

// columnChart charts t with labelField as categories and one series per
// value field. Rows without a label are skipped; non-numeric values count
// as zero.
func columnChart(kind visual.Kind, title string, t table.Table, labelField string, valueFields ...string) *visual.Chart {
	ch := &visual.Chart{
		Kind:   kind,
		Title:  title,
		Width:  visual.DefaultWidth,
		Height: visual.DefaultHeight,
	}
	series := make([]visual.Series, len(valueFields))
	for i, f := range valueFields {
		series[i].Name = seriesName(f)
	}
	for _, rec := range t {
		label, ok := rec.Get(labelField)
		if !ok || label == nil {
			continue
		}
		ch.Categories = append(ch.Categories, table.Stringify(label))
		for i, f := range valueFields {
			v, _ := rec.Get(f)
			series[i].Values = append(series[i].Values, toFloat(v))
		}
	}
	ch.Series = series
	return ch
}

func seriesName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case uint64:
		return float64(n)
	case float64:
		return n
	case float32:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(n, ",", ""), 64)
		if err == nil {
			return f
		}
	}
	return 0
}
