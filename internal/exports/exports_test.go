package exports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pwnholic/mobilitywatch/internal"
	"github.com/pwnholic/mobilitywatch/internal/capture"
	"github.com/pwnholic/mobilitywatch/internal/report"
	"github.com/pwnholic/mobilitywatch/internal/table"
	"github.com/pwnholic/mobilitywatch/internal/visual"
)

type savedFile struct {
	data     []byte
	filename string
	mime     string
}

type recordingSaver struct {
	files []savedFile
	err   error
}

func (s *recordingSaver) Save(data []byte, filename, mime string) error {
	if s.err != nil {
		return s.err
	}
	s.files = append(s.files, savedFile{data: data, filename: filename, mime: mime})
	return nil
}

type recordingAlerter struct {
	messages []string
}

func (a *recordingAlerter) Alert(message string) {
	a.messages = append(a.messages, message)
}

// recordingDocument keeps the order of drawing calls.
type recordingDocument struct {
	calls []string
}

func (d *recordingDocument) PageSize() (float64, float64) { return 595.28, 841.89 }
func (d *recordingDocument) AddPage()                     { d.calls = append(d.calls, "page") }
func (d *recordingDocument) Text(_, _ float64, _ report.TextStyle, text string) error {
	d.calls = append(d.calls, "text:"+text)
	return nil
}
func (d *recordingDocument) Image([]byte, float64, float64, float64, float64) error {
	d.calls = append(d.calls, "image")
	return nil
}
func (d *recordingDocument) Table(_, y, _ float64, t report.TableBlock) (float64, error) {
	d.calls = append(d.calls, "table:"+strings.Join(t.Headers, "|"))
	return y + 20, nil
}
func (d *recordingDocument) Bytes() ([]byte, error) { return []byte("%PDF-1.4 recorded"), nil }
func (d *recordingDocument) Close() error           { return nil }

type recordingBuilder struct {
	docs []*recordingDocument
	err  error
}

func (b *recordingBuilder) NewDocument(report.Orientation, report.Info) (report.Document, error) {
	if b.err != nil {
		return nil, b.err
	}
	d := &recordingDocument{}
	b.docs = append(b.docs, d)
	return d, nil
}

var day = time.Date(2025, 3, 7, 23, 30, 0, 0, time.UTC)

type harness struct {
	exporter *Exporter
	saver    *recordingSaver
	alerter  *recordingAlerter
	builder  *recordingBuilder
	logs     *bytes.Buffer
}

func newHarness(capturer capture.Capturer) *harness {
	h := &harness{
		saver:   &recordingSaver{},
		alerter: &recordingAlerter{},
		builder: &recordingBuilder{},
		logs:    &bytes.Buffer{},
	}
	e := New(h.saver, capturer, h.builder)
	e.Logger = internal.NewLogger(h.logs, internal.DEBUG)
	e.Alerter = h.alerter
	e.Namer.Now = func() time.Time { return day }
	e.Composer.Now = func() time.Time { return day }
	h.exporter = e
	return h
}

func (h *harness) warnings() int {
	return strings.Count(h.logs.String(), "[WARNING]")
}

type stubCapturer struct {
	img      *capture.Image
	svg      []byte
	err      error
	pngCalls int
}

func (c *stubCapturer) PNG(context.Context, visual.Element, float64) (*capture.Image, error) {
	c.pngCalls++
	return c.img, c.err
}

func (c *stubCapturer) SVG(visual.Element) ([]byte, error) {
	return c.svg, c.err
}

func rows() table.Table {
	return table.Table{
		table.R("country", "Sudan, South", "displaced", int64(2300000)),
		table.R("country", "Kenya", "displaced", int64(1100000)),
	}
}

func chartElement() *visual.Chart {
	return &visual.Chart{
		Kind:       visual.Line,
		Title:      "Monthly",
		Width:      300,
		Height:     150,
		Categories: []string{"Jan", "Feb"},
		Series:     []visual.Series{{Name: "Total", Values: []float64{1, 2}}},
	}
}

func TestNamer_Generate(t *testing.T) {
	n := NewNamer()
	n.Now = func() time.Time { return day }

	require.Equal(t, "ea-mobility-watch_summary_KEN_2025-03-07", n.Generate("summary", "KEN", ""))
	require.Equal(t, n.Generate("summary", "KEN", ""), n.Generate("summary", "KEN", ""))
	require.Equal(t, "ea-mobility-watch_summary_2025-03-07", n.Generate("summary", "all", ""))
	require.Equal(t, "ea-mobility-watch_summary_2025-03-07", n.Generate("summary", "ALL", ""))
	require.Equal(t, "ea-mobility-watch_summary_2025-03-07.csv", n.Generate("summary", "", "csv"))
	require.Equal(t, "ea-mobility-watch_summary_XYZ_2025-03-07.pdf", n.Generate("summary", "XYZ", "pdf"))
}

func TestNamer_UsesUTCDate(t *testing.T) {
	east := time.FixedZone("EAT", 3*60*60)
	n := &Namer{Now: func() time.Time { return time.Date(2025, 3, 8, 1, 0, 0, 0, east) }}
	require.Equal(t, "ea-mobility-watch_x_2025-03-07", n.Generate("x", "", ""))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" PDF ")
	require.NoError(t, err)
	require.Equal(t, PDF, f)
	require.Equal(t, "pdf", f.Ext())
	require.Equal(t, "application/pdf", f.MIME())

	_, err = ParseFormat("xlsx")
	require.Error(t, err)

	fs, err := ParseFormats("csv,json,csv, pdf")
	require.NoError(t, err)
	require.Equal(t, []Format{CSV, JSON, PDF}, fs)

	_, err = ParseFormats(" , ")
	require.Error(t, err)
}

func TestExport_CSV(t *testing.T) {
	h := newHarness(&stubCapturer{})
	err := h.exporter.Export(context.Background(), CSV, Request{Data: rows(), FilenameBase: "by-country", Scope: "KEN"})
	require.NoError(t, err)

	require.Len(t, h.saver.files, 1)
	f := h.saver.files[0]
	require.Equal(t, "ea-mobility-watch_by-country_KEN_2025-03-07.csv", f.filename)
	require.Equal(t, "text/csv;charset=utf-8", f.mime)
	require.Equal(t, "country,displaced\n\"Sudan, South\",2300000\nKenya,1100000", string(f.data))
	require.Zero(t, h.warnings())
}

func TestExport_CSVRequiresArrayData(t *testing.T) {
	for _, data := range []any{nil, map[string]any{"a": 1}, "text", 42} {
		h := newHarness(&stubCapturer{})
		require.NoError(t, h.exporter.Export(context.Background(), CSV, Request{Data: data}))
		require.Empty(t, h.saver.files)
		require.Equal(t, 1, h.warnings())
		require.Empty(t, h.alerter.messages)
	}
}

func TestExport_CSVEmptyTableSavesEmptyFile(t *testing.T) {
	h := newHarness(&stubCapturer{})
	require.NoError(t, h.exporter.Export(context.Background(), CSV, Request{Data: []any{}}))
	require.Len(t, h.saver.files, 1)
	require.Empty(t, h.saver.files[0].data)
}

func TestExport_JSONAcceptsAnything(t *testing.T) {
	h := newHarness(&stubCapturer{})
	data := map[string]any{"total": 19365000, "countries": []string{"KEN", "SSD"}}
	require.NoError(t, h.exporter.Export(context.Background(), JSON, Request{Data: data, FilenameBase: "summary", Scope: "all"}))

	require.Len(t, h.saver.files, 1)
	f := h.saver.files[0]
	require.Equal(t, "ea-mobility-watch_summary_2025-03-07.json", f.filename)
	require.Contains(t, string(f.data), "\n  \"countries\"")

	var back map[string]any
	require.NoError(t, json.Unmarshal(f.data, &back))
	require.Equal(t, float64(19365000), back["total"])
}

func TestExport_JSONEncodingFailureAlerts(t *testing.T) {
	h := newHarness(&stubCapturer{})
	require.NoError(t, h.exporter.Export(context.Background(), JSON, Request{Data: func() {}}))
	require.Empty(t, h.saver.files)
	require.Len(t, h.alerter.messages, 1)
}

func TestExport_PNG(t *testing.T) {
	img := &capture.Image{Data: []byte("png"), Width: 10, Height: 5}
	h := newHarness(&stubCapturer{img: img})

	got, err := h.exporter.ExportPNG(context.Background(), Request{Visual: chartElement(), FilenameBase: "trend"})
	require.NoError(t, err)
	require.Same(t, img, got)
	require.Len(t, h.saver.files, 1)
	require.Equal(t, "image/png", h.saver.files[0].mime)
	require.Equal(t, "ea-mobility-watch_trend_2025-03-07.png", h.saver.files[0].filename)
}

func TestExport_VisualRequired(t *testing.T) {
	for _, f := range []Format{PNG, SVG} {
		h := newHarness(&stubCapturer{})
		require.NoError(t, h.exporter.Export(context.Background(), f, Request{Data: rows()}))
		require.Empty(t, h.saver.files)
		require.Equal(t, 1, h.warnings(), f.String())
	}
}

func TestExport_CaptureFailureAlertsOnce(t *testing.T) {
	for _, f := range []Format{PNG, SVG, PDF} {
		h := newHarness(&stubCapturer{err: capture.ErrNoVectorContent})
		require.NoError(t, h.exporter.Export(context.Background(), f, Request{Visual: chartElement(), Data: rows()}))
		require.Empty(t, h.saver.files, f.String())
		require.Len(t, h.alerter.messages, 1, f.String())
		require.Zero(t, h.warnings())
	}
}

func TestExport_SVGNoVectorContentSavesNothing(t *testing.T) {
	h := newHarness(capture.New())
	markup := &visual.Markup{Label: "cause", HTML: []byte(`<div><canvas></canvas></div>`)}
	require.NoError(t, h.exporter.Export(context.Background(), SVG, Request{Visual: markup}))
	require.Empty(t, h.saver.files)
	require.Equal(t, []string{"Failed to download chart. Please try again."}, h.alerter.messages)
}

func TestExport_SVGFromMarkup(t *testing.T) {
	h := newHarness(capture.New())
	markup := &visual.Markup{HTML: []byte(`<div><svg width="4" height="4"><circle r="2"></circle></svg></div>`)}
	require.NoError(t, h.exporter.Export(context.Background(), SVG, Request{Visual: markup, FilenameBase: "cause", Scope: "SSD"}))
	require.Len(t, h.saver.files, 1)
	f := h.saver.files[0]
	require.Equal(t, "ea-mobility-watch_cause_SSD_2025-03-07.svg", f.filename)
	require.True(t, strings.HasPrefix(string(f.data), "<svg"))
	require.Contains(t, string(f.data), capture.SVGNamespace)
}

func TestExport_PDFByInputShape(t *testing.T) {
	img := &capture.Image{Data: []byte("png"), Width: 200, Height: 100}

	h := newHarness(&stubCapturer{img: img})
	require.NoError(t, h.exporter.Export(context.Background(), PDF, Request{Visual: chartElement(), Data: rows(), FilenameBase: "monthly-trend"}))
	require.Len(t, h.saver.files, 1)
	require.Equal(t, "application/pdf", h.saver.files[0].mime)
	calls := h.builder.docs[0].calls
	require.Equal(t, "text:EA Mobility Watch - MONTHLY TREND", calls[0])
	imageAt, tableAt := indexOf(calls, "image"), indexOf(calls, "table:country|displaced")
	require.GreaterOrEqual(t, imageAt, 0)
	require.Greater(t, tableAt, imageAt)

	h = newHarness(&stubCapturer{img: img})
	require.NoError(t, h.exporter.Export(context.Background(), PDF, Request{Visual: chartElement()}))
	require.Contains(t, h.builder.docs[0].calls, "image")
	require.Equal(t, -1, indexOf(h.builder.docs[0].calls, "table:country|displaced"))

	h = newHarness(&stubCapturer{img: img})
	require.NoError(t, h.exporter.Export(context.Background(), PDF, Request{Data: rows(), Title: "Custom"}))
	require.Equal(t, "text:Custom", h.builder.docs[0].calls[0])
	require.NotContains(t, h.builder.docs[0].calls, "image")

	h = newHarness(&stubCapturer{img: img})
	require.NoError(t, h.exporter.Export(context.Background(), PDF, Request{Data: "nope"}))
	require.Empty(t, h.saver.files)
	require.Empty(t, h.builder.docs)
	require.Equal(t, 1, h.warnings())
}

func TestExportPNGAndPDF_CapturesOnce(t *testing.T) {
	img := &capture.Image{Data: []byte("png"), Width: 200, Height: 100}

	capt := &stubCapturer{img: img}
	h := newHarness(capt)
	req := Request{Visual: chartElement(), Data: rows(), FilenameBase: "monthly-trend"}
	require.NoError(t, h.exporter.ExportPNGAndPDF(context.Background(), req))
	require.Equal(t, 1, capt.pngCalls)
	require.Len(t, h.saver.files, 2)
	require.Equal(t, "image/png", h.saver.files[0].mime)
	require.Equal(t, "application/pdf", h.saver.files[1].mime)
	calls := h.builder.docs[0].calls
	require.Greater(t, indexOf(calls, "table:country|displaced"), indexOf(calls, "image"))

	capt = &stubCapturer{img: img}
	h = newHarness(capt)
	require.NoError(t, h.exporter.ExportPNGAndPDF(context.Background(), Request{Visual: chartElement()}))
	require.Equal(t, 1, capt.pngCalls)
	require.Len(t, h.saver.files, 2)
	require.Contains(t, h.builder.docs[0].calls, "image")
}

func TestExportPNGAndPDF_CaptureFailureAlertsPerFormat(t *testing.T) {
	h := newHarness(&stubCapturer{err: capture.ErrBlankCapture})
	require.NoError(t, h.exporter.ExportPNGAndPDF(context.Background(), Request{Visual: chartElement(), Data: rows()}))
	require.Empty(t, h.saver.files)
	require.Equal(t, []string{
		"Failed to download chart. Please try again.",
		"Failed to generate PDF. Please try again.",
	}, h.alerter.messages)
}

func TestExportPNGAndPDF_JoinsSaveErrors(t *testing.T) {
	h := newHarness(&stubCapturer{img: &capture.Image{Data: []byte("png"), Width: 2, Height: 1}})
	h.saver.err = errors.New("disk full")
	err := h.exporter.ExportPNGAndPDF(context.Background(), Request{Visual: chartElement(), Data: rows()})
	require.ErrorContains(t, err, ".png")
	require.ErrorContains(t, err, ".pdf")
}

func TestExport_DegenerateChartsRender(t *testing.T) {
	charts := map[string]*visual.Chart{
		"line-one-month": {Kind: visual.Line, Categories: []string{"Jan"},
			Series: []visual.Series{{Name: "Total", Values: []float64{47000}}}},
		"area-one-month": {Kind: visual.Area, Categories: []string{"Jan"},
			Series: []visual.Series{{Name: "Climate", Values: []float64{38000}}, {Name: "Conflict", Values: []float64{9000}}}},
		"bar-all-zero": {Kind: visual.Bar, Categories: []string{"Total Displaced", "Returns"},
			Series: []visual.Series{{Name: "Value", Values: []float64{0, 0}}}},
	}
	for name, ch := range charts {
		t.Run(name, func(t *testing.T) {
			h := newHarness(capture.New())
			h.exporter.Composer.Builder = report.NewPDFBuilder()
			req := Request{Visual: ch, Data: rows(), FilenameBase: name}
			for _, f := range []Format{PNG, SVG, PDF} {
				require.NoError(t, h.exporter.Export(context.Background(), f, req))
			}
			require.Empty(t, h.alerter.messages)
			require.Len(t, h.saver.files, 3)
		})
	}
}

func TestExport_PDFBuilderFailureAlerts(t *testing.T) {
	h := newHarness(&stubCapturer{})
	h.builder.err = errors.New("font missing")
	require.NoError(t, h.exporter.Export(context.Background(), PDF, Request{Data: rows()}))
	require.Empty(t, h.saver.files)
	require.Equal(t, []string{"Failed to generate PDF. Please try again."}, h.alerter.messages)
}

func TestExport_UnknownFormatWarns(t *testing.T) {
	h := newHarness(&stubCapturer{})
	require.NoError(t, h.exporter.Export(context.Background(), Format(99), Request{Data: rows()}))
	require.NoError(t, h.exporter.ExportName(context.Background(), "xlsx", Request{Data: rows()}))
	require.Empty(t, h.saver.files)
	require.Equal(t, 2, h.warnings())
}

func TestExport_SaveErrorIsReturned(t *testing.T) {
	h := newHarness(&stubCapturer{})
	boom := errors.New("disk full")
	h.saver.err = boom
	err := h.exporter.Export(context.Background(), CSV, Request{Data: rows()})
	require.ErrorIs(t, err, boom)
	require.Empty(t, h.alerter.messages)
}

func completeData() CompleteData {
	return CompleteData{
		TotalDisplaced:   19365000,
		TotalIDPs:        13250000,
		ClimateDisplaced: 4200000,
		Returnees:        850000,
		DisplacementByCause: table.Table{
			table.R("name", "Conflict", "value", int64(12000000), "percentage", int64(62)),
		},
		MonthlyTrend: table.Table{
			table.R("month", "Jan", "climate", int64(300000), "conflict", int64(330000)),
		},
	}
}

func TestExportComplete_JSON(t *testing.T) {
	h := newHarness(&stubCapturer{})
	require.NoError(t, h.exporter.ExportComplete(context.Background(), JSON, completeData(), "KEN"))
	require.Len(t, h.saver.files, 1)
	f := h.saver.files[0]
	require.Equal(t, "ea-mobility-watch_complete-data_KEN_2025-03-07.json", f.filename)

	var doc struct {
		Metadata struct {
			ExportDate string `json:"exportDate"`
			Country    string `json:"country"`
			Source     string `json:"source"`
		} `json:"metadata"`
		Summary       []map[string]any `json:"summary"`
		QuarterlyData []map[string]any `json:"quarterlyData"`
	}
	require.NoError(t, json.Unmarshal(f.data, &doc))
	require.Equal(t, "2025-03-07T23:30:00.000Z", doc.Metadata.ExportDate)
	require.Equal(t, "KEN", doc.Metadata.Country)
	require.Equal(t, Source, doc.Metadata.Source)
	require.Len(t, doc.Summary, 4)
	require.Equal(t, "Total Displaced", doc.Summary[0]["metric"])
	require.NotNil(t, doc.QuarterlyData)
	require.Empty(t, doc.QuarterlyData)
	require.Less(t, strings.Index(string(f.data), `"metric"`), strings.Index(string(f.data), `"category"`))
}

func TestExportComplete_CSV(t *testing.T) {
	h := newHarness(&stubCapturer{})
	require.NoError(t, h.exporter.ExportComplete(context.Background(), CSV, completeData(), ""))
	require.Len(t, h.saver.files, 1)
	f := h.saver.files[0]
	require.Equal(t, "ea-mobility-watch_complete-data_2025-03-07.csv", f.filename)

	want := "# EA Mobility Watch - Complete Data Export\n" +
		"# Export Date: 2025-03-07T23:30:00.000Z\n" +
		"# Country: all\n\n" +
		"# Summary Statistics\n" +
		"metric,value,category\n" +
		"Total Displaced,19365000,Overall\n" +
		"Total IDPs,13250000,Overall\n" +
		"Climate-Induced Displacement,4200000,Climate\n" +
		"Returns,850000,Returns\n\n" +
		"# Displacement by Cause\n" +
		"name,value,percentage\n" +
		"Conflict,12000000,62\n\n" +
		"# Monthly Trends\n" +
		"month,climate,conflict\n" +
		"Jan,300000,330000\n\n" +
		"# Quarterly Data\n" +
		"\n"
	require.Equal(t, want, string(f.data))
}

func TestExportComplete_PDF(t *testing.T) {
	h := newHarness(&stubCapturer{})
	require.NoError(t, h.exporter.ExportComplete(context.Background(), PDF, completeData(), "all"))
	require.Len(t, h.saver.files, 1)

	calls := h.builder.docs[0].calls
	require.Equal(t, "text:"+Source, calls[0])
	require.Contains(t, calls, "text:Country/Region: All IGAD")
	require.Contains(t, calls, "table:Metric|Value|Category")
	require.Contains(t, calls, "table:Cause|Value|Percentage")
	require.Contains(t, calls, "table:Month|Climate|Conflict")
	require.Contains(t, calls, "table:Quarter|Drought|Flood|Conflict")
}

func TestExportComplete_PDFWithGopdf(t *testing.T) {
	saver := &recordingSaver{}
	e := New(saver, capture.New(), report.NewPDFBuilder())
	e.Logger = internal.NewLogger(nil, internal.ERROR)
	require.NoError(t, e.ExportComplete(context.Background(), PDF, completeData(), "KEN"))
	require.Len(t, saver.files, 1)
	require.True(t, bytes.HasPrefix(saver.files[0].data, []byte("%PDF")))
}

func TestExportComplete_UnsupportedFormatWarns(t *testing.T) {
	h := newHarness(&stubCapturer{})
	require.NoError(t, h.exporter.ExportComplete(context.Background(), PNG, completeData(), "KEN"))
	require.Empty(t, h.saver.files)
	require.Equal(t, 1, h.warnings())
}

func TestDirSaver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := DirSaver{Dir: dir}
	require.NoError(t, s.Save([]byte("a,b\n1,2"), "report.csv", CSV.MIME()))

	data, err := os.ReadFile(filepath.Join(dir, "report.csv"))
	require.NoError(t, err)
	require.Equal(t, "a,b\n1,2", string(data))

	require.Error(t, s.Save(nil, "../escape.csv", CSV.MIME()))
	require.Error(t, s.Save(nil, "", CSV.MIME()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func indexOf(items []string, want string) int {
	for i, item := range items {
		if item == want {
			return i
		}
	}
	return -1
}
