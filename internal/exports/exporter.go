package exports

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pwnholic/mobilitywatch/internal"
	"github.com/pwnholic/mobilitywatch/internal/capture"
	"github.com/pwnholic/mobilitywatch/internal/report"
	"github.com/pwnholic/mobilitywatch/internal/table"
	"github.com/pwnholic/mobilitywatch/internal/visual"
)

const (
	DefaultBase = "export"
	TitlePrefix = "EA Mobility Watch - "

	chartFailed = "Failed to download chart. Please try again."
	pdfFailed   = "Failed to generate PDF. Please try again."
	dataFailed  = "Failed to export data. Please try again."
)

// Request is one user-triggered export. Data is anything for JSON and must
// be table shaped (see table.FromAny) for CSV and tabular PDF. Visual is
// required for PNG and SVG.
type Request struct {
	Data         any
	Visual       visual.Element
	FilenameBase string
	Scope        string
	// Title overrides the derived PDF title.
	Title string
	// Headers picks and orders CSV columns.
	Headers []string
}

func (r Request) base() string {
	if r.FilenameBase == "" {
		return DefaultBase
	}
	return r.FilenameBase
}

// ReportTitle is the PDF heading for the request.
func (r Request) ReportTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return TitlePrefix + strings.ToUpper(strings.ReplaceAll(r.base(), "-", " "))
}

// Exporter dispatches export requests to the serializer, capturer or report
// composer and saves the result. Bad input is logged as a warning and
// capture or report failures are alerted; neither is returned. Export only
// fails when the Saver does.
type Exporter struct {
	Saver      Saver
	Capturer   capture.Capturer
	Composer   *report.Composer
	Namer      *Namer
	Logger     *internal.Logger
	Alerter    Alerter
	PNGScale   float64
	PrettyJSON bool
}

// New wires an Exporter around a single capturer shared with the composer.
func New(saver Saver, capturer capture.Capturer, builder report.Builder) *Exporter {
	return &Exporter{
		Saver:      saver,
		Capturer:   capturer,
		Composer:   report.NewComposer(builder, capturer),
		Namer:      NewNamer(),
		Logger:     internal.GetDefaultLogger().With("exports"),
		PNGScale:   capture.DefaultScale,
		PrettyJSON: true,
	}
}

func (e *Exporter) log() *internal.Logger {
	if e.Logger == nil {
		return internal.GetDefaultLogger()
	}
	return e.Logger
}

func (e *Exporter) alert(message string, err error) {
	e.log().Error("%s: %v", strings.TrimSuffix(message, " Please try again."), err)
	if e.Alerter != nil {
		e.Alerter.Alert(message)
	}
}

func (e *Exporter) namer() *Namer {
	if e.Namer == nil {
		return NewNamer()
	}
	return e.Namer
}

func (e *Exporter) save(data []byte, base, scope string, f Format) error {
	filename := e.namer().Generate(base, scope, f.Ext())
	if err := e.Saver.Save(data, filename, f.MIME()); err != nil {
		return fmt.Errorf("failed to save %s: %w", filename, err)
	}
	e.log().Success("Saved %s (%d bytes)", filename, len(data))
	return nil
}

// Export runs req in format f.
func (e *Exporter) Export(ctx context.Context, f Format, req Request) error {
	switch f {
	case CSV:
		return e.exportCSV(req)
	case JSON:
		return e.exportJSON(req)
	case PNG:
		_, err := e.ExportPNG(ctx, req)
		return err
	case SVG:
		return e.exportSVG(req)
	case PDF:
		return e.exportPDF(ctx, req)
	}
	e.log().Warn("Unknown export format: %s", f)
	return nil
}

// ExportName parses format and runs Export. Unknown names are warned about
// and ignored like unknown formats.
func (e *Exporter) ExportName(ctx context.Context, format string, req Request) error {
	f, err := ParseFormat(format)
	if err != nil {
		e.log().Warn("Unknown export format: %s", format)
		return nil
	}
	return e.Export(ctx, f, req)
}

func (e *Exporter) exportCSV(req Request) error {
	t, ok := table.FromAny(req.Data)
	if !ok {
		e.log().Warn("CSV export requires array data")
		return nil
	}
	return e.save([]byte(table.ToCSV(t, req.Headers)), req.base(), req.Scope, CSV)
}

func (e *Exporter) exportJSON(req Request) error {
	data, err := table.ToJSON(req.Data, e.PrettyJSON)
	if err != nil {
		e.alert(dataFailed, err)
		return nil
	}
	return e.save(data, req.base(), req.Scope, JSON)
}

// ExportPNG captures req.Visual, saves it and returns the image so it can
// be reused. It returns a nil image whenever nothing was saved.
func (e *Exporter) ExportPNG(ctx context.Context, req Request) (*capture.Image, error) {
	if req.Visual == nil {
		e.log().Warn("PNG export requires a chart element")
		return nil, nil
	}
	scale := e.PNGScale
	if scale <= 0 {
		scale = capture.DefaultScale
	}
	img, err := e.Capturer.PNG(ctx, req.Visual, scale)
	if err != nil {
		e.alert(chartFailed, err)
		return nil, nil
	}
	if err := e.save(img.Data, req.base(), req.Scope, PNG); err != nil {
		return nil, err
	}
	return img, nil
}

func (e *Exporter) exportSVG(req Request) error {
	if req.Visual == nil {
		e.log().Warn("SVG export requires a chart element")
		return nil
	}
	markup, err := e.Capturer.SVG(req.Visual)
	if err != nil {
		e.alert(chartFailed, err)
		return nil
	}
	return e.save(markup, req.base(), req.Scope, SVG)
}

// ExportPNGAndPDF saves req as a PNG and then as a PDF built around the
// same captured image. When no PNG was produced the report captures the
// chart on its own. Save errors from both are joined.
func (e *Exporter) ExportPNGAndPDF(ctx context.Context, req Request) error {
	img, pngErr := e.ExportPNG(ctx, req)
	return errors.Join(pngErr, e.exportPDFWith(ctx, req, img))
}

func (e *Exporter) exportPDF(ctx context.Context, req Request) error {
	return e.exportPDFWith(ctx, req, nil)
}

// exportPDFWith places img in the report when it is non-nil instead of
// capturing req.Visual again.
func (e *Exporter) exportPDFWith(ctx context.Context, req Request, img *capture.Image) error {
	t, isTable := table.FromAny(req.Data)
	title := req.ReportTitle()

	var (
		data []byte
		err  error
	)
	switch {
	case req.Visual != nil && isTable && img != nil:
		data, err = e.Composer.CombinedReportFromImage(ctx, img, t, title)
	case req.Visual != nil && isTable:
		data, err = e.Composer.CombinedReport(ctx, req.Visual, t, title)
	case req.Visual != nil && img != nil:
		data, err = e.Composer.ChartReportFromImage(ctx, img, title)
	case req.Visual != nil:
		data, err = e.Composer.ChartReport(ctx, req.Visual, title)
	case isTable:
		data, err = e.Composer.TableReport(ctx, t, title, req.Headers)
	default:
		e.log().Warn("PDF export requires a chart element or array data")
		return nil
	}
	if err != nil {
		e.alert(pdfFailed, err)
		return nil
	}
	return e.save(data, req.base(), req.Scope, PDF)
}
