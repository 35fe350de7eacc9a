package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pwnholic/mobilitywatch/internal/capture"
	"github.com/pwnholic/mobilitywatch/internal/table"
	"github.com/pwnholic/mobilitywatch/internal/visual"
)

const (
	// DefaultChartScale is the capture factor for charts embedded in a
	// PDF, lower than a standalone PNG to keep files small.
	DefaultChartScale = 1.5
	DefaultProduct    = "EA Mobility Watch Dashboard"

	// keepRows is how many body rows must fit below a section heading
	// before the section is moved to a fresh page.
	keepRows = 3

	timestampLayout = "1/2/2006, 3:04:05 PM"
)

var (
	Margin        = MM(14)
	SectionGap    = MM(10)
	HeadingHeight = MM(7)
)

// Section is one titled table of a multi-section report. Cells are raw
// values; numbers are rendered with thousands separators.
type Section struct {
	Title   string
	Headers []string
	Rows    [][]any
}

// DashboardInfo heads the full-dashboard report.
type DashboardInfo struct {
	Title   string
	Country string
}

// Composer lays out reports on documents from Builder. Charts are captured
// through Capturer.
type Composer struct {
	Builder    Builder
	Capturer   capture.Capturer
	Product    string
	ChartScale float64
	Now        func() time.Time
}

func NewComposer(b Builder, c capture.Capturer) *Composer {
	return &Composer{
		Builder:    b,
		Capturer:   c,
		Product:    DefaultProduct,
		ChartScale: DefaultChartScale,
		Now:        time.Now,
	}
}

var ErrNoImage = errors.New("no image to embed")

func (c *Composer) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Composer) chartScale() float64 {
	if c.ChartScale <= 0 {
		return DefaultChartScale
	}
	return c.ChartScale
}

func (c *Composer) open(o Orientation, title string) (Document, error) {
	doc, err := c.Builder.NewDocument(o, Info{
		Title:   title,
		Subject: c.Product,
		Creator: c.Product,
		Created: c.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return doc, nil
}

func finish(doc Document) ([]byte, error) {
	data, err := doc.Bytes()
	closeErr := doc.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to close document: %w", closeErr)
	}
	return data, nil
}

func (c *Composer) header(doc Document, title string, titleSize float64) (float64, error) {
	if err := doc.Text(Margin, MM(14), TextStyle{Size: titleSize, Bold: true, Color: Black}, title); err != nil {
		return 0, err
	}
	meta := TextStyle{Size: 10, Color: Gray}
	if err := doc.Text(Margin, MM(24), meta, "Generated: "+c.now().Format(timestampLayout)); err != nil {
		return 0, err
	}
	if err := doc.Text(Margin, MM(30), meta, c.Product); err != nil {
		return 0, err
	}
	return MM(40), nil
}

func dataTableStyle() TableStyle {
	return TableStyle{
		HeaderFill: BrandBlue,
		HeaderText: White,
		Striped:    true,
		StripeFill: Stripe,
		Border:     GridLine,
		FontSize:   9,
		RowHeight:  MM(7),
	}
}

// TableReport renders t under a title and timestamp. Headers default to
// the first record's fields; an empty table prints a notice instead.
func (c *Composer) TableReport(ctx context.Context, t table.Table, title string, headers []string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := c.open(Portrait, title)
	if err != nil {
		return nil, err
	}

	y, err := c.header(doc, title, 18)
	if err == nil {
		_, err = c.tableSection(doc, y, t, headers)
	}
	if err != nil {
		doc.Close()
		return nil, err
	}
	return finish(doc)
}

func (c *Composer) tableSection(doc Document, y float64, t table.Table, headers []string) (float64, error) {
	if len(t) == 0 {
		if err := doc.Text(Margin, y+MM(2), TextStyle{Size: 12, Color: Gray}, "No data available"); err != nil {
			return y, err
		}
		return y + MM(10), nil
	}
	if len(headers) == 0 {
		headers = t.Headers()
	}
	width, _ := doc.PageSize()
	return doc.Table(Margin, y, width-2*Margin, TableBlock{
		Headers: headers,
		Rows:    t.Rows(headers, table.Grouped),
		Style:   dataTableStyle(),
	})
}

// ChartReport captures el and places it on a single page, landscape when
// the capture is wider than tall.
func (c *Composer) ChartReport(ctx context.Context, el visual.Element, title string) ([]byte, error) {
	img, err := c.Capturer.PNG(ctx, el, c.chartScale())
	if err != nil {
		return nil, fmt.Errorf("failed to capture chart: %w", err)
	}
	return c.ChartReportFromImage(ctx, img, title)
}

// ChartReportFromImage is ChartReport for an image captured earlier.
func (c *Composer) ChartReportFromImage(ctx context.Context, img *capture.Image, title string) ([]byte, error) {
	if img == nil || len(img.Data) == 0 || img.Width < 1 || img.Height < 1 {
		return nil, ErrNoImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	orientation := Portrait
	if img.Landscape() {
		orientation = Landscape
	}
	doc, err := c.open(orientation, title)
	if err != nil {
		return nil, err
	}

	if err := c.placeChart(doc, img, title); err != nil {
		doc.Close()
		return nil, err
	}
	return finish(doc)
}

func (c *Composer) placeChart(doc Document, img *capture.Image, title string) error {
	if err := doc.Text(Margin, MM(10), TextStyle{Size: 16, Bold: true, Color: Black}, title); err != nil {
		return err
	}
	if err := doc.Text(Margin, MM(19), TextStyle{Size: 8, Color: Gray}, "Generated: "+c.now().Format(timestampLayout)); err != nil {
		return err
	}

	pageW, pageH := doc.PageSize()
	w, h := FitImage(img.Width, img.Height, pageW-2*Margin, pageH-MM(40))
	return doc.Image(img.Data, Margin, MM(28), w, h)
}

// FitImage scales a width x height picture to maxW, preserving aspect
// ratio, then shrinks it further if it is taller than maxH.
func FitImage(width, height int, maxW, maxH float64) (float64, float64) {
	w := maxW
	h := float64(height) * w / float64(width)
	if h > maxH {
		h = maxH
		w = float64(width) * h / float64(height)
	}
	return w, h
}

// CombinedReport puts the captured chart above a table of t on portrait
// A4. The image shrinks to the space left on the first page; the table
// moves to a new page when its heading rows would not fit.
func (c *Composer) CombinedReport(ctx context.Context, el visual.Element, t table.Table, title string) ([]byte, error) {
	img, err := c.Capturer.PNG(ctx, el, c.chartScale())
	if err != nil {
		return nil, fmt.Errorf("failed to capture chart: %w", err)
	}
	return c.CombinedReportFromImage(ctx, img, t, title)
}

// CombinedReportFromImage is CombinedReport for an image captured earlier.
func (c *Composer) CombinedReportFromImage(ctx context.Context, img *capture.Image, t table.Table, title string) ([]byte, error) {
	if img == nil || len(img.Data) == 0 || img.Width < 1 || img.Height < 1 {
		return nil, ErrNoImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := c.open(Portrait, title)
	if err != nil {
		return nil, err
	}

	if err := c.combined(doc, img, t, title); err != nil {
		doc.Close()
		return nil, err
	}
	return finish(doc)
}

func (c *Composer) combined(doc Document, img *capture.Image, t table.Table, title string) error {
	y, err := c.header(doc, title, 18)
	if err != nil {
		return err
	}
	y += MM(5)

	pageW, pageH := doc.PageSize()
	w, h := FitImage(img.Width, img.Height, pageW-2*Margin, pageH-BottomMargin-y)
	if err := doc.Image(img.Data, Margin, y, w, h); err != nil {
		return err
	}
	y += h + SectionGap

	y = c.breakIfNeeded(doc, y, 0, len(t))
	_, err = c.tableSection(doc, y, t, nil)
	return err
}

// breakIfNeeded starts a new page when a section with a heading of
// headingH and rows body rows would not fit its header row plus keepRows
// rows below y. It returns the y to continue from.
func (c *Composer) breakIfNeeded(doc Document, y, headingH float64, rows int) float64 {
	_, pageH := doc.PageSize()
	need := headingH + float64(1+min(rows, keepRows))*dataTableStyle().RowHeight
	if y+need > pageH-BottomMargin {
		doc.AddPage()
		return TopMargin
	}
	return y
}

// DashboardReport renders the full-dashboard export: a branded header
// followed by each section as its own titled table.
func (c *Composer) DashboardReport(ctx context.Context, info DashboardInfo, sections []Section) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	title := info.Title
	if title == "" {
		title = c.Product
	}
	doc, err := c.open(Portrait, title)
	if err != nil {
		return nil, err
	}
	if err := c.dashboard(ctx, doc, title, info.Country, sections); err != nil {
		doc.Close()
		return nil, err
	}
	return finish(doc)
}

func (c *Composer) dashboard(ctx context.Context, doc Document, title, country string, sections []Section) error {
	if err := doc.Text(Margin, MM(14), TextStyle{Size: 20, Bold: true, Color: BrandBlue}, title); err != nil {
		return err
	}
	meta := TextStyle{Size: 10, Color: Gray}
	if err := doc.Text(Margin, MM(24), meta, "Export Date: "+c.now().Format(timestampLayout)); err != nil {
		return err
	}
	if err := doc.Text(Margin, MM(29), meta, "Country/Region: "+country); err != nil {
		return err
	}

	width, _ := doc.PageSize()
	style := dataTableStyle()
	style.Striped = false

	y := MM(38)
	for _, s := range sections {
		if err := ctx.Err(); err != nil {
			return err
		}
		y = c.breakIfNeeded(doc, y, HeadingHeight, len(s.Rows))
		if err := doc.Text(Margin, y, TextStyle{Size: 14, Bold: true, Color: Black}, s.Title); err != nil {
			return err
		}
		y += HeadingHeight

		rows := make([][]string, len(s.Rows))
		for i, row := range s.Rows {
			cells := make([]string, len(s.Headers))
			for j := range cells {
				if j < len(row) {
					cells[j] = table.Grouped(row[j])
				}
			}
			rows[i] = cells
		}
		end, err := doc.Table(Margin, y, width-2*Margin, TableBlock{Headers: s.Headers, Rows: rows, Style: style})
		if err != nil {
			return fmt.Errorf("section %q: %w", s.Title, err)
		}
		y = end + SectionGap
	}
	return nil
}
