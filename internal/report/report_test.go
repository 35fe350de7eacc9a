package report

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pwnholic/mobilitywatch/internal/capture"
	"github.com/pwnholic/mobilitywatch/internal/table"
	"github.com/pwnholic/mobilitywatch/internal/visual"
)

type op struct {
	kind  string
	x, y  float64
	w, h  float64
	text  string
	style TextStyle
	block TableBlock
}

type fakeDocument struct {
	orientation Orientation
	info        Info
	width       float64
	height      float64
	pages       int
	ops         []op
	closed      bool
}

func (d *fakeDocument) PageSize() (float64, float64) { return d.width, d.height }

func (d *fakeDocument) AddPage() {
	d.pages++
	d.ops = append(d.ops, op{kind: "page"})
}

func (d *fakeDocument) Text(x, y float64, style TextStyle, text string) error {
	d.ops = append(d.ops, op{kind: "text", x: x, y: y, text: text, style: style})
	return nil
}

func (d *fakeDocument) Image(data []byte, x, y, w, h float64) error {
	d.ops = append(d.ops, op{kind: "image", x: x, y: y, w: w, h: h})
	return nil
}

func (d *fakeDocument) Table(x, y, w float64, t TableBlock) (float64, error) {
	d.ops = append(d.ops, op{kind: "table", x: x, y: y, w: w, block: t})
	return y + float64(1+len(t.Rows))*t.Style.RowHeight, nil
}

func (d *fakeDocument) Bytes() ([]byte, error) { return []byte("%PDF-fake"), nil }

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

func (d *fakeDocument) find(kind string) []op {
	var out []op
	for _, o := range d.ops {
		if o.kind == kind {
			out = append(out, o)
		}
	}
	return out
}

func (d *fakeDocument) texts() []string {
	var out []string
	for _, o := range d.find("text") {
		out = append(out, o.text)
	}
	return out
}

type fakeBuilder struct {
	docs []*fakeDocument
	err  error
}

func (b *fakeBuilder) NewDocument(o Orientation, info Info) (Document, error) {
	if b.err != nil {
		return nil, b.err
	}
	w, h := 595.28, 841.89
	if o == Landscape {
		w, h = h, w
	}
	d := &fakeDocument{orientation: o, info: info, width: w, height: h, pages: 1}
	b.docs = append(b.docs, d)
	return d, nil
}

func (b *fakeBuilder) last() *fakeDocument { return b.docs[len(b.docs)-1] }

type fakeCapturer struct {
	img   *capture.Image
	err   error
	scale float64
}

func (c *fakeCapturer) PNG(_ context.Context, _ visual.Element, scale float64) (*capture.Image, error) {
	c.scale = scale
	return c.img, c.err
}

func (c *fakeCapturer) SVG(visual.Element) ([]byte, error) { return nil, capture.ErrNoVectorContent }

var fixedNow = time.Date(2025, 3, 7, 14, 5, 9, 0, time.UTC)

func newComposer(b Builder, c capture.Capturer) *Composer {
	comp := NewComposer(b, c)
	comp.Now = func() time.Time { return fixedNow }
	return comp
}

func sample() table.Table {
	return table.Table{
		table.R("month", "Jan", "displaced", int64(630000)),
		table.R("month", "Feb", "displaced", int64(650000)),
	}
}

func TestTableReport_Layout(t *testing.T) {
	b := &fakeBuilder{}
	out, err := newComposer(b, nil).TableReport(context.Background(), sample(), "Monthly Trends", nil)
	require.NoError(t, err)
	require.Equal(t, "%PDF-fake", string(out))

	doc := b.last()
	require.Equal(t, Portrait, doc.orientation)
	require.Equal(t, "Monthly Trends", doc.info.Title)
	require.True(t, doc.closed)
	require.Equal(t, []string{"Monthly Trends", "Generated: 3/7/2025, 2:05:09 PM", DefaultProduct}, doc.texts())
	require.Equal(t, 18.0, doc.find("text")[0].style.Size)

	tables := doc.find("table")
	require.Len(t, tables, 1)
	tb := tables[0]
	require.InDelta(t, MM(40), tb.y, 0.001)
	require.InDelta(t, doc.width-2*MM(14), tb.w, 0.001)
	require.Equal(t, []string{"month", "displaced"}, tb.block.Headers)
	require.Equal(t, [][]string{{"Jan", "630,000"}, {"Feb", "650,000"}}, tb.block.Rows)
	require.True(t, tb.block.Style.Striped)
	require.Equal(t, BrandBlue, tb.block.Style.HeaderFill)
}

func TestTableReport_CustomHeadersAndEmpty(t *testing.T) {
	b := &fakeBuilder{}
	c := newComposer(b, nil)

	_, err := c.TableReport(context.Background(), sample(), "T", []string{"displaced"})
	require.NoError(t, err)
	require.Equal(t, []string{"displaced"}, b.last().find("table")[0].block.Headers)

	_, err = c.TableReport(context.Background(), nil, "Empty", nil)
	require.NoError(t, err)
	require.Empty(t, b.last().find("table"))
	require.Contains(t, b.last().texts(), "No data available")
}

func TestTableReport_BuilderError(t *testing.T) {
	boom := errors.New("boom")
	_, err := newComposer(&fakeBuilder{err: boom}, nil).TableReport(context.Background(), sample(), "T", nil)
	require.ErrorIs(t, err, boom)
}

func TestChartReport_OrientationAndFit(t *testing.T) {
	b := &fakeBuilder{}
	capt := &fakeCapturer{img: &capture.Image{Data: []byte{1}, Width: 1200, Height: 600}}
	c := newComposer(b, capt)

	_, err := c.ChartReport(context.Background(), &visual.Chart{}, "Trend")
	require.NoError(t, err)
	require.Equal(t, DefaultChartScale, capt.scale)

	doc := b.last()
	require.Equal(t, Landscape, doc.orientation)
	img := doc.find("image")[0]
	require.InDelta(t, MM(14), img.x, 0.001)
	require.InDelta(t, MM(28), img.y, 0.001)
	require.LessOrEqual(t, img.h, doc.height-MM(40)+0.001)
	require.InDelta(t, 2.0, img.w/img.h, 0.001)

	capt.img = &capture.Image{Data: []byte{1}, Width: 400, Height: 800}
	_, err = c.ChartReport(context.Background(), &visual.Chart{}, "Tall")
	require.NoError(t, err)
	doc = b.last()
	require.Equal(t, Portrait, doc.orientation)
	img = doc.find("image")[0]
	require.InDelta(t, doc.height-MM(40), img.h, 0.001)
	require.InDelta(t, 0.5, img.w/img.h, 0.001)
}

func TestChartReport_CaptureError(t *testing.T) {
	b := &fakeBuilder{}
	capt := &fakeCapturer{err: capture.ErrBlankCapture}
	_, err := newComposer(b, capt).ChartReport(context.Background(), &visual.Chart{}, "T")
	require.ErrorIs(t, err, capture.ErrBlankCapture)
	require.Empty(t, b.docs)

	_, err = newComposer(b, nil).ChartReportFromImage(context.Background(), nil, "T")
	require.ErrorIs(t, err, ErrNoImage)
}

func TestFitImage(t *testing.T) {
	w, h := FitImage(800, 400, 500, 1000)
	require.Equal(t, 500.0, w)
	require.Equal(t, 250.0, h)

	w, h = FitImage(400, 800, 500, 600)
	require.Equal(t, 300.0, w)
	require.Equal(t, 600.0, h)
}

func TestCombinedReport_TableFollowsImage(t *testing.T) {
	b := &fakeBuilder{}
	capt := &fakeCapturer{img: &capture.Image{Data: []byte{1}, Width: 1000, Height: 500}}

	_, err := newComposer(b, capt).CombinedReport(context.Background(), &visual.Chart{}, sample(), "Combined")
	require.NoError(t, err)

	doc := b.last()
	require.Equal(t, Portrait, doc.orientation)
	img := doc.find("image")[0]
	require.InDelta(t, MM(45), img.y, 0.001)
	require.InDelta(t, doc.width-2*MM(14), img.w, 0.001)

	tb := doc.find("table")[0]
	require.InDelta(t, img.y+img.h+MM(10), tb.y, 0.001)
	require.Zero(t, len(doc.find("page")))
}

func TestCombinedReport_TallImagePushesTableToNextPage(t *testing.T) {
	b := &fakeBuilder{}
	capt := &fakeCapturer{img: &capture.Image{Data: []byte{1}, Width: 500, Height: 2000}}

	_, err := newComposer(b, capt).CombinedReport(context.Background(), &visual.Chart{}, sample(), "Combined")
	require.NoError(t, err)

	doc := b.last()
	img := doc.find("image")[0]
	require.InDelta(t, doc.height-BottomMargin-MM(45), img.h, 0.001)
	require.Len(t, doc.find("page"), 1)
	require.InDelta(t, TopMargin, doc.find("table")[0].y, 0.001)
}

func TestDashboardReport_Sections(t *testing.T) {
	b := &fakeBuilder{}
	sections := []Section{
		{Title: "Summary Statistics", Headers: []string{"Metric", "Value"}, Rows: [][]any{{"Total Displaced", int64(19365000)}}},
		{Title: "Monthly Trends", Headers: []string{"Month", "Displaced"}},
	}
	_, err := newComposer(b, nil).DashboardReport(context.Background(), DashboardInfo{Country: "KEN"}, sections)
	require.NoError(t, err)

	doc := b.last()
	texts := doc.texts()
	require.Equal(t, DefaultProduct, texts[0])
	require.Equal(t, BrandBlue, doc.find("text")[0].style.Color)
	require.Equal(t, 20.0, doc.find("text")[0].style.Size)
	require.Contains(t, texts, "Country/Region: KEN")
	require.Contains(t, texts, "Export Date: 3/7/2025, 2:05:09 PM")
	require.Contains(t, texts, "Summary Statistics")
	require.Contains(t, texts, "Monthly Trends")

	tables := doc.find("table")
	require.Len(t, tables, 2)
	require.Equal(t, [][]string{{"Total Displaced", "19,365,000"}}, tables[0].block.Rows)
	require.False(t, tables[0].block.Style.Striped)
	require.Empty(t, tables[1].block.Rows)
	require.Greater(t, tables[1].y, tables[0].y)
}

func TestDashboardReport_SectionOverflowStartsPage(t *testing.T) {
	b := &fakeBuilder{}
	rows := make([][]any, 100)
	for i := range rows {
		rows[i] = []any{"m", i}
	}
	sections := []Section{
		{Title: "Long", Headers: []string{"Month", "Value"}, Rows: rows},
		{Title: "Next", Headers: []string{"Month", "Value"}, Rows: rows[:5]},
	}
	_, err := newComposer(b, nil).DashboardReport(context.Background(), DashboardInfo{Title: "Report", Country: "ALL"}, sections)
	require.NoError(t, err)
	require.Len(t, b.last().find("page"), 1)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: 99, B: 235, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPDFBuilder_ProducesPDF(t *testing.T) {
	c := newComposer(NewPDFBuilder(), nil)

	out, err := c.TableReport(context.Background(), sample(), "Monthly Trends", nil)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(out), "%PDF"))

	img := &capture.Image{Data: pngBytes(t, 20, 10), Width: 20, Height: 10}
	out, err = c.CombinedReportFromImage(context.Background(), img, sample(), "Combined")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(out), "%PDF"))
}
