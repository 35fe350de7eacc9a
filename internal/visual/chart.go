package visual

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

type Kind int

const (
	Pie Kind = iota
	Line
	Bar
	Area
)

func (k Kind) String() string {
	switch k {
	case Pie:
		return "pie"
	case Line:
		return "line"
	case Bar:
		return "bar"
	case Area:
		return "area"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

const (
	DefaultWidth  = 800
	DefaultHeight = 400
	defaultDPI    = 92.0
)

// Palette matches the dashboard's chart colours.
var Palette = []string{"2563eb", "dc2626", "16a34a", "f59e0b", "7c3aed", "0891b2"}

type Series struct {
	Name   string
	Values []float64
	// Color is a hex RGB string; empty picks from Palette.
	Color string
}

// Chart is a pie, line, bar or area chart. Categories label the x axis
// (or the pie slices); every series carries one value per category. Pie
// charts only use the first series.
type Chart struct {
	Kind       Kind
	Title      string
	Width      int
	Height     int
	Categories []string
	Series     []Series
}

var (
	ErrNoSeries     = errors.New("chart has no series")
	ErrNoPieValues  = errors.New("pie chart has no positive values")
	ErrSeriesLength = errors.New("series length does not match categories")
)

// defaultFont parses go-chart's Roboto once. go-chart's own lazy loader
// is not safe for concurrent renders, so every chart gets the font set.
var defaultFont = sync.OnceValues(chart.GetDefaultFont)

func (c *Chart) Name() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Kind.String() + " chart"
}

// Size is the chart's unscaled pixel size.
func (c *Chart) Size() (int, int) {
	w, h := c.Width, c.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// RenderPNG draws the chart at scale times its size and DPI on a white
// background.
func (c *Chart) RenderPNG(w io.Writer, scale float64) error {
	if scale <= 0 {
		scale = 1
	}
	return c.render(chart.PNG, scale, w)
}

// RenderSVG draws the chart as SVG markup.
func (c *Chart) RenderSVG(w io.Writer) error {
	return c.render(chart.SVG, 1, w)
}

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func (c *Chart) render(rp chart.RendererProvider, scale float64, w io.Writer) error {
	if err := c.validate(); err != nil {
		return err
	}
	font, err := defaultFont()
	if err != nil {
		return fmt.Errorf("loading chart font: %w", err)
	}
	width, height := c.Size()
	frame := frame{
		width:  int(float64(width) * scale),
		height: int(float64(height) * scale),
		dpi:    defaultDPI * scale,
		font:   font,
	}

	var r renderable
	switch c.Kind {
	case Pie:
		r = c.pie(frame)
	case Bar:
		r = c.bar(frame)
	case Line, Area:
		r = c.xy(frame)
	default:
		return fmt.Errorf("unsupported chart kind %s", c.Kind)
	}
	if r == nil {
		return ErrNoPieValues
	}
	if err := r.Render(rp, w); err != nil {
		return fmt.Errorf("rendering %s chart %q: %w", c.Kind, c.Title, err)
	}
	return nil
}

func (c *Chart) validate() error {
	if len(c.Series) == 0 {
		return ErrNoSeries
	}
	for _, s := range c.Series {
		if len(s.Values) != len(c.Categories) {
			return fmt.Errorf("%w: %q has %d values for %d categories", ErrSeriesLength, s.Name, len(s.Values), len(c.Categories))
		}
	}
	return nil
}

type frame struct {
	width, height int
	dpi           float64
	font          *truetype.Font
}

func (f frame) background() chart.Style {
	return chart.Style{
		FillColor: drawing.ColorWhite,
		Padding:   chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16},
	}
}

func (c *Chart) color(i int) drawing.Color {
	if i < len(c.Series) && c.Series[i].Color != "" {
		return drawing.ColorFromHex(c.Series[i].Color)
	}
	return drawing.ColorFromHex(Palette[i%len(Palette)])
}

func (c *Chart) pie(f frame) renderable {
	var values []chart.Value
	for i, v := range c.Series[0].Values {
		// go-chart drops non-positive slices while normalizing; doing it
		// here keeps slice colours aligned with labels.
		if v <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: c.Categories[i],
			Value: v,
			Style: chart.Style{FillColor: drawing.ColorFromHex(Palette[i%len(Palette)])},
		})
	}
	if len(values) == 0 {
		return nil
	}
	return chart.PieChart{
		Title:      c.Title,
		Width:      f.width,
		Height:     f.height,
		DPI:        f.dpi,
		Font:       f.font,
		Background: f.background(),
		Values:     values,
	}
}

func (c *Chart) bar(f frame) renderable {
	if len(c.Series) == 1 {
		bars := make([]chart.Value, len(c.Categories))
		for i, v := range c.Series[0].Values {
			bars[i] = chart.Value{
				Label: c.Categories[i],
				Value: v,
				Style: chart.Style{FillColor: c.color(0), StrokeColor: c.color(0)},
			}
		}
		return chart.BarChart{
			Title:      c.Title,
			Width:      f.width,
			Height:     f.height,
			DPI:        f.dpi,
			Font:       f.font,
			Background: f.background(),
			YAxis:      chart.YAxis{Range: valueRange(c.Series[0].Values...)},
			BarWidth:   barWidth(f.width, len(bars)),
			Bars:       bars,
		}
	}

	stacks := make([]chart.StackedBar, len(c.Categories))
	for i, label := range c.Categories {
		values := make([]chart.Value, len(c.Series))
		for j, s := range c.Series {
			values[j] = chart.Value{
				Label: s.Name,
				Value: s.Values[i],
				Style: chart.Style{FillColor: c.color(j), StrokeColor: c.color(j)},
			}
		}
		stacks[i] = chart.StackedBar{Name: label, Width: barWidth(f.width, len(c.Categories)), Values: values}
	}
	return chart.StackedBarChart{
		Title:      c.Title,
		Width:      f.width,
		Height:     f.height,
		DPI:        f.dpi,
		Font:       f.font,
		Background: f.background(),
		Bars:       stacks,
	}
}

func barWidth(canvas, bars int) int {
	if bars == 0 {
		return 0
	}
	w := canvas / (2 * (bars + 1))
	if w < 4 {
		w = 4
	}
	return w
}

func (c *Chart) xy(f frame) renderable {
	xs := make([]float64, len(c.Categories))
	ticks := make([]chart.Tick, len(c.Categories))
	for i, label := range c.Categories {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}
	// The x range comes from the ticks; a single category needs blank
	// ticks either side so the range is not a point.
	if len(ticks) == 1 {
		ticks = []chart.Tick{{Value: -0.5}, ticks[0], {Value: 0.5}}
	}

	var values []float64
	series := make([]chart.Series, len(c.Series))
	for i, s := range c.Series {
		values = append(values, s.Values...)
		style := chart.Style{StrokeColor: c.color(i), StrokeWidth: 2}
		if c.Kind == Area {
			style.FillColor = c.color(i).WithAlpha(64)
		}
		series[i] = chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: s.Values,
			Style:   style,
		}
	}

	ch := chart.Chart{
		Title:      c.Title,
		Width:      f.width,
		Height:     f.height,
		DPI:        f.dpi,
		Font:       f.font,
		Background: f.background(),
		XAxis:      chart.XAxis{Ticks: ticks},
		YAxis:      chart.YAxis{Range: valueRange(values...)},
		Series:     series,
	}
	if len(series) > 1 {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch
}

// valueRange pins the y axis when every value is the same; go-chart
// cannot scale a zero-width range. It returns nil otherwise so the axis is
// fitted to the data.
func valueRange(values ...float64) chart.Range {
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi > lo {
		return nil
	}
	return &chart.ContinuousRange{Min: math.Min(0, lo), Max: math.Max(1, hi)}
}
