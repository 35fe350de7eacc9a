// Package report composes paginated PDF reports out of tables and captured
// chart images.
package report

import "time"

type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

func (o Orientation) String() string {
	if o == Landscape {
		return "landscape"
	}
	return "portrait"
}

type RGB struct {
	R, G, B uint8
}

var (
	Black     = RGB{}
	White     = RGB{255, 255, 255}
	Gray      = RGB{100, 100, 100}
	BrandBlue = RGB{37, 99, 235}
	Stripe    = RGB{245, 247, 250}
	GridLine  = RGB{200, 200, 200}
)

type TextStyle struct {
	Size  float64
	Bold  bool
	Color RGB
}

type TableStyle struct {
	HeaderFill RGB
	HeaderText RGB
	// Striped shades every other body row with StripeFill.
	Striped    bool
	StripeFill RGB
	Border     RGB
	FontSize   float64
	RowHeight  float64
}

// TableBlock is a grid of pre-formatted cells.
type TableBlock struct {
	Headers []string
	Rows    [][]string
	Style   TableStyle
}

// Info is written into the document metadata.
type Info struct {
	Title   string
	Subject string
	Creator string
	Created time.Time
}

// Document is a page-oriented drawing surface measured in points from the
// top-left corner of the current page.
type Document interface {
	PageSize() (width, height float64)
	AddPage()
	Text(x, y float64, style TextStyle, text string) error
	// Image places an encoded raster inside the given box.
	Image(data []byte, x, y, width, height float64) error
	// Table draws t from y downwards, continuing on new pages (with the
	// header repeated) as rows overflow. It returns the y just below the
	// last row drawn.
	Table(x, y, width float64, t TableBlock) (float64, error)
	Bytes() ([]byte, error)
	Close() error
}

// Builder creates documents. One builder is constructed up front and
// reused for every report.
type Builder interface {
	NewDocument(o Orientation, info Info) (Document, error)
}

const pointsPerMM = 72 / 25.4

// MM converts millimetres to points.
func MM(v float64) float64 {
	return v * pointsPerMM
}
