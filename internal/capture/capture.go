// Package capture snapshots visual elements into PNG or SVG bytes.
package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"

	"github.com/pwnholic/mobilitywatch/internal/visual"
)

const (
	// SVGNamespace is set on every captured <svg> root.
	SVGNamespace = "http://www.w3.org/2000/svg"

	// DefaultScale is the supersampling factor for standalone PNG exports.
	DefaultScale = 2.0
)

var (
	ErrNoElement       = errors.New("no element to capture")
	ErrNoVectorContent = errors.New("no capturable vector content")
	ErrNotRasterizable = errors.New("element cannot be rasterized")
	ErrBlankCapture    = errors.New("captured image is blank")
)

// Image is an encoded PNG together with its pixel size.
type Image struct {
	Data   []byte
	Width  int
	Height int
}

// Landscape reports whether the image is wider than it is tall.
func (i *Image) Landscape() bool {
	return i.Width > i.Height
}

// Capturer turns a visual element into a raster or vector picture.
type Capturer interface {
	PNG(ctx context.Context, el visual.Element, scale float64) (*Image, error)
	SVG(el visual.Element) ([]byte, error)
}

// Optional render methods an element may provide. visual.Chart has the
// first two, visual.Markup the third, visual.Snapshot the last.
type (
	rasterSource interface {
		RenderPNG(w io.Writer, scale float64) error
	}
	vectorSource interface {
		RenderSVG(w io.Writer) error
	}
	markupSource interface {
		Reader() (io.Reader, error)
	}
	imageSource interface {
		Decode() (image.Image, string, error)
	}
)

// Renderer is the default Capturer. Rasters are always flattened onto an
// opaque Background so exports ignore the display theme.
type Renderer struct {
	Background color.Color
}

func New() *Renderer {
	return &Renderer{Background: color.White}
}
