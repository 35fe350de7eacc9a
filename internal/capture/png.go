package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/draw"

	"github.com/pwnholic/mobilitywatch/internal/visual"
)

// PNG rasterizes el at scale (values <= 0 mean DefaultScale) and returns
// it encoded as an opaque PNG.
func (r *Renderer) PNG(ctx context.Context, el visual.Element, scale float64) (*Image, error) {
	if el == nil {
		return nil, ErrNoElement
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if scale <= 0 {
		scale = DefaultScale
	}

	var src image.Image
	switch e := el.(type) {
	case rasterSource:
		var buf bytes.Buffer
		if err := e.RenderPNG(&buf, scale); err != nil {
			return nil, fmt.Errorf("failed to render %q: %w", el.Name(), err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			return nil, fmt.Errorf("failed to decode rendered %q: %w", el.Name(), err)
		}
		src = img
	case imageSource:
		img, _, err := e.Decode()
		if err != nil {
			return nil, err
		}
		src = resample(img, scale)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotRasterizable, el.Name())
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	flat := flatten(src, r.background())
	if isBlankImage(flat, r.background()) {
		return nil, fmt.Errorf("%w: %s", ErrBlankCapture, el.Name())
	}

	var out bytes.Buffer
	if err := png.Encode(&out, flat); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	bounds := flat.Bounds()
	return &Image{Data: out.Bytes(), Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

func (r *Renderer) background() color.Color {
	if r.Background == nil {
		return color.White
	}
	return r.Background
}

// resample scales img by factor using Catmull-Rom interpolation.
func resample(img image.Image, factor float64) image.Image {
	if factor == 1 {
		return img
	}
	b := img.Bounds()
	w := int(math.Round(float64(b.Dx()) * factor))
	h := int(math.Round(float64(b.Dy()) * factor))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// flatten composites img over an opaque background, dropping alpha.
func flatten(img image.Image, bg color.Color) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// isBlankImage reports whether every pixel equals bg, which is what a
// detached or empty element rasterizes to.
func isBlankImage(img *image.RGBA, bg color.Color) bool {
	br, bgG, bb, ba := bg.RGBA()
	want := color.RGBA{R: uint8(br >> 8), G: uint8(bgG >> 8), B: uint8(bb >> 8), A: uint8(ba >> 8)}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) != want {
				return false
			}
		}
	}
	return true
}
