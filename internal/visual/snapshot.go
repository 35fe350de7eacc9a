package visual

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

var ErrEmptySnapshot = errors.New("snapshot has no image data")

// Snapshot is an already rasterized picture (PNG, JPEG, GIF or WebP), such
// as a screenshot handed over by a browser. It has no vector form.
type Snapshot struct {
	Label string
	Data  []byte
}

func (s *Snapshot) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return "snapshot"
}

// Decode returns the image and the name of its source format.
func (s *Snapshot) Decode() (image.Image, string, error) {
	if len(s.Data) == 0 {
		return nil, "", ErrEmptySnapshot
	}
	img, format, err := image.Decode(bytes.NewReader(s.Data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode snapshot %q: %w", s.Name(), err)
	}
	bounds := img.Bounds()
	if bounds.Dx() < 1 || bounds.Dy() < 1 {
		return nil, "", fmt.Errorf("snapshot %q has invalid dimensions %dx%d", s.Name(), bounds.Dx(), bounds.Dy())
	}
	return img, format, nil
}
