package visual

import (
	"bytes"
	"io"

	"golang.org/x/net/html/charset"
)

// Markup is an HTML or SVG fragment, for example a chart container copied
// out of a rendered page. Only its vector content can be captured.
type Markup struct {
	Label string
	HTML  []byte
	// ContentType may carry a charset ("text/html; charset=windows-1252").
	// Empty means sniff the encoding from the bytes.
	ContentType string
}

func (m *Markup) Name() string {
	if m.Label != "" {
		return m.Label
	}
	return "markup"
}

// Reader returns the fragment decoded to UTF-8.
func (m *Markup) Reader() (io.Reader, error) {
	return charset.NewReader(bytes.NewReader(m.HTML), m.ContentType)
}
