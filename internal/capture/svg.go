package capture

import (
	"bytes"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"

	"github.com/pwnholic/mobilitywatch/internal/visual"
)

// SVG returns standalone SVG markup for el. The first <svg> inside the
// element (or the element itself) is cloned so the source is never
// mutated, and the SVG namespace is forced onto the clone.
func (r *Renderer) SVG(el visual.Element) ([]byte, error) {
	if el == nil {
		return nil, ErrNoElement
	}

	var src io.Reader
	switch e := el.(type) {
	case vectorSource:
		var buf bytes.Buffer
		if err := e.RenderSVG(&buf); err != nil {
			return nil, fmt.Errorf("failed to render %q: %w", el.Name(), err)
		}
		src = &buf
	case markupSource:
		reader, err := e.Reader()
		if err != nil {
			return nil, fmt.Errorf("failed to decode %q: %w", el.Name(), err)
		}
		src = reader
	default:
		return nil, fmt.Errorf("%w in %s", ErrNoVectorContent, el.Name())
	}

	markup, err := extractSVG(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", el.Name(), err)
	}
	return markup, nil
}

func extractSVG(r io.Reader) ([]byte, error) {
	document, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}

	root := document.Find("svg").First()
	if root.Length() == 0 {
		return nil, ErrNoVectorContent
	}

	clone := root.Clone()
	clone.SetAttr("xmlns", SVGNamespace)

	markup, err := goquery.OuterHtml(clone)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize svg: %w", err)
	}
	return []byte(markup), nil
}
