package report

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"sync"

	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	fontRegular = "go-regular"
	fontBold    = "go-bold"

	cellPadding = 4.0
	jpegQuality = 90
)

var (
	// TopMargin is where content resumes on a continuation page.
	TopMargin    = MM(20)
	BottomMargin = MM(14)
)

// PDFBuilder creates A4 documents with gopdf, using the Go fonts so no
// font files are needed at runtime.
type PDFBuilder struct {
	Producer string
}

func NewPDFBuilder() *PDFBuilder {
	return &PDFBuilder{Producer: "mobilitywatch"}
}

func (b *PDFBuilder) NewDocument(o Orientation, info Info) (Document, error) {
	size := *gopdf.PageSizeA4
	if o == Landscape {
		size = gopdf.Rect{W: size.H, H: size.W}
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{
		Unit:     gopdf.UnitPT,
		PageSize: size,
	})
	pdf.SetInfo(gopdf.PdfInfo{
		Title:        info.Title,
		Subject:      info.Subject,
		Creator:      info.Creator,
		Producer:     b.Producer,
		CreationDate: info.Created,
	})

	if err := pdf.AddTTFFontData(fontRegular, goregular.TTF); err != nil {
		return nil, fmt.Errorf("failed to load regular font: %w", err)
	}
	if err := pdf.AddTTFFontData(fontBold, gobold.TTF); err != nil {
		return nil, fmt.Errorf("failed to load bold font: %w", err)
	}
	pdf.AddPage()

	return &pdfDocument{pdf: pdf, width: size.W, height: size.H}, nil
}

type pdfDocument struct {
	pdf    *gopdf.GoPdf
	mutex  sync.Mutex
	width  float64
	height float64
}

func (d *pdfDocument) PageSize() (float64, float64) {
	return d.width, d.height
}

func (d *pdfDocument) AddPage() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.pdf.AddPage()
}

func (d *pdfDocument) setFont(style TextStyle) error {
	family := fontRegular
	if style.Bold {
		family = fontBold
	}
	if err := d.pdf.SetFont(family, "", style.Size); err != nil {
		return fmt.Errorf("failed to set font: %w", err)
	}
	d.pdf.SetTextColor(style.Color.R, style.Color.G, style.Color.B)
	return nil
}

func (d *pdfDocument) Text(x, y float64, style TextStyle, text string) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if err := d.setFont(style); err != nil {
		return err
	}
	d.pdf.SetXY(x, y)
	return d.pdf.Cell(nil, text)
}

func (d *pdfDocument) Image(data []byte, x, y, width, height float64) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(data) == 0 {
		return errors.New("empty image data")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("failed to convert image to JPEG (original format: %s): %w", format, err)
	}

	imageHolder, err := gopdf.ImageHolderByBytes(buf.Bytes())
	if err != nil {
		return fmt.Errorf("failed to create PDF image holder: %w", err)
	}
	if err := d.pdf.ImageByHolder(imageHolder, x, y, &gopdf.Rect{W: width, H: height}); err != nil {
		return fmt.Errorf("failed to add image to PDF: %w", err)
	}
	return nil
}

func (d *pdfDocument) Table(x, y, width float64, t TableBlock) (float64, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	cols := len(t.Headers)
	if cols == 0 {
		return y, nil
	}
	st := t.Style
	colWidth := width / float64(cols)
	bottom := d.height - BottomMargin

	if y+2*st.RowHeight > bottom {
		d.pdf.AddPage()
		y = TopMargin
	}
	if err := d.row(x, y, colWidth, t.Headers, st.HeaderFill, TextStyle{Size: st.FontSize, Bold: true, Color: st.HeaderText}, st); err != nil {
		return y, err
	}
	y += st.RowHeight

	body := TextStyle{Size: st.FontSize, Color: Black}
	for i, cells := range t.Rows {
		if y+st.RowHeight > bottom {
			d.pdf.AddPage()
			y = TopMargin
			if err := d.row(x, y, colWidth, t.Headers, st.HeaderFill, TextStyle{Size: st.FontSize, Bold: true, Color: st.HeaderText}, st); err != nil {
				return y, err
			}
			y += st.RowHeight
		}
		fill := White
		if st.Striped && i%2 == 1 {
			fill = st.StripeFill
		}
		if err := d.row(x, y, colWidth, cells, fill, body, st); err != nil {
			return y, err
		}
		y += st.RowHeight
	}
	return y, nil
}

func (d *pdfDocument) row(x, y, colWidth float64, cells []string, fill RGB, text TextStyle, st TableStyle) error {
	if err := d.setFont(text); err != nil {
		return err
	}
	d.pdf.SetLineWidth(0.5)
	d.pdf.SetStrokeColor(st.Border.R, st.Border.G, st.Border.B)
	d.pdf.SetFillColor(fill.R, fill.G, fill.B)

	for i, cell := range cells {
		cx := x + float64(i)*colWidth
		d.pdf.RectFromUpperLeftWithStyle(cx, y, colWidth, st.RowHeight, "FD")
		label, err := d.fit(cell, colWidth-2*cellPadding)
		if err != nil {
			return err
		}
		d.pdf.SetXY(cx+cellPadding, y)
		if err := d.pdf.CellWithOption(&gopdf.Rect{W: colWidth - 2*cellPadding, H: st.RowHeight}, label, gopdf.CellOption{
			Align: gopdf.Left | gopdf.Middle,
		}); err != nil {
			return fmt.Errorf("failed to draw cell: %w", err)
		}
	}
	return nil
}

// fit shortens s with a trailing "..." until it is at most width wide.
func (d *pdfDocument) fit(s string, width float64) (string, error) {
	w, err := d.pdf.MeasureTextWidth(s)
	if err != nil {
		return "", fmt.Errorf("failed to measure text: %w", err)
	}
	if w <= width {
		return s, nil
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		w, err := d.pdf.MeasureTextWidth(candidate)
		if err != nil {
			return "", fmt.Errorf("failed to measure text: %w", err)
		}
		if w <= width {
			return candidate, nil
		}
	}
	return "", nil
}

func (d *pdfDocument) Bytes() ([]byte, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.pdf == nil {
		return nil, errors.New("PDF not initialized")
	}
	var buf bytes.Buffer
	if _, err := d.pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (d *pdfDocument) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.pdf == nil {
		return nil
	}
	d.pdf.Close()
	d.pdf = nil
	return nil
}
