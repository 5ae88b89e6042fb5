// Package pdfout writes PDF documents made of pages holding raster images.
package pdfout

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"strconv"

	"github.com/novvoo/go-fourup/pkg/layout"
	"github.com/novvoo/go-fourup/pkg/raster"
)

// Producer is written to the document information dictionary.
const Producer = "go-fourup"

const ptPerMM = 72 / 25.4

var (
	// ErrNoPage is returned when an image is drawn before the first page
	ErrNoPage = errors.New("no page to draw on")
	// ErrFinished is returned when the document is modified after Bytes
	ErrFinished = errors.New("document already finished")
)

// Reserved object numbers
const (
	catalogObj = 1
	pagesObj   = 2
	infoObj    = 3
	firstObj   = 4
)

// Document is a PDF under construction. Image data is compressed and
// written out as soon as it is drawn, so callers may drop their buffers
// right after DrawImage returns.
type Document struct {
	buf     bytes.Buffer
	offsets map[int]int
	nextObj int

	pages []int // page object numbers
	cur   *page

	out []byte
}

type page struct {
	images  []int // XObject numbers, named /Im1, /Im2, ...
	content bytes.Buffer
}

// New creates an empty document.
func New() *Document {
	d := &Document{
		offsets: make(map[int]int),
		nextObj: firstObj,
	}

	// Header
	d.buf.WriteString("%PDF-1.4\n")
	d.buf.WriteString("%\xe2\xe3\xcf\xd3\n") // Binary marker
	return d
}

// NumPages returns the number of pages added so far
func (d *Document) NumPages() int {
	return len(d.pages) + btoi(d.cur != nil)
}

// AddPage finishes the current page, if any, and starts a new blank one.
func (d *Document) AddPage() error {
	if d.out != nil {
		return ErrFinished
	}
	d.flushPage()
	d.cur = &page{}
	return nil
}

// DrawImage embeds img on the current page, scaled to fill r.
func (d *Document) DrawImage(img *raster.Image, r layout.Rect) error {
	if d.out != nil {
		return ErrFinished
	}
	if d.cur == nil {
		return ErrNoPage
	}
	if err := img.Validate(); err != nil {
		return fmt.Errorf("cannot embed image: %w", err)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("cannot place image in %v", r)
	}

	num, err := d.writeImage(img)
	if err != nil {
		return err
	}
	d.cur.images = append(d.cur.images, num)

	// PDF user space has its origin at the bottom-left corner
	w := r.Width * ptPerMM
	h := r.Height * ptPerMM
	x := r.X * ptPerMM
	y := (layout.PageHeight - r.Bottom()) * ptPerMM
	fmt.Fprintf(&d.cur.content, "q %s 0 0 %s %s %s cm /Im%d Do Q\n",
		num2str(w), num2str(h), num2str(x), num2str(y), len(d.cur.images))
	return nil
}

// Bytes finishes the document and returns its serialized form. The
// document cannot be changed afterwards; repeated calls return the same
// bytes.
func (d *Document) Bytes() ([]byte, error) {
	if d.out != nil {
		return d.out, nil
	}
	d.flushPage()

	// Object 1: Catalog
	d.beginObj(catalogObj)
	fmt.Fprintf(&d.buf, "<< /Type /Catalog /Pages %d 0 R >>\n", pagesObj)
	d.endObj()

	// Object 2: Pages
	d.beginObj(pagesObj)
	d.buf.WriteString("<< /Type /Pages /Kids [")
	for i, num := range d.pages {
		if i > 0 {
			d.buf.WriteString(" ")
		}
		fmt.Fprintf(&d.buf, "%d 0 R", num)
	}
	fmt.Fprintf(&d.buf, "] /Count %d >>\n", len(d.pages))
	d.endObj()

	// Object 3: Info
	d.beginObj(infoObj)
	fmt.Fprintf(&d.buf, "<< /Producer (%s) >>\n", Producer)
	d.endObj()

	// Write xref
	xrefOffset := d.buf.Len()
	d.buf.WriteString("xref\n")
	fmt.Fprintf(&d.buf, "0 %d\n", d.nextObj)
	d.buf.WriteString("0000000000 65535 f \n")
	for num := 1; num < d.nextObj; num++ {
		off, ok := d.offsets[num]
		if !ok {
			return nil, fmt.Errorf("object %d was never written", num)
		}
		fmt.Fprintf(&d.buf, "%010d 00000 n \n", off)
	}

	// Write trailer
	d.buf.WriteString("trailer\n")
	fmt.Fprintf(&d.buf, "<< /Size %d /Root %d 0 R /Info %d 0 R >>\n", d.nextObj, catalogObj, infoObj)
	d.buf.WriteString("startxref\n")
	fmt.Fprintf(&d.buf, "%d\n", xrefOffset)
	d.buf.WriteString("%%EOF\n")

	d.out = d.buf.Bytes()
	return d.out, nil
}

// writeImage writes img as a Flate compressed DeviceRGB image XObject and
// returns its object number.
func (d *Document) writeImage(img *raster.Image) (int, error) {
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	if _, err := zw.Write(img.Data); err != nil {
		return 0, fmt.Errorf("compressing image: %w", err)
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("compressing image: %w", err)
	}

	num := d.allocObj()
	d.beginObj(num)
	fmt.Fprintf(&d.buf, "<< /Type /XObject /Subtype /Image /Width %d /Height %d ", img.Width, img.Height)
	d.buf.WriteString("/ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /FlateDecode ")
	fmt.Fprintf(&d.buf, "/Length %d >>\n", z.Len())
	d.writeStream(z.Bytes())
	d.endObj()
	return num, nil
}

// flushPage writes the content stream and page object of the current page.
func (d *Document) flushPage() {
	p := d.cur
	if p == nil {
		return
	}
	d.cur = nil

	contentsObj := d.allocObj()
	d.beginObj(contentsObj)
	fmt.Fprintf(&d.buf, "<< /Length %d >>\n", p.content.Len())
	d.writeStream(p.content.Bytes())
	d.endObj()

	pageNum := d.allocObj()
	d.beginObj(pageNum)
	fmt.Fprintf(&d.buf, "<< /Type /Page /Parent %d 0 R ", pagesObj)
	fmt.Fprintf(&d.buf, "/MediaBox [0 0 %s %s] ",
		num2str(layout.PageWidth*ptPerMM), num2str(layout.PageHeight*ptPerMM))
	d.buf.WriteString("/Resources << ")
	if len(p.images) > 0 {
		d.buf.WriteString("/XObject << ")
		for i, num := range p.images {
			fmt.Fprintf(&d.buf, "/Im%d %d 0 R ", i+1, num)
		}
		d.buf.WriteString(">> ")
	}
	d.buf.WriteString(">> ")
	fmt.Fprintf(&d.buf, "/Contents %d 0 R >>\n", contentsObj)
	d.endObj()

	d.pages = append(d.pages, pageNum)
}

func (d *Document) allocObj() int {
	num := d.nextObj
	d.nextObj++
	return num
}

func (d *Document) beginObj(num int) {
	d.offsets[num] = d.buf.Len()
	fmt.Fprintf(&d.buf, "%d 0 obj\n", num)
}

func (d *Document) endObj() {
	d.buf.WriteString("endobj\n")
}

func (d *Document) writeStream(data []byte) {
	d.buf.WriteString("stream\n")
	d.buf.Write(data)
	d.buf.WriteString("\nendstream\n")
}

// num2str formats a coordinate with four decimals
func num2str(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
