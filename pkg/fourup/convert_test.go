package fourup

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/novvoo/go-fourup/internal/samplepdf"
	"github.com/novvoo/go-fourup/pkg/layout"
	"github.com/novvoo/go-fourup/pkg/pdfout"
	"github.com/novvoo/go-fourup/pkg/raster"
)

// fakeSource renders letter-sized pages whose pixel size follows the DPI
type fakeSource struct {
	pages    int
	failPage int // -1 for none
	closed   bool
	rendered []int
	images   []*raster.Image
}

func (s *fakeSource) NumPages() int { return s.pages }

func (s *fakeSource) RenderPage(index, dpi int) (*raster.Image, error) {
	if index == s.failPage {
		return nil, errors.New("corrupt page")
	}
	w, h := 17*dpi/2, 11*dpi
	img := &raster.Image{Width: w, Height: h, DPI: dpi, Data: make([]byte, w*h*3)}
	img.Data[0] = byte(index)
	s.rendered = append(s.rendered, index)
	s.images = append(s.images, img)
	return img, nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

type fakeOpener struct {
	src *fakeSource
	err error
}

func (o *fakeOpener) Open([]byte) (raster.Source, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.src, nil
}

type placement struct {
	Source int // first pixel byte, set to the source page index
	Width  int
	Height int
	Rect   layout.Rect
}

// recordingWriter keeps the placements made on each page
type recordingWriter struct {
	pages     [][]placement
	failAdd   int // fail the n-th AddPage, counting from 1; 0 for never
	failDraw  int // same for DrawImage
	failBytes bool
	adds      int
	draws     int
}

func (w *recordingWriter) AddPage() error {
	w.adds++
	if w.adds == w.failAdd {
		return errors.New("page tree full")
	}
	w.pages = append(w.pages, nil)
	return nil
}

func (w *recordingWriter) DrawImage(img *raster.Image, r layout.Rect) error {
	if len(w.pages) == 0 {
		return pdfout.ErrNoPage
	}
	if err := img.Validate(); err != nil {
		return err
	}
	w.draws++
	if w.draws == w.failDraw {
		return errors.New("disk full")
	}
	last := len(w.pages) - 1
	w.pages[last] = append(w.pages[last], placement{
		Source: int(img.Data[0]),
		Width:  img.Width,
		Height: img.Height,
		Rect:   r,
	})
	return nil
}

func (w *recordingWriter) Bytes() ([]byte, error) {
	if w.failBytes {
		return nil, errors.New("writer fault")
	}
	return []byte("%PDF-1.4\n"), nil
}

func newFake(pages int) (*Converter, *fakeSource, *recordingWriter) {
	src := &fakeSource{pages: pages, failPage: -1}
	w := &recordingWriter{}
	c := New(
		WithOpener(&fakeOpener{src: src}),
		WithWriterFactory(func() Writer { return w }),
	)
	return c, src, w
}

func TestConvertPageCounts(t *testing.T) {
	for total := 0; total <= 13; total++ {
		c, src, w := newFake(total)
		if _, err := c.Convert(nil, 10); err != nil {
			t.Fatalf("Convert(%d pages): %v", total, err)
		}

		if got, want := len(w.pages), (total+3)/4; got != want {
			t.Errorf("%d pages: expected %d output pages, got %d", total, want, got)
		}

		var order []int
		for _, p := range w.pages {
			for _, pl := range p {
				order = append(order, pl.Source)
			}
		}
		var want []int
		for i := 0; i < total; i++ {
			want = append(want, i)
		}
		if d := cmp.Diff(want, order); d != "" {
			t.Errorf("%d pages: embedding order mismatch (-want +got):\n%s", total, d)
		}
		if !src.closed {
			t.Errorf("%d pages: source not closed", total)
		}
	}
}

// TestConvertFourPages tests that four pages fill one output page
func TestConvertFourPages(t *testing.T) {
	c, _, w := newFake(4)
	if _, err := c.Convert(nil, 10); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(w.pages) != 1 {
		t.Fatalf("Expected 1 page, got %d", len(w.pages))
	}
	for slot, pl := range w.pages[0] {
		if pl.Rect != layout.Cell(slot) {
			t.Errorf("slot %d placed at %v, want %v", slot, pl.Rect, layout.Cell(slot))
		}
	}
}

// TestConvertFivePages tests that the fifth page lands top-left on page two
func TestConvertFivePages(t *testing.T) {
	c, _, w := newFake(5)
	if _, err := c.Convert(nil, 10); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(w.pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(w.pages))
	}
	if len(w.pages[0]) != 4 {
		t.Errorf("Expected 4 images on page 1, got %d", len(w.pages[0]))
	}
	if len(w.pages[1]) != 1 {
		t.Fatalf("Expected 1 image on page 2, got %d", len(w.pages[1]))
	}
	if got := w.pages[1][0]; got.Source != 4 || got.Rect != layout.Cell(0) {
		t.Errorf("page 2 holds source %d at %v", got.Source, got.Rect)
	}
}

func TestConvertZeroPages(t *testing.T) {
	c, src, w := newFake(0)
	out, err := c.Convert(nil, 72)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(out) == 0 {
		t.Error("Expected an output document")
	}
	if len(w.pages) != 0 {
		t.Errorf("Expected no pages, got %d", len(w.pages))
	}
	if !src.closed {
		t.Error("source not closed")
	}
}

// TestConvertResolutionScaling tests that rasters scale with DPI while
// placements stay fixed
func TestConvertResolutionScaling(t *testing.T) {
	c1, _, w1 := newFake(6)
	if _, err := c1.Convert(nil, 50); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	c2, _, w2 := newFake(6)
	if _, err := c2.Convert(nil, 100); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	for i := range w1.pages {
		for j := range w1.pages[i] {
			a, b := w1.pages[i][j], w2.pages[i][j]
			if a.Rect != b.Rect {
				t.Errorf("page %d slot %d moved: %v vs %v", i, j, a.Rect, b.Rect)
			}
			if b.Width != 2*a.Width || b.Height != 2*a.Height {
				t.Errorf("page %d slot %d: %dx%d at 50 DPI, %dx%d at 100 DPI",
					i, j, a.Width, a.Height, b.Width, b.Height)
			}
		}
	}
}

func TestConvertIdempotent(t *testing.T) {
	c1, _, w1 := newFake(7)
	c2, _, w2 := newFake(7)
	if _, err := c1.Convert(nil, 20); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if _, err := c2.Convert(nil, 20); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if d := cmp.Diff(w1.pages, w2.pages); d != "" {
		t.Errorf("repeated conversion differs (-first +second):\n%s", d)
	}
}

func TestConvertDefaultDPI(t *testing.T) {
	c, _, w := newFake(1)
	if _, err := c.Convert(nil, 0); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got := w.pages[0][0].Height; got != 11*DefaultDPI {
		t.Errorf("Expected default resolution render height %d, got %d", 11*DefaultDPI, got)
	}
}

func TestConvertReleasesRasters(t *testing.T) {
	c, src, _ := newFake(6)
	if _, err := c.Convert(nil, 10); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	for i, img := range src.images {
		if !img.Released() {
			t.Errorf("raster %d not released", i)
		}
	}
}

func TestConvertInvalidInput(t *testing.T) {
	c := New(WithOpener(&fakeOpener{err: errors.New("bad header")}))
	out, err := c.Convert([]byte("garbage"), 72)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput, got %v", err)
	}
	if out != nil {
		t.Error("Expected no output on failure")
	}
}

func TestConvertInvalidResolution(t *testing.T) {
	for _, dpi := range []int{-1, MaxDPI + 1} {
		c, src, _ := newFake(1)
		if _, err := c.Convert(nil, dpi); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("dpi %d: expected ErrInvalidInput, got %v", dpi, err)
		}
		if len(src.rendered) != 0 {
			t.Errorf("dpi %d: rendered before validation", dpi)
		}
	}
}

// TestConvertRenderFailure tests that one bad page aborts the conversion
func TestConvertRenderFailure(t *testing.T) {
	c, src, _ := newFake(9)
	src.failPage = 5

	out, err := c.Convert(nil, 10)
	if !errors.Is(err, ErrRenderFailure) {
		t.Fatalf("Expected ErrRenderFailure, got %v", err)
	}
	if out != nil {
		t.Error("Expected no output on failure")
	}

	var ce *ConversionError
	if !errors.As(err, &ce) || ce.Page != 5 {
		t.Errorf("Expected failure on page index 5, got %+v", ce)
	}
	if d := cmp.Diff([]int{0, 1, 2, 3, 4}, src.rendered); d != "" {
		t.Errorf("rendering should stop at the bad page (-want +got):\n%s", d)
	}
	if !src.closed {
		t.Error("source not closed after failure")
	}
	for i, img := range src.images {
		if !img.Released() {
			t.Errorf("raster %d not released after failure", i)
		}
	}
}

func TestConvertAssemblyFailure(t *testing.T) {
	c, src, w := newFake(2)
	w.failBytes = true

	_, err := c.Convert(nil, 10)
	if !errors.Is(err, ErrAssemblyFailure) {
		t.Fatalf("Expected ErrAssemblyFailure, got %v", err)
	}
	if !src.closed {
		t.Error("source not closed after failure")
	}
}

// TestConvertWriterFailures tests that AddPage and DrawImage errors abort
// the conversion and still release every raster
func TestConvertWriterFailures(t *testing.T) {
	tests := []struct {
		name     string
		failAdd  int
		failDraw int
		rendered []int
	}{
		{"first draw", 0, 1, []int{0}},
		{"draw on second page", 0, 6, []int{0, 1, 2, 3, 4, 5}},
		{"first page", 1, 0, nil},
		{"second page", 2, 0, []int{0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, src, w := newFake(9)
			w.failAdd = tt.failAdd
			w.failDraw = tt.failDraw

			out, err := c.Convert(nil, 10)
			if !errors.Is(err, ErrAssemblyFailure) {
				t.Fatalf("Expected ErrAssemblyFailure, got %v", err)
			}
			if errors.Is(err, ErrRenderFailure) {
				t.Errorf("writer failure reported as render failure: %v", err)
			}
			if out != nil {
				t.Error("Expected no output on failure")
			}
			if !src.closed {
				t.Error("source not closed after failure")
			}
			if d := cmp.Diff(tt.rendered, src.rendered); d != "" {
				t.Errorf("rendered pages mismatch (-want +got):\n%s", d)
			}
			for i, img := range src.images {
				if !img.Released() {
					t.Errorf("raster %d not released after failure", i)
				}
			}
		})
	}
}

func TestConvertDocumentCounts(t *testing.T) {
	for _, total := range []int{0, 3, 8, 10} {
		c, _, _ := newFake(total)
		res, err := c.ConvertDocument(nil, 10)
		if err != nil {
			t.Fatalf("ConvertDocument(%d pages): %v", total, err)
		}
		if res.SourcePages != total {
			t.Errorf("Expected %d source pages, got %d", total, res.SourcePages)
		}
		if res.OutputPages != layout.GroupCount(total) {
			t.Errorf("%d pages: expected %d output pages, got %d", total, layout.GroupCount(total), res.OutputPages)
		}
		if len(res.PDF) == 0 {
			t.Error("Expected output bytes")
		}
	}
}

// TestConvertEndToEnd runs the real rasterizer and writer
func TestConvertEndToEnd(t *testing.T) {
	tests := []struct {
		pages int
		want  int
	}{
		{1, 1},
		{4, 1},
		{5, 2},
		{9, 3},
	}

	for _, tt := range tests {
		out, err := Convert(samplepdf.Pages(tt.pages), 24)
		if err != nil {
			t.Fatalf("Convert(%d pages): %v", tt.pages, err)
		}
		if !bytes.HasPrefix(out, []byte("%PDF-")) {
			t.Errorf("%d pages: output is not a PDF", tt.pages)
		}
		if err := pdfout.Verify(out, tt.want); err != nil {
			t.Errorf("%d pages: %v", tt.pages, err)
		}
	}
}

func TestConvertEndToEndZeroPages(t *testing.T) {
	out, err := Convert(samplepdf.Pages(0), 72)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	src, err := raster.FitzOpener{}.Open(out)
	if err != nil {
		t.Fatalf("output does not open: %v", err)
	}
	defer src.Close()
	if n := src.NumPages(); n != 0 {
		t.Errorf("Expected 0 pages, got %d", n)
	}
}

func TestConvertEndToEndNotPDF(t *testing.T) {
	_, err := Convert([]byte("This is not a PDF file"), 72)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
