// Package fourup converts PDF documents to a 4-up handout layout: every
// output page shows four consecutive source pages as thumbnails in a 2x2
// grid.
package fourup

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/novvoo/go-fourup/pkg/layout"
	"github.com/novvoo/go-fourup/pkg/pdfout"
	"github.com/novvoo/go-fourup/pkg/raster"
)

// Resolution limits in DPI
const (
	DefaultDPI = 72
	MaxDPI     = 1200
)

// Writer receives the assembled output pages.
// *pdfout.Document is the standard implementation.
type Writer interface {
	AddPage() error
	DrawImage(img *raster.Image, r layout.Rect) error
	Bytes() ([]byte, error)
}

// Converter runs the 4-up conversion pipeline.
type Converter struct {
	opener    raster.Opener
	newWriter func() Writer
	logger    *slog.Logger
}

// Option configures a Converter
type Option func(*Converter)

// WithOpener sets the decoder used to open and rasterize source documents.
func WithOpener(o raster.Opener) Option {
	return func(c *Converter) { c.opener = o }
}

// WithWriterFactory sets the constructor for output documents.
func WithWriterFactory(f func() Writer) Option {
	return func(c *Converter) { c.newWriter = f }
}

// WithLogger sets the logger for progress messages.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// New creates a converter. By default documents are rasterized with MuPDF
// and written with pdfout.
func New(opts ...Option) *Converter {
	c := &Converter{
		opener:    raster.FitzOpener{},
		newWriter: func() Writer { return pdfout.New() },
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert is a shorthand for New().Convert.
func Convert(input []byte, dpi int) ([]byte, error) {
	return New().Convert(input, dpi)
}

// Result is a finished conversion.
type Result struct {
	PDF         []byte
	SourcePages int
	OutputPages int
}

// Convert renders input at dpi and returns the 4-up document. A dpi of 0
// selects DefaultDPI. A document without pages converts to a valid
// document without pages.
func (c *Converter) Convert(input []byte, dpi int) ([]byte, error) {
	res, err := c.ConvertDocument(input, dpi)
	if err != nil {
		return nil, err
	}
	return res.PDF, nil
}

// ConvertDocument is like Convert but also reports page counts.
func (c *Converter) ConvertDocument(input []byte, dpi int) (*Result, error) {
	if dpi == 0 {
		dpi = DefaultDPI
	}
	if dpi < 0 || dpi > MaxDPI {
		return nil, invalidInput(fmt.Errorf("resolution %d outside 1..%d", dpi, MaxDPI))
	}

	src, err := c.opener.Open(input)
	if err != nil {
		return nil, invalidInput(err)
	}
	defer src.Close()

	total := src.NumPages()
	groups := layout.Groups(total)
	c.logger.Debug("converting document", "pages", total, "groups", len(groups), "dpi", dpi)

	out := c.newWriter()
	for i, g := range groups {
		if err := assembleGroup(out, g, src, dpi); err != nil {
			return nil, err
		}
		c.logger.Debug("assembled page", "page", i+1, "sources", len(g))
	}

	data, err := out.Bytes()
	if err != nil {
		return nil, assemblyFailure(err)
	}

	c.logger.Info("conversion finished", "source_pages", total, "output_pages", len(groups), "bytes", len(data))
	return &Result{PDF: data, SourcePages: total, OutputPages: len(groups)}, nil
}

// assembleGroup adds one output page and fills one cell per group member,
// in group order. Cells past the end of the group stay blank.
func assembleGroup(out Writer, g layout.Group, src raster.Source, dpi int) error {
	if err := out.AddPage(); err != nil {
		return assemblyFailure(err)
	}
	for slot, index := range g {
		if err := placeThumbnail(out, src, index, dpi, layout.Cell(slot)); err != nil {
			return err
		}
	}
	return nil
}

// placeThumbnail renders one source page and embeds it at r. The raster is
// released before returning, whether or not embedding succeeded.
func placeThumbnail(out Writer, src raster.Source, index, dpi int, r layout.Rect) error {
	img, err := renderThumbnail(src, index, dpi)
	if err != nil {
		return err
	}
	defer img.Release()

	if err := out.DrawImage(img, r); err != nil {
		return assemblyFailure(fmt.Errorf("page %d: %w", index+1, err))
	}
	return nil
}

func renderThumbnail(src raster.Source, index, dpi int) (*raster.Image, error) {
	img, err := src.RenderPage(index, dpi)
	if err != nil {
		return nil, renderFailure(index, err)
	}
	if img == nil {
		return nil, renderFailure(index, errors.New("rasterizer returned no image"))
	}
	return img, nil
}
