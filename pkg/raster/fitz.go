package raster

import (
	"errors"
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// FitzOpener opens documents with MuPDF through go-fitz.
type FitzOpener struct{}

// Open parses data as a PDF document.
func (FitzOpener) Open(data []byte) (Source, error) {
	if len(data) == 0 {
		return nil, errors.New("empty document")
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("unable to open PDF document: %w", err)
	}
	return &fitzSource{doc: doc}, nil
}

type fitzSource struct {
	doc *fitz.Document
}

func (s *fitzSource) NumPages() int {
	return s.doc.NumPage()
}

func (s *fitzSource) RenderPage(index, dpi int) (*Image, error) {
	if index < 0 || index >= s.doc.NumPage() {
		return nil, fmt.Errorf("page %d: %w", index, ErrPageRange)
	}
	if dpi <= 0 {
		return nil, fmt.Errorf("invalid resolution %d", dpi)
	}

	rgba, err := s.doc.ImageDPI(index, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("unable to render page %d: %w", index, err)
	}
	return FromImage(rgba, dpi), nil
}

func (s *fitzSource) Close() error {
	return s.doc.Close()
}
