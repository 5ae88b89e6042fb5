package pdfout

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageCount re-reads a serialized document with pdfcpu and returns its
// page count.
func PageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("reading back document: %w", err)
	}
	return n, nil
}

// Verify checks that data parses as a PDF document with want pages.
func Verify(data []byte, want int) error {
	got, err := PageCount(data)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("document has %d pages, expected %d", got, want)
	}
	return nil
}
