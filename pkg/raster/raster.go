// Package raster opens source PDF documents and renders their pages to RGB
// bitmaps at a requested resolution.
package raster

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ErrPageRange is returned when a page index is outside the document.
var ErrPageRange = errors.New("page index out of range")

// Image is a rendered page. Data holds 8-bit RGB samples, row-major,
// with no row padding.
type Image struct {
	Width  int
	Height int
	DPI    int
	Data   []byte
}

// Release drops the pixel buffer. The image must not be used afterwards.
func (img *Image) Release() {
	if img == nil {
		return
	}
	img.Data = nil
}

// Released reports whether Release has been called on img.
func (img *Image) Released() bool {
	return img.Data == nil
}

// Validate checks that the buffer matches the declared dimensions
func (img *Image) Validate() error {
	if img == nil {
		return errors.New("nil image")
	}
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", img.Width, img.Height)
	}
	if want := img.Width * img.Height * 3; len(img.Data) != want {
		return fmt.Errorf("image data is %d bytes, expected %d", len(img.Data), want)
	}
	return nil
}

// Source is an opened document that can rasterize its pages.
type Source interface {
	// NumPages returns the number of pages in the document
	NumPages() int
	// RenderPage renders the 0-based page index at dpi dots per inch
	RenderPage(index, dpi int) (*Image, error)
	// Close releases the underlying decoder
	Close() error
}

// Opener opens complete PDF documents held in memory.
type Opener interface {
	Open(data []byte) (Source, error)
}

// FromImage flattens src onto a white background and packs it into an RGB
// Image.
func FromImage(src image.Image, dpi int) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Over)

	data := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		out := data[y*w*3 : (y+1)*w*3]
		for x := 0; x < w; x++ {
			out[x*3] = row[x*4]
			out[x*3+1] = row[x*4+1]
			out[x*3+2] = row[x*4+2]
		}
	}

	return &Image{
		Width:  w,
		Height: h,
		DPI:    dpi,
		Data:   data,
	}
}
