// Package samplepdf builds small vector PDF documents for tests.
package samplepdf

import (
	"bytes"
	"fmt"
)

// Letter page size in points
const (
	Width  = 612
	Height = 792
)

// Pages returns a PDF with n letter-sized pages. Page i carries a filled
// square whose grey level depends on i, so rendered pages differ.
func Pages(n int) []byte {
	var buf bytes.Buffer
	var offsets []int

	// Header
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("%\xe2\xe3\xcf\xd3\n")

	// Object 1: Catalog
	offsets = append(offsets, buf.Len())
	buf.WriteString("1 0 obj\n")
	buf.WriteString("<</Type/Catalog/Pages 2 0 R>>\n")
	buf.WriteString("endobj\n")

	// Object 2: Pages, kids are objects 3, 5, 7, ...
	offsets = append(offsets, buf.Len())
	buf.WriteString("2 0 obj\n")
	buf.WriteString("<</Type/Pages/Kids[")
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteString(" ")
		}
		fmt.Fprintf(&buf, "%d 0 R", 3+i*2)
	}
	fmt.Fprintf(&buf, "]/Count %d>>\n", n)
	buf.WriteString("endobj\n")

	for i := 0; i < n; i++ {
		pageObj := 3 + i*2

		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n", pageObj)
		fmt.Fprintf(&buf, "<</Type/Page/MediaBox[0 0 %d %d]/Parent 2 0 R/Resources<<>>/Contents %d 0 R>>\n",
			Width, Height, pageObj+1)
		buf.WriteString("endobj\n")

		grey := float64(i%10) / 10
		content := fmt.Sprintf("%.1f g 100 100 400 400 re f\n", grey)
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n", pageObj+1)
		fmt.Fprintf(&buf, "<</Length %d>>\n", len(content))
		buf.WriteString("stream\n")
		buf.WriteString(content)
		buf.WriteString("endstream\n")
		buf.WriteString("endobj\n")
	}

	// XRef table, each entry is exactly 20 bytes
	xrefOffset := buf.Len()
	buf.WriteString("xref\n")
	fmt.Fprintf(&buf, "0 %d\n", len(offsets)+1)
	fmt.Fprintf(&buf, "%010d %05d f \r\n", 0, 65535)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d %05d n \r\n", off, 0)
	}

	// Trailer
	buf.WriteString("trailer\n")
	fmt.Fprintf(&buf, "<</Size %d/Root 1 0 R>>\n", len(offsets)+1)
	buf.WriteString("startxref\n")
	fmt.Fprintf(&buf, "%d\n", xrefOffset)
	buf.WriteString("%%EOF")

	return buf.Bytes()
}
