// Package layout computes the fixed 4-up page geometry and the grouping of
// source pages onto output pages.
package layout

import "fmt"

// Output page and grid constants, in millimetres.
const (
	PageWidth  = 210.0 // A4 portrait
	PageHeight = 297.0
	Margin     = 5.0

	CellWidth  = PageWidth/2 - 1.5*Margin
	CellHeight = PageHeight/2 - 1.5*Margin
)

// Rect is an axis-aligned rectangle on the output page. The origin is the
// top-left corner of the page and Y grows downwards.
type Rect struct {
	X, Y, Width, Height float64
}

// Right returns the x coordinate of the right edge
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Overlaps reports whether r and o share any interior area.
// Rectangles that only touch along an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() &&
		r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Contains reports whether o lies entirely inside r
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y &&
		o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g %g %g %g]", r.X, r.Y, r.Width, r.Height)
}

// Page returns the full output page rectangle.
func Page() Rect {
	return Rect{Width: PageWidth, Height: PageHeight}
}

// Cell returns the thumbnail rectangle for grid slot 0..3:
// 0 top-left, 1 top-right, 2 bottom-left, 3 bottom-right.
// The slot must be in range.
func Cell(slot int) Rect {
	col := float64(slot % 2)
	row := float64(slot / 2)
	return Rect{
		X:      Margin + col*(CellWidth+Margin),
		Y:      Margin + row*(CellHeight+Margin),
		Width:  CellWidth,
		Height: CellHeight,
	}
}

// Cells returns the rectangles of all slots in slot order.
func Cells() [GroupSize]Rect {
	var cells [GroupSize]Rect
	for i := range cells {
		cells[i] = Cell(i)
	}
	return cells
}
