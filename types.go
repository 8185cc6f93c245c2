package termtext

import "iter"

// Attr is the display attribute record of one cell.
type Attr struct {
	Fg, Bg       ColorCode // palette codes, or ColorRGB to use FgRGB/BgRGB
	FgRGB, BgRGB RGB

	Bold      bool
	Underline bool
	Inverse   bool
}

// DefaultAttr is the attribute of an untouched cell: default colors, no
// styling.
var DefaultAttr = Attr{Fg: ColorForeground, Bg: ColorBackground}

// Cell is one slot of the screen grid.
type Cell struct {
	Char  rune // 0 = empty
	Col   int
	Row   int
	Width int // display width in cells, 1 or 2
	Attr  Attr
}

// Screen is the external screen model. Cells yields every visible cell in
// row-major order. Continuation cells of wide characters are not yielded.
type Screen interface {
	Size() (cols, rows int)
	Cells() iter.Seq[Cell]
}

// Rect is an integer rectangle in pixels.
type Rect struct {
	X, Y int // Top-left position
	W, H int // Width and height
}

// Intersects returns true if two rectangles overlap with non-zero area.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.W && r.X+r.W > other.X &&
		r.Y < other.Y+other.H && r.Y+r.H > other.Y
}

// Area returns W*H.
func (r Rect) Area() int {
	return r.W * r.H
}
