package termtext

import (
	"iter"

	"github.com/mattn/go-runewidth"
)

// gridCell is one stored slot. width is 0 for the continuation slot of a
// wide character.
type gridCell struct {
	ch    rune
	width int8
	attr  Attr
}

var blankCell = gridCell{ch: ' ', width: 1, attr: DefaultAttr}

// Grid is an in-memory Screen. Wide characters occupy their own slot and
// the continuation slot to the right of it.
type Grid struct {
	cols, rows int
	cells      []gridCell
}

// NewGrid creates a blank grid.
func NewGrid(cols, rows int) *Grid {
	g := &Grid{}
	g.Resize(cols, rows)
	return g
}

// Size implements Screen.
func (g *Grid) Size() (cols, rows int) { return g.cols, g.rows }

// Cells implements Screen.
func (g *Grid) Cells() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for row := range g.rows {
			for col := range g.cols {
				c := g.cells[row*g.cols+col]
				if c.width == 0 {
					continue
				}
				if !yield(Cell{Char: c.ch, Col: col, Row: row, Width: int(c.width), Attr: c.attr}) {
					return
				}
			}
		}
	}
}

// At returns the character and attribute stored at (col, row). A
// continuation slot reports rune 0.
func (g *Grid) At(col, row int) (rune, Attr) {
	if !g.inside(col, row) {
		return 0, Attr{}
	}
	c := g.cells[row*g.cols+col]
	if c.width == 0 {
		return 0, c.attr
	}
	return c.ch, c.attr
}

func (g *Grid) inside(col, row int) bool {
	return col >= 0 && col < g.cols && row >= 0 && row < g.rows
}

// SetCell writes ch at (col, row) and returns the number of columns it
// occupies. Zero-width runes and writes outside the grid are ignored and
// return 0. A wide rune that does not fit on the row is written as a space.
func (g *Grid) SetCell(col, row int, ch rune, attr Attr) int {
	if !g.inside(col, row) {
		return 0
	}
	w := runewidth.RuneWidth(ch)
	if ch == 0 {
		w = 1
	}
	switch {
	case w <= 0:
		return 0
	case w > 1 && col+1 >= g.cols:
		ch, w = ' ', 1
	}

	g.split(col, row)
	i := row*g.cols + col
	g.cells[i] = gridCell{ch: ch, width: int8(min(w, 2)), attr: attr}
	if w > 1 {
		g.split(col+1, row)
		g.cells[i+1] = gridCell{attr: attr}
		return 2
	}
	return 1
}

// split clears whatever wide character shares the slot at (col, row) so a
// write there never leaves half a wide character behind.
func (g *Grid) split(col, row int) {
	i := row*g.cols + col
	switch c := g.cells[i]; {
	case c.width == 0 && col > 0:
		g.cells[i-1] = gridCell{ch: ' ', width: 1, attr: g.cells[i-1].attr}
		g.cells[i] = gridCell{ch: ' ', width: 1, attr: c.attr}
	case c.width == 2 && col+1 < g.cols:
		g.cells[i+1] = gridCell{ch: ' ', width: 1, attr: c.attr}
	}
}

// SetString writes s starting at (col, row) without wrapping and returns
// the number of columns written.
func (g *Grid) SetString(col, row int, s string, attr Attr) int {
	start := col
	for _, r := range s {
		if col >= g.cols {
			break
		}
		col += g.SetCell(col, row, r, attr)
	}
	return col - start
}

// Clear blanks every cell.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = blankCell
	}
}

// Resize changes the grid size, keeping the overlapping top-left region.
// A wide character cut by the new right edge becomes a space.
func (g *Grid) Resize(cols, rows int) {
	cols, rows = max(cols, 0), max(rows, 0)
	cells := make([]gridCell, cols*rows)
	for i := range cells {
		cells[i] = blankCell
	}
	for row := range min(rows, g.rows) {
		for col := range min(cols, g.cols) {
			c := g.cells[row*g.cols+col]
			if c.width == 2 && col+1 >= cols {
				c = gridCell{ch: ' ', width: 1, attr: c.attr}
			}
			cells[row*cols+col] = c
		}
	}
	g.cols, g.rows, g.cells = cols, rows, cells
}
