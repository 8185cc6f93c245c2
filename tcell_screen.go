package termtext

import (
	"iter"

	"github.com/gdamore/tcell/v2"
)

// TcellScreen adapts a tcell.Screen so an application drawing through tcell
// can be rendered by a TextRenderer. Content is read back with GetContent,
// so any tcell screen works, including the simulation screen.
type TcellScreen struct {
	screen tcell.Screen
}

// NewTcellScreen wraps s.
func NewTcellScreen(s tcell.Screen) *TcellScreen {
	return &TcellScreen{screen: s}
}

// Size implements Screen.
func (t *TcellScreen) Size() (cols, rows int) { return t.screen.Size() }

// Cells implements Screen.
func (t *TcellScreen) Cells() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		cols, rows := t.screen.Size()
		for row := range rows {
			for col := 0; col < cols; {
				mainc, _, style, width := t.screen.GetContent(col, row) //nolint:staticcheck // GetContent reports the cell width
				width = min(max(width, 1), 2)
				if !yield(Cell{Char: mainc, Col: col, Row: row, Width: width, Attr: attrFromStyle(style)}) {
					return
				}
				col += width
			}
		}
	}
}

func attrFromStyle(s tcell.Style) Attr {
	fg, bg, attrs := s.Decompose()
	a := Attr{
		Bold:      attrs&tcell.AttrBold != 0,
		Underline: attrs&tcell.AttrUnderline != 0,
		Inverse:   attrs&tcell.AttrReverse != 0,
	}
	a.Fg, a.FgRGB = colorFromTcell(fg, ColorForeground)
	a.Bg, a.BgRGB = colorFromTcell(bg, ColorBackground)
	return a
}

// colorFromTcell maps a tcell color onto a palette code. The sixteen
// indexed colors keep their index so the profile palette applies; the
// extended palette and true colors become explicit RGB.
func colorFromTcell(c tcell.Color, def ColorCode) (ColorCode, RGB) {
	switch {
	case c == tcell.ColorDefault || c == tcell.ColorReset:
		return def, RGB{}
	case c&tcell.ColorValid == 0:
		return def, RGB{}
	case c&tcell.ColorIsRGB == 0 && c-tcell.ColorValid < 16:
		return ColorCode(c - tcell.ColorValid), RGB{}
	}
	r, g, b := c.TrueColor().RGB()
	return ColorRGB, RGB{R: uint8(r), G: uint8(g), B: uint8(b)}
}
