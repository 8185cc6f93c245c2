package termtext_test

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/go-theft-auto/termtext"
)

func newSimScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("")
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Fini)
	s.SetSize(cols, rows)
	return s
}

func cellAt(t *testing.T, s termtext.Screen, col, row int) termtext.Cell {
	t.Helper()
	for c := range s.Cells() {
		if c.Col == col && c.Row == row {
			return c
		}
	}
	t.Fatalf("no cell at %d,%d", col, row)
	return termtext.Cell{}
}

func TestTcellScreenAttributes(t *testing.T) {
	s := newSimScreen(t, 4, 2)
	s.SetContent(0, 0, 'A', nil, tcell.StyleDefault.Foreground(tcell.ColorMaroon).Bold(true))
	s.SetContent(1, 0, 'B', nil, tcell.StyleDefault.Underline(true).Reverse(true))
	s.SetContent(2, 0, 'C', nil, tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(1, 2, 3)).
		Background(tcell.ColorWhite))

	screen := termtext.NewTcellScreen(s)
	if cols, rows := screen.Size(); cols != 4 || rows != 2 {
		t.Fatalf("size = %dx%d", cols, rows)
	}

	a := cellAt(t, screen, 0, 0)
	if a.Char != 'A' || a.Attr.Fg != 1 || a.Attr.Bg != termtext.ColorBackground || !a.Attr.Bold {
		t.Errorf("'A' = %+v", a)
	}

	b := cellAt(t, screen, 1, 0).Attr
	if !b.Underline || !b.Inverse || b.Bold {
		t.Errorf("'B' attr = %+v", b)
	}
	if b.Fg != termtext.ColorForeground || b.Bg != termtext.ColorBackground {
		t.Errorf("'B' colors = %d/%d, want defaults", b.Fg, b.Bg)
	}

	c := cellAt(t, screen, 2, 0).Attr
	if c.Fg != termtext.ColorRGB || c.FgRGB != (termtext.RGB{R: 1, G: 2, B: 3}) {
		t.Errorf("'C' fg = %d %+v, want explicit 1,2,3", c.Fg, c.FgRGB)
	}
	if c.Bg != 15 {
		t.Errorf("'C' bg = %d, want indexed 15", c.Bg)
	}
}

func TestTcellScreenExtendedPalette(t *testing.T) {
	s := newSimScreen(t, 2, 1)
	s.SetContent(0, 0, 'x', nil, tcell.StyleDefault.Foreground(tcell.PaletteColor(196)))

	a := cellAt(t, termtext.NewTcellScreen(s), 0, 0).Attr
	if a.Fg != termtext.ColorRGB {
		t.Fatalf("fg code = %d, want explicit RGB", a.Fg)
	}
	r, g, b := tcell.PaletteColor(196).RGB()
	if a.FgRGB != (termtext.RGB{R: uint8(r), G: uint8(g), B: uint8(b)}) {
		t.Errorf("fg = %+v, want %d,%d,%d", a.FgRGB, r, g, b)
	}
}

func TestTcellScreenWideCells(t *testing.T) {
	s := newSimScreen(t, 5, 1)
	s.SetContent(1, 0, '世', nil, tcell.StyleDefault)
	s.SetContent(3, 0, 'z', nil, tcell.StyleDefault)

	var cols []int
	for c := range termtext.NewTcellScreen(s).Cells() {
		cols = append(cols, c.Col)
		if c.Col == 1 && (c.Char != '世' || c.Width != 2) {
			t.Errorf("wide cell = %+v", c)
		}
	}
	want := []int{0, 1, 3, 4}
	if len(cols) != len(want) {
		t.Fatalf("columns = %v, want %v", cols, want)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Fatalf("columns = %v, want %v", cols, want)
		}
	}
}

func TestTcellScreenRendersThroughTextRenderer(t *testing.T) {
	s := newSimScreen(t, 3, 1)
	s.SetContent(0, 0, 'o', nil, tcell.StyleDefault.Background(tcell.ColorNavy))
	s.SetContent(1, 0, 'k', nil, tcell.StyleDefault.Underline(true))

	tr, _ := newTestTextRenderer(t, termtext.DefaultProfile())
	if err := tr.UpdateScreen(termtext.NewTcellScreen(s)); err != nil {
		t.Fatal(err)
	}
	bgs, uls, gls := tr.Instances()
	if len(bgs) != 1 || len(uls) != 1 || len(gls) != 2 {
		t.Errorf("instances = %d/%d/%d, want 1/1/2", len(bgs), len(uls), len(gls))
	}
	if len(bgs) == 1 && bgs[0].Color != termtext.DefaultPalette()[4].RGBA(0xFF) {
		t.Errorf("background = %v, want palette blue", bgs[0].Color)
	}
}
