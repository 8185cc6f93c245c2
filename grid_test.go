package termtext_test

import (
	"slices"
	"testing"

	"github.com/go-theft-auto/termtext"
)

func collect(s termtext.Screen) []termtext.Cell {
	var cells []termtext.Cell
	for c := range s.Cells() {
		cells = append(cells, c)
	}
	return cells
}

func row(g *termtext.Grid, r int) string {
	cols, _ := g.Size()
	var out []rune
	for col := range cols {
		ch, _ := g.At(col, r)
		if ch == 0 {
			ch = '_'
		}
		out = append(out, ch)
	}
	return string(out)
}

func TestGridCells(t *testing.T) {
	g := termtext.NewGrid(4, 2)
	if n := g.SetCell(0, 0, '世', termtext.DefaultAttr); n != 2 {
		t.Errorf("SetCell wide = %d, want 2", n)
	}
	g.SetCell(2, 0, 'a', termtext.DefaultAttr)

	cells := collect(g)
	// 3 cells on the first row (the continuation slot is skipped), 4 on the second.
	if len(cells) != 7 {
		t.Fatalf("%d cells, want 7", len(cells))
	}
	if c := cells[0]; c.Char != '世' || c.Width != 2 || c.Col != 0 {
		t.Errorf("first cell = %+v", c)
	}
	if c := cells[1]; c.Char != 'a' || c.Col != 2 {
		t.Errorf("second cell = %+v, want 'a' at column 2", c)
	}
	if c := cells[3]; c.Row != 1 || c.Col != 0 || c.Char != ' ' {
		t.Errorf("fourth cell = %+v, want blank at 0,1", c)
	}
}

func TestGridCellsStopEarly(t *testing.T) {
	g := termtext.NewGrid(10, 10)
	n := 0
	for range g.Cells() {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("iterated %d cells", n)
	}
}

func TestGridSetCell(t *testing.T) {
	tests := []struct {
		name  string
		setup func(g *termtext.Grid)
		want  string
	}{
		{"wide", func(g *termtext.Grid) { g.SetCell(1, 0, '世', termtext.DefaultAttr) }, " 世_ "},
		{"overwrite continuation", func(g *termtext.Grid) {
			g.SetCell(0, 0, '世', termtext.DefaultAttr)
			g.SetCell(1, 0, 'a', termtext.DefaultAttr)
		}, " a  "},
		{"overwrite lead", func(g *termtext.Grid) {
			g.SetCell(0, 0, '世', termtext.DefaultAttr)
			g.SetCell(0, 0, 'b', termtext.DefaultAttr)
		}, "b   "},
		{"wide over wide", func(g *termtext.Grid) {
			g.SetCell(0, 0, '世', termtext.DefaultAttr)
			g.SetCell(1, 0, '界', termtext.DefaultAttr)
		}, " 界_ "},
		{"wide at last column", func(g *termtext.Grid) { g.SetCell(3, 0, '世', termtext.DefaultAttr) }, "    "},
		{"zero width ignored", func(g *termtext.Grid) {
			g.SetCell(0, 0, 'e', termtext.DefaultAttr)
			g.SetCell(0, 0, '\u0301', termtext.DefaultAttr)
		}, "e   "},
		{"outside ignored", func(g *termtext.Grid) { g.SetCell(9, 9, 'x', termtext.DefaultAttr) }, "    "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := termtext.NewGrid(4, 1)
			tt.setup(g)
			if got := row(g, 0); got != tt.want {
				t.Errorf("row = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGridSetString(t *testing.T) {
	g := termtext.NewGrid(5, 1)
	attr := termtext.Attr{Fg: 3, Bg: termtext.ColorBackground, Bold: true}
	if n := g.SetString(0, 0, "ab世cd", attr); n != 5 {
		t.Errorf("SetString = %d, want 5", n)
	}
	if got := row(g, 0); got != "ab世_c" {
		t.Errorf("row = %q", got)
	}
	if _, a := g.At(4, 0); a != attr {
		t.Errorf("attr = %+v, want %+v", a, attr)
	}

	g.Clear()
	if got := row(g, 0); got != "     " {
		t.Errorf("after Clear row = %q", got)
	}
}

func TestGridResize(t *testing.T) {
	g := termtext.NewGrid(4, 2)
	g.SetString(0, 0, "ab世", termtext.DefaultAttr)
	g.SetString(0, 1, "wxyz", termtext.DefaultAttr)

	g.Resize(3, 3)
	if cols, rows := g.Size(); cols != 3 || rows != 3 {
		t.Fatalf("size = %dx%d", cols, rows)
	}
	got := []string{row(g, 0), row(g, 1), row(g, 2)}
	want := []string{"ab ", "wxy", "   "}
	if !slices.Equal(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
	for _, c := range collect(g) {
		if c.Width != 1 {
			t.Errorf("cell %+v still wide after the cut", c)
		}
	}
}
