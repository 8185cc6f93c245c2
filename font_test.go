package termtext_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gomono"

	"github.com/go-theft-auto/termtext"
)

func writeFontFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "font.ttf")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFont(t *testing.T) {
	path := writeFontFile(t, gomono.TTF)

	f, err := termtext.LoadFont(path, "", 16, 72, 72)
	if err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	defer f.Close()

	if f.Name() != "Go Mono" {
		t.Errorf("name = %q, want family name from the font", f.Name())
	}
	if f.Path() != path {
		t.Errorf("path = %q, want %q", f.Path(), path)
	}
	if f.Size() != 16 {
		t.Errorf("size = %d, want 16", f.Size())
	}
}

func TestLoadFontInvalidSize(t *testing.T) {
	f, err := termtext.LoadFontData(gomono.TTF, "", 0, 72, 72)
	if err != nil {
		t.Fatalf("LoadFontData: %v", err)
	}
	defer f.Close()

	if f.Size() != 12 {
		t.Errorf("size = %d, want the default 12", f.Size())
	}
	if f.RequestedSize() != 0 {
		t.Errorf("requested size = %d, want 0", f.RequestedSize())
	}
	if !f.HasCharacter('x') {
		t.Error("face at the default size has no 'x'")
	}
}

func TestLoadFontErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.ttf"), termtext.ErrFontNotFound},
		{"not a font", writeFontFile(t, []byte("definitely not a font")), termtext.ErrFailedToLoadFont},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := termtext.LoadFont(tt.path, "x", 16, 72, 72)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFontGlyphMetrics(t *testing.T) {
	f, err := termtext.LoadFontData(gomono.TTF, "Go Mono", 20, 72, 72)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if !f.HasCharacter('A') {
		t.Error("Go Mono should have 'A'")
	}
	if f.HasCharacter('世') {
		t.Error("Go Mono should not have CJK ideographs")
	}

	w, h, err := f.GlyphDimensions('M')
	if err != nil {
		t.Fatal(err)
	}
	if w <= 0 || h <= 0 {
		t.Fatalf("dimensions of 'M' = %dx%d, want positive", w, h)
	}

	bmp, err := f.RenderGlyph('M')
	if err != nil {
		t.Fatal(err)
	}
	if bmp.Rect.Dx() != w || bmp.Rect.Dy() != h {
		t.Errorf("bitmap is %dx%d, dimensions say %dx%d", bmp.Rect.Dx(), bmp.Rect.Dy(), w, h)
	}
	inked := 0
	for _, v := range bmp.Pix {
		if v > 0 {
			inked++
		}
	}
	if inked == 0 {
		t.Error("rendered 'M' has no coverage")
	}

	_, y, err := f.GlyphOffset('M')
	if err != nil {
		t.Fatal(err)
	}
	if y < 0 || y+h > f.LineHeight() {
		t.Errorf("'M' at y=%d height %d does not fit a line of %d", y, h, f.LineHeight())
	}

	if _, _, err := f.GlyphDimensions('世'); !errors.Is(err, termtext.ErrGlyphNotFound) {
		t.Errorf("missing glyph err = %v, want ErrGlyphNotFound", err)
	}
}

func TestFontBaselineWithinLine(t *testing.T) {
	for _, size := range []int{8, 12, 16, 24, 48} {
		f, err := termtext.LoadFontData(gomono.TTF, "Go Mono", size, 72, 72)
		if err != nil {
			t.Fatal(err)
		}
		if b := f.Baseline(); b <= 0 || b >= f.LineHeight() {
			t.Errorf("size %d: baseline %d outside line height %d", size, b, f.LineHeight())
		}
		f.Close()
	}
}

func TestFontClose(t *testing.T) {
	f, err := termtext.LoadFontData(gomono.TTF, "Go Mono", 16, 72, 72)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if !f.Closed() {
		t.Error("Closed() = false after Close")
	}
	if f.HasCharacter('A') {
		t.Error("closed font still reports characters")
	}
}
