package termtext

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// defaultFontSize is used when a face cannot be created at the requested
// size.
const defaultFontSize = 12

// Font is one font file loaded at one size. A Font is only ever returned
// fully loaded; after Close every query fails with ErrGlyphNotFound.
//
// Font is not safe for concurrent use: the rasterizer and the glyph bitmap
// returned by RenderGlyph are reused between calls.
type Font struct {
	name      string
	path      string
	size      int
	requested int

	otf     *opentype.Font
	face    font.Face
	buf     sfnt.Buffer
	metrics font.Metrics

	bitmap *image.Alpha
	closed bool
}

// LoadFont reads and parses the font file at path and creates a face of the
// given size. Sizes are in points at the given DPI, so a DPI of 72 makes
// size a pixel size. faceName may be empty, in which case the family name
// stored in the font is used.
func LoadFont(path, faceName string, size int, xDPI, yDPI float64) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFontNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrFailedToLoadFont, path, err)
	}

	f, err := LoadFontData(data, faceName, size, xDPI, yDPI)
	if err != nil {
		return nil, err
	}
	f.path = path
	return f, nil
}

// LoadFontData is LoadFont for font bytes already in memory.
func LoadFontData(data []byte, faceName string, size int, xDPI, yDPI float64) (*Font, error) {
	otf, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFailedToLoadFont, faceName, err)
	}

	f := &Font{
		name:      faceName,
		size:      size,
		requested: size,
		otf:    otf,
		bitmap: image.NewAlpha(image.Rectangle{}),
	}
	if f.name == "" {
		if family, err := otf.Name(&f.buf, sfnt.NameIDFamily); err == nil {
			f.name = family
		}
	}

	dpi := yDPI
	if dpi <= 0 {
		dpi = 72
	}
	if xDPI > 0 && xDPI != dpi {
		Logger().Debug("font: horizontal DPI ignored",
			slog.String("face", f.name), slog.Float64("xdpi", xDPI), slog.Float64("ydpi", dpi))
	}

	if size <= 0 {
		Logger().Warn("font: invalid size, using default",
			slog.String("face", f.name), slog.Int("size", size), slog.Int("default", defaultFontSize))
		f.size = defaultFontSize
	}
	f.face, err = newFace(otf, f.size, dpi)
	if err != nil && f.size != defaultFontSize {
		Logger().Warn("font: could not set size, using default",
			slog.String("face", f.name), slog.Int("size", f.size), slog.Any("err", err))
		f.size = defaultFontSize
		f.face, err = newFace(otf, f.size, dpi)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFailedToLoadFont, f.name, err)
	}
	f.metrics = f.face.Metrics()

	return f, nil
}

func newFace(otf *opentype.Font, size int, dpi float64) (font.Face, error) {
	return opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
}

// Name returns the face name.
func (f *Font) Name() string { return f.name }

// Path returns the file the font was loaded from, or "" for in-memory fonts.
func (f *Font) Path() string { return f.path }

// Size returns the size the face was created at.
func (f *Font) Size() int { return f.size }

// RequestedSize returns the size passed to LoadFont. It differs from Size
// when the face fell back to the default size.
func (f *Font) RequestedSize() int { return f.requested }

// HasCharacter reports whether the font maps r to a glyph.
func (f *Font) HasCharacter(r rune) bool {
	if f.closed {
		return false
	}
	idx, err := f.otf.GlyphIndex(&f.buf, r)
	return err == nil && idx != 0
}

// glyphBounds returns the 26.6 bounds of r relative to the pen position on
// the baseline.
func (f *Font) glyphBounds(r rune) (fixed.Rectangle26_6, error) {
	if !f.HasCharacter(r) {
		return fixed.Rectangle26_6{}, fmt.Errorf("%w: %q in %s", ErrGlyphNotFound, r, f.name)
	}
	bounds, _, ok := f.face.GlyphBounds(r)
	if !ok {
		return fixed.Rectangle26_6{}, fmt.Errorf("%w: %q in %s", ErrGlyphNotFound, r, f.name)
	}
	return bounds, nil
}

// GlyphDimensions returns the pixel size of the bitmap RenderGlyph produces
// for r. Fractional bounds are rounded outward.
func (f *Font) GlyphDimensions(r rune) (width, height int, err error) {
	b, err := f.glyphBounds(r)
	if err != nil {
		return 0, 0, err
	}
	return b.Max.X.Ceil() - b.Min.X.Floor(), b.Max.Y.Ceil() - b.Min.Y.Floor(), nil
}

// GlyphOffset returns where the top-left of r's bitmap sits relative to the
// top-left of its cell.
func (f *Font) GlyphOffset(r rune) (x, y int, err error) {
	b, err := f.glyphBounds(r)
	if err != nil {
		return 0, 0, err
	}
	return b.Min.X.Floor(), f.Baseline() + b.Min.Y.Floor(), nil
}

// AdvanceWidth returns the horizontal advance of r in whole pixels.
func (f *Font) AdvanceWidth(r rune) (int, error) {
	if !f.HasCharacter(r) {
		return 0, fmt.Errorf("%w: %q in %s", ErrGlyphNotFound, r, f.name)
	}
	adv, ok := f.face.GlyphAdvance(r)
	if !ok {
		return 0, fmt.Errorf("%w: %q in %s", ErrGlyphNotFound, r, f.name)
	}
	return adv.Ceil(), nil
}

// LineHeight returns the height of one line of text in pixels.
func (f *Font) LineHeight() int {
	return max(f.metrics.Height.Ceil(), (f.metrics.Ascent + f.metrics.Descent).Ceil())
}

// Baseline returns the distance from the top of a line to the baseline. Half
// of the font's line gap is placed above the ascent so glyphs are centered
// vertically in the line.
func (f *Font) Baseline() int {
	gap := f.metrics.Height - (f.metrics.Ascent + f.metrics.Descent)
	halfGap := 0
	if gap > 0 {
		halfGap = (gap / 2).Round()
	}
	return halfGap + f.metrics.Ascent.Ceil()
}

// RenderGlyph rasterizes r into an anti-aliased coverage bitmap whose bounds
// are (0, 0, width, height) as reported by GlyphDimensions.
//
// The returned image is owned by the Font and overwritten by the next call;
// copy it out before rendering another glyph.
func (f *Font) RenderGlyph(r rune) (*image.Alpha, error) {
	b, err := f.glyphBounds(r)
	if err != nil {
		return nil, err
	}
	origin := image.Pt(b.Min.X.Floor(), b.Min.Y.Floor())
	w := b.Max.X.Ceil() - origin.X
	h := b.Max.Y.Ceil() - origin.Y
	f.resetBitmap(w, h)
	if w == 0 || h == 0 {
		return f.bitmap, nil
	}

	dr, mask, maskp, _, ok := f.face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s: rasterization failed", ErrGlyphNotFound, r, f.name)
	}
	if mask != nil && !dr.Empty() {
		draw.Draw(f.bitmap, f.bitmap.Bounds(), mask, maskp.Add(origin.Sub(dr.Min)), draw.Src)
	}
	return f.bitmap, nil
}

// resetBitmap resizes the reusable bitmap to w×h and clears it.
func (f *Font) resetBitmap(w, h int) {
	n := w * h
	if cap(f.bitmap.Pix) < n {
		f.bitmap.Pix = make([]uint8, n)
	} else {
		f.bitmap.Pix = f.bitmap.Pix[:n]
		clear(f.bitmap.Pix)
	}
	f.bitmap.Stride = w
	f.bitmap.Rect = image.Rect(0, 0, w, h)
}

// Close releases the face. It is safe to call more than once.
func (f *Font) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.face.Close()
}

// Closed reports whether Close has been called.
func (f *Font) Closed() bool { return f.closed }
