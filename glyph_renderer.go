package termtext

import "log/slog"

// underlinePadding is how far below the baseline underlines are drawn.
const underlinePadding = 2

// cellWidthRune's advance is the cell width.
const cellWidthRune = 'M'

// GlyphRenderer resolves characters to fonts for one font configuration at
// one size. It is immutable: changing fonts or size means building a new
// GlyphRenderer.
//
// A GlyphRenderer is reference counted. The creator holds the first
// reference; each additional holder calls Retain and every holder calls
// Release once. The renderer's fonts are released with the last reference.
type GlyphRenderer struct {
	regular []*SharedFont
	bold    []*SharedFont

	cellWidth       int
	cellHeight      int
	underlineOffset int
	antialias       bool

	refs refCount
}

// RendererOption configures a GlyphRenderer.
type RendererOption func(*GlyphRenderer)

// WithAntialias selects anti-aliased (true, the default) or thresholded
// glyph bitmaps.
func WithAntialias(on bool) RendererOption {
	return func(g *GlyphRenderer) { g.antialias = on }
}

// NewGlyphRenderer builds a renderer over the ordered regular and bold font
// lists; the first regular font is the primary font and the rest are
// fallbacks. It takes its own reference on every font, so callers release
// theirs independently.
func NewGlyphRenderer(regular, bold []*SharedFont, opts ...RendererOption) (*GlyphRenderer, error) {
	if len(regular) == 0 {
		return nil, ErrNoFonts
	}

	g := &GlyphRenderer{
		regular:   make([]*SharedFont, 0, len(regular)),
		bold:      make([]*SharedFont, 0, len(bold)),
		antialias: true,
	}
	for _, opt := range opts {
		opt(g)
	}
	for _, s := range regular {
		g.regular = append(g.regular, s.Retain())
	}
	for _, s := range bold {
		g.bold = append(g.bold, s.Retain())
	}
	g.refs.init()

	primary := g.regular[0].Font()
	g.cellHeight = primary.LineHeight()
	g.cellWidth = g.measureCellWidth()
	g.underlineOffset = min(primary.Baseline()+underlinePadding, g.cellHeight-1)

	Logger().Info("glyph renderer created",
		slog.String("primary", primary.Name()),
		slog.Int("size", primary.Size()),
		slog.Int("fonts", g.FontCount()),
		slog.Int("cellWidth", g.cellWidth),
		slog.Int("cellHeight", g.cellHeight))

	return g, nil
}

func (g *GlyphRenderer) measureCellWidth() int {
	for _, s := range g.regular {
		if w, err := s.Font().AdvanceWidth(cellWidthRune); err == nil && w > 0 {
			return w
		}
	}
	primary := g.regular[0].Font()
	w := max(primary.Size()/2, 1)
	Logger().Warn("glyph renderer: no regular font provides the cell width glyph",
		slog.String("rune", string(cellWidthRune)), slog.Int("fallbackWidth", w))
	return w
}

// CellSize returns the monospace cell size in pixels.
func (g *GlyphRenderer) CellSize() (width, height int) {
	return g.cellWidth, g.cellHeight
}

// FontSize returns the size the primary font was requested at, which font
// size steps start from. It differs from FontAt(0).Size() when the face fell
// back to the default size. An invalid request reports the effective size.
func (g *GlyphRenderer) FontSize() int {
	f := g.regular[0].Font()
	if f.RequestedSize() > 0 {
		return f.RequestedSize()
	}
	return f.Size()
}

// UnderlineOffset returns the distance from the top of a cell to the
// underline.
func (g *GlyphRenderer) UnderlineOffset() int { return g.underlineOffset }

// Antialias reports whether glyph bitmaps keep their coverage values.
func (g *GlyphRenderer) Antialias() bool { return g.antialias }

// FontCount returns the number of font indices: regular fonts followed by
// bold fonts.
func (g *GlyphRenderer) FontCount() int {
	return len(g.regular) + len(g.bold)
}

// FontAt returns the font for a flat font index, or nil when out of range.
func (g *GlyphRenderer) FontAt(index int) *Font {
	switch {
	case index < 0:
		return nil
	case index < len(g.regular):
		return g.regular[index].Font()
	case index < len(g.regular)+len(g.bold):
		return g.bold[index-len(g.regular)].Font()
	}
	return nil
}

// GetFont returns the font that renders r and its font index. The requested
// style's list is searched in order; if no font there has r, the other
// style's list is searched once before giving up. The index is flat across
// regular fonts followed by bold fonts, so the same rune from different
// fonts never shares an atlas slot.
func (g *GlyphRenderer) GetFont(r rune, bold bool) (*Font, int, error) {
	first, second := g.regular, g.bold
	firstBase, secondBase := 0, len(g.regular)
	if bold {
		first, second = second, first
		firstBase, secondBase = secondBase, firstBase
	}

	for i, s := range first {
		if s.Font().HasCharacter(r) {
			return s.Font(), firstBase + i, nil
		}
	}
	// Out of desperation.
	for i, s := range second {
		if s.Font().HasCharacter(r) {
			return s.Font(), secondBase + i, nil
		}
	}
	return nil, -1, ErrMissingFontForCharacter
}

// Retain adds a holder and returns g.
func (g *GlyphRenderer) Retain() *GlyphRenderer {
	if !g.refs.retain() {
		Logger().Warn("glyph renderer: retain after final release")
	}
	return g
}

// Release drops one holder. The last release releases every font the
// renderer holds. It reports whether this call was the last release.
func (g *GlyphRenderer) Release() bool {
	last, ok := g.refs.release()
	if !ok {
		Logger().Warn("glyph renderer: release after final release")
		return false
	}
	if !last {
		return false
	}
	for _, s := range g.regular {
		s.Release()
	}
	for _, s := range g.bold {
		s.Release()
	}
	return true
}

// Refs returns the current number of holders.
func (g *GlyphRenderer) Refs() int { return g.refs.load() }
