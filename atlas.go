package termtext

import (
	"cmp"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"slices"
)

// Printable ASCII range rendered up front by RenderASCIIGlyphs.
const (
	firstASCIIGlyph = 33
	lastASCIIGlyph  = 126
)

// AtlasConfig holds atlas configuration.
type AtlasConfig struct {
	// MinTextureSize is the first texture size tried. Power of 2.
	// Default: 256
	MinTextureSize int

	// MaxTextureSize bounds texture growth. Power of 2.
	// Default: 4096
	MaxTextureSize int

	// MaxTextures limits the number of textures. It may not exceed the
	// device's TextureLimiter limit (8 for the OpenGL backend).
	// Default: 4
	MaxTextures int

	// Padding between glyphs to prevent sampling bleed.
	// Default: 1
	Padding int
}

// DefaultAtlasConfig returns default configuration.
func DefaultAtlasConfig() AtlasConfig {
	return AtlasConfig{
		MinTextureSize: 256,
		MaxTextureSize: 4096,
		MaxTextures:    4,
		Padding:        1,
	}
}

// Validate checks if the configuration is valid.
func (c *AtlasConfig) Validate() error {
	if c.MinTextureSize < 16 {
		return &AtlasConfigError{Field: "MinTextureSize", Reason: "must be at least 16"}
	}
	if c.MinTextureSize&(c.MinTextureSize-1) != 0 {
		return &AtlasConfigError{Field: "MinTextureSize", Reason: "must be power of 2"}
	}
	if c.MaxTextureSize > 16384 {
		return &AtlasConfigError{Field: "MaxTextureSize", Reason: "must be at most 16384"}
	}
	if c.MaxTextureSize&(c.MaxTextureSize-1) != 0 {
		return &AtlasConfigError{Field: "MaxTextureSize", Reason: "must be power of 2"}
	}
	if c.MaxTextureSize < c.MinTextureSize {
		return &AtlasConfigError{Field: "MaxTextureSize", Reason: "must be at least MinTextureSize"}
	}
	if c.MaxTextures < 1 {
		return &AtlasConfigError{Field: "MaxTextures", Reason: "must be at least 1"}
	}
	if c.Padding < 0 {
		return &AtlasConfigError{Field: "Padding", Reason: "must be non-negative"}
	}
	return nil
}

// glyphKey partitions the atlas by font so the same rune from a regular and
// a bold font get separate slots.
type glyphKey struct {
	ch   rune
	font int
}

type atlasEntry struct {
	page    int
	box     Rect
	xOffset int
	yOffset int
}

// GlyphBox locates a placed glyph in the atlas.
type GlyphBox struct {
	Page   int  // Index into Textures
	Bounds Rect // Glyph bitmap in atlas pixels, padding excluded

	// Offset of the bitmap's top-left from the cell's top-left, in pixels.
	XOffset, YOffset int

	// Logical size: how many cells the glyph's extent covers (at least 1).
	Cols, Rows int
}

// GlyphAtlas packs glyph bitmaps into one or more square textures of the
// same power-of-two size.
//
// Placements never move once made; a different font configuration needs a
// new atlas. An atlas is built against exactly one GlyphRenderer and is
// stale once that renderer is replaced.
type GlyphAtlas struct {
	device Device
	cfg    AtlasConfig

	size      int
	textures  []TextureID
	entries   map[glyphKey]atlasEntry
	built     bool
	destroyed bool
}

// NewGlyphAtlas creates an empty atlas that uploads through device.
func NewGlyphAtlas(device Device, cfg AtlasConfig) (*GlyphAtlas, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if l, ok := device.(TextureLimiter); ok {
		if limit := l.MaxTextures(); limit > 0 && cfg.MaxTextures > limit {
			return nil, &AtlasConfigError{
				Field:  "MaxTextures",
				Reason: fmt.Sprintf("device samples at most %d textures", limit),
			}
		}
	}
	return &GlyphAtlas{
		device:  device,
		cfg:     cfg,
		size:    cfg.MinTextureSize,
		entries: make(map[glyphKey]atlasEntry),
	}, nil
}

// pendingGlyph is a glyph measured but not yet placed.
type pendingGlyph struct {
	key  glyphKey
	w, h int
}

// RenderASCIIGlyphs renders every printable ASCII character (33–126) from
// every font of gr that provides it, packs them and uploads the textures.
func (a *GlyphAtlas) RenderASCIIGlyphs(gr *GlyphRenderer) error {
	if a.built {
		return errors.New("termtext: atlas already built")
	}

	var pending []pendingGlyph
	for fi := range gr.FontCount() {
		f := gr.FontAt(fi)
		for r := rune(firstASCIIGlyph); r <= lastASCIIGlyph; r++ {
			if !f.HasCharacter(r) {
				continue
			}
			w, h, err := f.GlyphDimensions(r)
			if err != nil {
				Logger().Debug("atlas: skipping glyph", slog.String("rune", string(r)), slog.Any("err", err))
				continue
			}
			pending = append(pending, pendingGlyph{key: glyphKey{ch: r, font: fi}, w: w, h: h})
		}
	}

	return a.place(gr, pending)
}

// place sorts, packs, rasterizes and uploads the pending glyphs.
func (a *GlyphAtlas) place(gr *GlyphRenderer, pending []pendingGlyph) error {
	// Largest first: big items settle early and small ones fill the gaps.
	slices.SortFunc(pending, func(x, y pendingGlyph) int {
		return cmp.Or(
			cmp.Compare(y.w*y.h, x.w*x.h),
			cmp.Compare(y.h, x.h),
			cmp.Compare(x.key.font, y.key.font),
			cmp.Compare(x.key.ch, y.key.ch),
		)
	})

	items := make([]packItem, len(pending))
	for i, p := range pending {
		items[i] = packItem{W: p.w, H: p.h}
	}

	pk := packer{
		minSize:  a.cfg.MinTextureSize,
		maxSize:  a.cfg.MaxTextureSize,
		maxPages: a.cfg.MaxTextures,
		padding:  a.cfg.Padding,
	}
	size, pageCount, err := pk.pack(items)
	if err != nil {
		return fmt.Errorf("pack glyphs: %w", err)
	}

	pages := make([][]byte, pageCount)
	for i := range pages {
		pages[i] = make([]byte, size*size)
	}

	entries := make(map[glyphKey]atlasEntry, len(pending))
	for i, p := range pending {
		it := items[i]
		f := gr.FontAt(p.key.font)
		xoff, yoff, err := f.GlyphOffset(p.key.ch)
		if err != nil {
			return fmt.Errorf("offset %q: %w", p.key.ch, err)
		}
		bmp, err := f.RenderGlyph(p.key.ch)
		if err != nil {
			return fmt.Errorf("render %q: %w", p.key.ch, err)
		}
		blit(pages[it.Page], size, it.X, it.Y, bmp, !gr.Antialias())
		entries[p.key] = atlasEntry{
			page:    it.Page,
			box:     Rect{X: it.X, Y: it.Y, W: p.w, H: p.h},
			xOffset: xoff,
			yOffset: yoff,
		}
	}

	textures := make([]TextureID, 0, pageCount)
	for _, pix := range pages {
		id, err := a.device.CreateTexture(size, pix)
		if err != nil {
			for _, t := range textures {
				a.device.DeleteTexture(t)
			}
			return fmt.Errorf("upload atlas texture: %w", err)
		}
		textures = append(textures, id)
	}

	a.size = size
	a.textures = textures
	a.entries = entries
	a.built = true

	Logger().Info("atlas built",
		slog.Int("glyphs", len(entries)),
		slog.Int("textureSize", size),
		slog.Int("textures", len(textures)))
	return nil
}

// blit copies a glyph bitmap into a size×size page at (x, y). With
// threshold set, coverage is snapped to fully on or off.
func blit(dst []byte, size, x, y int, src *image.Alpha, threshold bool) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for row := range h {
		s := src.Pix[row*src.Stride : row*src.Stride+w]
		d := dst[(y+row)*size+x : (y+row)*size+x+w]
		if !threshold {
			copy(d, s)
			continue
		}
		for i, v := range s {
			if v >= 0x80 {
				d[i] = 0xFF
			} else {
				d[i] = 0
			}
		}
	}
}

// GetGlyph looks up a placed glyph. Nothing is rendered on demand: a glyph
// that was not placed is reported with ErrGlyphNotFoundInAtlas.
func (a *GlyphAtlas) GetGlyph(ch rune, fontIndex, cellWidth, cellHeight int) (GlyphBox, error) {
	e, ok := a.entries[glyphKey{ch: ch, font: fontIndex}]
	if !ok {
		return GlyphBox{}, ErrGlyphNotFoundInAtlas
	}
	return GlyphBox{
		Page:    e.page,
		Bounds:  e.box,
		XOffset: e.xOffset,
		YOffset: e.yOffset,
		Cols:    cellSpan(e.xOffset+e.box.W, cellWidth),
		Rows:    cellSpan(e.yOffset+e.box.H, cellHeight),
	}, nil
}

// cellSpan returns how many cells of size cell an extent covers.
func cellSpan(extent, cell int) int {
	if cell <= 0 || extent <= cell {
		return 1
	}
	return (extent + cell - 1) / cell
}

// Textures returns the atlas textures in page order.
func (a *GlyphAtlas) Textures() []TextureID { return a.textures }

// TextureSize returns the side length shared by every texture.
func (a *GlyphAtlas) TextureSize() int { return a.size }

// Len returns the number of placed glyphs.
func (a *GlyphAtlas) Len() int { return len(a.entries) }

// Destroy deletes the atlas textures. It is safe to call more than once.
func (a *GlyphAtlas) Destroy() {
	if a.destroyed {
		return
	}
	a.destroyed = true
	for _, t := range a.textures {
		a.device.DeleteTexture(t)
	}
	a.textures = nil
	clear(a.entries)
}
