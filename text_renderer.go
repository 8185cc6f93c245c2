package termtext

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

// TextRenderer turns a Screen into instanced draws: cell backgrounds, then
// underlines, then glyphs.
//
// A TextRenderer is used from a single rendering thread. Each frame calls
// UpdateScreen and then Draw; SetGlyphRenderer is called between frames.
type TextRenderer struct {
	device  Device
	profile Profile
	cfg     AtlasConfig

	gr    *GlyphRenderer
	atlas *GlyphAtlas

	backgrounds *InstanceBuffer[BackgroundInstance]
	underlines  *InstanceBuffer[UnderlineInstance]
	glyphs      *InstanceBuffer[GlyphInstance]

	// uploaded holds the instance counts the device buffers hold, per pass.
	uploaded [3]int

	// reported remembers lookup failures already logged.
	reported *lru.Cache[missKey, struct{}]

	uniforms  Uniforms
	destroyed bool
}

// NewTextRenderer retains gr and builds its atlas on device. The profile
// supplies the palette and bright-is-bold setting.
func NewTextRenderer(device Device, gr *GlyphRenderer, profile Profile, opts ...Option) (*TextRenderer, error) {
	o := applyOptions(opts)
	cfg := GetOpt(o, OptAtlasConfig)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if HasOpt(o, OptAtlasConfig) {
		Logger().Debug("text renderer: custom atlas config",
			slog.Int("minSize", cfg.MinTextureSize), slog.Int("maxSize", cfg.MaxTextureSize),
			slog.Int("maxTextures", cfg.MaxTextures), slog.Int("padding", cfg.Padding))
	}

	reported, err := lru.New[missKey, struct{}](max(GetOpt(o, OptMissCacheSize), 1))
	if err != nil {
		return nil, fmt.Errorf("miss cache: %w", err)
	}

	capacity := GetOpt(o, OptInitialCapacity)
	limit := GetOpt(o, OptInstanceLimit)
	t := &TextRenderer{
		device:      device,
		profile:     profile,
		cfg:         cfg,
		backgrounds: NewInstanceBuffer[BackgroundInstance](capacity, limit),
		underlines:  NewInstanceBuffer[UnderlineInstance](capacity, limit),
		glyphs:      NewInstanceBuffer[GlyphInstance](capacity, limit),
		reported:    reported,
	}

	atlas, err := t.buildAtlas(gr)
	if err != nil {
		return nil, err
	}
	t.gr = gr.Retain()
	t.atlas = atlas
	return t, nil
}

func (t *TextRenderer) buildAtlas(gr *GlyphRenderer) (*GlyphAtlas, error) {
	atlas, err := NewGlyphAtlas(t.device, t.cfg)
	if err != nil {
		return nil, err
	}
	if err := atlas.RenderASCIIGlyphs(gr); err != nil {
		return nil, fmt.Errorf("build atlas: %w", err)
	}
	return atlas, nil
}

// SetGlyphRenderer switches to a new font configuration. The new atlas is
// built first; if that fails the renderer keeps drawing with the previous
// GlyphRenderer and atlas and the error is returned.
func (t *TextRenderer) SetGlyphRenderer(gr *GlyphRenderer) error {
	if gr == t.gr {
		return nil
	}
	atlas, err := t.buildAtlas(gr)
	if err != nil {
		Logger().Warn("text renderer: keeping previous fonts", slog.Any("err", err))
		return err
	}

	gr.Retain()
	t.atlas.Destroy()
	t.gr.Release()
	t.gr, t.atlas = gr, atlas
	// Font indices changed meaning; misses are worth reporting again.
	t.reported.Purge()

	w, h := gr.CellSize()
	Logger().Info("text renderer: glyph renderer replaced",
		slog.Int("cellWidth", w), slog.Int("cellHeight", h), slog.Int("glyphs", atlas.Len()))
	return nil
}

// UpdateScreen rebuilds the instance buffers from screen and uploads them.
// Cells whose glyph cannot be found are skipped; only running out of
// instance space aborts the frame. After a failed frame Draw draws nothing
// until the next successful UpdateScreen.
func (t *TextRenderer) UpdateScreen(screen Screen) error {
	t.uploaded = [3]int{}
	t.backgrounds.Reset()
	t.underlines.Reset()
	t.glyphs.Reset()

	for c := range screen.Cells() {
		if err := t.addCell(c); err != nil {
			t.backgrounds.Reset()
			t.underlines.Reset()
			t.glyphs.Reset()
			return err
		}
	}

	if err := t.device.UploadBackgrounds(t.backgrounds.Items()); err != nil {
		return fmt.Errorf("upload backgrounds: %w", err)
	}
	if err := t.device.UploadUnderlines(t.underlines.Items()); err != nil {
		return fmt.Errorf("upload underlines: %w", err)
	}
	if err := t.device.UploadGlyphs(t.glyphs.Items()); err != nil {
		return fmt.Errorf("upload glyphs: %w", err)
	}
	t.uploaded = [3]int{
		PassBackground: t.backgrounds.Len(),
		PassUnderline:  t.underlines.Len(),
		PassGlyph:      t.glyphs.Len(),
	}
	return nil
}

func (t *TextRenderer) addCell(c Cell) error {
	fg, bg, transparent := t.resolveColors(c.Attr)
	pos := [2]float32{float32(c.Col), float32(c.Row)}
	span := float32(max(c.Width, 1))

	if !transparent {
		if err := t.backgrounds.Append(BackgroundInstance{Cell: pos, Span: span, Color: bg.RGBA(0xFF)}); err != nil {
			return err
		}
	}

	if c.Char != 0 && c.Char != ' ' {
		if inst, ok := t.glyphInstance(c, pos, fg); ok {
			if err := t.glyphs.Append(inst); err != nil {
				return err
			}
		}
	}

	if c.Attr.Underline {
		if err := t.underlines.Append(UnderlineInstance{Cell: pos, Span: span, Color: fg.RGBA(0xFF)}); err != nil {
			return err
		}
	}
	return nil
}

func (t *TextRenderer) glyphInstance(c Cell, pos [2]float32, fg RGB) (GlyphInstance, bool) {
	_, fontIndex, err := t.gr.GetFont(c.Char, c.Attr.Bold)
	if err != nil {
		t.reportOnce(missKey{kind: missFont, ch: c.Char, bold: c.Attr.Bold}, err)
		return GlyphInstance{}, false
	}
	cw, ch := t.gr.CellSize()
	box, err := t.atlas.GetGlyph(c.Char, fontIndex, cw, ch)
	if err != nil {
		t.reportOnce(missKey{kind: missAtlas, ch: c.Char, font: fontIndex}, err)
		return GlyphInstance{}, false
	}
	return GlyphInstance{
		Cell:   pos,
		Atlas:  [4]float32{float32(box.Bounds.X), float32(box.Bounds.Y), float32(box.Bounds.W), float32(box.Bounds.H)},
		Offset: [2]float32{float32(box.XOffset), float32(box.YOffset)},
		Page:   float32(box.Page),
		Color:  fg.RGBA(0xFF),
	}, true
}

// resolveColors returns the cell's foreground and background colors and
// whether the background is the default one, which is left undrawn.
func (t *TextRenderer) resolveColors(a Attr) (fg, bg RGB, transparent bool) {
	fgCode, fgRGB := a.Fg, a.FgRGB
	bgCode, bgRGB := a.Bg, a.BgRGB
	if a.Bold && t.profile.BrightIsBold() {
		fgCode = brighten(fgCode)
	}
	if a.Inverse {
		fgCode, bgCode = bgCode, fgCode
		fgRGB, bgRGB = bgRGB, fgRGB
	}

	pal := t.profile.Palette()
	fg, err := pal.Resolve(fgCode, fgRGB)
	if err != nil {
		t.reportOnce(missKey{kind: missColor, color: fgCode}, err)
		fg = DebugForegroundColor
	}
	bg, err = pal.Resolve(bgCode, bgRGB)
	if err != nil {
		t.reportOnce(missKey{kind: missColor, color: bgCode}, err)
		bg = DebugBackgroundColor
	}
	return fg, bg, bgCode == ColorBackground
}

type missKind uint8

const (
	missFont missKind = iota
	missAtlas
	missColor
)

// missKey identifies one lookup failure. It is comparable so repeated
// misses are checked without allocating.
type missKey struct {
	kind  missKind
	ch    rune
	font  int
	bold  bool
	color ColorCode
}

// reportOnce logs err the first time key is seen.
func (t *TextRenderer) reportOnce(key missKey, err error) {
	if seen, _ := t.reported.ContainsOrAdd(key, struct{}{}); seen {
		return
	}
	level := slog.LevelWarn
	attrs := []slog.Attr{slog.Any("err", err)}
	switch key.kind {
	case missFont:
		level = slog.LevelInfo
		attrs = append(attrs, slog.String("rune", string(key.ch)), slog.Bool("bold", key.bold))
	case missAtlas:
		attrs = append(attrs, slog.String("rune", string(key.ch)), slog.Int("font", key.font))
	case missColor:
		attrs = append(attrs, slog.Int("code", int(key.color)))
	}
	Logger().LogAttrs(context.Background(), level, "text renderer: cell skipped", attrs...)
}

// Draw issues the background, underline and glyph passes for the last
// uploaded frame. Empty passes are skipped.
func (t *TextRenderer) Draw(cellWidth, cellHeight, viewportWidth, viewportHeight int) error {
	t.uniforms = Uniforms{
		CellWidth:       cellWidth,
		CellHeight:      cellHeight,
		ViewportWidth:   viewportWidth,
		ViewportHeight:  viewportHeight,
		AtlasSize:       t.atlas.TextureSize(),
		UnderlineOffset: t.gr.UnderlineOffset(),
		Textures:        t.atlas.Textures(),
	}

	passes := [...]struct {
		pass  DrawPass
		count int
	}{
		{PassBackground, t.uploaded[PassBackground]},
		{PassUnderline, t.uploaded[PassUnderline]},
		{PassGlyph, t.uploaded[PassGlyph]},
	}
	for _, p := range passes {
		if p.count == 0 {
			continue
		}
		if err := t.device.DrawInstanced(p.pass, p.count, &t.uniforms); err != nil {
			return fmt.Errorf("draw %s: %w", p.pass, err)
		}
	}
	return nil
}

// CellSize returns the current cell size in pixels.
func (t *TextRenderer) CellSize() (width, height int) { return t.gr.CellSize() }

// GlyphRenderer returns the current glyph renderer. The caller does not own
// a reference.
func (t *TextRenderer) GlyphRenderer() *GlyphRenderer { return t.gr }

// Atlas returns the atlas built for the current glyph renderer.
func (t *TextRenderer) Atlas() *GlyphAtlas { return t.atlas }

// Instances returns the instances built by the last UpdateScreen. The
// slices are only valid until the next UpdateScreen.
func (t *TextRenderer) Instances() ([]BackgroundInstance, []UnderlineInstance, []GlyphInstance) {
	return t.backgrounds.Items(), t.underlines.Items(), t.glyphs.Items()
}

// InstanceCapacity returns the allocated capacity of each instance buffer.
func (t *TextRenderer) InstanceCapacity() (backgrounds, underlines, glyphs int) {
	return t.backgrounds.Cap(), t.underlines.Cap(), t.glyphs.Cap()
}

// Destroy deletes the atlas and releases the glyph renderer. It is safe to
// call more than once.
func (t *TextRenderer) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.atlas.Destroy()
	t.gr.Release()
}
