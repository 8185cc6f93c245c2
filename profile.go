package termtext

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"
)

// Profile is the read-only configuration consumed by GlyphRenderer and
// TextRenderer.
type Profile interface {
	// FontFaces returns the regular faces: primary first, then fallbacks.
	FontFaces() []string
	// BoldFontFaces returns the bold faces in the same order.
	BoldFontFaces() []string
	// FontSize returns the configured font size.
	FontSize() int
	// DPI returns the resolution fonts are rendered at.
	DPI() float64
	Antialias() bool
	// BrightIsBold reports whether bold text in colors 0-7 uses 8-15.
	BrightIsBold() bool
	Palette() *Palette
}

// ProfileConfig is a Profile held in memory. The zero value is not useful;
// start from DefaultProfile or LoadProfile.
type ProfileConfig struct {
	Fonts        []string
	BoldFonts    []string
	Size         int
	Resolution   float64
	Antialiasing bool
	BrightBold   bool
	Colors       Palette
}

// DefaultProfile uses the built-in Go Mono faces at 16px with the xterm
// palette.
func DefaultProfile() *ProfileConfig {
	return &ProfileConfig{
		Fonts:        []string{FaceGoMono},
		BoldFonts:    []string{FaceGoMonoBold},
		Size:         16,
		Resolution:   72,
		Antialiasing: true,
		BrightBold:   true,
		Colors:       DefaultPalette(),
	}
}

func (p *ProfileConfig) FontFaces() []string     { return p.Fonts }
func (p *ProfileConfig) BoldFontFaces() []string { return p.BoldFonts }
func (p *ProfileConfig) FontSize() int           { return p.Size }
func (p *ProfileConfig) DPI() float64            { return p.Resolution }
func (p *ProfileConfig) Antialias() bool         { return p.Antialiasing }
func (p *ProfileConfig) BrightIsBold() bool      { return p.BrightBold }
func (p *ProfileConfig) Palette() *Palette       { return &p.Colors }

// profileFile is the on-disk TOML layout. Pointer fields distinguish
// "absent" from zero so absent keys keep their defaults.
type profileFile struct {
	Fonts        []string `toml:"fonts"`
	BoldFonts    []string `toml:"bold_fonts"`
	Size         *int     `toml:"size"`
	DPI          *float64 `toml:"dpi"`
	Antialias    *bool    `toml:"antialias"`
	BrightIsBold *bool    `toml:"bright_is_bold"`
	Colors       struct {
		Palette    []string `toml:"palette"`
		Foreground string   `toml:"foreground"`
		Background string   `toml:"background"`
	} `toml:"colors"`
}

// LoadProfile reads a TOML profile. Keys that are absent keep the values of
// DefaultProfile. Example:
//
//	fonts = ["DejaVuSansMono", "Go Mono"]
//	bold_fonts = ["DejaVuSansMono-Bold"]
//	size = 14
//	dpi = 96
//
//	[colors]
//	foreground = "#d0d0d0"
//	background = "#1c1c1c"
//	palette = ["#000000", "#cd0000", ...]
func LoadProfile(path string) (*ProfileConfig, error) {
	var pf profileFile
	md, err := toml.DecodeFile(path, &pf)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		Logger().Warn("profile: unknown keys ignored",
			slog.String("path", path), slog.String("keys", strings.Join(keys, ",")))
	}
	return pf.apply(DefaultProfile())
}

func (pf *profileFile) apply(p *ProfileConfig) (*ProfileConfig, error) {
	if len(pf.Fonts) > 0 {
		p.Fonts = pf.Fonts
	}
	if pf.BoldFonts != nil {
		p.BoldFonts = pf.BoldFonts
	}
	if pf.Size != nil {
		if *pf.Size <= 0 {
			return nil, fmt.Errorf("profile: size must be positive, got %d", *pf.Size)
		}
		p.Size = *pf.Size
	}
	if pf.DPI != nil {
		if *pf.DPI <= 0 {
			return nil, fmt.Errorf("profile: dpi must be positive, got %g", *pf.DPI)
		}
		p.Resolution = *pf.DPI
	}
	if pf.Antialias != nil {
		p.Antialiasing = *pf.Antialias
	}
	if pf.BrightIsBold != nil {
		p.BrightBold = *pf.BrightIsBold
	}

	if len(pf.Colors.Palette) > 16 {
		return nil, fmt.Errorf("profile: palette has %d colors, at most 16 allowed", len(pf.Colors.Palette))
	}
	for i, hex := range pf.Colors.Palette {
		c, err := parseHexColor(hex)
		if err != nil {
			return nil, fmt.Errorf("profile: palette[%d]: %w", i, err)
		}
		p.Colors[i] = c
	}
	if pf.Colors.Foreground != "" {
		c, err := parseHexColor(pf.Colors.Foreground)
		if err != nil {
			return nil, fmt.Errorf("profile: foreground: %w", err)
		}
		p.Colors[ColorForeground] = c
	}
	if pf.Colors.Background != "" {
		c, err := parseHexColor(pf.Colors.Background)
		if err != nil {
			return nil, fmt.Errorf("profile: background: %w", err)
		}
		p.Colors[ColorBackground] = c
	}
	return p, nil
}

func parseHexColor(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, err
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}
