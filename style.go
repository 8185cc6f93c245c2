package termtext

// RGB is an 8-bit per channel color.
type RGB struct {
	R, G, B uint8
}

// RGBA returns the color packed for an instance record with the given alpha.
func (c RGB) RGBA(alpha uint8) [4]uint8 {
	return [4]uint8{c.R, c.G, c.B, alpha}
}

// ColorCode selects a color from a Profile palette, or marks an attribute
// as carrying an explicit RGB triple.
type ColorCode uint8

// Palette slots beyond the 16 indexed colors.
const (
	ColorForeground ColorCode = 16
	ColorBackground ColorCode = 17

	// ColorRGB is the sentinel meaning "use the cell's stored RGB value".
	ColorRGB ColorCode = 0xFF
)

// PaletteSize is the number of entries in a Palette: 16 indexed colors plus
// the default foreground and background.
const PaletteSize = 18

// Colors substituted for unknown color codes so the defect stays visible.
var (
	DebugBackgroundColor = RGB{R: 0xFF, G: 0x00, B: 0xFF} // magenta
	DebugForegroundColor = RGB{R: 0x00, G: 0xFF, B: 0xFF} // cyan
)

// Palette is the 18-entry color table of a Profile, indexed by ColorCode.
type Palette [PaletteSize]RGB

// DefaultPalette returns the xterm default colors on a dark background.
func DefaultPalette() Palette {
	return Palette{
		{0x00, 0x00, 0x00}, // black
		{0xCD, 0x00, 0x00}, // red
		{0x00, 0xCD, 0x00}, // green
		{0xCD, 0xCD, 0x00}, // yellow
		{0x00, 0x00, 0xEE}, // blue
		{0xCD, 0x00, 0xCD}, // magenta
		{0x00, 0xCD, 0xCD}, // cyan
		{0xE5, 0xE5, 0xE5}, // white
		{0x7F, 0x7F, 0x7F}, // bright black
		{0xFF, 0x00, 0x00}, // bright red
		{0x00, 0xFF, 0x00}, // bright green
		{0xFF, 0xFF, 0x00}, // bright yellow
		{0x5C, 0x5C, 0xFF}, // bright blue
		{0xFF, 0x00, 0xFF}, // bright magenta
		{0x00, 0xFF, 0xFF}, // bright cyan
		{0xFF, 0xFF, 0xFF}, // bright white
		{0xE5, 0xE5, 0xE5}, // foreground
		{0x10, 0x10, 0x14}, // background
	}
}

// Lookup returns the palette entry for code. ColorRGB is not a palette
// entry; callers resolve it against the cell's stored triple first.
func (p *Palette) Lookup(code ColorCode) (RGB, error) {
	if int(code) >= PaletteSize {
		return RGB{}, ErrUnknownColorCode
	}
	return p[code], nil
}

// Resolve maps an attribute color to RGB: the explicit triple for ColorRGB,
// otherwise the palette entry.
func (p *Palette) Resolve(code ColorCode, explicit RGB) (RGB, error) {
	if code == ColorRGB {
		return explicit, nil
	}
	return p.Lookup(code)
}

// brighten maps the eight normal indexed colors to their bright variants.
// Other codes are returned unchanged.
func brighten(code ColorCode) ColorCode {
	if code < 8 {
		return code + 8
	}
	return code
}
