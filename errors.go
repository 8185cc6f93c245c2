package termtext

import "errors"

// Sentinel errors returned by the termtext package. Callers should compare
// with errors.Is, since most are wrapped with the offending rune, path or
// color code.
var (
	// ErrFontNotFound is returned when a font file or face name cannot be
	// resolved to a readable file.
	ErrFontNotFound = errors.New("termtext: font not found")

	// ErrFailedToLoadFont is returned when a font file exists but cannot be
	// parsed.
	ErrFailedToLoadFont = errors.New("termtext: failed to load font")

	// ErrGlyphNotFound is returned by Font queries for a rune the font does
	// not provide.
	ErrGlyphNotFound = errors.New("termtext: glyph not found in font")

	// ErrMissingFontForCharacter is returned when no configured font, regular
	// or bold, provides a rune.
	ErrMissingFontForCharacter = errors.New("termtext: no font provides character")

	// ErrGlyphNotFoundInAtlas is returned for a (rune, font index) pair that
	// has not been placed into the atlas.
	ErrGlyphNotFoundInAtlas = errors.New("termtext: glyph not found in atlas")

	// ErrUnknownColorCode is returned for an attribute color code outside the
	// palette that is not the explicit RGB sentinel.
	ErrUnknownColorCode = errors.New("termtext: unknown color code")

	// ErrOutOfMemory is returned when an instance buffer would grow past its
	// configured limit.
	ErrOutOfMemory = errors.New("termtext: out of memory")

	// ErrAtlasFull is returned when glyphs remain unplaced after the maximum
	// number of maximum-size textures has been used.
	ErrAtlasFull = errors.New("termtext: atlas full")

	// ErrGlyphTooLarge is returned when a single glyph does not fit into an
	// empty texture of the maximum size.
	ErrGlyphTooLarge = errors.New("termtext: glyph larger than maximum texture")

	// ErrNoFonts is returned when a GlyphRenderer is built without any
	// regular font.
	ErrNoFonts = errors.New("termtext: no regular fonts configured")
)

// AtlasConfigError represents an invalid AtlasConfig field.
type AtlasConfigError struct {
	Field  string
	Reason string
}

func (e *AtlasConfigError) Error() string {
	return "termtext: invalid atlas config." + e.Field + ": " + e.Reason
}
