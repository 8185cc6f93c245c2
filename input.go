package termtext

import (
	"fmt"
	"log/slog"
)

// Key represents a keyboard key relevant to the renderer. Window backends
// map their native key codes onto these.
type Key int

const (
	KeyNone Key = iota
	KeyEqual
	KeyMinus
	Key0
	KeyKPAdd
	KeyKPSubtract
	KeyKP0
	KeyCount
)

// Font size limits.
const (
	MinFontSize = 6
	MaxFontSize = 96
)

// FontSizeCommand is a request to change the font size.
type FontSizeCommand int

const (
	FontSizeNone FontSizeCommand = iota
	FontSizeIncrease
	FontSizeDecrease
	FontSizeReset
)

func (c FontSizeCommand) String() string {
	switch c {
	case FontSizeIncrease:
		return "increase"
	case FontSizeDecrease:
		return "decrease"
	case FontSizeReset:
		return "reset"
	default:
		return "none"
	}
}

// CommandForKey maps a key press to a font size command. Only presses with
// the primary modifier (Ctrl, or Cmd on macOS) count.
func CommandForKey(key Key, primaryMod bool) FontSizeCommand {
	if !primaryMod {
		return FontSizeNone
	}
	switch key {
	case KeyEqual, KeyKPAdd:
		return FontSizeIncrease
	case KeyMinus, KeyKPSubtract:
		return FontSizeDecrease
	case Key0, KeyKP0:
		return FontSizeReset
	}
	return FontSizeNone
}

// Size returns the font size after applying c to current. base is the
// configured size that FontSizeReset returns to.
func (c FontSizeCommand) Size(current, base int) int {
	switch c {
	case FontSizeIncrease:
		current++
	case FontSizeDecrease:
		current--
	case FontSizeReset:
		current = base
	}
	return min(max(current, MinFontSize), MaxFontSize)
}

// GlyphRendererLoader builds a GlyphRenderer for the same font
// configuration at another size. The caller owns the returned reference.
type GlyphRendererLoader func(size int) (*GlyphRenderer, error)

// ProfileLoader returns a GlyphRendererLoader that loads p's fonts through
// matcher.
func ProfileLoader(p Profile, matcher FontMatcher) GlyphRendererLoader {
	return func(size int) (*GlyphRenderer, error) {
		return LoadGlyphRenderer(p, matcher, size)
	}
}

// ResizeFont changes tr's font size by delta points, clamped to the font
// size limits, and returns the size in effect afterwards. On failure tr
// keeps its current fonts and the old size is returned with the error.
func ResizeFont(tr *TextRenderer, load GlyphRendererLoader, delta int) (int, error) {
	current := tr.GlyphRenderer().FontSize()
	target := min(max(current+delta, MinFontSize), MaxFontSize)
	if target == current {
		return current, nil
	}
	if err := swapFont(tr, load, target); err != nil {
		return current, err
	}
	Logger().Info("font resized", slog.Int("from", current), slog.Int("to", target))
	return target, nil
}

// ReloadFont rebuilds tr's fonts at their current size, for example after
// the display DPI changed.
func ReloadFont(tr *TextRenderer, load GlyphRendererLoader) error {
	return swapFont(tr, load, tr.GlyphRenderer().FontSize())
}

func swapFont(tr *TextRenderer, load GlyphRendererLoader, size int) error {
	gr, err := load(size)
	if err != nil {
		return fmt.Errorf("load fonts at %d: %w", size, err)
	}
	// tr takes its own reference.
	defer gr.Release()

	if err := tr.SetGlyphRenderer(gr); err != nil {
		return fmt.Errorf("switch fonts to %d: %w", size, err)
	}
	return nil
}

// ApplyFontSizeCommand runs cmd against tr. base is the configured size.
func ApplyFontSizeCommand(tr *TextRenderer, load GlyphRendererLoader, cmd FontSizeCommand, base int) (int, error) {
	current := tr.GlyphRenderer().FontSize()
	if cmd == FontSizeNone {
		return current, nil
	}
	return ResizeFont(tr, load, cmd.Size(current, base)-current)
}
