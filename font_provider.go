package termtext

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/flopp/go-findfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/sync/errgroup"
)

// Built-in face names. They resolve to fonts compiled into the binary, so a
// Profile naming them never depends on the platform font directories.
const (
	FaceGoMono     = "Go Mono"
	FaceGoMonoBold = "Go Mono Bold"
)

var builtinFaces = map[string][]byte{
	FaceGoMono:     gomono.TTF,
	FaceGoMonoBold: gomonobold.TTF,
}

// FontMatcher resolves a face name from a Profile to a font file path.
//
// The termtext package does not depend on any particular font discovery
// mechanism; SystemFontMatcher is used unless the caller injects another.
type FontMatcher interface {
	Match(face string) (path string, err error)
}

// SystemFontMatcher finds fonts in the platform's user and system font
// directories. A face that is already a path to an existing file is used
// as is.
type SystemFontMatcher struct{}

// Match implements FontMatcher.
func (SystemFontMatcher) Match(face string) (string, error) {
	if st, err := os.Stat(face); err == nil && !st.IsDir() {
		return face, nil
	}
	path, err := findfont.Find(face)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrFontNotFound, face)
	}
	return path, nil
}

// FontMatcherFunc adapts a function to FontMatcher.
type FontMatcherFunc func(face string) (string, error)

// Match implements FontMatcher.
func (fn FontMatcherFunc) Match(face string) (string, error) { return fn(face) }

// LoadFace loads one face by name at the given size, using the built-in
// fonts first and matcher otherwise.
func LoadFace(matcher FontMatcher, face string, size int, dpi float64) (*Font, error) {
	if data, ok := builtinFaces[face]; ok {
		return LoadFontData(data, face, size, dpi, dpi)
	}
	if matcher == nil {
		matcher = SystemFontMatcher{}
	}
	path, err := matcher.Match(face)
	if err != nil {
		if errors.Is(err, ErrFontNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrFontNotFound, face, err)
	}
	return LoadFont(path, face, size, dpi, dpi)
}

// LoadGlyphRenderer builds a GlyphRenderer from a Profile's font lists at
// size, or at the profile's own size when size <= 0. Font files are parsed
// concurrently; any font that fails to load fails the whole configuration,
// leaving the caller free to keep its previous renderer.
func LoadGlyphRenderer(p Profile, matcher FontMatcher, size int) (*GlyphRenderer, error) {
	if size <= 0 {
		size = p.FontSize()
	}
	regularFaces := p.FontFaces()
	boldFaces := p.BoldFontFaces()
	if len(regularFaces) == 0 {
		return nil, ErrNoFonts
	}

	faces := make([]string, 0, len(regularFaces)+len(boldFaces))
	faces = append(faces, regularFaces...)
	faces = append(faces, boldFaces...)
	fonts := make([]*Font, len(faces))

	var g errgroup.Group
	for i, face := range faces {
		g.Go(func() error {
			f, err := LoadFace(matcher, face, size, p.DPI())
			if err != nil {
				return fmt.Errorf("load face %q: %w", face, err)
			}
			fonts[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, f := range fonts {
			if f != nil {
				_ = f.Close()
			}
		}
		return nil, err
	}

	shared := make([]*SharedFont, len(fonts))
	for i, f := range fonts {
		shared[i] = NewSharedFont(f)
		Logger().Debug("font loaded",
			slog.String("face", f.Name()), slog.String("path", f.Path()), slog.Int("size", f.Size()))
	}

	gr, err := NewGlyphRenderer(shared[:len(regularFaces)], shared[len(regularFaces):],
		WithAntialias(p.Antialias()))
	// The renderer holds its own references.
	for _, s := range shared {
		s.Release()
	}
	if err != nil {
		return nil, err
	}
	return gr, nil
}
