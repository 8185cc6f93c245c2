package termtext_test

import (
	"errors"
	"testing"

	"github.com/go-theft-auto/termtext"
)

// mockDevice records what the renderer asks of the graphics device.
type mockDevice struct {
	nextID   termtext.TextureID
	textures map[termtext.TextureID][]byte // live textures
	sizes    map[termtext.TextureID]int
	deleted  []termtext.TextureID

	backgrounds []termtext.BackgroundInstance
	underlines  []termtext.UnderlineInstance
	glyphs      []termtext.GlyphInstance
	uploads     int

	draws []drawCall

	failCreateAfter int // fail CreateTexture once this many succeeded; 0 = never
	created         int
	maxTextures     int // 0 = no limit
}

type drawCall struct {
	pass     termtext.DrawPass
	count    int
	uniforms termtext.Uniforms
}

var errMockDevice = errors.New("mock device failure")

func newMockDevice() *mockDevice {
	return &mockDevice{
		textures: make(map[termtext.TextureID][]byte),
		sizes:    make(map[termtext.TextureID]int),
	}
}

func (m *mockDevice) CreateTexture(size int, pixels []byte) (termtext.TextureID, error) {
	if m.failCreateAfter > 0 && m.created >= m.failCreateAfter {
		return 0, errMockDevice
	}
	m.created++
	m.nextID++
	m.textures[m.nextID] = append([]byte(nil), pixels...)
	m.sizes[m.nextID] = size
	return m.nextID, nil
}

func (m *mockDevice) DeleteTexture(id termtext.TextureID) {
	delete(m.textures, id)
	m.deleted = append(m.deleted, id)
}

func (m *mockDevice) UploadBackgrounds(instances []termtext.BackgroundInstance) error {
	m.uploads++
	m.backgrounds = append(m.backgrounds[:0], instances...)
	return nil
}

func (m *mockDevice) UploadUnderlines(instances []termtext.UnderlineInstance) error {
	m.underlines = append(m.underlines[:0], instances...)
	return nil
}

func (m *mockDevice) UploadGlyphs(instances []termtext.GlyphInstance) error {
	m.glyphs = append(m.glyphs[:0], instances...)
	return nil
}

func (m *mockDevice) DrawInstanced(pass termtext.DrawPass, count int, u *termtext.Uniforms) error {
	uc := *u
	uc.Textures = append([]termtext.TextureID(nil), u.Textures...)
	m.draws = append(m.draws, drawCall{pass: pass, count: count, uniforms: uc})
	return nil
}

func (m *mockDevice) MaxTextures() int { return m.maxTextures }

func (m *mockDevice) liveTextures() int { return len(m.textures) }

// held returns how many instances the device holds for pass.
func (m *mockDevice) held(pass termtext.DrawPass) int {
	switch pass {
	case termtext.PassBackground:
		return len(m.backgrounds)
	case termtext.PassUnderline:
		return len(m.underlines)
	default:
		return len(m.glyphs)
	}
}

// loadShared loads a built-in face as a SharedFont owned by the test.
func loadShared(t *testing.T, face string, size int) *termtext.SharedFont {
	t.Helper()
	f, err := termtext.LoadFace(nil, face, size, 72)
	if err != nil {
		t.Fatalf("LoadFace(%q): %v", face, err)
	}
	return termtext.NewSharedFont(f)
}

// newGoMonoRenderer builds a renderer over Go Mono regular and bold. The
// test's font references are dropped, so the renderer owns the fonts.
func newGoMonoRenderer(t *testing.T, size int, opts ...termtext.RendererOption) *termtext.GlyphRenderer {
	t.Helper()
	regular := loadShared(t, termtext.FaceGoMono, size)
	bold := loadShared(t, termtext.FaceGoMonoBold, size)
	gr, err := termtext.NewGlyphRenderer([]*termtext.SharedFont{regular}, []*termtext.SharedFont{bold}, opts...)
	regular.Release()
	bold.Release()
	if err != nil {
		t.Fatalf("NewGlyphRenderer: %v", err)
	}
	return gr
}

// newTestTextRenderer builds a TextRenderer over Go Mono on a mock device.
// The returned renderer holds the only glyph renderer reference.
func newTestTextRenderer(t *testing.T, profile termtext.Profile, opts ...termtext.Option) (*termtext.TextRenderer, *mockDevice) {
	t.Helper()
	dev := newMockDevice()
	gr := newGoMonoRenderer(t, profile.FontSize())
	tr, err := termtext.NewTextRenderer(dev, gr, profile, opts...)
	gr.Release()
	if err != nil {
		t.Fatalf("NewTextRenderer: %v", err)
	}
	t.Cleanup(tr.Destroy)
	return tr, dev
}
