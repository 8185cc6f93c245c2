package termtext

// TextureID identifies a texture created by a Device. Zero is never a valid
// texture.
type TextureID uint32

// DrawPass selects which instance buffer a draw call consumes.
type DrawPass int

// Passes in the order TextRenderer draws them.
const (
	PassBackground DrawPass = iota
	PassUnderline
	PassGlyph
)

func (p DrawPass) String() string {
	switch p {
	case PassBackground:
		return "background"
	case PassUnderline:
		return "underline"
	case PassGlyph:
		return "glyph"
	default:
		return "unknown"
	}
}

// Uniforms is the small fixed shader interface shared by every pass.
type Uniforms struct {
	CellWidth, CellHeight         int
	ViewportWidth, ViewportHeight int
	AtlasSize                     int
	UnderlineOffset               int
	Textures                      []TextureID // Atlas pages, indexed by GlyphInstance.Page
}

// Device is the graphics device the renderer draws through. The termtext
// package does not depend on a graphics API; backend/opengl provides an
// OpenGL 4.1 implementation and tests inject a recording mock.
//
// All methods are called from the rendering thread.
type Device interface {
	// CreateTexture creates a size×size single-channel 8-bit texture from
	// pixels, which holds size*size bytes in row-major order.
	CreateTexture(size int, pixels []byte) (TextureID, error)

	// DeleteTexture releases a texture created by CreateTexture.
	DeleteTexture(id TextureID)

	// Upload* replace the contents of the matching instance buffer. A
	// buffer possibly still read by a queued draw must be discarded, never
	// partially overwritten.
	UploadBackgrounds(instances []BackgroundInstance) error
	UploadUnderlines(instances []UnderlineInstance) error
	UploadGlyphs(instances []GlyphInstance) error

	// DrawInstanced draws count instances of the pass's buffer with
	// blending enabled and depth testing disabled.
	DrawInstanced(pass DrawPass, count int, u *Uniforms) error
}

// TextureLimiter is implemented by devices that can sample only a fixed
// number of atlas textures in one draw. Atlases built on such a device
// reject an AtlasConfig.MaxTextures above the limit.
type TextureLimiter interface {
	MaxTextures() int
}
