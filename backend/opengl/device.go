// Package opengl provides an OpenGL 4.1 backend for the termtext package.
package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/go-theft-auto/termtext"
)

// maxTextures is the number of atlas pages the glyph shader can sample.
const maxTextures = 8

// Device implements termtext.Device using OpenGL.
//
// All passes share one unit quad; each pass has its own program, vertex
// array and instance buffer.
type Device struct {
	quadVBO, quadEBO uint32
	passes           [3]pass
}

type pass struct {
	program  uint32
	vao      uint32
	instance uint32
	capacity int // instance buffer size in bytes

	cellSizeLoc        int32
	viewportLoc        int32
	atlasSizeLoc       int32
	underlineOffsetLoc int32
	atlasLoc           int32
}

// Shared by every vertex shader: maps a pixel position to clip space with
// the origin at the top-left.
const clipSpace = `
uniform vec2 cellSize;
uniform vec2 viewport;

vec4 toClip(vec2 px) {
    vec2 ndc = px / viewport * 2.0 - 1.0;
    return vec4(ndc.x, -ndc.y, 0.0, 1.0);
}
`

const backgroundVertexSource = `
#version 410 core
layout (location = 0) in vec2 aCorner;
layout (location = 1) in vec2 aCell;
layout (location = 2) in float aSpan;
layout (location = 3) in vec4 aColor;

out vec4 Color;
` + clipSpace + `
void main() {
    vec2 px = (aCell + aCorner * vec2(aSpan, 1.0)) * cellSize;
    gl_Position = toClip(px);
    Color = aColor;
}
` + "\x00"

const underlineVertexSource = `
#version 410 core
layout (location = 0) in vec2 aCorner;
layout (location = 1) in vec2 aCell;
layout (location = 2) in float aSpan;
layout (location = 3) in vec4 aColor;

uniform float underlineOffset;

out vec4 Color;
` + clipSpace + `
void main() {
    vec2 px = aCell * cellSize + vec2(aCorner.x * aSpan * cellSize.x, underlineOffset + aCorner.y);
    gl_Position = toClip(px);
    Color = aColor;
}
` + "\x00"

const solidFragmentSource = `
#version 410 core
in vec4 Color;
out vec4 FragColor;

void main() {
    FragColor = Color;
}
` + "\x00"

const glyphVertexSource = `
#version 410 core
layout (location = 0) in vec2 aCorner;
layout (location = 1) in vec2 aCell;
layout (location = 2) in vec4 aAtlas;
layout (location = 3) in vec2 aOffset;
layout (location = 4) in float aPage;
layout (location = 5) in vec4 aColor;

uniform float atlasSize;

out vec2 TexCoord;
flat out int Page;
out vec4 Color;
` + clipSpace + `
void main() {
    vec2 px = aCell * cellSize + aOffset + aCorner * aAtlas.zw;
    gl_Position = toClip(px);
    TexCoord = (aAtlas.xy + aCorner * aAtlas.zw) / atlasSize;
    Page = int(aPage);
    Color = aColor;
}
` + "\x00"

// Sampler arrays may only be indexed with constant expressions in GLSL 4.1.
const glyphFragmentSource = `
#version 410 core
in vec2 TexCoord;
flat in int Page;
in vec4 Color;

out vec4 FragColor;

uniform sampler2D atlas[8];

float coverage(int page, vec2 uv) {
    if (page == 0) return textureLod(atlas[0], uv, 0.0).r;
    if (page == 1) return textureLod(atlas[1], uv, 0.0).r;
    if (page == 2) return textureLod(atlas[2], uv, 0.0).r;
    if (page == 3) return textureLod(atlas[3], uv, 0.0).r;
    if (page == 4) return textureLod(atlas[4], uv, 0.0).r;
    if (page == 5) return textureLod(atlas[5], uv, 0.0).r;
    if (page == 6) return textureLod(atlas[6], uv, 0.0).r;
    return textureLod(atlas[7], uv, 0.0).r;
}

void main() {
    // R channel is coverage, use instance color for RGB
    FragColor = vec4(Color.rgb, Color.a * coverage(Page, TexCoord));
}
` + "\x00"

// NewDevice compiles the shaders and creates the buffers. A GL 4.1 context
// must be current.
func NewDevice() (*Device, error) {
	d := &Device{}

	sources := [3][2]string{
		termtext.PassBackground: {backgroundVertexSource, solidFragmentSource},
		termtext.PassUnderline:  {underlineVertexSource, solidFragmentSource},
		termtext.PassGlyph:      {glyphVertexSource, glyphFragmentSource},
	}
	for i, src := range sources {
		program, err := createShaderProgram(src[0], src[1])
		if err != nil {
			d.Delete()
			return nil, fmt.Errorf("failed to create %s shader: %w", termtext.DrawPass(i), err)
		}
		p := &d.passes[i]
		p.program = program
		p.cellSizeLoc = gl.GetUniformLocation(program, gl.Str("cellSize\x00"))
		p.viewportLoc = gl.GetUniformLocation(program, gl.Str("viewport\x00"))
		p.atlasSizeLoc = gl.GetUniformLocation(program, gl.Str("atlasSize\x00"))
		p.underlineOffsetLoc = gl.GetUniformLocation(program, gl.Str("underlineOffset\x00"))
		p.atlasLoc = gl.GetUniformLocation(program, gl.Str("atlas\x00"))
	}

	// Unit quad, two triangles
	corners := [8]float32{0, 0, 1, 0, 1, 1, 0, 1}
	indices := [6]uint16{0, 1, 2, 0, 2, 3}
	gl.GenBuffers(1, &d.quadVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(corners)*4, gl.Ptr(&corners[0]), gl.STATIC_DRAW)
	gl.GenBuffers(1, &d.quadEBO)

	d.setupBackgroundLayout(&d.passes[termtext.PassBackground])
	d.setupBackgroundLayout(&d.passes[termtext.PassUnderline])
	d.setupGlyphLayout(&d.passes[termtext.PassGlyph])

	gl.BindVertexArray(d.passes[0].vao)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, d.quadEBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*2, gl.Ptr(&indices[0]), gl.STATIC_DRAW)
	gl.BindVertexArray(0)

	return d, nil
}

// beginLayout creates the pass's vertex array with the quad corners at
// location 0 and binds a fresh instance buffer.
func (d *Device) beginLayout(p *pass) {
	gl.GenVertexArrays(1, &p.vao)
	gl.BindVertexArray(p.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, d.quadVBO)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 8, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, d.quadEBO)

	gl.GenBuffers(1, &p.instance)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.instance)
}

func instanceAttrib(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	gl.VertexAttribPointerWithOffset(index, size, xtype, normalized, stride, offset)
	gl.EnableVertexAttribArray(index)
	gl.VertexAttribDivisor(index, 1)
}

// Backgrounds and underlines share one instance layout.
func (d *Device) setupBackgroundLayout(p *pass) {
	d.beginLayout(p)
	var bg termtext.BackgroundInstance
	stride := int32(unsafe.Sizeof(bg))
	instanceAttrib(1, 2, gl.FLOAT, false, stride, unsafe.Offsetof(bg.Cell))
	instanceAttrib(2, 1, gl.FLOAT, false, stride, unsafe.Offsetof(bg.Span))
	instanceAttrib(3, 4, gl.UNSIGNED_BYTE, true, stride, unsafe.Offsetof(bg.Color))
	gl.BindVertexArray(0)
}

func (d *Device) setupGlyphLayout(p *pass) {
	d.beginLayout(p)
	var g termtext.GlyphInstance
	stride := int32(unsafe.Sizeof(g))
	instanceAttrib(1, 2, gl.FLOAT, false, stride, unsafe.Offsetof(g.Cell))
	instanceAttrib(2, 4, gl.FLOAT, false, stride, unsafe.Offsetof(g.Atlas))
	instanceAttrib(3, 2, gl.FLOAT, false, stride, unsafe.Offsetof(g.Offset))
	instanceAttrib(4, 1, gl.FLOAT, false, stride, unsafe.Offsetof(g.Page))
	instanceAttrib(5, 4, gl.UNSIGNED_BYTE, true, stride, unsafe.Offsetof(g.Color))
	gl.BindVertexArray(0)
}

// MaxTextures returns the number of atlas textures the glyph shader can
// sample.
func (d *Device) MaxTextures() int { return maxTextures }

// CreateTexture implements termtext.Device.
func (d *Device) CreateTexture(size int, pixels []byte) (termtext.TextureID, error) {
	if len(pixels) != size*size {
		return 0, fmt.Errorf("texture data is %d bytes, want %d", len(pixels), size*size)
	}
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, int32(size), int32(size), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteTextures(1, &tex)
		if code == gl.OUT_OF_MEMORY {
			return 0, fmt.Errorf("%w: %dx%d texture", termtext.ErrOutOfMemory, size, size)
		}
		return 0, fmt.Errorf("create texture: GL error 0x%x", code)
	}
	return termtext.TextureID(tex), nil
}

// DeleteTexture implements termtext.Device.
func (d *Device) DeleteTexture(id termtext.TextureID) {
	tex := uint32(id)
	if tex != 0 {
		gl.DeleteTextures(1, &tex)
	}
}

// UploadBackgrounds implements termtext.Device.
func (d *Device) UploadBackgrounds(instances []termtext.BackgroundInstance) error {
	return upload(&d.passes[termtext.PassBackground], instances)
}

// UploadUnderlines implements termtext.Device.
func (d *Device) UploadUnderlines(instances []termtext.UnderlineInstance) error {
	return upload(&d.passes[termtext.PassUnderline], instances)
}

// UploadGlyphs implements termtext.Device.
func (d *Device) UploadGlyphs(instances []termtext.GlyphInstance) error {
	return upload(&d.passes[termtext.PassGlyph], instances)
}

// upload replaces the pass's instance data. The old storage is orphaned
// first so a draw still reading it is never stalled or corrupted.
func upload[T any](p *pass, instances []T) error {
	if len(instances) == 0 {
		return nil
	}
	var zero T
	size := len(instances) * int(unsafe.Sizeof(zero))
	p.capacity = streamCapacity(p.capacity, size)

	gl.BindBuffer(gl.ARRAY_BUFFER, p.instance)
	gl.BufferData(gl.ARRAY_BUFFER, p.capacity, nil, gl.STREAM_DRAW)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(&instances[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if code := gl.GetError(); code == gl.OUT_OF_MEMORY {
		return fmt.Errorf("%w: %d byte instance buffer", termtext.ErrOutOfMemory, p.capacity)
	}
	return nil
}

// streamCapacity returns the buffer size to allocate for need bytes. It
// doubles from current and never shrinks.
func streamCapacity(current, need int) int {
	c := max(current, 1024)
	for c < need {
		c *= 2
	}
	return c
}

// DrawInstanced implements termtext.Device.
func (d *Device) DrawInstanced(which termtext.DrawPass, count int, u *termtext.Uniforms) error {
	if which < 0 || int(which) >= len(d.passes) {
		return fmt.Errorf("unknown draw pass %d", which)
	}
	if count == 0 {
		return nil
	}
	if which == termtext.PassGlyph && len(u.Textures) > maxTextures {
		return fmt.Errorf("%d atlas textures, at most %d supported", len(u.Textures), maxTextures)
	}
	p := &d.passes[which]

	// Save GL state
	var lastProgram int32
	var lastBlendSrc, lastBlendDst int32
	var blendEnabled, depthEnabled, cullEnabled bool

	gl.GetIntegerv(gl.CURRENT_PROGRAM, &lastProgram)
	gl.GetIntegerv(gl.BLEND_SRC_ALPHA, &lastBlendSrc)
	gl.GetIntegerv(gl.BLEND_DST_ALPHA, &lastBlendDst)
	blendEnabled = gl.IsEnabled(gl.BLEND)
	depthEnabled = gl.IsEnabled(gl.DEPTH_TEST)
	cullEnabled = gl.IsEnabled(gl.CULL_FACE)

	// Setup render state
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.DEPTH_TEST)

	gl.UseProgram(p.program)
	gl.Uniform2f(p.cellSizeLoc, float32(u.CellWidth), float32(u.CellHeight))
	gl.Uniform2f(p.viewportLoc, float32(u.ViewportWidth), float32(u.ViewportHeight))

	switch which {
	case termtext.PassUnderline:
		gl.Uniform1f(p.underlineOffsetLoc, float32(u.UnderlineOffset))
	case termtext.PassGlyph:
		gl.Uniform1f(p.atlasSizeLoc, float32(u.AtlasSize))
		var units [maxTextures]int32
		for i := range units {
			units[i] = int32(i)
			gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
			if i < len(u.Textures) {
				gl.BindTexture(gl.TEXTURE_2D, uint32(u.Textures[i]))
			} else {
				gl.BindTexture(gl.TEXTURE_2D, 0)
			}
		}
		gl.Uniform1iv(p.atlasLoc, maxTextures, &units[0])
	}

	gl.BindVertexArray(p.vao)
	gl.DrawElementsInstanced(gl.TRIANGLES, 6, gl.UNSIGNED_SHORT, gl.PtrOffset(0), int32(count))
	gl.BindVertexArray(0)
	gl.ActiveTexture(gl.TEXTURE0)

	// Restore GL state
	gl.UseProgram(uint32(lastProgram))
	gl.BlendFunc(uint32(lastBlendSrc), uint32(lastBlendDst))

	if blendEnabled {
		gl.Enable(gl.BLEND)
	} else {
		gl.Disable(gl.BLEND)
	}
	if depthEnabled {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	if cullEnabled {
		gl.Enable(gl.CULL_FACE)
	}

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("draw %s: GL error 0x%x", which, code)
	}
	return nil
}

// Delete releases OpenGL resources.
func (d *Device) Delete() {
	for i := range d.passes {
		p := &d.passes[i]
		if p.instance != 0 {
			gl.DeleteBuffers(1, &p.instance)
		}
		if p.vao != 0 {
			gl.DeleteVertexArrays(1, &p.vao)
		}
		if p.program != 0 {
			gl.DeleteProgram(p.program)
		}
		*p = pass{}
	}
	if d.quadEBO != 0 {
		gl.DeleteBuffers(1, &d.quadEBO)
	}
	if d.quadVBO != 0 {
		gl.DeleteBuffers(1, &d.quadVBO)
	}
}

// createShaderProgram compiles and links a shader program.
func createShaderProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(gl.VERTEX_SHADER, vertexSource)
	if err != nil {
		return 0, fmt.Errorf("vertex shader compilation failed: %w", err)
	}
	fragmentShader, err := compileShader(gl.FRAGMENT_SHADER, fragmentSource)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, fmt.Errorf("fragment shader compilation failed: %w", err)
	}

	// Link program
	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	// Cleanup shaders (they're linked into the program now)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetProgramInfoLog(program, logLength, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("shader program linking failed: %s", string(log))
	}
	return program, nil
}

func compileShader(kind uint32, source string) (uint32, error) {
	shader := gl.CreateShader(kind)
	csource, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetShaderInfoLog(shader, logLength, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s", string(log))
	}
	return shader, nil
}
