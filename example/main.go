// Example renders a demo terminal screen with the OpenGL backend.
//
// Prerequisites:
//
//	Install devbox: https://www.jetify.com/devbox
//	devbox shell                         # enter the dev environment (provides Go + OpenGL/X11 headers)
//	go run ./example/                    # run with the built-in profile
//	go run ./example/ my-profile.toml    # run with a TOML profile
//
// Ctrl+= and Ctrl+- change the font size, Ctrl+0 resets it. Logs are
// written to termtext.slog in the working directory.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/go-theft-auto/termtext"
	"github.com/go-theft-auto/termtext/backend/opengl"
)

const (
	windowWidth  = 960
	windowHeight = 600
	windowTitle  = "termtext example"
)

func init() {
	// GLFW must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	logger, err := termtext.NewFileLogger(".", "info")
	if err != nil {
		return err
	}
	termtext.SetLogger(logger)

	profile := termtext.DefaultProfile()
	if len(os.Args) > 1 {
		if profile, err = termtext.LoadProfile(os.Args[1]); err != nil {
			return err
		}
	}

	// Initialize GLFW.
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1) // vsync

	// Initialize OpenGL.
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}

	device, err := opengl.NewDevice()
	if err != nil {
		return fmt.Errorf("opengl device: %w", err)
	}
	defer device.Delete()

	input := opengl.NewGLFWInputAdapter(window, profile.Resolution)
	profile.Resolution = input.DPI()

	load := termtext.ProfileLoader(profile, nil)
	gr, err := load(profile.FontSize())
	if err != nil {
		return fmt.Errorf("load fonts: %w", err)
	}
	tr, err := termtext.NewTextRenderer(device, gr, profile)
	gr.Release() // tr holds its own reference
	if err != nil {
		return fmt.Errorf("text renderer: %w", err)
	}
	defer tr.Destroy()

	grid := termtext.NewGrid(0, 0)
	bg := profile.Palette()[termtext.ColorBackground]

	// Main loop.
	for !window.ShouldClose() {
		glfw.PollEvents()

		for _, cmd := range input.Update() {
			if _, err := termtext.ApplyFontSizeCommand(tr, load, cmd, profile.FontSize()); err != nil {
				termtext.Logger().Warn("font size change failed", "cmd", cmd.String(), "err", err)
			}
		}
		if input.DPIChanged() {
			profile.Resolution = input.DPI()
			if err := termtext.ReloadFont(tr, load); err != nil {
				termtext.Logger().Warn("dpi change failed", "err", err)
			}
		}

		w, h := window.GetFramebufferSize()
		cw, ch := tr.CellSize()
		cols, rows := w/max(cw, 1), h/max(ch, 1)
		if gcols, grows := grid.Size(); gcols != cols || grows != rows {
			grid.Resize(cols, rows)
		}
		drawDemo(grid, cw, ch)

		gl.Viewport(0, 0, int32(w), int32(h))
		gl.ClearColor(float32(bg.R)/255, float32(bg.G)/255, float32(bg.B)/255, 1.0)
		gl.Clear(gl.COLOR_BUFFER_BIT)

		if err := tr.UpdateScreen(grid); err != nil {
			return fmt.Errorf("update screen: %w", err)
		}
		if err := tr.Draw(cw, ch, w, h); err != nil {
			return fmt.Errorf("draw: %w", err)
		}

		window.SwapBuffers()
	}

	return nil
}

// drawDemo fills the grid with a palette table and styled text.
func drawDemo(grid *termtext.Grid, cellWidth, cellHeight int) {
	grid.Clear()
	title := termtext.Attr{Fg: 15, Bg: 4, Bold: true}
	grid.SetString(0, 0, fmt.Sprintf(" termtext  cell %dx%d  Ctrl+= Ctrl+- Ctrl+0 ", cellWidth, cellHeight), title)

	for i := range 16 {
		a := termtext.Attr{Fg: termtext.ColorForeground, Bg: termtext.ColorCode(i)}
		grid.SetString(i*4, 2, fmt.Sprintf(" %2d ", i), a)
	}

	row := 4
	grid.SetString(0, row, "regular ", termtext.DefaultAttr)
	grid.SetString(8, row, "bold ", termtext.Attr{Fg: 2, Bg: termtext.ColorBackground, Bold: true})
	grid.SetString(13, row, "underline", termtext.Attr{Fg: 3, Bg: termtext.ColorBackground, Underline: true})
	grid.SetString(23, row, " inverse ", termtext.Attr{Fg: termtext.ColorForeground, Bg: termtext.ColorBackground, Inverse: true})
	row += 2

	for i := 0; i < 32; i++ {
		c := termtext.RGB{R: uint8(i * 8), G: uint8(255 - i*8), B: 160}
		grid.SetCell(i, row, ' ', termtext.Attr{Fg: termtext.ColorForeground, Bg: termtext.ColorRGB, BgRGB: c})
	}
	row += 2

	grid.SetString(0, row, `The quick brown fox jumps over the lazy dog. 0123456789 !@#$%^&*()[]{}<>/\|~`, termtext.DefaultAttr)
}
