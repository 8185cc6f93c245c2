package opengl

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/go-theft-auto/termtext"
)

// GLFWInputAdapter turns GLFW window events into font size commands and
// tracks the window's DPI from its content scale.
type GLFWInputAdapter struct {
	window   *glfw.Window
	baseDPI  float64
	dpi      float64
	changed  bool
	commands []termtext.FontSizeCommand
}

// NewGLFWInputAdapter creates a new GLFW input adapter. baseDPI is the
// resolution at a content scale of 1.
func NewGLFWInputAdapter(window *glfw.Window, baseDPI float64) *GLFWInputAdapter {
	adapter := &GLFWInputAdapter{
		window:   window,
		baseDPI:  baseDPI,
		commands: make([]termtext.FontSizeCommand, 0, 4),
	}
	_, sy := window.GetContentScale()
	adapter.dpi = scaledDPI(baseDPI, sy)

	// Setup callbacks
	window.SetKeyCallback(adapter.keyCallback)
	window.SetContentScaleCallback(adapter.contentScaleCallback)

	return adapter
}

// Update returns the font size commands received since the last call.
// Call this once per frame after polling events; the slice is reused by
// the next poll.
func (a *GLFWInputAdapter) Update() []termtext.FontSizeCommand {
	cmds := a.commands
	a.commands = a.commands[:0]
	return cmds
}

// DPI returns the window's current resolution.
func (a *GLFWInputAdapter) DPI() float64 { return a.dpi }

// DPIChanged reports whether the DPI changed since the last call.
func (a *GLFWInputAdapter) DPIChanged() bool {
	changed := a.changed
	a.changed = false
	return changed
}

func (a *GLFWInputAdapter) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Release {
		return
	}
	cmd := termtext.CommandForKey(glfwKeyToKey(key), primaryModifier(mods))
	if cmd != termtext.FontSizeNone {
		a.commands = append(a.commands, cmd)
	}
}

func (a *GLFWInputAdapter) contentScaleCallback(w *glfw.Window, x, y float32) {
	dpi := scaledDPI(a.baseDPI, y)
	if dpi != a.dpi {
		a.dpi = dpi
		a.changed = true
	}
}

func scaledDPI(base float64, scale float32) float64 {
	if scale <= 0 {
		return base
	}
	return base * float64(scale)
}

// primaryModifier reports whether the platform's shortcut modifier is held:
// Cmd on macOS, Ctrl elsewhere.
func primaryModifier(mods glfw.ModifierKey) bool {
	if runtime.GOOS == "darwin" && mods&glfw.ModSuper != 0 {
		return true
	}
	return mods&glfw.ModControl != 0
}

// glfwKeyToKey maps GLFW keys to termtext keys.
func glfwKeyToKey(key glfw.Key) termtext.Key {
	switch key {
	case glfw.KeyEqual:
		return termtext.KeyEqual
	case glfw.KeyMinus:
		return termtext.KeyMinus
	case glfw.Key0:
		return termtext.Key0
	case glfw.KeyKPAdd:
		return termtext.KeyKPAdd
	case glfw.KeyKPSubtract:
		return termtext.KeyKPSubtract
	case glfw.KeyKP0:
		return termtext.KeyKP0
	default:
		return termtext.KeyNone
	}
}
