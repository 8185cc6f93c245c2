/*
Package termtext renders a terminal character grid with the GPU, drawing
glyphs from packed texture atlases as instanced quads.

# Overview

Every frame the screen is turned into three instance arrays: cell
backgrounds, underlines and glyphs. Each array is streamed to the device and
drawn with one instanced call, so the cost of a frame does not depend on how
many distinct characters are on screen.

Glyphs come from a GlyphAtlas. The printable ASCII range of every configured
font is rasterized once, packed into one or more square textures and looked
up by (rune, font index) while building a frame. Characters outside that
range, or that no font provides, are skipped and logged once.

# Quick Start

	// Setup
	profile := termtext.DefaultProfile()
	gr, _ := termtext.LoadGlyphRenderer(profile, nil, 0)
	device, _ := opengl.NewDevice()
	tr, _ := termtext.NewTextRenderer(device, gr, profile)
	gr.Release() // tr holds its own reference

	grid := termtext.NewGrid(80, 24)
	grid.SetString(0, 0, "hello", termtext.DefaultAttr)

	// Render loop
	for !window.ShouldClose() {
	    cw, ch := tr.CellSize()
	    _ = tr.UpdateScreen(grid)
	    _ = tr.Draw(cw, ch, width, height)
	    window.SwapBuffers()
	}

# Fonts

A GlyphRenderer holds an ordered list of regular fonts and an ordered list
of bold fonts. The first regular font is the primary font: it defines the
cell size. A character is looked up in the requested style's list first and
then, out of desperation, in the other list.

Fonts are shared between renderers through SharedFont reference counts, so
switching font size never frees a font that is still drawn from.

# Font Size Shortcuts

	Ctrl+=  or  Ctrl+Keypad+   Increase font size
	Ctrl+-  or  Ctrl+Keypad-   Decrease font size
	Ctrl+0  or  Ctrl+Keypad0   Reset to the profile's size

The backend/opengl window adapter delivers these as FontSizeCommand values;
ApplyFontSizeCommand performs the switch. A failed switch keeps the
previous fonts.

# Colors

Cell colors are palette codes: 0-15 are the indexed terminal colors,
ColorForeground and ColorBackground are the defaults and ColorRGB selects the
cell's explicit triple. The default background is never drawn. Unknown codes
are drawn in DebugForegroundColor or DebugBackgroundColor.

# Logging

The package logs through log/slog and is silent by default. Call SetLogger
to enable output; NewFileLogger returns a logger writing to a rotating file.
*/
package termtext
