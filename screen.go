package main

import (
	"github.com/chip8vm/chip-8/chip8"
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	/// Screen is the render target for the video memory.
	///
	Screen *sdl.Texture
)

/// InitScreen creates the render target for the video memory.
///
func InitScreen() error {
	var err error

	// a render target the size of the display
	Screen, err = Renderer.CreateTexture(sdl.PIXELFORMAT_RGB888, sdl.TEXTUREACCESS_TARGET, chip8.DisplayWidth, chip8.DisplayHeight)
	if err != nil {
		return errors.Wrap(err, "creating screen texture")
	}

	return nil
}

/// RefreshScreen redraws the render target from the video memory.
///
func RefreshScreen() {
	Renderer.SetRenderTarget(Screen)

	// the background color for the screen
	Renderer.SetDrawColor(143, 145, 133, 255)
	Renderer.Clear()

	// set the pixel color
	Renderer.SetDrawColor(17, 29, 43, 255)

	// draw all the set pixels
	video := VM.Framebuffer()

	for p := 0; p < chip8.DisplayWidth*chip8.DisplayHeight; p++ {
		if video[p>>3]&(0x80>>uint(p&7)) != 0 {
			Renderer.DrawPoint(int32(p%chip8.DisplayWidth), int32(p/chip8.DisplayWidth))
		}
	}

	// restore the render target
	Renderer.SetRenderTarget(nil)
}

/// CopyScreen stretches the render target into the window at x, y.
///
func CopyScreen(x, y, scale int32) {
	src := sdl.Rect{W: chip8.DisplayWidth, H: chip8.DisplayHeight}
	dst := sdl.Rect{
		X: x,
		Y: y,
		W: chip8.DisplayWidth * scale,
		H: chip8.DisplayHeight * scale,
	}

	// stretch the render target to fit
	Renderer.Copy(Screen, &src, &dst)
}
