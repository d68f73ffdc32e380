package main

import (
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	/// Font is a texture atlas of 5x7 glyphs for the debug panels.
	///
	Font *sdl.Texture

	/// glyphs holds the pixel rows of every drawable character, 5 bits
	/// per row, MSB first.
	///
	glyphs = map[rune][7]byte{
		'!': {0x20, 0x20, 0x20, 0x20, 0x20, 0x00, 0x20},
		'"': {0x50, 0x50, 0x50, 0x00, 0x00, 0x00, 0x00},
		'#': {0x50, 0x50, 0xF8, 0x50, 0xF8, 0x50, 0x50},
		'(': {0x10, 0x20, 0x40, 0x40, 0x40, 0x20, 0x10},
		')': {0x40, 0x20, 0x10, 0x10, 0x10, 0x20, 0x40},
		',': {0x00, 0x00, 0x00, 0x00, 0x30, 0x10, 0x20},
		'-': {0x00, 0x00, 0x00, 0xF8, 0x00, 0x00, 0x00},
		'.': {0x00, 0x00, 0x00, 0x00, 0x00, 0x30, 0x30},
		'/': {0x08, 0x08, 0x10, 0x20, 0x40, 0x80, 0x80},
		'0': {0x70, 0x88, 0x98, 0xA8, 0xC8, 0x88, 0x70},
		'1': {0x20, 0x60, 0x20, 0x20, 0x20, 0x20, 0x70},
		'2': {0x70, 0x88, 0x08, 0x30, 0x40, 0x80, 0xF8},
		'3': {0x70, 0x88, 0x08, 0x30, 0x08, 0x88, 0x70},
		'4': {0x10, 0x30, 0x50, 0x90, 0xF8, 0x10, 0x10},
		'5': {0xF8, 0x80, 0xF0, 0x08, 0x08, 0x88, 0x70},
		'6': {0x30, 0x40, 0x80, 0xF0, 0x88, 0x88, 0x70},
		'7': {0xF8, 0x08, 0x10, 0x20, 0x40, 0x40, 0x40},
		'8': {0x70, 0x88, 0x88, 0x70, 0x88, 0x88, 0x70},
		'9': {0x70, 0x88, 0x88, 0x78, 0x08, 0x10, 0x60},
		':': {0x00, 0x30, 0x30, 0x00, 0x30, 0x30, 0x00},
		'?': {0x70, 0x88, 0x08, 0x10, 0x20, 0x00, 0x20},
		'A': {0x70, 0x88, 0x88, 0xF8, 0x88, 0x88, 0x88},
		'B': {0xF0, 0x88, 0x88, 0xF0, 0x88, 0x88, 0xF0},
		'C': {0x70, 0x88, 0x80, 0x80, 0x80, 0x88, 0x70},
		'D': {0xE0, 0x90, 0x88, 0x88, 0x88, 0x90, 0xE0},
		'E': {0xF8, 0x80, 0x80, 0xF0, 0x80, 0x80, 0xF8},
		'F': {0xF8, 0x80, 0x80, 0xF0, 0x80, 0x80, 0x80},
		'G': {0x70, 0x88, 0x80, 0xB8, 0x88, 0x88, 0x78},
		'H': {0x88, 0x88, 0x88, 0xF8, 0x88, 0x88, 0x88},
		'I': {0x70, 0x20, 0x20, 0x20, 0x20, 0x20, 0x70},
		'J': {0x38, 0x10, 0x10, 0x10, 0x10, 0x90, 0x60},
		'K': {0x88, 0x90, 0xA0, 0xC0, 0xA0, 0x90, 0x88},
		'L': {0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0xF8},
		'M': {0x88, 0xD8, 0xA8, 0xA8, 0x88, 0x88, 0x88},
		'N': {0x88, 0xC8, 0xA8, 0x98, 0x88, 0x88, 0x88},
		'O': {0x70, 0x88, 0x88, 0x88, 0x88, 0x88, 0x70},
		'P': {0xF0, 0x88, 0x88, 0xF0, 0x80, 0x80, 0x80},
		'Q': {0x70, 0x88, 0x88, 0x88, 0xA8, 0x90, 0x68},
		'R': {0xF0, 0x88, 0x88, 0xF0, 0xA0, 0x90, 0x88},
		'S': {0x78, 0x80, 0x80, 0x70, 0x08, 0x08, 0xF0},
		'T': {0xF8, 0x20, 0x20, 0x20, 0x20, 0x20, 0x20},
		'U': {0x88, 0x88, 0x88, 0x88, 0x88, 0x88, 0x70},
		'V': {0x88, 0x88, 0x88, 0x88, 0x88, 0x50, 0x20},
		'W': {0x88, 0x88, 0x88, 0xA8, 0xA8, 0xA8, 0x50},
		'X': {0x88, 0x88, 0x50, 0x20, 0x50, 0x88, 0x88},
		'Y': {0x88, 0x88, 0x50, 0x20, 0x20, 0x20, 0x20},
		'Z': {0xF8, 0x08, 0x10, 0x20, 0x40, 0x80, 0xF8},
		'[': {0x70, 0x40, 0x40, 0x40, 0x40, 0x40, 0x70},
		']': {0x70, 0x10, 0x10, 0x10, 0x10, 0x10, 0x70},
		'_': {0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF8},
	}
)

/// InitFont builds the font atlas texture from the embedded glyphs.
///
func InitFont() error {
	var err error

	Font, err = Renderer.CreateTexture(sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_TARGET, ('Z'-'!'+1)*6, 8)
	if err != nil {
		return errors.Wrap(err, "creating font texture")
	}

	// text pixels blend over the panels
	if err := Font.SetBlendMode(sdl.BLENDMODE_BLEND); err != nil {
		return errors.Wrap(err, "setting font blend mode")
	}

	Renderer.SetRenderTarget(Font)

	// transparent background
	Renderer.SetDrawColor(0, 0, 0, 0)
	Renderer.Clear()

	// pen color for the glyphs
	Renderer.SetDrawColor(230, 234, 230, 255)

	for c, rows := range glyphs {
		base := int32(c-'!') * 6

		for gy, bits := range rows {
			for gx := int32(0); gx < 5; gx++ {
				if bits&(0x80>>uint(gx)) != 0 {
					Renderer.DrawPoint(base+gx, int32(gy))
				}
			}
		}
	}

	Renderer.SetRenderTarget(nil)

	return nil
}

/// DrawText renders a string using the atlas font. Lowercase letters
/// fold to their uppercase glyphs.
///
func DrawText(s string, x, y int32) {
	src := sdl.Rect{W: 5, H: 7}
	dst := sdl.Rect{X: x, Y: y, W: 5, H: 7}

	// loop over all the characters in the string
	for _, c := range s {
		if c >= 'a' && c <= 'z' {
			c -= 32
		}

		if c >= '!' && c <= 'Z' {
			src.X = int32(c-'!') * 6

			// draw the character to the renderer
			Renderer.Copy(Font, &src, &dst)
		}

		// advance
		dst.X += 7
	}
}
