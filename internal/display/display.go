// Package display defines the panel collaborator contract shared by the
// hardware driver, the terminal fallback and the test fake.
package display

import "image/color"

// Device is a ready, initialized panel. Construction performs the
// init/handshake; a constructor error is fatal to startup.
type Device interface {
	// SetOffset moves the logical drawing origin for subsequent draws.
	SetOffset(x, y int)
	// DrawRGB565 blits a w x h little-endian RGB565 buffer at the origin.
	// The transfer is synchronous: it returns once all bytes are out.
	DrawRGB565(w, h int, pix []byte) error
	// Fill paints the whole panel a single color.
	Fill(c color.RGBA) error
	// Halt turns the panel off and releases it.
	Halt() error
}

// RGB565At decodes pixel idx of a little-endian RGB565 buffer packed as
// bbbbbggggggrrrrr, expanding each channel to 8 bits.
func RGB565At(pix []byte, idx int) color.NRGBA {
	v := uint16(pix[2*idx]) | uint16(pix[2*idx+1])<<8
	b := uint8(v >> 11 & 0x1F)
	g := uint8(v >> 5 & 0x3F)
	r := uint8(v & 0x1F)
	return color.NRGBA{
		R: r<<3 | r>>2,
		G: g<<2 | g>>4,
		B: b<<3 | b>>2,
		A: 0xFF,
	}
}
