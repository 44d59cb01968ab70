// Package term previews frames on the controlling terminal when no SPI port
// is available, so the render cycle can run on a development machine.
package term

import (
	"errors"
	"image"
	"image/color"

	pdisplay "periph.io/x/conn/v3/display"
	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/funtimes-plasmatile/internal/display"
)

// Dev adapts the ANSI screen device to the panel contract. The terminal
// device is one cell row, so each blit shows as a coarse color strip.
type Dev struct {
	drawer     pdisplay.Drawer
	offX, offY int
}

var _ display.Device = (*Dev)(nil)

// New returns a terminal preview that is width cells wide.
func New(width int) *Dev {
	return &Dev{drawer: screen.New(width)}
}

// SetOffset records the origin; the terminal strip has no real geometry but
// keeping the offset makes the preview call sequence match the panel's.
func (d *Dev) SetOffset(x, y int) { d.offX, d.offY = x, y }

// DrawRGB565 decodes the buffer and hands it to the ANSI drawer.
func (d *Dev) DrawRGB565(w, h int, pix []byte) error {
	if w <= 0 || h <= 0 || len(pix) < 2*w*h {
		return errors.New("term: invalid pixel buffer")
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		img.SetNRGBA(i%w, i/w, display.RGB565At(pix, i))
	}
	return d.drawer.Draw(d.drawer.Bounds(), img, image.Point{})
}

// Fill paints the strip a single color.
func (d *Dev) Fill(c color.RGBA) error {
	b := d.drawer.Bounds()
	img := image.NewNRGBA(b)
	for x := b.Min.X; x < b.Max.X; x++ {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xFF})
		}
	}
	return d.drawer.Draw(b, img, image.Point{})
}

// Halt releases the terminal device.
func (d *Dev) Halt() error { return d.drawer.Halt() }
