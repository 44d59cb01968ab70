// Package fake provides a recording display for headless runs and tests.
package fake

import (
	"image"
	"image/color"
	"sync"

	"github.com/coreman2200/funtimes-plasmatile/internal/display"
)

// Driver records every blit it receives.
type Driver struct {
	mu         sync.Mutex
	offX, offY int

	frames  int
	offsets []image.Point
	last    []byte
	fills   int
	halted  bool
}

var _ display.Device = (*Driver)(nil)

func (d *Driver) SetOffset(x, y int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.offX, d.offY = x, y
}

func (d *Driver) DrawRGB565(w, h int, pix []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames++
	d.offsets = append(d.offsets, image.Point{X: d.offX, Y: d.offY})
	d.last = append(d.last[:0], pix...)
	return nil
}

func (d *Driver) Fill(c color.RGBA) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fills++
	return nil
}

func (d *Driver) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.halted = true
	return nil
}

// Blits returns how many blits were received.
func (d *Driver) Blits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

// Offsets returns a copy of the recorded blit origins.
func (d *Driver) Offsets() []image.Point {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]image.Point, len(d.offsets))
	copy(out, d.offsets)
	return out
}

// Last returns a copy of the most recent blit buffer.
func (d *Driver) Last() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]byte, len(d.last))
	copy(out, d.last)
	return out
}

// Halted reports whether the device was shut down.
func (d *Driver) Halted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.halted
}
