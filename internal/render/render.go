package render

import (
	"fmt"
	"image"
)

// Display is the blit sink for rendered tiles. SetOffset moves the drawing
// origin; DrawRGB565 transfers a w x h little-endian RGB565 buffer there.
type Display interface {
	SetOffset(x, y int)
	DrawRGB565(w, h int, pix []byte) error
}

// Armer schedules the next frame fire on a timer compare channel.
type Armer interface {
	Arm(ch, ticks int) error
}

// Frame owns the tile framebuffer and the frame counter. One Frame instance
// is driven by a single goroutine; it is not safe for concurrent use.
type Frame struct {
	disp Display
	tmr  Armer
	buf  [BufLen]byte
	t    uint32
}

// New returns a Frame blitting to disp. tmr may be nil when something else
// paces the cycle (the simulator does its own pacing).
func New(disp Display, tmr Armer) *Frame {
	return &Frame{disp: disp, tmr: tmr}
}

// Offsets returns the four mosaic origins in draw order.
func Offsets() [4]image.Point {
	const s = TileW + TileGap
	return [4]image.Point{{0, 0}, {s, 0}, {0, s}, {s, s}}
}

// Counter returns the current frame number.
func (f *Frame) Counter() uint32 { return f.t }

// Bytes returns the tile framebuffer. The slice aliases the live buffer and
// is overwritten by the next Cycle; copy it before crossing goroutines.
func (f *Frame) Bytes() []byte { return f.buf[:] }

// Cycle runs one full render pass: recompute every pixel from the current
// frame counter, blit the tile to all four mosaic origins, bump the counter
// and re-arm the timer. A failed blit aborts the pass; the counter is only
// advanced once all four blits completed.
func (f *Frame) Cycle() error {
	f.fill()

	for _, off := range Offsets() {
		f.disp.SetOffset(off.X, off.Y)
		if err := f.disp.DrawRGB565(TileW, TileH, f.buf[:]); err != nil {
			return fmt.Errorf("blit at (%d,%d): %w", off.X, off.Y, err)
		}
	}

	f.t++ // wraps silently

	if f.tmr != nil {
		if err := f.tmr.Arm(Channel, RearmTicks); err != nil {
			return fmt.Errorf("rearm: %w", err)
		}
	}
	return nil
}

// fill recomputes the whole tile in place, two bytes per pixel, LSB first.
func (f *Frame) fill() {
	for i := 0; i < TileH; i++ {
		for j := 0; j < TileW; j++ {
			px := Pixel(f.t, i, j)
			off := 2 * (i*TileW + j)
			f.buf[off] = byte(px)
			f.buf[off+1] = byte(px >> 8)
		}
	}
}
