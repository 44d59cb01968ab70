// Package st7735 controls an ST7735 TFT LCD panel via SPI.
//
// The ST7735 is a 16-bit color controller for panels up to 162x132 pixels.
// The driver keeps a logical origin offset so the same pixel buffer can be
// blitted to several positions on the panel.
package st7735

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/coreman2200/funtimes-plasmatile/internal/display"
)

// Command subset used by this driver (ST7735 datasheet, chapter 10).
const (
	cmdSWRESET = 0x01
	cmdSLPOUT  = 0x11
	cmdNORON   = 0x13
	cmdINVOFF  = 0x20
	cmdINVON   = 0x21
	cmdDISPOFF = 0x28
	cmdDISPON  = 0x29
	cmdCASET   = 0x2A
	cmdRASET   = 0x2B
	cmdRAMWR   = 0x2C
	cmdMADCTL  = 0x36
	cmdCOLMOD  = 0x3A
	cmdFRMCTR1 = 0xB1
	cmdFRMCTR2 = 0xB2
	cmdFRMCTR3 = 0xB3
	cmdINVCTR  = 0xB4
	cmdPWCTR1  = 0xC0
	cmdPWCTR2  = 0xC1
	cmdPWCTR3  = 0xC2
	cmdPWCTR4  = 0xC3
	cmdPWCTR5  = 0xC4
	cmdVMCTR1  = 0xC5
	cmdGMCTRP1 = 0xE0
	cmdGMCTRN1 = 0xE1
)

// Controller RAM extent. Write windows may address offscreen RAM beyond
// the visible panel, so blit bounds are checked against these, not the
// panel size.
const (
	ramW = 162
	ramH = 132
)

// Opts is the panel configuration.
type Opts struct {
	W int // panel width in pixels (default 160, max 162)
	H int // panel height in pixels (default 128, max 132)

	Rotated  bool // 180° rotation
	Inverted bool // panel color inversion; many ST7735S boards need it

	// Freq is the SPI clock. Defaults to 8MHz; the controller tops out
	// around 15MHz for writes.
	Freq physic.Frequency

	// Optional hardware reset pin.
	RST gpio.PinIO
}

// Dev is the device handle for an initialized panel.
type Dev struct {
	c   conn.Conn
	dc  gpio.PinOut
	rst gpio.PinIO

	w, h       int
	offX, offY int

	txBuf  []byte
	halted bool
}

var _ display.Device = (*Dev)(nil)

// NewSPI opens the panel on the given SPI port and runs the init handshake.
// The port is configured for Mode0, 8-bit transfers. The dc pin selects
// between command and data bytes and must be an output.
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{W: 160, H: 128}
	}
	if opts.W <= 0 || opts.W > ramW {
		return nil, errors.New("st7735: width must be between 1 and 162")
	}
	if opts.H <= 0 || opts.H > ramH {
		return nil, errors.New("st7735: height must be between 1 and 132")
	}

	f := opts.Freq
	if f == 0 {
		f = 8 * physic.MegaHertz
	}
	c, err := p.Connect(f, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("st7735: connect: %w", err)
	}

	d := &Dev{
		c:     c,
		dc:    dc,
		rst:   opts.RST,
		w:     opts.W,
		h:     opts.H,
		txBuf: make([]byte, 4096),
	}
	if err := d.init(opts); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) init(opts *Opts) error {
	if d.rst != nil {
		if err := d.rst.Out(gpio.Low); err != nil {
			return fmt.Errorf("st7735: failed to pull RST low: %w", err)
		}
		time.Sleep(50 * time.Millisecond)
		if err := d.rst.Out(gpio.High); err != nil {
			return fmt.Errorf("st7735: failed to pull RST high: %w", err)
		}
		time.Sleep(150 * time.Millisecond)
	}

	if err := d.cmd(cmdSWRESET); err != nil {
		return err
	}
	time.Sleep(150 * time.Millisecond)
	if err := d.cmd(cmdSLPOUT); err != nil {
		return err
	}
	time.Sleep(120 * time.Millisecond)

	// Frame rate: fosc/(1x2+40) * (LINE+2C+2D) in normal/idle/partial mode.
	steps := []struct {
		c    byte
		data []byte
	}{
		{cmdFRMCTR1, []byte{0x01, 0x2C, 0x2D}},
		{cmdFRMCTR2, []byte{0x01, 0x2C, 0x2D}},
		{cmdFRMCTR3, []byte{0x01, 0x2C, 0x2D, 0x01, 0x2C, 0x2D}},
		{cmdINVCTR, []byte{0x07}},
		{cmdPWCTR1, []byte{0xA2, 0x02, 0x84}},
		{cmdPWCTR2, []byte{0xC5}},
		{cmdPWCTR3, []byte{0x0A, 0x00}},
		{cmdPWCTR4, []byte{0x8A, 0x2A}},
		{cmdPWCTR5, []byte{0x8A, 0xEE}},
		{cmdVMCTR1, []byte{0x0E}},
		{cmdCOLMOD, []byte{0x05}}, // 16bpp
		{cmdGMCTRP1, []byte{
			0x02, 0x1C, 0x07, 0x12, 0x37, 0x32, 0x29, 0x2D,
			0x29, 0x25, 0x2B, 0x39, 0x00, 0x01, 0x03, 0x10,
		}},
		{cmdGMCTRN1, []byte{
			0x03, 0x1D, 0x07, 0x06, 0x2E, 0x2C, 0x29, 0x2D,
			0x2E, 0x2E, 0x37, 0x3F, 0x00, 0x00, 0x02, 0x10,
		}},
	}
	for _, s := range steps {
		if err := d.cmd(s.c, s.data...); err != nil {
			return err
		}
	}

	inv := byte(cmdINVOFF)
	if opts.Inverted {
		inv = cmdINVON
	}
	if err := d.cmd(inv); err != nil {
		return err
	}

	// Memory access control: BGR panel order, optional 180° flip.
	madctl := byte(0x08)
	if opts.Rotated {
		madctl |= 0xC0 // MX|MY
	}
	if err := d.cmd(cmdMADCTL, madctl); err != nil {
		return err
	}

	if err := d.cmd(cmdNORON); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)
	if err := d.cmd(cmdDISPON); err != nil {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	return nil
}

// cmd sends a command byte followed by its parameter bytes.
func (d *Dev) cmd(c byte, data ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.c.Tx([]byte{c}, nil); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	return d.c.Tx(data, nil)
}

// setWindow selects the write window and opens RAM for pixel data.
func (d *Dev) setWindow(x0, y0, x1, y1 int) error {
	if err := d.cmd(cmdCASET,
		byte(x0>>8), byte(x0),
		byte(x1>>8), byte(x1),
	); err != nil {
		return err
	}
	if err := d.cmd(cmdRASET,
		byte(y0>>8), byte(y0),
		byte(y1>>8), byte(y1),
	); err != nil {
		return err
	}
	return d.cmd(cmdRAMWR)
}

// SetOffset moves the logical drawing origin. Negative values clamp to 0.
func (d *Dev) SetOffset(x, y int) {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	d.offX, d.offY = x, y
}

// DrawRGB565 blits a w x h little-endian RGB565 buffer at the current
// origin. The panel wants big-endian words, so bytes are swapped on the way
// out through a bounded scratch buffer.
func (d *Dev) DrawRGB565(w, h int, pix []byte) error {
	if d.halted {
		return errors.New("st7735: halted")
	}
	if w <= 0 || h <= 0 || len(pix) < 2*w*h {
		return errors.New("st7735: invalid pixel buffer")
	}
	x1, y1 := d.offX+w-1, d.offY+h-1
	if x1 >= ramW || y1 >= ramH {
		return fmt.Errorf("st7735: draw %dx%d at (%d,%d) exceeds %dx%d controller RAM",
			w, h, d.offX, d.offY, ramW, ramH)
	}

	if err := d.setWindow(d.offX, d.offY, x1, y1); err != nil {
		return err
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}

	total := 2 * w * h
	for off := 0; off < total; {
		n := len(d.txBuf)
		if remain := total - off; n > remain {
			n = remain
		}
		src := pix[off : off+n]
		for i := 0; i < n; i += 2 {
			d.txBuf[i] = src[i+1]
			d.txBuf[i+1] = src[i]
		}
		if err := d.c.Tx(d.txBuf[:n], nil); err != nil {
			return fmt.Errorf("st7735: pixel tx: %w", err)
		}
		off += n
	}
	return nil
}

// Fill paints the whole panel a single color.
func (d *Dev) Fill(c color.RGBA) error {
	if d.halted {
		return errors.New("st7735: halted")
	}
	if err := d.setWindow(0, 0, d.w-1, d.h-1); err != nil {
		return err
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}

	// Panel byte order is big-endian rrrrrggggggbbbbb after MADCTL BGR,
	// matching the blue-high packing used by DrawRGB565 callers.
	px := uint16(c.B>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.R>>3)
	for i := 0; i+1 < len(d.txBuf); i += 2 {
		d.txBuf[i] = byte(px >> 8)
		d.txBuf[i+1] = byte(px)
	}

	total := 2 * d.w * d.h
	for off := 0; off < total; {
		n := len(d.txBuf)
		if remain := total - off; n > remain {
			n = remain
		}
		if err := d.c.Tx(d.txBuf[:n], nil); err != nil {
			return fmt.Errorf("st7735: fill tx: %w", err)
		}
		off += n
	}
	return nil
}

// Halt turns the display off. The device must be re-initialized afterwards.
func (d *Dev) Halt() error {
	d.halted = true
	return d.cmd(cmdDISPOFF)
}

func (d *Dev) String() string {
	return fmt.Sprintf("st7735.Dev{%dx%d}", d.w, d.h)
}
