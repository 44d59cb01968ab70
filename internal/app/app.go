// Package app wires the timer, the renderer and the display into the single
// fire -> acknowledge -> render -> re-arm cycle, and owns the fatal error
// boundary around it.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-plasmatile/internal/display"
	"github.com/coreman2200/funtimes-plasmatile/internal/render"
	"github.com/coreman2200/funtimes-plasmatile/internal/timer"
)

// Core owns the moving parts of one run.
type Core struct {
	Tmr   *timer.Driver
	Frame *render.Frame
	Disp  display.Device
}

// InitCore prepares the timer and renderer against an initialized display.
func InitCore(disp display.Device, tmr *timer.Driver) (*Core, error) {
	if disp == nil {
		return nil, errors.New("app: no display")
	}
	if tmr == nil {
		return nil, errors.New("app: no timer")
	}
	tmr.Init()
	return &Core{
		Tmr:   tmr,
		Frame: render.New(disp, tmr),
		Disp:  disp,
	}, nil
}

// Run arms the first frame and then services fires until ctx is cancelled.
// Each fire is acknowledged before any rendering so the next period is not
// skewed by frame work; the cycle itself re-arms the timer. Any cycle error
// is returned to the caller's fatal boundary; there is no retry.
//
// onFrame, if set, observes the finished tile buffer after each cycle. The
// slice is only valid until the next cycle.
func (c *Core) Run(ctx context.Context, onFrame func(pix []byte)) error {
	if err := c.Tmr.Arm(render.Channel, render.RearmTicks); err != nil {
		return fmt.Errorf("app: arm first frame: %w", err)
	}
	log.Info().Int("channel", render.Channel).Int("ticks", render.RearmTicks).Msg("render cycle armed")

	for {
		select {
		case <-ctx.Done():
			log.Info().Uint32("frames", c.Frame.Counter()).Msg("render cycle stopped")
			return nil
		case ch := <-c.Tmr.Fires():
			if ch != render.Channel {
				continue
			}
			if err := c.Tmr.Ack(ch); err != nil {
				return fmt.Errorf("app: acknowledge fire: %w", err)
			}
			if err := c.Frame.Cycle(); err != nil {
				return fmt.Errorf("app: frame %d: %w", c.Frame.Counter(), err)
			}
			if onFrame != nil {
				onFrame(c.Frame.Bytes())
			}
		}
	}
}
