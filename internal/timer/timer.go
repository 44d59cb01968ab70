// Package timer models a countdown/compare timer with independent one-shot
// channels. A channel is armed for a tick count, delivers its fire on a
// shared channel, and must be acknowledged before it can be re-armed.
package timer

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// NumChannels is the number of independent compare channels.
const NumChannels = 4

// DefaultTick is the countdown granularity when none is configured.
const DefaultTick = time.Microsecond

var (
	// ErrUnacked is returned when arming a channel whose previous fire has
	// not been acknowledged. Re-arming before acknowledge re-triggers on
	// real level-sensitive hardware; surface it instead.
	ErrUnacked = errors.New("timer: channel fire not acknowledged")
	// ErrNotPending is returned when acknowledging a channel that has no
	// outstanding fire.
	ErrNotPending = errors.New("timer: no pending fire")
)

// Option configures a Driver.
type Option func(*Driver)

// WithTick overrides the tick duration. Tests use coarse ticks.
func WithTick(d time.Duration) Option {
	return func(t *Driver) {
		if d > 0 {
			t.tick = d
		}
	}
}

// Driver owns the timer channels. All methods are safe to call from the
// fire-handling goroutine, so a cycle can re-arm itself.
type Driver struct {
	tick  time.Duration
	fires chan int

	mu    sync.Mutex
	chans [NumChannels]channel
}

type channel struct {
	t       *time.Timer
	seq     uint64 // bumped by Arm and Init; a fire from an older seq is stale
	pending bool
}

// New returns a Driver with all channels idle.
func New(opts ...Option) *Driver {
	d := &Driver{
		tick: DefaultTick,
		// One slot per channel: a channel cannot fire again until it has
		// been acknowledged and re-armed, so sends never block.
		fires: make(chan int, NumChannels),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Init stops any armed countdowns and clears pending state.
func (d *Driver) Init() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.chans {
		if d.chans[i].t != nil {
			d.chans[i].t.Stop()
			d.chans[i].t = nil
		}
		// Stop can lose to a callback already running; bumping seq makes
		// such a fire stale so it is dropped instead of delivered.
		d.chans[i].seq++
		d.chans[i].pending = false
	}
	for {
		select {
		case <-d.fires:
		default:
			return
		}
	}
}

// Arm schedules a one-shot fire on ch after the given tick count, measured
// from the call moment. Re-arming an idle channel replaces its target time.
func (d *Driver) Arm(ch, ticks int) error {
	if ch < 0 || ch >= NumChannels {
		return fmt.Errorf("timer: channel %d out of range", ch)
	}
	if ticks <= 0 {
		return fmt.Errorf("timer: invalid tick count %d", ticks)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	c := &d.chans[ch]
	if c.pending {
		return ErrUnacked
	}
	if c.t != nil {
		c.t.Stop()
	}
	c.seq++
	seq := c.seq
	c.t = time.AfterFunc(time.Duration(ticks)*d.tick, func() { d.fire(ch, seq) })
	return nil
}

// Ack clears the pending flag of a fired channel. It must be called exactly
// once per fire, before the channel is re-armed.
func (d *Driver) Ack(ch int) error {
	if ch < 0 || ch >= NumChannels {
		return fmt.Errorf("timer: channel %d out of range", ch)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.chans[ch].pending {
		return ErrNotPending
	}
	d.chans[ch].pending = false
	return nil
}

// Fires delivers the index of each fired channel. Consumers block here when
// idle; nothing else runs between fires.
func (d *Driver) Fires() <-chan int { return d.fires }

// Close stops all countdowns. The driver must not be re-armed afterwards.
func (d *Driver) Close() error {
	d.Init()
	return nil
}

func (d *Driver) fire(ch int, seq uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.chans[ch].seq != seq {
		return // superseded by a later Arm or an Init
	}
	d.chans[ch].pending = true
	// Delivered under the lock so Init never observes the pending flag
	// without the fire (or vice versa). The buffered slot per channel
	// guarantees the send cannot block.
	d.fires <- ch
}
