package render

import (
	"errors"
	"image"
	"math"
	"testing"
)

// recDisplay captures blit calls.
type recDisplay struct {
	offX, offY int
	offsets    []image.Point
	lens       []int
	heads      []*byte
	failAt     int // 1-based blit index to fail on, 0 = never
	calls      int
}

func (d *recDisplay) SetOffset(x, y int) { d.offX, d.offY = x, y }

func (d *recDisplay) DrawRGB565(w, h int, pix []byte) error {
	d.calls++
	if d.failAt != 0 && d.calls == d.failAt {
		return errors.New("bus error")
	}
	d.offsets = append(d.offsets, image.Point{X: d.offX, Y: d.offY})
	d.lens = append(d.lens, len(pix))
	d.heads = append(d.heads, &pix[0])
	return nil
}

// recArmer captures re-arm calls.
type recArmer struct {
	chs   []int
	ticks []int
}

func (a *recArmer) Arm(ch, ticks int) error {
	a.chs = append(a.chs, ch)
	a.ticks = append(a.ticks, ticks)
	return nil
}

func TestCycleBlitsFourFixedOffsets(t *testing.T) {
	d := &recDisplay{}
	a := &recArmer{}
	f := New(d, a)

	if err := f.Cycle(); err != nil {
		t.Fatalf("cycle: %v", err)
	}

	want := []image.Point{{0, 0}, {67, 0}, {0, 67}, {67, 67}}
	if len(d.offsets) != 4 {
		t.Fatalf("expected 4 blits, got %d", len(d.offsets))
	}
	for i, p := range want {
		if d.offsets[i] != p {
			t.Fatalf("blit %d at %v, want %v", i, d.offsets[i], p)
		}
	}
}

func TestCycleBufferInvariant(t *testing.T) {
	d := &recDisplay{}
	f := New(d, &recArmer{})

	for n := 0; n < 3; n++ {
		if err := f.Cycle(); err != nil {
			t.Fatalf("cycle %d: %v", n, err)
		}
	}

	for i, l := range d.lens {
		if l != BufLen {
			t.Fatalf("blit %d buffer length %d, want %d", i, l, BufLen)
		}
	}
	// Same backing array every time: the buffer is reused, never reallocated.
	for i := 1; i < len(d.heads); i++ {
		if d.heads[i] != d.heads[0] {
			t.Fatalf("blit %d used a different buffer", i)
		}
	}
}

func TestCounterIncrementAndWrap(t *testing.T) {
	f := New(&recDisplay{}, &recArmer{})

	if err := f.Cycle(); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if f.Counter() != 1 {
		t.Fatalf("counter = %d after one cycle, want 1", f.Counter())
	}

	f.t = math.MaxUint32
	if err := f.Cycle(); err != nil {
		t.Fatalf("cycle at max counter: %v", err)
	}
	if f.Counter() != 0 {
		t.Fatalf("counter = %d after wrap, want 0", f.Counter())
	}
}

func TestCycleRearmsFixedInterval(t *testing.T) {
	a := &recArmer{}
	f := New(&recDisplay{}, a)

	for n := 0; n < 5; n++ {
		if err := f.Cycle(); err != nil {
			t.Fatalf("cycle %d: %v", n, err)
		}
	}
	for i := range a.chs {
		if a.chs[i] != Channel || a.ticks[i] != RearmTicks {
			t.Fatalf("rearm %d = (ch %d, %d ticks), want (ch %d, %d ticks)",
				i, a.chs[i], a.ticks[i], Channel, RearmTicks)
		}
	}
	if len(a.chs) != 5 {
		t.Fatalf("expected 5 rearms, got %d", len(a.chs))
	}
}

func TestCycleBlitFailureIsFatal(t *testing.T) {
	d := &recDisplay{failAt: 2}
	f := New(d, &recArmer{})

	err := f.Cycle()
	if err == nil {
		t.Fatal("expected error from failed blit")
	}
	if f.Counter() != 0 {
		t.Fatalf("counter advanced to %d on aborted cycle", f.Counter())
	}
}
