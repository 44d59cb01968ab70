package render

import "testing"

func TestPixelDeterministic(t *testing.T) {
	cases := []struct {
		t    uint32
		i, j int
	}{
		{0, 0, 0},
		{0, 63, 63},
		{1, 12, 34},
		{99999, 31, 7},
	}
	for _, c := range cases {
		a := Pixel(c.t, c.i, c.j)
		b := Pixel(c.t, c.i, c.j)
		if a != b {
			t.Fatalf("Pixel(%d,%d,%d) not reproducible: %#04x vs %#04x", c.t, c.i, c.j, a, b)
		}
	}
}

func TestPixelChannelRanges(t *testing.T) {
	for _, ft := range []uint32{0, 1, 2, 1000, 4294967295} {
		for i := 0; i < TileH; i++ {
			for j := 0; j < TileW; j++ {
				px := Pixel(ft, i, j)
				b5 := px >> 11 & 0x1F
				g6 := px >> 5 & 0x3F
				r5 := px & 0x1F
				if b5 > 31 || g6 > 63 || r5 > 31 {
					t.Fatalf("t=%d (%d,%d): channel out of range in %#04x", ft, i, j, px)
				}
			}
		}
	}
}

func TestQuantClampsBoundaries(t *testing.T) {
	cases := []struct {
		v     float64
		scale uint16
		want  uint16
	}{
		{1.0, 31, 31},      // cosine peak, exact
		{1.0000001, 31, 31},
		{1.0, 63, 63},
		{0.0, 31, 0},       // cosine trough
		{-0.0000001, 31, 0},
		{0.5, 63, 31},
	}
	for _, c := range cases {
		if got := quant(c.v, c.scale); got != c.want {
			t.Fatalf("quant(%v,%d) = %d, want %d", c.v, c.scale, got, c.want)
		}
	}
}

// First pixel of frame 0: r = 0.5+0.5*cos(0) = 1.0 so r5 = 31,
// g = 0.5+0.5*cos(2) = 0.29193 so g6 = 18, b = 0.5+0.5*cos(4) = 0.17318
// so b5 = 5, packed (5<<11)|(18<<5)|31 = 0x2A5F, stored LSB first.
func TestFrameZeroFirstPixelBytes(t *testing.T) {
	if px := Pixel(0, 0, 0); px != 0x2A5F {
		t.Fatalf("Pixel(0,0,0) = %#04x, want 0x2A5F", px)
	}

	f := New(&nullDisplay{}, nil)
	f.fill()
	if f.buf[0] != 0x5F || f.buf[1] != 0x2A {
		t.Fatalf("buffer head = [%#02x %#02x], want [0x5f 0x2a]", f.buf[0], f.buf[1])
	}
}

type nullDisplay struct{}

func (nullDisplay) SetOffset(x, y int)                    {}
func (nullDisplay) DrawRGB565(w, h int, pix []byte) error { return nil }
