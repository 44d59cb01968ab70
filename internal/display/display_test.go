package display

import (
	"image/color"
	"testing"
)

func TestRGB565At(t *testing.T) {
	// (5<<11)|(18<<5)|31 = 0x2A5F: r5=31, g6=18, b5=5.
	pix := []byte{0x5F, 0x2A, 0xFF, 0xFF, 0x00, 0x00}

	cases := []struct {
		idx  int
		want color.NRGBA
	}{
		{0, color.NRGBA{R: 255, G: 73, B: 41, A: 255}},
		{1, color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{2, color.NRGBA{R: 0, G: 0, B: 0, A: 255}},
	}
	for _, c := range cases {
		if got := RGB565At(pix, c.idx); got != c.want {
			t.Fatalf("pixel %d = %v, want %v", c.idx, got, c.want)
		}
	}
}
