package render

import "math"

// Tile geometry and pacing. The mosaic is four copies of one TileW x TileH
// tile, separated by TileGap pixels on both axes.
const (
	TileW   = 64
	TileH   = 64
	TileGap = 3

	// BufLen is the tile framebuffer size: 2 bytes per RGB565 pixel.
	BufLen = 2 * TileW * TileH

	// Channel is the timer compare channel that paces the frame cycle.
	Channel = 1
	// RearmTicks is the countdown programmed after every completed frame.
	RearmTicks = 1000
)

// Pixel computes the packed RGB565 word of the plasma field for frame t at
// tile coordinate (i, j). Pure: same inputs always give the same word.
//
// Layout is blue in the high bits: bbbbbggggggrrrrr.
func Pixel(t uint32, i, j int) uint16 {
	x := float64(i) / TileH
	y := float64(j) / TileW
	ft := float64(t)

	r := 0.5 + 0.5*math.Cos(ft+x+0.0)
	g := 0.5 + 0.5*math.Cos(ft+y+2.0)
	b := 0.5 + 0.5*math.Cos(ft+x+4.0)

	return quant(b, 31)<<11 | quant(g, 63)<<5 | quant(r, 31)
}

// quant floors v*scale into [0, scale]. The cosine terms are nominally in
// [0, 1] but rounding at the boundary can land just outside, so clamp.
func quant(v float64, scale uint16) uint16 {
	q := int(v * float64(scale))
	if q < 0 {
		return 0
	}
	if q > int(scale) {
		return scale
	}
	return uint16(q)
}
