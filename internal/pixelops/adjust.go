package pixelops

import "math"

// AdjustContrast applies a linear contrast transfer around the midpoint:
// v' = clamp((v-128)*factor + 128). Mutates the buffer in place.
func AdjustContrast(b *Buffer, factor float64) {
	for i := 0; i < len(b.pix); i += 4 {
		b.pix[i] = clamp255((float64(b.pix[i])-128)*factor + 128)
		b.pix[i+1] = clamp255((float64(b.pix[i+1])-128)*factor + 128)
		b.pix[i+2] = clamp255((float64(b.pix[i+2])-128)*factor + 128)
	}
}

// AlphaZeroWhere sets alpha to zero for every pixel matching the predicate.
func AlphaZeroWhere(b *Buffer, pred func(r, g, bl, a uint8) bool) {
	for i := 0; i < len(b.pix); i += 4 {
		if pred(b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3]) {
			b.pix[i+3] = 0
		}
	}
}

// Vignette darkens the buffer radially toward its corners with a multiply
// blend. Strength is in [0, 1]; pixels inside roughly half the radius are
// untouched, the falloff ramps smoothly from there to the corners.
func Vignette(b *Buffer, strength float64) {
	if strength <= 0 {
		return
	}
	cx := float64(b.width) / 2
	cy := float64(b.height) / 2
	maxDist := math.Hypot(cx, cy)
	inner := maxDist * 0.5

	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			if d <= inner {
				continue
			}
			t := (d - inner) / (maxDist - inner)
			f := 1 - strength*t*t
			i := (y*b.width + x) * 4
			b.pix[i] = clamp255(float64(b.pix[i]) * f)
			b.pix[i+1] = clamp255(float64(b.pix[i+1]) * f)
			b.pix[i+2] = clamp255(float64(b.pix[i+2]) * f)
		}
	}
}
