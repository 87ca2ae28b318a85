package pixelops

// HistogramEqualize redistributes brightness to normalize exposure.
//
// It computes a luminance histogram (L = 0.299R + 0.587G + 0.114B), builds a
// cumulative distribution over 256 buckets, and rescales each pixel's RGB
// channels by the ratio of the equalized luminance to the original one.
// The operation mutates the buffer in place and is deterministic; applying
// it to an already-equalized buffer changes it only by rounding noise.
func HistogramEqualize(b *Buffer) {
	total := b.width * b.height
	if total == 0 {
		return
	}

	var hist [256]int
	for i := 0; i < len(b.pix); i += 4 {
		l := luma(b.pix[i], b.pix[i+1], b.pix[i+2])
		hist[l]++
	}

	var cdf [256]int
	running := 0
	for i, n := range hist {
		running += n
		cdf[i] = running
	}

	for i := 0; i < len(b.pix); i += 4 {
		l := luma(b.pix[i], b.pix[i+1], b.pix[i+2])
		equalized := float64(cdf[l]) * 255 / float64(total)

		denom := float64(l)
		if denom < 1 {
			denom = 1
		}
		factor := equalized / denom

		b.pix[i] = clamp255(float64(b.pix[i]) * factor)
		b.pix[i+1] = clamp255(float64(b.pix[i+1]) * factor)
		b.pix[i+2] = clamp255(float64(b.pix[i+2]) * factor)
	}
}

// luma returns the integer luminance bucket for an RGB triple.
func luma(r, g, b uint8) int {
	l := int(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b))
	if l > 255 {
		l = 255
	}
	return l
}
