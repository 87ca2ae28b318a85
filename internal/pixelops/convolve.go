package pixelops

// Kernel is a 3x3 convolution kernel in row-major order.
type Kernel [9]float64

// SharpenKernel accentuates edges. Paired with Convolve3x3 it implements the
// "sharpen" preprocessing step.
var SharpenKernel = Kernel{
	0, -1, 0,
	-1, 5, -1,
	0, -1, 0,
}

// SmoothKernel is a uniform averaging kernel used for noise reduction.
var SmoothKernel = Kernel{
	1.0 / 9, 1.0 / 9, 1.0 / 9,
	1.0 / 9, 1.0 / 9, 1.0 / 9,
	1.0 / 9, 1.0 / 9, 1.0 / 9,
}

// Convolve3x3 applies a 3x3 convolution to each RGB channel independently,
// mutating the buffer in place. The 1-pixel border is left unchanged rather
// than padded or wrapped; alpha is never touched.
func Convolve3x3(b *Buffer, k Kernel) {
	if b.width < 3 || b.height < 3 {
		return
	}

	src := b.Clone()
	for y := 1; y < b.height-1; y++ {
		for x := 1; x < b.width-1; x++ {
			var sr, sg, sb float64
			ki := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					r, g, bl, _ := src.At(x+dx, y+dy)
					w := k[ki]
					sr += float64(r) * w
					sg += float64(g) * w
					sb += float64(bl) * w
					ki++
				}
			}
			i := (y*b.width + x) * 4
			b.pix[i] = clamp255(sr)
			b.pix[i+1] = clamp255(sg)
			b.pix[i+2] = clamp255(sb)
		}
	}
}
