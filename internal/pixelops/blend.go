package pixelops

// BlendMode selects the compositing function used by Composite.
//
// Each mode is an explicit pure function of (base, layer) channel values;
// there is no shared drawing-context state involved.
type BlendMode int

const (
	// BlendMultiply darkens the base by the layer; the workhorse for laying
	// garment color over a body region.
	BlendMultiply BlendMode = iota
	// BlendOverlay boosts contrast where the base is bright, preserving
	// highlights.
	BlendOverlay
	// BlendColorBurn deepens shadows aggressively; used at low opacity to
	// carry fabric texture.
	BlendColorBurn
)

// Composite blends layer over base at the given offset and returns a new
// buffer; neither input is mutated. Opacity is in [0, 1] and is additionally
// scaled by the layer pixel's alpha, so fully transparent layer pixels leave
// the base untouched.
func Composite(base, layer *Buffer, offsetX, offsetY int, mode BlendMode, opacity float64) *Buffer {
	out := base.Clone()
	if opacity <= 0 {
		return out
	}
	if opacity > 1 {
		opacity = 1
	}

	for ly := 0; ly < layer.height; ly++ {
		y := offsetY + ly
		if y < 0 || y >= base.height {
			continue
		}
		for lx := 0; lx < layer.width; lx++ {
			x := offsetX + lx
			if x < 0 || x >= base.width {
				continue
			}

			lr, lg, lb, la := layer.At(lx, ly)
			if la == 0 {
				continue
			}
			br, bg, bb, ba := out.At(x, y)

			nr := blendChannel(br, lr, mode)
			ng := blendChannel(bg, lg, mode)
			nb := blendChannel(bb, lb, mode)

			w := opacity * float64(la) / 255
			out.Set(x, y,
				clamp255(float64(br)+(float64(nr)-float64(br))*w),
				clamp255(float64(bg)+(float64(ng)-float64(bg))*w),
				clamp255(float64(bb)+(float64(nb)-float64(bb))*w),
				ba,
			)
		}
	}
	return out
}

// blendChannel computes a single blended channel value for one mode.
func blendChannel(base, layer uint8, mode BlendMode) uint8 {
	b := float64(base)
	l := float64(layer)
	switch mode {
	case BlendMultiply:
		return clamp255(b * l / 255)
	case BlendOverlay:
		if b < 128 {
			return clamp255(2 * b * l / 255)
		}
		return clamp255(255 - 2*(255-b)*(255-l)/255)
	case BlendColorBurn:
		if l == 0 {
			return 0
		}
		return clamp255(255 - (255-b)*255/l)
	default:
		return base
	}
}
