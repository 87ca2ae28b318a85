package pixelops

// NearWhiteThreshold is the per-channel floor above which a pixel counts as
// near-white for background classification.
const NearWhiteThreshold uint8 = 235

// ZeroBackgroundAlpha removes a light studio background from a garment shot
// using a conservative two-pass heuristic, not true segmentation:
//
//	pass 1: classify every near-white pixel (all channels >= threshold)
//	pass 2: zero the alpha of classified pixels that are either within
//	        margin pixels of the canvas border, or whose four direct
//	        neighbors are all near-white
//
// Saturated interior pixels keep their alpha even when a garment contains
// white highlights, because an isolated bright pixel fails both conditions.
func ZeroBackgroundAlpha(b *Buffer, margin int, threshold uint8) {
	w, h := b.width, b.height
	if w == 0 || h == 0 {
		return
	}

	nearWhite := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := b.At(x, y)
			nearWhite[y*w+x] = r >= threshold && g >= threshold && bl >= threshold
		}
	}

	isWhite := func(x, y int) bool {
		if x < 0 || x >= w || y < 0 || y >= h {
			// Off-canvas counts as background so border pixels can satisfy
			// the homogeneity condition.
			return true
		}
		return nearWhite[y*w+x]
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !nearWhite[y*w+x] {
				continue
			}
			nearBorder := x < margin || y < margin || x >= w-margin || y >= h-margin
			surrounded := isWhite(x-1, y) && isWhite(x+1, y) && isWhite(x, y-1) && isWhite(x, y+1)
			if nearBorder || surrounded {
				i := (y*w + x) * 4
				b.pix[i+3] = 0
			}
		}
	}
}
