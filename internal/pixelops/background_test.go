package pixelops

import "testing"

// garmentOnWhite builds a buffer with a pure-white background and a saturated
// red rectangle in the center, mimicking a studio garment shot.
func garmentOnWhite(w, h, inset int) *Buffer {
	b := New(w, h)
	b.Fill(255, 255, 255)
	for y := inset; y < h-inset; y++ {
		for x := inset; x < w-inset; x++ {
			b.Set(x, y, 200, 30, 30, 255)
		}
	}
	return b
}

func TestZeroBackgroundAlphaWhiteBorder(t *testing.T) {
	b := garmentOnWhite(20, 20, 5)

	ZeroBackgroundAlpha(b, 3, NearWhiteThreshold)

	// Border must be fully transparent.
	for _, p := range [][2]int{{0, 0}, {19, 0}, {0, 19}, {19, 19}, {10, 0}, {0, 10}} {
		if _, _, _, a := b.At(p[0], p[1]); a != 0 {
			t.Errorf("border pixel (%d,%d) alpha = %d, want 0", p[0], p[1], a)
		}
	}

	// Saturated center must keep its alpha.
	for _, p := range [][2]int{{10, 10}, {6, 6}, {13, 13}} {
		if _, _, _, a := b.At(p[0], p[1]); a != 255 {
			t.Errorf("center pixel (%d,%d) alpha = %d, want 255", p[0], p[1], a)
		}
	}
}

func TestZeroBackgroundAlphaInteriorWhiteField(t *testing.T) {
	// A white region fully surrounded by white is background even when it is
	// beyond the border margin (4-neighbor homogeneity pass).
	b := New(30, 30)
	b.Fill(255, 255, 255)

	ZeroBackgroundAlpha(b, 2, NearWhiteThreshold)

	if _, _, _, a := b.At(15, 15); a != 0 {
		t.Errorf("deep interior white alpha = %d, want 0", a)
	}
}

func TestZeroBackgroundAlphaKeepsIsolatedHighlight(t *testing.T) {
	// A single white highlight inside a colored garment has colored
	// neighbors, so it survives both passes.
	b := garmentOnWhite(20, 20, 4)
	b.Set(10, 10, 255, 255, 255, 255)

	ZeroBackgroundAlpha(b, 3, NearWhiteThreshold)

	if _, _, _, a := b.At(10, 10); a != 255 {
		t.Errorf("isolated highlight alpha = %d, want 255", a)
	}
}

func TestZeroBackgroundAlphaIgnoresOffWhiteGarment(t *testing.T) {
	// A light gray garment below the threshold must not be eaten.
	b := New(12, 12)
	b.Fill(255, 255, 255)
	for y := 3; y < 9; y++ {
		for x := 3; x < 9; x++ {
			b.Set(x, y, 220, 220, 220, 255)
		}
	}

	ZeroBackgroundAlpha(b, 2, NearWhiteThreshold)

	if _, _, _, a := b.At(5, 5); a != 255 {
		t.Errorf("light gray garment alpha = %d, want 255", a)
	}
}
