package pixelops

import "testing"

func TestConvolve3x3LeavesBorderUnchanged(t *testing.T) {
	b := randomBuffer(8, 8, 11)
	before := b.Clone()

	Convolve3x3(b, SharpenKernel)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			onBorder := x == 0 || y == 0 || x == 7 || y == 7
			if !onBorder {
				continue
			}
			r0, g0, b0, a0 := before.At(x, y)
			r1, g1, b1, a1 := b.At(x, y)
			if r0 != r1 || g0 != g1 || b0 != b1 || a0 != a1 {
				t.Fatalf("border pixel (%d,%d) changed: (%d,%d,%d,%d) -> (%d,%d,%d,%d)",
					x, y, r0, g0, b0, a0, r1, g1, b1, a1)
			}
		}
	}
}

func TestConvolve3x3SharpenIdentityOnFlatRegion(t *testing.T) {
	// The sharpen kernel sums to 1, so a constant-color buffer is a fixed point.
	b := New(6, 6)
	b.Fill(90, 120, 200)

	Convolve3x3(b, SharpenKernel)

	r, g, bl, _ := b.At(3, 3)
	if r != 90 || g != 120 || bl != 200 {
		t.Errorf("flat interior changed to (%d,%d,%d), want (90,120,200)", r, g, bl)
	}
}

func TestConvolve3x3SmoothAverages(t *testing.T) {
	// Single bright pixel in a black field: after box smoothing, the center
	// value is the neighborhood mean, 255/9.
	b := New(5, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			b.Set(x, y, 0, 0, 0, 255)
		}
	}
	b.Set(2, 2, 255, 255, 255, 255)

	Convolve3x3(b, SmoothKernel)

	r, _, _, _ := b.At(2, 2)
	if r != 28 { // 255/9 truncated
		t.Errorf("smoothed center = %d, want 28", r)
	}
}

func TestConvolve3x3TinyBufferNoop(t *testing.T) {
	b := New(2, 2)
	b.Fill(10, 20, 30)
	before := b.Clone()

	Convolve3x3(b, SharpenKernel)

	if meanAbsDiff(before, b) != 0 {
		t.Error("buffers smaller than the kernel must be left unchanged")
	}
}

func TestConvolve3x3PreservesAlpha(t *testing.T) {
	b := randomBuffer(6, 6, 5)
	b.Set(3, 3, 100, 100, 100, 42)

	Convolve3x3(b, SharpenKernel)

	if _, _, _, a := b.At(3, 3); a != 42 {
		t.Errorf("alpha = %d, want untouched 42", a)
	}
}
