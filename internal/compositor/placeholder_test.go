package compositor

import (
	"bytes"
	"image/png"
	"testing"
)

func TestPlaceholderRenderAlwaysSucceeds(t *testing.T) {
	out := Placeholder{}.Render()
	if len(out) == 0 {
		t.Fatal("placeholder render returned no bytes")
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("placeholder not decodable as PNG: %v", err)
	}
	if img.Bounds().Dx() != fallbackWidth || img.Bounds().Dy() != fallbackHeight {
		t.Errorf("placeholder size = %v, want %dx%d", img.Bounds().Size(), fallbackWidth, fallbackHeight)
	}
}

func TestPlaceholderRenderStable(t *testing.T) {
	a := Placeholder{}.Render()
	b := Placeholder{}.Render()
	if !bytes.Equal(a, b) {
		t.Error("placeholder output is not stable across calls")
	}
}
