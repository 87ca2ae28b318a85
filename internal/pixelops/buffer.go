// Package pixelops provides the raster buffer primitives that the try-on
// pipeline is built on: decoding, per-pixel transforms, 3x3 convolution,
// explicit blend modes, and encoding back to JPEG or PNG.
//
// All operations work on a Buffer, a plain RGBA byte store. Buffers are
// never shared between concurrent requests; callers own what they create.
package pixelops

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
)

// MaxEncodedBytes is the ceiling on encoded input size accepted by Decode.
const MaxEncodedBytes = 10 << 20 // 10 MB

// DecodeError indicates that raster bytes could not be parsed into a Buffer.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode failed: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Buffer is an owned rectangular pixel store in RGBA order, 4 bytes per pixel.
type Buffer struct {
	width  int
	height int
	pix    []uint8
}

// New creates a zeroed (transparent black) buffer with the given dimensions.
func New(width, height int) *Buffer {
	return &Buffer{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*4),
	}
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.height }

// Pix returns the raw RGBA pixel data.
func (b *Buffer) Pix() []uint8 { return b.pix }

// At returns the RGBA samples at (x, y). Out-of-bounds reads return zeros.
func (b *Buffer) At(x, y int) (r, g, bl, a uint8) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return 0, 0, 0, 0
	}
	i := (y*b.width + x) * 4
	return b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3]
}

// Set writes the RGBA samples at (x, y). Out-of-bounds writes are ignored.
func (b *Buffer) Set(x, y int, r, g, bl, a uint8) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	i := (y*b.width + x) * 4
	b.pix[i] = r
	b.pix[i+1] = g
	b.pix[i+2] = bl
	b.pix[i+3] = a
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	out := New(b.width, b.height)
	copy(out.pix, b.pix)
	return out
}

// Fill sets every pixel to the given opaque color.
func (b *Buffer) Fill(r, g, bl uint8) {
	for i := 0; i < len(b.pix); i += 4 {
		b.pix[i] = r
		b.pix[i+1] = g
		b.pix[i+2] = bl
		b.pix[i+3] = 255
	}
}

// ToImage converts the buffer to an image.RGBA sharing no storage.
func (b *Buffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	copy(img.Pix, b.pix)
	return img
}

// FromImage creates a buffer from any image.Image.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Fast path: image.RGBA with a tightly packed Pix slice.
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == w*4 {
		b := New(w, h)
		copy(b.pix, rgba.Pix)
		return b
	}

	b := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			b.Set(x, y, uint8(r>>8), uint8(g>>8), uint8(bl>>8), uint8(a>>8))
		}
	}
	return b
}

// Decode parses encoded raster bytes (JPEG or PNG) into a Buffer.
// Inputs above MaxEncodedBytes are rejected before any parsing work.
func Decode(data []byte) (*Buffer, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Reason: "empty input"}
	}
	if len(data) > MaxEncodedBytes {
		return nil, &DecodeError{Reason: fmt.Sprintf("input exceeds %d byte ceiling (%d bytes)", MaxEncodedBytes, len(data))}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Reason: "not a valid raster image", Err: err}
	}
	return FromImage(img), nil
}

// Encode serializes the buffer to the requested format ("jpeg" or "png").
// Quality is in [0, 1] and only applies to JPEG output.
func (b *Buffer) Encode(format string, quality float64) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "jpeg", "jpg":
		q := int(quality * 100)
		if q < 1 {
			q = 1
		}
		if q > 100 {
			q = 100
		}
		if err := jpeg.Encode(&buf, b.ToImage(), &jpeg.Options{Quality: q}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
	case "png":
		if err := png.Encode(&buf, b.ToImage()); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return buf.Bytes(), nil
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
