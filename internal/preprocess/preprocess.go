package preprocess

import (
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"

	"github.com/fpang/virtual-tryon/internal/pixelops"
)

// portraitAspect is the width/height ratio forced onto landscape or square
// inputs to standardize try-on framing.
const portraitAspect = 0.75

// backgroundRemovalMargin is the border band (in pixels) treated as
// background-adjacent during garment background removal.
const backgroundRemovalMargin = 8

// Canvas background per subject type.
var (
	personBackground  = [3]uint8{0xF2, 0xF2, 0xF2} // light gray
	garmentBackground = [3]uint8{0xFF, 0xFF, 0xFF} // white
)

// Result is the immutable outcome of one preprocessing run.
type Result struct {
	// Encoded is the processed image, ready to send to the compositor.
	Encoded []byte
	// MIMEType is the encoding of Encoded: image/png when the alpha channel
	// carries background-removal results, image/jpeg otherwise.
	MIMEType string

	OriginalSize  image.Point
	ProcessedSize image.Point
	// Improvements lists, in execution order, the steps that actually ran.
	Improvements   []string
	ProcessingTime time.Duration
}

// Run decodes a source image and applies the recipe for the given subject.
//
// The step order is fixed; Options only toggles steps on and off:
// canvas layout, exposure normalization, contrast, sharpening, background
// removal (garment only), color optimization, vignette, encode.
func Run(data []byte, subject Subject, opts Options) (*Result, error) {
	start := time.Now()

	buf, err := pixelops.Decode(data)
	if err != nil {
		return nil, &Error{Step: "decode", Err: err}
	}
	originalSize := image.Point{X: buf.Width(), Y: buf.Height()}

	canvas, err := layoutCanvas(buf, subject, opts.TargetSize)
	if err != nil {
		return nil, &Error{Step: "canvas", Err: err}
	}
	improvements := []string{
		fmt.Sprintf("standardized framing on %dx%d canvas", canvas.Width(), canvas.Height()),
	}

	if opts.NormalizeExposure {
		pixelops.HistogramEqualize(canvas)
		improvements = append(improvements, "normalized exposure")
	}
	if opts.EnhanceContrast {
		pixelops.AdjustContrast(canvas, 1.2)
		improvements = append(improvements, "enhanced contrast")
	}
	if opts.Sharpen {
		pixelops.Convolve3x3(canvas, pixelops.SharpenKernel)
		improvements = append(improvements, "sharpened details")
	}
	if opts.RemoveBackground && subject == SubjectGarment {
		pixelops.ZeroBackgroundAlpha(canvas, backgroundRemovalMargin, pixelops.NearWhiteThreshold)
		improvements = append(improvements, "removed light background")
	}
	if opts.OptimizeColors {
		switch subject {
		case SubjectPerson:
			boostSkinTones(canvas)
			improvements = append(improvements, "optimized skin tones")
		case SubjectGarment:
			boostSaturation(canvas)
			improvements = append(improvements, "boosted fabric saturation")
		}
	}

	pixelops.Vignette(canvas, 0.15)
	improvements = append(improvements, "applied subtle vignette")

	// Background removal lives in the alpha channel, which JPEG cannot carry.
	format, mime := "jpeg", "image/jpeg"
	if opts.RemoveBackground && subject == SubjectGarment {
		format, mime = "png", "image/png"
	}
	encoded, err := canvas.Encode(format, opts.Quality)
	if err != nil {
		return nil, &Error{Step: "encode", Err: err}
	}

	result := &Result{
		Encoded:        encoded,
		MIMEType:       mime,
		OriginalSize:   originalSize,
		ProcessedSize:  image.Point{X: canvas.Width(), Y: canvas.Height()},
		Improvements:   improvements,
		ProcessingTime: time.Since(start),
	}

	log.Debug().
		Str("subject", string(subject)).
		Int("steps", len(improvements)).
		Int("output_bytes", len(encoded)).
		Dur("duration", result.ProcessingTime).
		Msg("Preprocessing complete")

	return result, nil
}

// layoutCanvas builds the standardized canvas for a subject: a neutral
// background with the source scaled and centered onto it. Landscape and
// square inputs get a portrait 3:4 canvas so every try-on frame looks alike;
// portrait inputs keep their own aspect with the long edge at targetSize.
func layoutCanvas(src *pixelops.Buffer, subject Subject, targetSize int) (*pixelops.Buffer, error) {
	if targetSize <= 0 {
		targetSize = 1024
	}
	ow, oh := src.Width(), src.Height()
	if ow == 0 || oh == 0 {
		return nil, fmt.Errorf("source has zero dimension %dx%d", ow, oh)
	}

	var cw, ch int
	if ow >= oh {
		ch = targetSize
		cw = int(float64(targetSize) * portraitAspect)
	} else {
		ch = targetSize
		cw = ow * targetSize / oh
	}

	bg := personBackground
	if subject == SubjectGarment {
		bg = garmentBackground
	}
	canvas := pixelops.New(cw, ch)
	canvas.Fill(bg[0], bg[1], bg[2])

	// Scale the source to fit inside the canvas, centered.
	scale := float64(cw) / float64(ow)
	if s := float64(ch) / float64(oh); s < scale {
		scale = s
	}
	dw := int(float64(ow) * scale)
	dh := int(float64(oh) * scale)
	dx := (cw - dw) / 2
	dy := (ch - dh) / 2

	dst := canvas.ToImage()
	draw.CatmullRom.Scale(dst, image.Rect(dx, dy, dx+dw, dy+dh), src.ToImage(), image.Rect(0, 0, ow, oh), draw.Over, nil)

	return pixelops.FromImage(dst), nil
}

// boostSkinTones nudges approximate skin-tone pixels warmer: a small
// red/green lift with a matching blue damp. The detector is the classic
// RGB-rule heuristic, not a segmentation model.
func boostSkinTones(b *pixelops.Buffer) {
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			r, g, bl, a := b.At(x, y)
			if !isSkinTone(r, g, bl) {
				continue
			}
			b.Set(x, y,
				clampMul(r, 1.05),
				clampMul(g, 1.02),
				clampMul(bl, 0.98),
				a,
			)
		}
	}
}

// isSkinTone applies the R>95, G>40, B>20, max-min>15, R>G>B rule.
func isSkinTone(r, g, b uint8) bool {
	if r <= 95 || g <= 40 || b <= 20 {
		return false
	}
	mx, mn := r, r
	for _, v := range []uint8{g, b} {
		if v > mx {
			mx = v
		}
		if v < mn {
			mn = v
		}
	}
	return int(mx)-int(mn) > 15 && r > g && g > b
}

// boostSaturation pushes already-colorful pixels further from their channel
// mean. Pixels with chroma (max-min)/max <= 0.1 are considered neutral and
// left alone so grays do not drift.
func boostSaturation(b *pixelops.Buffer) {
	const factor = 1.15
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			r, g, bl, a := b.At(x, y)
			mx := maxc(r, g, bl)
			if mx == 0 {
				continue
			}
			mn := minc(r, g, bl)
			if float64(mx-mn)/float64(mx) <= 0.1 {
				continue
			}
			mean := (float64(r) + float64(g) + float64(bl)) / 3
			b.Set(x, y,
				clampF(mean+(float64(r)-mean)*factor),
				clampF(mean+(float64(g)-mean)*factor),
				clampF(mean+(float64(bl)-mean)*factor),
				a,
			)
		}
	}
}

func maxc(a, b, c uint8) uint8 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func minc(a, b, c uint8) uint8 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func clampMul(v uint8, f float64) uint8 { return clampF(float64(v) * f) }

func clampF(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
