package compositor

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/rs/zerolog/log"

	"github.com/fpang/virtual-tryon/internal/pixelops"
)

// Fallback canvas dimensions, fixed 3:4 to match the preprocessed framing.
const (
	fallbackWidth  = 768
	fallbackHeight = 1024
)

// Fallback synthesizes a plausible try-on composite locally, without any
// remote dependency, by layering the garment over an estimated torso region
// with explicit blend modes. It is a stylistic approximation, not a fitting:
// the output is watermarked accordingly.
type Fallback struct {
	// Torso locates the drape region; swap in a pose-estimation backed
	// implementation to upgrade accuracy.
	Torso TorsoEstimator
	// Seed drives all visual randomness (grain, fold placement). Equal
	// seeds and inputs produce byte-identical output.
	Seed int64
}

// NewFallback creates a fallback compositor with the heuristic torso
// estimator.
func NewFallback(seed int64) *Fallback {
	return &Fallback{Torso: HeuristicTorso{}, Seed: seed}
}

// Render produces the synthesized composite as encoded JPEG bytes.
// It fails only when an input fails to decode.
func (f *Fallback) Render(person, garment []byte) ([]byte, error) {
	startTime := time.Now()

	personBuf, err := pixelops.Decode(person)
	if err != nil {
		return nil, fmt.Errorf("person image: %w", err)
	}
	garmentBuf, err := pixelops.Decode(garment)
	if err != nil {
		return nil, fmt.Errorf("garment image: %w", err)
	}

	rng := rand.New(rand.NewSource(f.Seed))

	// Base layer: person centered on a dark neutral canvas.
	dc := gg.NewContext(fallbackWidth, fallbackHeight)
	dc.SetRGB255(38, 38, 42)
	dc.Clear()

	personImg := imaging.Fit(personBuf.ToImage(), fallbackWidth, fallbackHeight, imaging.Lanczos)
	pw := personImg.Bounds().Dx()
	ph := personImg.Bounds().Dy()
	px := (fallbackWidth - pw) / 2
	py := (fallbackHeight - ph) / 2
	dc.DrawImage(personImg, px, py)

	torso := f.Torso.Estimate(image.Rect(px, py, px+pw, py+ph))

	// Prepare the drape region: mild blur softens body detail under the
	// garment layers.
	canvas := toRGBA(dc.Image())
	region := pixelops.FromImage(imaging.Blur(imaging.Crop(canvas, torso), 1.6))

	// Garment layers, coarse to fine: color burn carries fabric texture,
	// multiply lays down the base color, overlay restores highlights.
	garmentFit := imaging.Fill(garmentBuf.ToImage(), torso.Dx(), torso.Dy(), imaging.Center, imaging.Lanczos)
	layer := pixelops.FromImage(garmentFit)
	region = pixelops.Composite(region, layer, 0, 0, pixelops.BlendColorBurn, 0.25)
	region = pixelops.Composite(region, layer, 0, 0, pixelops.BlendMultiply, 0.75)
	region = pixelops.Composite(region, layer, 0, 0, pixelops.BlendOverlay, 0.30)

	// Paint the blended region back through a rounded-rectangle clip so the
	// drape edge does not read as a hard box.
	radius := float64(min(torso.Dx(), torso.Dy())) * 0.12
	dc.DrawRoundedRectangle(float64(torso.Min.X), float64(torso.Min.Y), float64(torso.Dx()), float64(torso.Dy()), radius)
	dc.Clip()
	dc.DrawImage(region.ToImage(), torso.Min.X, torso.Min.Y)
	dc.ResetClip()

	// Diagonal highlight/shadow pass approximates directional lighting.
	grad := gg.NewLinearGradient(0, 0, fallbackWidth, fallbackHeight)
	grad.AddColorStop(0, color.NRGBA{255, 255, 255, 46})
	grad.AddColorStop(0.5, color.NRGBA{0, 0, 0, 0})
	grad.AddColorStop(1, color.NRGBA{0, 0, 0, 56})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, fallbackWidth, fallbackHeight)
	dc.Fill()

	// Fabric grain: a seeded noise tile repeated across the frame at low
	// overlay opacity.
	base := pixelops.FromImage(toRGBA(dc.Image()))
	base = pixelops.Composite(base, tiledNoise(rng, fallbackWidth, fallbackHeight), 0, 0, pixelops.BlendOverlay, 0.08)

	rgba := base.ToImage()
	dc2 := gg.NewContextForRGBA(rgba)

	drawFolds(dc2, rng, torso)
	drawVignette(dc2)

	dc2.SetRGBA(1, 1, 1, 0.5)
	dc2.DrawStringAnchored("AI PREVIEW - not an actual fitting", fallbackWidth/2, fallbackHeight-28, 0.5, 0.5)

	out, err := pixelops.FromImage(rgba).Encode("jpeg", 0.85)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fallback composite: %w", err)
	}

	log.Info().
		Int("output_bytes", len(out)).
		Int64("seed", f.Seed).
		Dur("duration", time.Since(startTime)).
		Msg("Fallback composite rendered")

	return out, nil
}

// tiledNoise builds a full-frame grain layer by repeating one seeded
// 64x64 monochrome noise tile.
func tiledNoise(rng *rand.Rand, w, h int) *pixelops.Buffer {
	const tileSize = 64
	tile := make([]uint8, tileSize*tileSize)
	for i := range tile {
		tile[i] = uint8(112 + rng.Intn(32)) // centered near overlay-neutral 128
	}

	noise := pixelops.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := tile[(y%tileSize)*tileSize+(x%tileSize)]
			noise.Set(x, y, v, v, v, 255)
		}
	}
	return noise
}

// drawFolds paints a handful of randomly placed, randomly rotated
// linear-gradient strips over the torso to suggest fabric folds.
func drawFolds(dc *gg.Context, rng *rand.Rand, torso image.Rectangle) {
	count := 4 + rng.Intn(3)
	for i := 0; i < count; i++ {
		cx := float64(torso.Min.X) + rng.Float64()*float64(torso.Dx())
		cy := float64(torso.Min.Y) + float64(torso.Dy())*(0.25+rng.Float64()*0.5)
		length := float64(torso.Dy()) * (0.5 + rng.Float64()*0.35)
		width := 8 + rng.Float64()*14
		angle := (rng.Float64() - 0.5) * 0.9

		grad := gg.NewLinearGradient(cx-width/2, cy, cx+width/2, cy)
		grad.AddColorStop(0, color.NRGBA{255, 255, 255, 26})
		grad.AddColorStop(0.5, color.NRGBA{0, 0, 0, 0})
		grad.AddColorStop(1, color.NRGBA{0, 0, 0, 36})

		dc.Push()
		dc.RotateAbout(angle, cx, cy)
		dc.SetFillStyle(grad)
		dc.DrawRectangle(cx-width/2, cy-length/2, width, length)
		dc.Fill()
		dc.Pop()
	}
}

// drawVignette darkens the frame edges with a radial gradient to pull the
// eye toward the subject.
func drawVignette(dc *gg.Context) {
	cx := float64(fallbackWidth) / 2
	cy := float64(fallbackHeight) / 2
	outer := math.Hypot(cx, cy)

	grad := gg.NewRadialGradient(cx, cy, outer*0.55, cx, cy, outer)
	grad.AddColorStop(0, color.NRGBA{0, 0, 0, 0})
	grad.AddColorStop(1, color.NRGBA{0, 0, 0, 88})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, fallbackWidth, fallbackHeight)
	dc.Fill()
}

// toRGBA returns the image as *image.RGBA without copying when possible.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}
	return rgba
}
