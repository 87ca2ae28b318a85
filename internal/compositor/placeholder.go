package compositor

import (
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/rs/zerolog/log"

	"github.com/fpang/virtual-tryon/internal/pixelops"
)

// Placeholder renders the last-resort result: a branded card telling the
// user the preview could not be generated. It takes no inputs and cannot
// fail; this is what keeps the pipeline's no-error guarantee honest.
type Placeholder struct{}

// Render returns the placeholder card as encoded PNG bytes.
func (Placeholder) Render() []byte {
	data, err := renderPlaceholderCard()
	if err != nil {
		// Should not happen for an in-memory render, but the contract is
		// unconditional, so fall back to the precomputed card.
		log.Error().Err(err).Msg("Placeholder render failed, using static card")
		return staticCard()
	}
	return data
}

func renderPlaceholderCard() ([]byte, error) {
	const w, h = fallbackWidth, fallbackHeight

	dc := gg.NewContext(w, h)

	// Vertical indigo-to-slate gradient background.
	bg := gg.NewLinearGradient(0, 0, 0, h)
	bg.AddColorStop(0, color.NRGBA{63, 81, 181, 255})
	bg.AddColorStop(1, color.NRGBA{38, 50, 56, 255})
	dc.SetFillStyle(bg)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	// Inset rounded frame.
	dc.SetRGBA(1, 1, 1, 0.35)
	dc.SetLineWidth(3)
	dc.DrawRoundedRectangle(32, 32, w-64, h-64, 24)
	dc.Stroke()

	drawHanger(dc, w/2, h*0.38, 110)

	dc.SetRGBA(1, 1, 1, 0.9)
	dc.DrawStringAnchored("Preview unavailable", w/2, h*0.58, 0.5, 0.5)
	dc.SetRGBA(1, 1, 1, 0.65)
	dc.DrawStringAnchored("We couldn't generate your try-on preview.", w/2, h*0.58+28, 0.5, 0.5)
	dc.DrawStringAnchored("Please try again in a few minutes.", w/2, h*0.58+48, 0.5, 0.5)

	return pixelops.FromImage(toRGBA(dc.Image())).Encode("png", 1)
}

// drawHanger sketches a clothes-hanger glyph: hook, shoulder triangle, bar.
func drawHanger(dc *gg.Context, cx, cy, size float64) {
	half := size / 2
	barY := cy + size*0.35

	dc.SetRGBA(1, 1, 1, 0.8)
	dc.SetLineWidth(5)

	// Hook.
	dc.DrawArc(cx, cy-size*0.32, size*0.12, 0, 4.2)
	dc.Stroke()

	// Shoulders down to the bar ends.
	dc.MoveTo(cx, cy-size*0.2)
	dc.LineTo(cx-half, barY)
	dc.LineTo(cx+half, barY)
	dc.LineTo(cx, cy-size*0.2)
	dc.Stroke()
}

var (
	staticCardOnce  sync.Once
	staticCardBytes []byte
)

// staticCard is a flat slate PNG encoded once. Encoding a solid in-memory
// image cannot fail, so this path is unconditional.
func staticCard() []byte {
	staticCardOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, 8, 8))
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 38, 50, 56, 255
		}
		staticCardBytes, _ = pixelops.FromImage(img).Encode("png", 1)
	})
	return staticCardBytes
}
