package compositor

import "image"

// TorsoEstimator locates the torso region within the bounds a person image
// occupies on the canvas. The pipeline and fallback renderer only depend on
// this interface, so a real pose-estimation backend can replace the heuristic
// without touching either.
type TorsoEstimator interface {
	Estimate(personBounds image.Rectangle) image.Rectangle
}

// HeuristicTorso estimates the torso as a fixed fractional rectangle of the
// person bounds: x in [25%, 75%], y in [20%, 60%]. It is a stand-in for pose
// detection, tuned for upright, roughly centered single-person photos.
type HeuristicTorso struct{}

// Estimate returns the fractional torso rectangle.
func (HeuristicTorso) Estimate(b image.Rectangle) image.Rectangle {
	w := b.Dx()
	h := b.Dy()
	return image.Rect(
		b.Min.X+w/4,
		b.Min.Y+h/5,
		b.Min.X+w*3/4,
		b.Min.Y+h*3/5,
	)
}
