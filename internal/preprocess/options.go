// Package preprocess applies a fixed-order recipe of pixel enhancements to a
// single source image before it is handed to the remote compositor. Each step
// is optional per Options; the result carries an ordered log of what ran.
package preprocess

import "fmt"

// Subject identifies what the image depicts; defaults differ per subject.
type Subject string

const (
	SubjectPerson  Subject = "person"
	SubjectGarment Subject = "garment"
)

// Options configures the preprocessing recipe for one image.
type Options struct {
	// TargetSize is the long-edge size of the output canvas in pixels.
	TargetSize int
	// Quality is the output encoding quality in [0, 1] (JPEG only).
	Quality float64

	EnhanceContrast   bool
	RemoveBackground  bool
	NormalizeExposure bool
	Sharpen           bool
	OptimizeColors    bool
}

// DefaultOptions returns the standard recipe for a subject type. Background
// removal only makes sense for garment shots on a studio background; running
// it on a person photo would eat skin highlights.
func DefaultOptions(subject Subject) Options {
	opts := Options{
		TargetSize:        1024,
		Quality:           0.85,
		EnhanceContrast:   true,
		NormalizeExposure: true,
		Sharpen:           true,
		OptimizeColors:    true,
	}
	if subject == SubjectGarment {
		opts.RemoveBackground = true
	}
	return opts
}

// Error wraps a failure inside the preprocessing recipe with the step that
// caused it. The orchestrator treats it as non-fatal and falls back to the
// unprocessed original.
type Error struct {
	Step string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("preprocessing failed at %s: %v", e.Step, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
