// Package source resolves and validates the caller-provided image references
// that enter the compositing pipeline. A reference can be an http(s) URL, an
// inline data URI, or a local file path; the pipeline only ever reads the
// resolved bytes, it never owns or mutates the source.
package source

import "fmt"

// Default size bounds for a resolved source image, in encoded bytes.
// Anything below the floor is unlikely to survive compositing at useful
// quality; anything above the ceiling is rejected before decode work.
const (
	DefaultMinBytes = 50 << 10 // 50 KB
	DefaultMaxBytes = 10 << 20 // 10 MB
)

// Validation failure categories.
const (
	ErrTypeMissing     = "missing"
	ErrTypeTooSmall    = "too_small"
	ErrTypeTooLarge    = "too_large"
	ErrTypeUndecodable = "undecodable"
	ErrTypeUnreachable = "unreachable"
)

// ValidationError describes why a source image was rejected. Type is one of
// the ErrType* constants so callers can dispatch without string matching.
type ValidationError struct {
	Type    string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Image is an opaque reference to a caller-owned image. Immutable.
type Image struct {
	// Ref is an http(s) URL, a data URI, or a local file path.
	Ref string
}

// IsZero reports whether the reference is absent.
func (img Image) IsZero() bool { return img.Ref == "" }
