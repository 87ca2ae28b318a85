package pipeline

import (
	"time"

	"github.com/fpang/virtual-tryon/internal/source"
)

// Method identifies which renderer produced a composite result, in
// decreasing fidelity order.
const (
	MethodRemote      = "remote"
	MethodFallback    = "fallback"
	MethodPlaceholder = "placeholder"
)

// Quality scores per method. The ordering remote > fallback > placeholder is
// a contract: callers sort and threshold on it.
const (
	scoreRemote      = 9.5
	scoreFallback    = 7.5
	scorePlaceholder = 6.0
)

// CompositeRequest identifies the two images to combine. Both references are
// caller-owned and resolved lazily by the pipeline.
type CompositeRequest struct {
	Person  source.Image
	Garment source.Image
}

// CompositeResult is the terminal artifact of one compositing request.
// Immutable once returned.
type CompositeResult struct {
	RequestID string

	// Image holds the encoded result; MIMEType says how it is encoded.
	Image    []byte
	MIMEType string

	ProcessingTime time.Duration

	// Success is true on every path; degradation is communicated through
	// Method and QualityScore, never through a failure.
	Success bool

	// Method is MethodRemote, MethodFallback, or MethodPlaceholder.
	Method string

	// FallbackReason explains the degradation when Method is not remote.
	FallbackReason string

	// PreprocessingApplied reports whether the remote compositor received
	// enhanced images rather than the raw sources.
	PreprocessingApplied bool

	// QualityScore is in [0, 10], ordered by Method.
	QualityScore float64
}
