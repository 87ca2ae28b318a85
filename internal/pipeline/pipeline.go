// Package pipeline orchestrates the hybrid compositing flow: validate the
// sources, consult the circuit breaker, preprocess, try the remote
// compositor with bounded retries, and degrade through the local fallback
// renderer down to the placeholder. ProcessComposite always returns a usable
// result; there is no error path visible to the caller.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fpang/virtual-tryon/internal/compositor"
	"github.com/fpang/virtual-tryon/internal/metrics"
	"github.com/fpang/virtual-tryon/internal/preprocess"
	"github.com/fpang/virtual-tryon/internal/source"
)

// breakerSkipReason is the user-facing reason when the circuit is open.
const breakerSkipReason = "service temporarily unavailable due to previous failures"

// RemoteCompositor is the remote garment-swap boundary.
type RemoteCompositor interface {
	Composite(ctx context.Context, person, garment []byte) (*compositor.RemoteResult, error)
}

// FallbackRenderer synthesizes a composite locally.
type FallbackRenderer interface {
	Render(person, garment []byte) ([]byte, error)
}

// PlaceholderRenderer produces the last-resort card. It cannot fail.
type PlaceholderRenderer interface {
	Render() []byte
}

// Resolver turns image references into encoded bytes.
type Resolver interface {
	Resolve(ctx context.Context, img source.Image) ([]byte, error)
}

// Config bounds the remote compositor interaction and source validation.
type Config struct {
	// RemoteAttempts is the total number of remote calls per request.
	RemoteAttempts int
	// AttemptTimeout bounds each individual remote call.
	AttemptTimeout time.Duration
	// RetryInterval is the fixed wait between attempts.
	RetryInterval time.Duration

	MinImageBytes int
	MaxImageBytes int
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		RemoteAttempts: 2,
		AttemptTimeout: 90 * time.Second,
		RetryInterval:  10 * time.Second,
		MinImageBytes:  source.DefaultMinBytes,
		MaxImageBytes:  source.DefaultMaxBytes,
	}
}

// Pipeline is the orchestrator. Construct once, share across requests; the
// breaker is the only mutable state and it serializes itself.
type Pipeline struct {
	cfg         Config
	resolver    Resolver
	remote      RemoteCompositor
	fallback    FallbackRenderer
	placeholder PlaceholderRenderer
	breaker     *Breaker
}

// New assembles a pipeline from its collaborators.
func New(cfg Config, resolver Resolver, remote RemoteCompositor, fallback FallbackRenderer, placeholder PlaceholderRenderer) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		resolver:    resolver,
		remote:      remote,
		fallback:    fallback,
		placeholder: placeholder,
		breaker:     NewBreaker(),
	}
}

// ProcessComposite runs one request through the full flow and always returns
// a result. Stage order is fixed: validate, breaker check, preprocess,
// remote with retries, fallback, placeholder.
func (p *Pipeline) ProcessComposite(ctx context.Context, req CompositeRequest) *CompositeResult {
	start := time.Now()
	requestID := uuid.NewString()
	logger := log.With().Str("request_id", requestID).Logger()

	result := p.run(ctx, req, logger)
	result.RequestID = requestID
	result.Success = true
	result.ProcessingTime = time.Since(start)

	logger.Info().
		Str("method", result.Method).
		Float64("quality_score", result.QualityScore).
		Str("fallback_reason", result.FallbackReason).
		Dur("duration", result.ProcessingTime).
		Msg("Composite request complete")

	p.emitMetrics(result)
	return result
}

func (p *Pipeline) run(ctx context.Context, req CompositeRequest, logger zerolog.Logger) *CompositeResult {
	// Stage 1: resolve and validate both sources. Any failure short-circuits
	// to the fallback path with whatever bytes resolved.
	personRaw, garmentRaw, err := p.resolveSources(ctx, req)
	if err != nil {
		logger.Warn().Err(err).Msg("Source validation failed, skipping remote compositor")
		return p.degrade(fmt.Sprintf("validation failed: %v", err), personRaw, garmentRaw, logger)
	}

	// Stage 2: circuit breaker.
	if p.breaker.ShouldSkip() {
		logger.Warn().Int("consecutive_failures", p.breaker.Failures()).Msg("Circuit open, skipping remote compositor")
		return p.degrade(breakerSkipReason, personRaw, garmentRaw, logger)
	}

	// Stage 3: preprocess. Failures are non-fatal; the raw bytes go through.
	personBytes, personOK := p.preprocessOne(personRaw, preprocess.SubjectPerson, logger)
	garmentBytes, garmentOK := p.preprocessOne(garmentRaw, preprocess.SubjectGarment, logger)
	preprocessed := personOK && garmentOK

	// Stage 4: remote compositor with bounded retries.
	remoteResult, err := p.callRemote(ctx, personBytes, garmentBytes)
	if err != nil {
		p.breaker.RecordFailure()
		logger.Warn().Err(err).Msg("Remote compositing failed, degrading to fallback")
		return p.degrade(fmt.Sprintf("remote compositing failed: %v", err), personRaw, garmentRaw, logger)
	}
	p.breaker.RecordSuccess()

	// The remote service returns a URL; fetch the actual bytes through the
	// regular source path so data URIs and plain URLs both work.
	resultBytes, err := p.resolver.Resolve(ctx, source.Image{Ref: remoteResult.ResultImageURL})
	if err != nil {
		logger.Warn().Err(err).Str("url", remoteResult.ResultImageURL).Msg("Failed to fetch remote result, degrading to fallback")
		return p.degrade(fmt.Sprintf("remote result unreachable: %v", err), personRaw, garmentRaw, logger)
	}

	return &CompositeResult{
		Image:                resultBytes,
		MIMEType:             http.DetectContentType(resultBytes),
		Method:               MethodRemote,
		QualityScore:         scoreRemote,
		PreprocessingApplied: preprocessed,
	}
}

// resolveSources fetches and validates both images. It returns whatever
// bytes it managed to resolve even on error, so the fallback path has
// material to work with.
func (p *Pipeline) resolveSources(ctx context.Context, req CompositeRequest) (person, garment []byte, err error) {
	person, perr := p.resolveOne(ctx, req.Person)
	garment, gerr := p.resolveOne(ctx, req.Garment)
	if perr != nil {
		return person, garment, fmt.Errorf("person image: %w", perr)
	}
	if gerr != nil {
		return person, garment, fmt.Errorf("garment image: %w", gerr)
	}
	return person, garment, nil
}

func (p *Pipeline) resolveOne(ctx context.Context, img source.Image) ([]byte, error) {
	data, err := p.resolver.Resolve(ctx, img)
	if err != nil {
		return nil, err
	}
	if _, err := source.Validate(data, p.cfg.MinImageBytes, p.cfg.MaxImageBytes); err != nil {
		return data, err
	}
	source.InspectMetadata(data)
	return data, nil
}

// preprocessOne runs the enhancement recipe, falling back to the raw bytes
// when it fails.
func (p *Pipeline) preprocessOne(raw []byte, subject preprocess.Subject, logger zerolog.Logger) ([]byte, bool) {
	res, err := preprocess.Run(raw, subject, preprocess.DefaultOptions(subject))
	if err != nil {
		logger.Warn().Err(err).Str("subject", string(subject)).Msg("Preprocessing failed, using original image")
		return raw, false
	}
	return res.Encoded, true
}

// callRemote drives the remote compositor with per-attempt timeouts and a
// constant retry interval. A non-retryable remote error aborts immediately.
func (p *Pipeline) callRemote(ctx context.Context, person, garment []byte) (*compositor.RemoteResult, error) {
	attempts := p.cfg.RemoteAttempts
	if attempts < 1 {
		attempts = 1
	}

	operation := func() (*compositor.RemoteResult, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.AttemptTimeout)
		defer cancel()

		result, err := p.remote.Composite(attemptCtx, person, garment)
		if err != nil {
			var rerr *compositor.RemoteError
			if errors.As(err, &rerr) && !rerr.Retryable() {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return result, nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.cfg.RetryInterval), uint64(attempts-1)),
		ctx,
	)
	return backoff.RetryWithData(operation, policy)
}

// degrade runs the fallback renderer and, when that fails too, the
// placeholder. It is the tail of every non-remote path.
func (p *Pipeline) degrade(reason string, person, garment []byte, logger zerolog.Logger) *CompositeResult {
	img, err := p.fallback.Render(person, garment)
	if err != nil {
		logger.Warn().Err(err).Msg("Fallback rendering failed, serving placeholder")
		return &CompositeResult{
			Image:          p.placeholder.Render(),
			MIMEType:       "image/png",
			Method:         MethodPlaceholder,
			QualityScore:   scorePlaceholder,
			FallbackReason: reason + " (fallback also failed)",
		}
	}
	return &CompositeResult{
		Image:          img,
		MIMEType:       "image/jpeg",
		Method:         MethodFallback,
		QualityScore:   scoreFallback,
		FallbackReason: reason,
	}
}

func (p *Pipeline) emitMetrics(result *CompositeResult) {
	rec := metrics.New().
		Dimension("Method", result.Method).
		Metric("LatencyMs", float64(result.ProcessingTime.Milliseconds()), metrics.UnitMilliseconds).
		Metric("ResultBytes", float64(len(result.Image)), metrics.UnitBytes).
		Count("CompositeCount").
		Property("requestId", result.RequestID).
		Property("qualityScore", result.QualityScore)
	if result.Method != MethodRemote {
		rec.Count("DegradedCount").Property("fallbackReason", result.FallbackReason)
	}
	rec.Flush()
}
