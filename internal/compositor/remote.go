// Package compositor contains the three renderers the pipeline can draw a
// try-on result from, in decreasing fidelity order: the remote AI compositor,
// the local layered-blend fallback, and the static placeholder.
package compositor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Remote failure categories. Client errors are never retried; service and
// timeout errors are transient and feed the circuit breaker.
const (
	KindClient  = "client"
	KindService = "service"
	KindTimeout = "timeout"
)

// RemoteError is a categorized failure from the remote compositor boundary.
type RemoteError struct {
	Kind       string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote compositor %s error (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote compositor %s error: %s", e.Kind, e.Message)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Retryable reports whether a retry could plausibly succeed.
func (e *RemoteError) Retryable() bool { return e.Kind != KindClient }

// RemoteResult is the successful outcome of one remote compositing call.
type RemoteResult struct {
	// ResultImageURL points at the composited image; the caller fetches it
	// through the regular source path.
	ResultImageURL string
	// ProcessingTime is the server-reported compositing duration.
	ProcessingTime time.Duration
}

// compositeInstruction is the fixed editing instruction sent with every
// request. The remote service's prompt/model internals are its own business;
// this is the whole of our side of the contract.
const compositeInstruction = `Render the person from the first image wearing the garment from the second image.
Preserve the person's pose, body shape, face, and the scene lighting.
Drape the garment naturally with realistic fabric folds and shading.
Return a single photorealistic result image.`

// RemoteClient calls the remote garment-swap service over REST.
type RemoteClient struct {
	baseURL    string
	apiKey     string
	targetSize int
	quality    float64
	httpClient *http.Client
}

// NewRemoteClient creates a client for the remote compositor.
// The transport timeout is deliberately generous; per-attempt deadlines are
// the orchestrator's job and arrive through the context.
func NewRemoteClient(baseURL, apiKey string) *RemoteClient {
	return &RemoteClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		targetSize: 1024,
		quality:    0.9,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // compositing can take 10-60s
		},
	}
}

// --- REST API request/response types ---

type compositeRequest struct {
	PersonImage  inlineImage `json:"personImage"`
	GarmentImage inlineImage `json:"garmentImage"`
	Instruction  string      `json:"instruction"`
	TargetSize   int         `json:"targetSize"`
	Quality      float64     `json:"quality"`
}

type inlineImage struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

type compositeResponse struct {
	ResultImageURL   string    `json:"resultImageUrl"`
	ProcessingTimeMs int64     `json:"processingTimeMs"`
	Error            *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Composite sends both images to the remote service and returns the URL of
// the composited result. Failures are always *RemoteError, categorized by
// HTTP status class or transport condition.
func (c *RemoteClient) Composite(ctx context.Context, person, garment []byte) (*RemoteResult, error) {
	startTime := time.Now()
	log.Info().
		Int("person_bytes", len(person)).
		Int("garment_bytes", len(garment)).
		Msg("Sending images to remote compositor")

	req := compositeRequest{
		PersonImage: inlineImage{
			MIMEType: http.DetectContentType(person),
			Data:     base64.StdEncoding.EncodeToString(person),
		},
		GarmentImage: inlineImage{
			MIMEType: http.DetectContentType(garment),
			Data:     base64.StdEncoding.EncodeToString(garment),
		},
		Instruction: compositeInstruction,
		TargetSize:  c.targetSize,
		Quality:     c.quality,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &RemoteError{Kind: KindClient, Message: "failed to marshal request", Err: err}
	}

	url := c.baseURL + "/v1/composite"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &RemoteError{Kind: KindClient, Message: "failed to create request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, categorizeTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{Kind: KindService, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		kind := KindService
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			kind = KindClient
		}
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", truncateString(string(respBody), 500)).
			Msg("Remote compositor returned error")
		return nil, &RemoteError{
			Kind:       kind,
			StatusCode: resp.StatusCode,
			Message:    truncateString(string(respBody), 200),
		}
	}

	var parsed compositeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &RemoteError{Kind: KindService, Message: "failed to parse response", Err: err}
	}
	if parsed.Error != nil {
		return nil, &RemoteError{
			Kind:       KindService,
			StatusCode: parsed.Error.Code,
			Message:    parsed.Error.Message,
		}
	}
	if parsed.ResultImageURL == "" {
		return nil, &RemoteError{Kind: KindService, Message: "response carried no result image URL"}
	}

	log.Info().
		Str("result_url", parsed.ResultImageURL).
		Int64("server_ms", parsed.ProcessingTimeMs).
		Dur("duration", time.Since(startTime)).
		Msg("Remote compositing complete")

	return &RemoteResult{
		ResultImageURL: parsed.ResultImageURL,
		ProcessingTime: time.Duration(parsed.ProcessingTimeMs) * time.Millisecond,
	}, nil
}

// categorizeTransportError maps a transport failure to a RemoteError kind:
// deadline and net timeouts become KindTimeout, everything else KindService.
func categorizeTransportError(err error) *RemoteError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &RemoteError{Kind: KindTimeout, Message: "compositor call exceeded deadline", Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &RemoteError{Kind: KindTimeout, Message: "compositor call timed out", Err: err}
	}
	return &RemoteError{Kind: KindService, Message: "request failed", Err: err}
}

// truncateString truncates a string to maxLen, appending "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
