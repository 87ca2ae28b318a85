package source

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Fetcher resolves image references into raw encoded bytes.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a Fetcher with a bounded HTTP client. Image hosts are
// expected to respond well inside this window; remote compositor results are
// fetched through the same path.
func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Resolve returns the encoded bytes behind an image reference.
// Dispatches on the reference shape: data URI, http(s) URL, or file path.
func (f *Fetcher) Resolve(ctx context.Context, img Image) ([]byte, error) {
	if img.IsZero() {
		return nil, &ValidationError{Type: ErrTypeMissing, Message: "image reference is missing"}
	}

	switch {
	case strings.HasPrefix(img.Ref, "data:"):
		return decodeDataURI(img.Ref)
	case strings.HasPrefix(img.Ref, "http://"), strings.HasPrefix(img.Ref, "https://"):
		return f.fetchURL(ctx, img.Ref)
	default:
		data, err := os.ReadFile(img.Ref)
		if err != nil {
			return nil, &ValidationError{Type: ErrTypeUnreachable, Message: fmt.Sprintf("failed to read file %s", img.Ref), Err: err}
		}
		return data, nil
	}
}

// fetchURL performs a plain GET and reads at most DefaultMaxBytes+1 bytes so
// oversized responses are caught without buffering them fully.
func (f *Fetcher) fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &ValidationError{Type: ErrTypeUnreachable, Message: "failed to build image request", Err: err}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &ValidationError{Type: ErrTypeUnreachable, Message: fmt.Sprintf("failed to fetch %s", url), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ValidationError{Type: ErrTypeUnreachable, Message: fmt.Sprintf("image host returned status %d for %s", resp.StatusCode, url)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, DefaultMaxBytes+1))
	if err != nil {
		return nil, &ValidationError{Type: ErrTypeUnreachable, Message: "failed to read image body", Err: err}
	}

	log.Debug().
		Str("url", url).
		Int("bytes", len(data)).
		Msg("Resolved remote image source")

	return data, nil
}

// decodeDataURI extracts the payload of a base64 data URI
// (data:image/png;base64,....).
func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, &ValidationError{Type: ErrTypeUndecodable, Message: "malformed data URI: no payload separator"}
	}
	meta, payload := uri[:comma], uri[comma+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, &ValidationError{Type: ErrTypeUndecodable, Message: "data URI payload must be base64 encoded"}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &ValidationError{Type: ErrTypeUndecodable, Message: "failed to decode data URI payload", Err: err}
	}
	return data, nil
}
