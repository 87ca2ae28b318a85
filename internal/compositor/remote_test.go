package compositor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// testPNG encodes a small solid-color PNG for use as request payload.
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{180, 60, 60, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestCompositeSuccess(t *testing.T) {
	var gotReq compositeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/composite" {
			t.Errorf("path = %s, want /v1/composite", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q, want Bearer test-key", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(compositeResponse{
			ResultImageURL:   "https://cdn.example.com/results/abc.png",
			ProcessingTimeMs: 12500,
		})
	}))
	defer server.Close()

	client := NewRemoteClient(server.URL, "test-key")
	result, err := client.Composite(context.Background(), testPNG(t), testPNG(t))
	if err != nil {
		t.Fatalf("Composite() error = %v", err)
	}

	if result.ResultImageURL != "https://cdn.example.com/results/abc.png" {
		t.Errorf("result URL = %q", result.ResultImageURL)
	}
	if result.ProcessingTime != 12500*time.Millisecond {
		t.Errorf("processing time = %v, want 12.5s", result.ProcessingTime)
	}
	if gotReq.PersonImage.MIMEType != "image/png" {
		t.Errorf("person MIME = %s, want image/png", gotReq.PersonImage.MIMEType)
	}
	if gotReq.Instruction == "" {
		t.Error("request carried no instruction")
	}
}

func TestCompositeErrorCategories(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantKind   string
		wantsRetry bool
	}{
		{"bad request", http.StatusBadRequest, KindClient, false},
		{"unauthorized", http.StatusUnauthorized, KindClient, false},
		{"rate limited", http.StatusTooManyRequests, KindClient, false},
		{"internal error", http.StatusInternalServerError, KindService, true},
		{"bad gateway", http.StatusBadGateway, KindService, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer server.Close()

			client := NewRemoteClient(server.URL, "")
			_, err := client.Composite(context.Background(), testPNG(t), testPNG(t))

			var rerr *RemoteError
			if !errors.As(err, &rerr) {
				t.Fatalf("error = %v, want *RemoteError", err)
			}
			if rerr.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", rerr.Kind, tt.wantKind)
			}
			if rerr.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", rerr.StatusCode, tt.status)
			}
			if rerr.Retryable() != tt.wantsRetry {
				t.Errorf("Retryable() = %v, want %v", rerr.Retryable(), tt.wantsRetry)
			}
		})
	}
}

func TestCompositeTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server can detect the client disconnect;
		// otherwise r.Context() is never canceled and Close deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewRemoteClient(server.URL, "")
	_, err := client.Composite(ctx, testPNG(t), testPNG(t))

	var rerr *RemoteError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v, want *RemoteError", err)
	}
	if rerr.Kind != KindTimeout {
		t.Errorf("kind = %s, want %s", rerr.Kind, KindTimeout)
	}
	if !rerr.Retryable() {
		t.Error("timeouts must be retryable")
	}
}

func TestCompositeAPIErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(compositeResponse{
			Error: &apiError{Code: 503, Status: "UNAVAILABLE", Message: "model overloaded"},
		})
	}))
	defer server.Close()

	client := NewRemoteClient(server.URL, "")
	_, err := client.Composite(context.Background(), testPNG(t), testPNG(t))

	var rerr *RemoteError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v, want *RemoteError", err)
	}
	if rerr.Kind != KindService {
		t.Errorf("kind = %s, want %s", rerr.Kind, KindService)
	}
	if rerr.Message != "model overloaded" {
		t.Errorf("message = %q", rerr.Message)
	}
}

func TestCompositeMissingResultURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(compositeResponse{ProcessingTimeMs: 100})
	}))
	defer server.Close()

	client := NewRemoteClient(server.URL, "")
	_, err := client.Composite(context.Background(), testPNG(t), testPNG(t))

	var rerr *RemoteError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v, want *RemoteError", err)
	}
	if rerr.Kind != KindService {
		t.Errorf("kind = %s, want %s", rerr.Kind, KindService)
	}
}
