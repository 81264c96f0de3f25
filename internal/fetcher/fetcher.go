// Package fetcher retrieves raw JSON payloads from upstream API endpoints.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (Linux; Android 11; Pixel 5) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/122.0.0.0 Mobile Safari/537.36"

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Capture is one fetched response, success or not. Non-2xx responses are
// still captures: the raw sink records every response body the scraper
// sees.
type Capture struct {
	SourceURL  string
	Body       []byte
	HTTPStatus int
	CapturedAt time.Time
}

// Fetcher downloads payloads from endpoint URLs.
type Fetcher struct {
	client    HTTPClient
	userAgent string
}

// New creates a Fetcher with the given HTTP client.
func New(client HTTPClient) *Fetcher {
	return &Fetcher{
		client:    client,
		userAgent: defaultUserAgent,
	}
}

// SetUserAgent overrides the User-Agent header sent upstream.
func (f *Fetcher) SetUserAgent(ua string) {
	if ua != "" {
		f.userAgent = ua
	}
}

// Fetch downloads one endpoint. It fails only on transport or read
// errors; HTTP error statuses come back as a Capture so the caller can
// still record them.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Capture, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Capture{
		SourceURL:  url,
		Body:       body,
		HTTPStatus: resp.StatusCode,
		CapturedAt: time.Now().UTC(),
	}, nil
}
