// Package relay exposes read-only endpoints mirroring a subset of the
// upstream API, forwarding GET requests through an authorized egress
// proxy with fixed headers injected. Payloads fetched through the relay
// are indistinguishable from directly captured ones.
package relay

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// InjectedHeaders are sent upstream on every forwarded request.
var InjectedHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Linux; Android 11; Pixel 5) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/122.0.0.0 Mobile Safari/537.36",
	"Accept":          "application/json",
	"Accept-Language": "hu-HU,hu;q=0.9,en;q=0.6",
}

// Handler forwards API requests to the upstream host.
type Handler struct {
	upstream *url.URL
	client   *http.Client
	log      *slog.Logger
}

// New creates a Handler forwarding to upstreamBase. If proxyURL is
// non-empty, all upstream traffic egresses through it.
func New(upstreamBase, proxyURL string, log *slog.Logger) (*Handler, error) {
	upstream, err := url.Parse(upstreamBase)
	if err != nil {
		return nil, fmt.Errorf("parse upstream base: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		proxy, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	return &Handler{
		upstream: upstream,
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		log: log,
	}, nil
}

// NewServer creates the gin engine with all relay routes configured.
func NewServer(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", h.Health)
	r.GET("/api/*upstreamPath", h.Forward)
	r.GET("/sport/*upstreamPath", h.Forward)

	return r
}

// Health reports relay liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "upstream": h.upstream.Host})
}

// Forward proxies one GET request to the upstream API. The upstream
// status code is returned verbatim on upstream errors; non-JSON upstream
// content becomes 502 and transport failures become 500.
func (h *Handler) Forward(c *gin.Context) {
	target := *h.upstream
	target.Path = c.Request.URL.Path
	target.RawQuery = c.Request.URL.RawQuery

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "build upstream request"})
		return
	}
	for k, v := range InjectedHeaders {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.log.Error("upstream request", "url", target.String(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upstream unreachable"})
		return
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		h.log.Error("read upstream body", "url", target.String(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read upstream body"})
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode >= http.StatusBadRequest {
		c.Data(resp.StatusCode, contentType, body)
		return
	}
	if !strings.Contains(strings.ToLower(contentType), "json") {
		h.log.Warn("non-json upstream response", "url", target.String(), "content_type", contentType)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream returned non-JSON content"})
		return
	}

	c.Data(resp.StatusCode, "application/json", body)
}
