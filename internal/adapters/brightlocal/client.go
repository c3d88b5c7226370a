// Package brightlocal provides a status probe for BrightLocal citation-builder lookups.
package brightlocal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/target/citation-poller/internal/core"
	"github.com/target/citation-poller/internal/domain/lookup"
	apperrors "github.com/target/citation-poller/internal/errors"
)

const (
	// DefaultBaseURL is the citation-builder API root.
	DefaultBaseURL = "https://api.brightlocal.com/manage/v1/citation-builder"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5

	// maxErrorBody caps how much of an error response is kept for messages.
	maxErrorBody = 4 << 10
	// maxBody caps a status response.
	maxBody = 8 << 20
)

// Client queries lookup status for citation campaigns.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *rate.Limiter
}

var _ core.StatusProbe = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout replaces the HTTP client's timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d, Transport: c.httpClient.Transport}
		}
	}
}

// WithLogger sets a logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit. A burst below one uses requestsPerSecond.
func WithRateLimit(requestsPerSecond, burst int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond < 1 {
			return
		}
		if burst < 1 {
			burst = requestsPerSecond
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// NewClient creates a new citation-builder API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// APIError represents a non-success answer from the provider.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("brightlocal API error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Retryable reports whether the next firing may see a different answer.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// FetchStatus returns the current lookup snapshot for campaignID.
//
// Network failures, timeouts, 429 and 5xx answers are ErrCodeProviderUnavailable.
// Any other non-2xx answer or a body without lookup_status is ErrCodeProviderProtocol.
func (c *Client) FetchStatus(ctx context.Context, campaignID string) (lookup.Snapshot, error) {
	endpoint := c.baseURL + "/" + url.PathEscape(campaignID) + "/lookup"

	if err := c.limiter.Wait(ctx); err != nil {
		return lookup.Snapshot{}, apperrors.Wrap(err, apperrors.ErrCodeProviderUnavailable, "provider rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return lookup.Snapshot{}, apperrors.Wrap(err, apperrors.ErrCodeProviderProtocol, "build provider request")
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return lookup.Snapshot{}, apperrors.Wrap(err, apperrors.ErrCodeProviderUnavailable, "provider request failed")
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "provider status request",
		"campaign_id", campaignID,
		"status_code", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return lookup.Snapshot{}, c.statusError(resp, endpoint)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return lookup.Snapshot{}, apperrors.Wrap(err, apperrors.ErrCodeProviderUnavailable, "read provider response")
	}

	return decodeSnapshot(body)
}

func (c *Client) statusError(resp *http.Response, endpoint string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
		Endpoint:   endpoint,
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	if apiErr.Retryable() {
		return apperrors.Wrap(apiErr, apperrors.ErrCodeProviderUnavailable, "provider unavailable")
	}
	return apperrors.Wrap(apiErr, apperrors.ErrCodeProviderProtocol, "provider rejected status request")
}

func decodeSnapshot(body []byte) (lookup.Snapshot, error) {
	var snap lookup.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return lookup.Snapshot{}, apperrors.Wrap(err, apperrors.ErrCodeProviderProtocol,
				"invalid provider response: not JSON")
		}
		return lookup.Snapshot{}, apperrors.Wrap(err, apperrors.ErrCodeProviderProtocol, "invalid provider response")
	}
	snap.Status = lookup.Status(strings.TrimSpace(string(snap.Status)))
	if snap.Status == "" {
		return lookup.Snapshot{}, apperrors.ProviderProtocolf("invalid provider response: missing lookup_status")
	}
	return snap, nil
}
