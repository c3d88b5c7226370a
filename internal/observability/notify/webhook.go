package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a single delivery attempt when no client is supplied.
	DefaultTimeout = 5 * time.Second

	retryStep    = 200 * time.Millisecond
	maxErrorBody = 4 << 10
)

// Poster delivers JSON documents to one HTTP endpoint with bounded retries.
// Sinks embed it and only decide what document to send.
type Poster struct {
	Name     string
	Endpoint string
	Retries  int
	HTTP     *http.Client
}

// NewPoster fills in defaults. A nil client gets one bounded by timeout, or DefaultTimeout.
func NewPoster(name, endpoint string, retries int, timeout time.Duration, hc *http.Client) Poster {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	return Poster{Name: name, Endpoint: endpoint, Retries: max(retries, 0), HTTP: hc}
}

// PostJSON encodes doc once and posts it up to Retries+1 times, waiting 200ms, 400ms, ...
// between attempts. Context cancellation stops the wait and is returned as is.
func (p Poster) PostJSON(ctx context.Context, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", p.Name, err)
	}

	var lastErr error
	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, time.Duration(attempt)*retryStep); err != nil {
				return err
			}
		}
		if lastErr = p.post(ctx, body); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (p Poster) post(ctx context.Context, body []byte) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", p.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", p.Name, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close %s response body: %w", p.Name, closeErr))
		}
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			return fmt.Errorf("drain %s response body: %w", p.Name, err)
		}
		return nil
	}

	detail, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if readErr != nil {
		return fmt.Errorf("read %s error response: %w", p.Name, readErr)
	}
	return fmt.Errorf("%s %s: %s", p.Name, resp.Status, strings.TrimSpace(string(detail)))
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Fallback returns value unless it is blank.
func Fallback(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
