package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoster_PostJSON(t *testing.T) {
	t.Run("sends json body", func(t *testing.T) {
		var got map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		p := NewPoster("test sink", srv.URL, 0, time.Second, nil)
		require.NoError(t, p.PostJSON(context.Background(), map[string]string{"k": "v"}))
		assert.Equal(t, "v", got["k"])
	})

	t.Run("retries then reports last error", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(" upstream down \n"))
		}))
		defer srv.Close()

		p := NewPoster("test sink", srv.URL, 1, time.Second, srv.Client())
		err := p.PostJSON(context.Background(), map[string]string{})
		require.Error(t, err)
		assert.Equal(t, "test sink 502 Bad Gateway: upstream down", err.Error())
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("cancellation stops the backoff", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		p := NewPoster("test sink", srv.URL, 5, time.Second, nil)
		p.HTTP.Transport = roundTripFunc(func(r *http.Request) (*http.Response, error) {
			cancel()
			return http.DefaultTransport.RoundTrip(r)
		})

		err := p.PostJSON(ctx, map[string]string{})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("unencodable document", func(t *testing.T) {
		p := NewPoster("test sink", "http://127.0.0.1:1", 0, 0, nil)
		err := p.PostJSON(context.Background(), map[string]any{"ch": make(chan int)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "encode test sink payload")
	})
}

func TestNewPoster_Defaults(t *testing.T) {
	p := NewPoster("x", "http://example.invalid", -3, 0, nil)
	assert.Equal(t, 0, p.Retries)
	require.NotNil(t, p.HTTP)
	assert.Equal(t, DefaultTimeout, p.HTTP.Timeout)
}

func TestFallback(t *testing.T) {
	assert.Equal(t, "dflt", Fallback("  ", "dflt"))
	assert.Equal(t, "v", Fallback("v", "dflt"))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
