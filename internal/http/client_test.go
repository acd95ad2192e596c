package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	outcomes []string
}

func (r *recordingObserver) FetchAttempt(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

func newTestClient(opts ...Option) (*Client, *[]time.Duration) {
	c := NewClient(opts...)
	var delays []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return c, &delays
}

func TestClient_Fetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, defaultUserAgent, r.Header.Get("User-Agent"))
		assert.Contains(t, r.Header.Get("Accept"), "application/rss+xml")
		_, _ = w.Write([]byte(`<rss><channel><title>x</title></channel></rss>`))
	}))
	defer srv.Close()

	c, _ := newTestClient()
	body, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<channel>")
}

func TestClient_Fetch_Classification(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantKind     ErrorKind
		wantAttempts int32
	}{
		{"not found is not retried", http.StatusNotFound, "", KindClientError, 1},
		{"forbidden is not retried", http.StatusForbidden, "", KindClientError, 1},
		{"rate limited is retried", http.StatusTooManyRequests, "", KindRateLimited, 3},
		{"server error is retried", http.StatusBadGateway, "", KindServerError, 3},
		{"empty body is invalid format", http.StatusOK, "   ", KindInvalidFormat, 1},
		{"json body is invalid format", http.StatusOK, `{"status":"ok"}`, KindInvalidFormat, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&hits, 1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, _ := newTestClient()
			_, err := c.Fetch(context.Background(), srv.URL)
			require.Error(t, err)

			var fe *FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.wantKind, fe.Kind)
			if tt.status != http.StatusOK {
				assert.Equal(t, tt.status, fe.StatusCode)
			}
			assert.Equal(t, tt.wantAttempts, atomic.LoadInt32(&hits))
		})
	}
}

func TestClient_RetryBackoff(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`<rss/>`))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c, delays := newTestClient(WithObserver(obs))
	_, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *delays)
	assert.Equal(t, []string{"server_error", "server_error", "ok"}, obs.outcomes)
}

func TestClient_RetryAfterHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, delays := newTestClient(WithRetryPolicy(RetryPolicy{Attempts: 2, BaseDelay: time.Second, Multiplier: 2}))
	_, err := c.Fetch(context.Background(), srv.URL)
	require.True(t, IsKind(err, KindRateLimited))
	assert.Equal(t, []time.Duration{7 * time.Second}, *delays)
}

func TestClient_RetryAfterClamped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "86400")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tests := []struct {
		name   string
		policy RetryPolicy
		want   []time.Duration
	}{
		{"default", DefaultRetryPolicy(), []time.Duration{30 * time.Second, 30 * time.Second}},
		{"explicit max", RetryPolicy{Attempts: 2, BaseDelay: time.Second, Multiplier: 2, MaxDelay: 5 * time.Second}, []time.Duration{5 * time.Second}},
		{"unset max", RetryPolicy{Attempts: 2, BaseDelay: time.Second, Multiplier: 2}, []time.Duration{30 * time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, delays := newTestClient(WithRetryPolicy(tt.policy))
			_, err := c.Fetch(context.Background(), srv.URL)
			require.True(t, IsKind(err, KindRateLimited))
			assert.Equal(t, tt.want, *delays)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, delays := newTestClient(WithTimeout(20 * time.Millisecond))
	_, err := c.Fetch(context.Background(), srv.URL)

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindTimeout, kind)
	assert.Len(t, *delays, 2, "timeouts are retried under the standard policy")
}

func TestClient_LargeFeedTimeout(t *testing.T) {
	c := NewClient(WithTimeout(time.Second), WithLargeFeedTimeout(time.Minute))
	c.MarkLarge("https://example.com/big.xml")

	assert.Equal(t, time.Minute, c.timeoutFor("https://example.com/big.xml"))
	assert.Equal(t, time.Second, c.timeoutFor("https://example.com/small.xml"))
}

func TestClient_Get_NoFormatCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Auth-Key"))
		_, _ = w.Write([]byte(`{"chapters":[]}`))
	}))
	defer srv.Close()

	c, _ := newTestClient()
	header := http.Header{}
	header.Set("X-Auth-Key", "secret")
	body, err := c.Get(context.Background(), srv.URL, header)
	require.NoError(t, err)
	assert.JSONEq(t, `{"chapters":[]}`, string(body))
}

func TestClient_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, _ := newTestClient()
	_, err := c.Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, time.Second, p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
	assert.Equal(t, 30*time.Second, p.Delay(10))
}

func TestLooksLikeXML(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{`<rss></rss>`, true},
		{"  \n<?xml version=\"1.0\"?><rss/>", true},
		{"", false},
		{"   ", false},
		{"plain text", false},
		{"<", false},
		{"<>", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := looksLikeXML([]byte(tt.input)); got != tt.want {
				t.Errorf("looksLikeXML(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
