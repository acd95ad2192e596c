package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultUserAgent    = "feedmusic/1.0"
	defaultTimeout      = 30 * time.Second
	defaultLargeTimeout = 2 * time.Minute
	feedAccept          = "application/rss+xml, application/xml;q=0.9, text/xml;q=0.9, */*;q=0.5"
	maxBodySize         = 64 << 20
	defaultMaxDelay     = 30 * time.Second
)

// RetryPolicy is an exponential backoff policy.
//
// Attempt n (0-indexed) that fails with a retryable error waits
// BaseDelay * Multiplier^n before the next attempt. No wait, including one
// requested by a Retry-After header, exceeds MaxDelay (30s when unset).
type RetryPolicy struct {
	Attempts   int
	BaseDelay  time.Duration
	Multiplier float64
	MaxDelay   time.Duration
}

// DefaultRetryPolicy returns 3 attempts, 1s base delay, multiplier 2.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:   3,
		BaseDelay:  time.Second,
		Multiplier: 2,
		MaxDelay:   defaultMaxDelay,
	}
}

// Delay returns the wait after the given failed attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	mult := p.Multiplier
	if mult <= 0 {
		mult = 1
	}
	return p.clamp(time.Duration(float64(p.BaseDelay) * math.Pow(mult, float64(attempt))))
}

// wait returns the delay after attempt, honoring a server-requested
// retryAfter up to MaxDelay.
func (p RetryPolicy) wait(attempt int, retryAfter time.Duration) time.Duration {
	return p.clamp(max(p.Delay(attempt), retryAfter))
}

func (p RetryPolicy) clamp(d time.Duration) time.Duration {
	limit := p.MaxDelay
	if limit <= 0 {
		limit = defaultMaxDelay
	}
	if d > limit || d < 0 {
		return limit
	}
	return d
}

// Observer receives one call per fetch attempt with its outcome
// ("ok" or an ErrorKind string).
type Observer interface {
	FetchAttempt(outcome string)
}

// Client wraps HTTP operations with feed-fetching policy.
//
// Client provides:
//   - Configured User-Agent header
//   - Per-attempt timeout handling, with a long budget for large feeds
//   - Retry with exponential backoff for retryable failures
//   - Classification of failures as *FetchError
//
// Client is safe for concurrent use.
//
// Example usage:
//
//	client := NewClient(WithTimeout(20 * time.Second))
//	client.MarkLarge("https://example.com/huge-feed.xml")
//
//	data, err := client.Fetch(ctx, "https://example.com/feed.xml")
type Client struct {
	httpClient   *http.Client
	userAgent    string
	timeout      time.Duration
	largeTimeout time.Duration
	retry        RetryPolicy
	logger       *zap.Logger
	observer     Observer

	mu         sync.RWMutex
	largeFeeds map[string]struct{}

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the per-attempt budget for ordinary requests.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLargeFeedTimeout sets the per-attempt budget for feeds marked large.
func WithLargeFeedTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.largeTimeout = d
		}
	}
}

// WithRetryPolicy replaces the retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		if p.Attempts > 0 {
			c.retry = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver reports attempt outcomes, typically to metrics.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a new Client.
//
// The client is configured with:
//   - 30 second per-attempt timeout (2 minutes for large feeds)
//   - DefaultRetryPolicy
//   - "feedmusic/1.0" User-Agent header
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{},
		userAgent:    defaultUserAgent,
		timeout:      defaultTimeout,
		largeTimeout: defaultLargeTimeout,
		retry:        DefaultRetryPolicy(),
		logger:       zap.NewNop(),
		largeFeeds:   make(map[string]struct{}),
		sleep:        sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MarkLarge registers URLs that get the large-feed timeout budget.
func (c *Client) MarkLarge(urls ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range urls {
		c.largeFeeds[u] = struct{}{}
	}
}

func (c *Client) timeoutFor(url string) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.largeFeeds[url]; ok {
		return c.largeTimeout
	}
	return c.timeout
}

// Fetch retrieves a feed document.
//
// A non-2xx response, a timeout or a transport failure is retried when
// retryable. An empty body or one without any <...> structure fails with
// KindInvalidFormat and is not retried.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	header := http.Header{}
	header.Set("Accept", feedAccept)
	return c.do(ctx, url, header, true)
}

// Get performs a GET request with optional extra headers and returns the
// body. The same timeout and retry policy as Fetch applies, without the
// feed format check.
func (c *Client) Get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	return c.do(ctx, url, header, false)
}

// GetString performs a GET request and returns the response body as a string.
func (c *Client) GetString(ctx context.Context, url string) (string, error) {
	body, err := c.Get(ctx, url, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) do(ctx context.Context, url string, header http.Header, feed bool) ([]byte, error) {
	attempts := c.retry.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		body, err := c.attempt(ctx, url, header, feed)
		if err == nil {
			c.observe("ok")
			return body, nil
		}

		var fe *FetchError
		if !errors.As(err, &fe) {
			// Caller cancelled; nothing to classify.
			return nil, err
		}
		c.observe(fe.Kind.String())
		lastErr = err

		if !fe.Retryable() || attempt == attempts-1 {
			break
		}

		delay := c.retry.wait(attempt, fe.RetryAfter)
		c.logger.Warn("Retrying fetch",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", attempts),
			zap.String("kind", fe.Kind.String()),
			zap.Int("status", fe.StatusCode),
			zap.Duration("delay", delay),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, url string, header http.Header, feed bool) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeoutFor(url))
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &FetchError{Kind: KindClientError, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, vs := range header {
		req.Header[http.CanonicalHeaderKey(k)] = vs
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(url, resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.transportError(ctx, url, err)
	}

	if feed && !looksLikeXML(body) {
		return nil, &FetchError{Kind: KindInvalidFormat, URL: url,
			Err: errors.New("response is empty or not XML")}
	}

	return body, nil
}

// transportError classifies a failure that happened before a status was
// available. A cancelled parent context is returned unwrapped.
func (c *Client) transportError(parent context.Context, url string, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{Kind: KindTimeout, URL: url, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &FetchError{Kind: KindTimeout, URL: url, Err: err}
	}
	return &FetchError{Kind: KindNetwork, URL: url, Err: err}
}

func statusError(url string, resp *http.Response) *FetchError {
	fe := &FetchError{URL: url, StatusCode: resp.StatusCode}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		fe.Kind = KindRateLimited
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			fe.RetryAfter = time.Duration(secs) * time.Second
		}
	case resp.StatusCode >= 500:
		fe.Kind = KindServerError
	default:
		fe.Kind = KindClientError
	}
	return fe
}

// looksLikeXML reports whether body is non-blank and contains at least one
// <...> construct.
func looksLikeXML(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return false
	}
	open := bytes.IndexByte(trimmed, '<')
	if open < 0 {
		return false
	}
	return bytes.IndexByte(trimmed[open+1:], '>') > 0
}

func (c *Client) observe(outcome string) {
	if c.observer != nil {
		c.observer.FetchAttempt(outcome)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
