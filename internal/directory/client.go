package directory

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// DefaultBaseURL is the Podcast Index API root.
const DefaultBaseURL = "https://api.podcastindex.org/api/1.0"

// Config holds the API credentials.
type Config struct {
	APIKey    string
	APISecret string

	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// UserAgent defaults to "feedmusic/1.0".
	UserAgent string

	// CacheSize is the number of feed lookups kept. Zero means 256.
	CacheSize int
}

// Getter performs a GET with extra headers. The internal http Client
// satisfies it and supplies timeouts and retries.
type Getter interface {
	Get(ctx context.Context, url string, header http.Header) ([]byte, error)
}

// Client talks to the directory API. It is safe for concurrent use.
type Client struct {
	cfg    Config
	getter Getter
	cache  *lru.Cache[string, *Feed]
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a directory client that issues requests through getter.
func NewClient(cfg Config, getter Getter, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.UserAgent == "" {
		cfg.UserAgent = "feedmusic/1.0"
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}

	cache, err := lru.New[string, *Feed](cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:    cfg,
		getter: getter,
		cache:  cache,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Sign returns the Authorization value for a request made at ts.
func Sign(key, secret string, ts int64) string {
	sum := sha1.Sum([]byte(key + secret + strconv.FormatInt(ts, 10)))
	return hex.EncodeToString(sum[:])
}

func (c *Client) headers() http.Header {
	ts := c.now().Unix()
	h := http.Header{}
	h.Set("X-Auth-Date", strconv.FormatInt(ts, 10))
	h.Set("X-Auth-Key", c.cfg.APIKey)
	h.Set("Authorization", Sign(c.cfg.APIKey, c.cfg.APISecret, ts))
	h.Set("User-Agent", c.cfg.UserAgent)
	h.Set("Accept", "application/json")
	return h
}

// LookupFeedByGUID looks a feed up by its podcast:guid.
func (c *Client) LookupFeedByGUID(ctx context.Context, guid string) (*Feed, error) {
	const endpoint = "podcasts/byguid"

	if f, ok := c.cache.Get(guid); ok {
		return f, nil
	}

	var resp struct {
		envelope
		Feed json.RawMessage `json:"feed"`
	}
	if err := c.call(ctx, endpoint, url.Values{"guid": {guid}}, &resp); err != nil {
		return nil, err
	}
	if err := resp.check(endpoint); err != nil {
		return nil, err
	}

	var f Feed
	if !decodePayload(resp.Feed, &f) || (f.ID == 0 && f.PodcastGUID == "" && f.Title == "" && f.URL == "") {
		return nil, &Error{Kind: KindNotFound, Endpoint: endpoint}
	}

	c.cache.Add(guid, &f)
	return &f, nil
}

// LookupEpisodeByGUID looks up one episode of a feed.
func (c *Client) LookupEpisodeByGUID(ctx context.Context, feedGUID, itemGUID string) (*Episode, error) {
	const endpoint = "episodes/byguid"

	var resp struct {
		envelope
		Episode json.RawMessage `json:"episode"`
	}
	params := url.Values{"guid": {itemGUID}, "podcastguid": {feedGUID}}
	if err := c.call(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	if err := resp.check(endpoint); err != nil {
		return nil, err
	}

	var e Episode
	if !decodePayload(resp.Episode, &e) || (e.ID == 0 && e.GUID == "") {
		return nil, &Error{Kind: KindNotFound, Endpoint: endpoint}
	}
	return &e, nil
}

// SearchMusic searches music feeds by term. limit <= 0 uses the API
// default.
func (c *Client) SearchMusic(ctx context.Context, query string, limit int) ([]Feed, error) {
	const endpoint = "search/music/byterm"

	params := url.Values{"q": {query}}
	if limit > 0 {
		params.Set("max", strconv.Itoa(limit))
	}

	var resp struct {
		envelope
		Feeds json.RawMessage `json:"feeds"`
	}
	if err := c.call(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	if err := resp.check(endpoint); err != nil {
		return nil, err
	}
	if len(resp.Feeds) == 0 || string(resp.Feeds) == "null" {
		return nil, &Error{Kind: KindAPI, Endpoint: endpoint, Err: errMissingPayload("feeds")}
	}

	var feeds []Feed
	if err := json.Unmarshal(resp.Feeds, &feeds); err != nil {
		return nil, &Error{Kind: KindAPI, Endpoint: endpoint, Err: err}
	}
	return feeds, nil
}

func (c *Client) call(ctx context.Context, endpoint string, params url.Values, out any) error {
	u := c.cfg.BaseURL + "/" + endpoint + "?" + params.Encode()

	body, err := c.getter.Get(ctx, u, c.headers())
	if err != nil {
		c.logger.Warn("Directory request failed",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return &Error{Kind: KindAPI, Endpoint: endpoint, Err: err}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: KindAPI, Endpoint: endpoint, Err: err}
	}
	return nil
}

// envelope holds the fields every response shares.
type envelope struct {
	Status      json.RawMessage `json:"status"`
	Description string          `json:"description"`
}

// check requires the literal success marker: "true" or true.
func (e envelope) check(endpoint string) error {
	status := strings.Trim(string(bytes.TrimSpace(e.Status)), `"`)
	if status == "true" {
		return nil
	}
	desc := e.Description
	if desc == "" {
		desc = "status " + strconv.Quote(status)
	}
	// The API reports unknown GUIDs with a false status.
	if strings.Contains(strings.ToLower(desc), "not found") || strings.Contains(strings.ToLower(desc), "no feeds match") {
		return &Error{Kind: KindNotFound, Endpoint: endpoint, Err: apiMessage(desc)}
	}
	return &Error{Kind: KindAPI, Endpoint: endpoint, Err: apiMessage(desc)}
}

// decodePayload decodes an object payload. Absent, null and empty-array
// payloads (the API answers unknown feeds with "feed": []) report false.
func decodePayload(raw json.RawMessage, out any) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return json.Unmarshal(trimmed, out) == nil
}

type apiMessage string

func (m apiMessage) Error() string { return string(m) }

type errMissingPayload string

func (e errMissingPayload) Error() string { return "response has no " + string(e) + " field" }
