package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/handiism/feedmusic/internal/directory"
	"github.com/handiism/feedmusic/internal/extract"
	feedhttp "github.com/handiism/feedmusic/internal/http"
	"github.com/handiism/feedmusic/internal/ordering"
	"github.com/handiism/feedmusic/internal/resolve"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "FEEDMUSIC"

// Settings holds all configuration options.
//
// Keys are the same in config files, environment variables and CLI flags:
// "batch-size" is FEEDMUSIC_BATCH_SIZE in the environment and --batch-size
// on the command line.
type Settings struct {
	// Directory API
	DirectoryAPIKey    string `mapstructure:"directory-api-key" json:"directory-api-key"`
	DirectoryAPISecret string `mapstructure:"directory-api-secret" json:"directory-api-secret"`
	DirectoryBaseURL   string `mapstructure:"directory-base-url" json:"directory-base-url"`
	UserAgent          string `mapstructure:"user-agent" json:"user-agent"`
	LookupCacheSize    int    `mapstructure:"lookup-cache-size" json:"lookup-cache-size"`
	EpisodeFallback    bool   `mapstructure:"episode-fallback" json:"episode-fallback"`

	// Fetching
	FetchTimeout     time.Duration `mapstructure:"fetch-timeout" json:"fetch-timeout"`
	LargeFeedTimeout time.Duration `mapstructure:"large-feed-timeout" json:"large-feed-timeout"`
	LargeFeedURLs    []string      `mapstructure:"large-feed-urls" json:"large-feed-urls"`
	RetryAttempts    int           `mapstructure:"retry-attempts" json:"retry-attempts"`
	RetryBaseDelay   time.Duration `mapstructure:"retry-base-delay" json:"retry-base-delay"`
	RetryMultiplier  float64       `mapstructure:"retry-multiplier" json:"retry-multiplier"`
	RetryMaxDelay    time.Duration `mapstructure:"retry-max-delay" json:"retry-max-delay"`

	// Batching
	BatchSize          int           `mapstructure:"batch-size" json:"batch-size"`
	InterBatchDelay    time.Duration `mapstructure:"inter-batch-delay" json:"inter-batch-delay"`
	MaxConcurrentFeeds int           `mapstructure:"max-concurrent-feeds" json:"max-concurrent-feeds"`

	// Extraction
	MusicKeywords        []string            `mapstructure:"music-keywords" json:"music-keywords"`
	MinFieldLength       int                 `mapstructure:"min-field-length" json:"min-field-length"`
	DescriptionBlocklist []string            `mapstructure:"description-blocklist" json:"description-blocklist"`
	ArtistStopwords      []string            `mapstructure:"artist-stopwords" json:"artist-stopwords"`
	DefaultChapterLength time.Duration       `mapstructure:"default-chapter-length" json:"default-chapter-length"`
	TrackOrder           map[string][]string `mapstructure:"track-order" json:"track-order,omitempty"`

	// Logging and metrics
	LogLevel    string `mapstructure:"log-level" json:"log-level"`
	LogFormat   string `mapstructure:"log-format" json:"log-format"`
	MetricsAddr string `mapstructure:"metrics-addr" json:"metrics-addr"`

	// Export
	OutputPath     string `mapstructure:"output-path" json:"output-path"`
	PlaylistFormat string `mapstructure:"playlist-format" json:"playlist-format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `mapstructure:"m3u-extended" json:"m3u-extended"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	ex := extract.DefaultConfig()
	return &Settings{
		DirectoryBaseURL: directory.DefaultBaseURL,
		UserAgent:        "feedmusic/1.0",
		LookupCacheSize:  256,
		EpisodeFallback:  true,

		FetchTimeout:     30 * time.Second,
		LargeFeedTimeout: 2 * time.Minute,
		RetryAttempts:    3,
		RetryBaseDelay:   time.Second,
		RetryMultiplier:  2,
		RetryMaxDelay:    30 * time.Second,

		BatchSize:          5,
		InterBatchDelay:    500 * time.Millisecond,
		MaxConcurrentFeeds: 4,

		MusicKeywords:        ex.MusicKeywords,
		MinFieldLength:       ex.MinFieldLength,
		DescriptionBlocklist: ex.Blocklist,
		ArtistStopwords:      ex.ArtistStopwords,
		DefaultChapterLength: ex.DefaultChapterLength,

		LogLevel:  "info",
		LogFormat: "console",

		OutputPath:     filepath.Join(homeDir, "Music", "feedmusic"),
		PlaylistFormat: "m3u",
		M3UExtended:    true,
	}
}

// LoadDotEnv loads variables from .env files into the process
// environment. Variables already set are kept and missing files are
// ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := gotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// NewViper returns a viper instance with the defaults registered and
// environment lookup enabled. Callers bind CLI flags to it before Load.
func NewViper() *viper.Viper {
	v := viper.New()
	registerDefaults(v, DefaultSettings())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads settings from path (json, yaml or toml by extension) layered
// under environment variables. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	return LoadWith(NewViper(), path)
}

// LoadWith reads settings through v, so flags bound to v take precedence
// over environment variables, the config file and the defaults.
func LoadWith(v *viper.Viper, path string) (*Settings, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings no component can run with.
func (s *Settings) Validate() error {
	switch {
	case s.BatchSize <= 0:
		return fmt.Errorf("batch-size must be positive, got %d", s.BatchSize)
	case s.InterBatchDelay < 0:
		return fmt.Errorf("inter-batch-delay must not be negative, got %s", s.InterBatchDelay)
	case s.RetryAttempts <= 0:
		return fmt.Errorf("retry-attempts must be positive, got %d", s.RetryAttempts)
	case s.MaxConcurrentFeeds <= 0:
		return fmt.Errorf("max-concurrent-feeds must be positive, got %d", s.MaxConcurrentFeeds)
	}
	switch s.PlaylistFormat {
	case "m3u", "pls", "wpl", "zpl":
	default:
		return fmt.Errorf("unknown playlist-format %q", s.PlaylistFormat)
	}
	return nil
}

// HasDirectoryCredentials reports whether directory lookups can be signed.
func (s *Settings) HasDirectoryCredentials() bool {
	return s.DirectoryAPIKey != "" && s.DirectoryAPISecret != ""
}

// ToRetryPolicy converts settings to the fetch retry policy.
func (s *Settings) ToRetryPolicy() feedhttp.RetryPolicy {
	return feedhttp.RetryPolicy{
		Attempts:   s.RetryAttempts,
		BaseDelay:  s.RetryBaseDelay,
		Multiplier: s.RetryMultiplier,
		MaxDelay:   s.RetryMaxDelay,
	}
}

// ToHTTPOptions converts settings to feed client options.
func (s *Settings) ToHTTPOptions() []feedhttp.Option {
	return []feedhttp.Option{
		feedhttp.WithUserAgent(s.UserAgent),
		feedhttp.WithTimeout(s.FetchTimeout),
		feedhttp.WithLargeFeedTimeout(s.LargeFeedTimeout),
		feedhttp.WithRetryPolicy(s.ToRetryPolicy()),
	}
}

// ToDirectoryConfig converts settings to the directory client config.
func (s *Settings) ToDirectoryConfig() directory.Config {
	return directory.Config{
		APIKey:    s.DirectoryAPIKey,
		APISecret: s.DirectoryAPISecret,
		BaseURL:   s.DirectoryBaseURL,
		UserAgent: s.UserAgent,
		CacheSize: s.LookupCacheSize,
	}
}

// ToExtractConfig converts settings to the extraction heuristics.
func (s *Settings) ToExtractConfig() extract.Config {
	return extract.Config{
		MusicKeywords:        s.MusicKeywords,
		MinFieldLength:       s.MinFieldLength,
		Blocklist:            s.DescriptionBlocklist,
		ArtistStopwords:      s.ArtistStopwords,
		DefaultChapterLength: s.DefaultChapterLength,
	}
}

// ToBatchOptions converts settings to orchestrator options.
func (s *Settings) ToBatchOptions() resolve.Options {
	return resolve.Options{
		BatchSize:       s.BatchSize,
		InterBatchDelay: s.InterBatchDelay,
	}
}

// ToOrdering builds the track-order overrides. Each entry maps an album
// key to its canonical title sequence.
func (s *Settings) ToOrdering() *ordering.Registry {
	reg := ordering.NewRegistry()
	for key, titles := range s.TrackOrder {
		reg.Register(key, ordering.NewCanonicalOrder(key, titles))
	}
	return reg
}

func registerDefaults(v *viper.Viper, s *Settings) {
	v.SetDefault("directory-api-key", s.DirectoryAPIKey)
	v.SetDefault("directory-api-secret", s.DirectoryAPISecret)
	v.SetDefault("directory-base-url", s.DirectoryBaseURL)
	v.SetDefault("user-agent", s.UserAgent)
	v.SetDefault("lookup-cache-size", s.LookupCacheSize)
	v.SetDefault("episode-fallback", s.EpisodeFallback)

	v.SetDefault("fetch-timeout", s.FetchTimeout)
	v.SetDefault("large-feed-timeout", s.LargeFeedTimeout)
	v.SetDefault("large-feed-urls", s.LargeFeedURLs)
	v.SetDefault("retry-attempts", s.RetryAttempts)
	v.SetDefault("retry-base-delay", s.RetryBaseDelay)
	v.SetDefault("retry-multiplier", s.RetryMultiplier)
	v.SetDefault("retry-max-delay", s.RetryMaxDelay)

	v.SetDefault("batch-size", s.BatchSize)
	v.SetDefault("inter-batch-delay", s.InterBatchDelay)
	v.SetDefault("max-concurrent-feeds", s.MaxConcurrentFeeds)

	v.SetDefault("music-keywords", s.MusicKeywords)
	v.SetDefault("min-field-length", s.MinFieldLength)
	v.SetDefault("description-blocklist", s.DescriptionBlocklist)
	v.SetDefault("artist-stopwords", s.ArtistStopwords)
	v.SetDefault("default-chapter-length", s.DefaultChapterLength)
	v.SetDefault("track-order", map[string][]string{})

	v.SetDefault("log-level", s.LogLevel)
	v.SetDefault("log-format", s.LogFormat)
	v.SetDefault("metrics-addr", s.MetricsAddr)

	v.SetDefault("output-path", s.OutputPath)
	v.SetDefault("playlist-format", s.PlaylistFormat)
	v.SetDefault("m3u-extended", s.M3UExtended)
}
