// Package main provides the feedmusic CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/handiism/feedmusic/internal/catalog"
	"github.com/handiism/feedmusic/internal/config"
	"github.com/handiism/feedmusic/internal/logging"
	"github.com/handiism/feedmusic/internal/metrics"
)

var (
	cfgFile string
	envFile string
	verbose bool

	v        = config.NewViper()
	settings *config.Settings
	logger   = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "feedmusic",
	Short: "feedmusic - Podcasting 2.0 feeds to a music catalog",
	Long: `feedmusic reads Podcasting 2.0 feeds, resolves remote item references through
a podcast directory, and extracts music tracks from episodes.

Every flag can also be set in the config file or as a FEEDMUSIC_* environment
variable (--batch-size is FEEDMUSIC_BATCH_SIZE).`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func init() {
	defaults := config.DefaultSettings()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "config file (json, yaml or toml)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.BoolVarP(&verbose, "verbose", "v", false, "show verbose progress output")

	flags.String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	flags.String("log-format", defaults.LogFormat, "log format (console, json)")
	flags.String("metrics-addr", defaults.MetricsAddr, "serve Prometheus metrics on this address while running")

	flags.String("directory-api-key", "", "podcast directory API key")
	flags.String("directory-api-secret", "", "podcast directory API secret")
	flags.String("directory-base-url", defaults.DirectoryBaseURL, "podcast directory API base URL")
	flags.String("user-agent", defaults.UserAgent, "User-Agent for every request")
	flags.Bool("episode-fallback", defaults.EpisodeFallback, "look up episodes directly when a resolved feed cannot be fetched")

	flags.Duration("fetch-timeout", defaults.FetchTimeout, "per-request timeout")
	flags.Duration("large-feed-timeout", defaults.LargeFeedTimeout, "timeout for feeds listed in --large-feed-urls")
	flags.StringSlice("large-feed-urls", nil, "feed URLs that get the large feed timeout")
	flags.Int("retry-attempts", defaults.RetryAttempts, "attempts per request, including the first")
	flags.Duration("retry-max-delay", defaults.RetryMaxDelay, "upper bound on any wait between attempts, including Retry-After")

	flags.Int("batch-size", defaults.BatchSize, "references resolved concurrently per batch")
	flags.Duration("inter-batch-delay", defaults.InterBatchDelay, "pause between batches")
	flags.Int("max-concurrent-feeds", defaults.MaxConcurrentFeeds, "albums extracted concurrently")

	flags.String("output-path", defaults.OutputPath, "directory for exported playlists")
	flags.String("playlist-format", defaults.PlaylistFormat, "playlist format (m3u, pls, wpl, zpl)")
	flags.Bool("m3u-extended", defaults.M3UExtended, "write #EXTINF lines in M3U playlists")

	if err := v.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(
		newParseCmd(),
		newTracksCmd(),
		newEpisodeCmd(),
		newResolveCmd(),
		newPublisherCmd(),
		newSearchCmd(),
		newPlaylistCmd(),
		newTagCmd(),
	)
}

// setup loads configuration and builds the logger before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	s, err := config.LoadWith(v, cfgFile)
	if err != nil {
		return err
	}
	settings = s

	l, err := logging.New(s.LogLevel, s.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	logger = l
	return nil
}

// newManager builds a catalog manager for cmd. When metrics-addr is set, a
// metrics server runs until cmd's context ends.
func newManager(cmd *cobra.Command) (*catalog.Manager, error) {
	opts := []catalog.Option{catalog.WithLogger(logger)}

	if settings.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, catalog.WithMetrics(metrics.New(reg)))

		go func() {
			if err := metrics.Serve(cmd.Context(), settings.MetricsAddr, reg, logger); err != nil {
				logger.Error("Metrics server stopped", zap.Error(err))
			}
		}()
	}

	return catalog.NewManager(settings, printProgress(cmd.ErrOrStderr()), opts...)
}

// printProgress renders progress events as prefixed lines on w.
func printProgress(w io.Writer) func(catalog.ProgressEvent) {
	return func(event catalog.ProgressEvent) {
		if event.Level == catalog.LevelVerbose && !verbose {
			return
		}

		var prefix string
		switch event.Level {
		case catalog.LevelError:
			prefix = "✗ "
		case catalog.LevelWarning:
			prefix = "! "
		case catalog.LevelSuccess:
			prefix = "✓ "
		case catalog.LevelInfo:
			prefix = "› "
		default:
			prefix = "  "
		}

		fmt.Fprintln(w, prefix+event.Message)
	}
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
