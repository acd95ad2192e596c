package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/handiism/feedmusic/internal/catalog"
	"github.com/handiism/feedmusic/internal/config"
	"github.com/handiism/feedmusic/internal/logging"
	"github.com/handiism/feedmusic/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile, envFile, logFile string
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:          "feedmusic-tui",
		Short:        "Interactive feedmusic catalog builder",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			settings, err := config.LoadWith(v, cfgFile)
			if err != nil {
				return err
			}

			// The terminal belongs to the UI, so logs go to a file or nowhere.
			logger := zap.NewNop()
			if logFile != "" {
				if logger, err = logging.NewFile(settings.LogLevel, settings.LogFormat, logFile); err != nil {
					return err
				}
				defer func() { _ = logger.Sync() }()
			}

			return tui.Run(settings, catalog.WithLogger(logger))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (json, yaml or toml)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.StringVar(&logFile, "log-file", "", "write logs to this file")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("directory-api-key", "", "podcast directory API key")
	flags.String("directory-api-secret", "", "podcast directory API secret")
	flags.String("output-path", config.DefaultSettings().OutputPath, "directory for exported playlists")
	flags.String("playlist-format", "m3u", "playlist format (m3u, pls, wpl, zpl)")
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	return cmd
}
