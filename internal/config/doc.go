// Package config provides configuration management for feedmusic.
//
// This package handles:
//   - Default configuration values
//   - Loading settings from a config file, the environment and .env files
//   - Saving settings as JSON
//   - Conversion into the configs of the other packages
//
// # Precedence
//
// CLI flags bound to the viper instance win over FEEDMUSIC_* environment
// variables, which win over the config file, which wins over the defaults:
//
//	v := config.NewViper()
//	_ = v.BindPFlags(cmd.Flags())
//	settings, err := config.LoadWith(v, "feedmusic.yaml")
//
// Durations accept Go duration strings ("500ms", "2m") in files and the
// environment. List values in the environment are comma separated.
//
// # Track Order Overrides
//
// track-order maps an album key (feed GUID or lower-cased title) to the
// canonical title sequence of that album:
//
//	track-order:
//	  c0ffee-guid: ["Prologue", "The Long Road", "Epilogue"]
package config
