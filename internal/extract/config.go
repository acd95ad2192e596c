package extract

import "time"

// Config holds the extraction heuristics. The description-mining
// thresholds are tunable; the defaults are known to work on real feeds but
// are not tuned against any benchmark.
type Config struct {
	// MusicKeywords mark a chapter title as a song.
	MusicKeywords []string

	// MinFieldLength is the shortest artist or title accepted from a
	// description, in runes.
	MinFieldLength int

	// Blocklist rejects description lines containing any of these words.
	Blocklist []string

	// ArtistStopwords reject a description match whose artist field starts
	// with one of these words.
	ArtistStopwords []string

	// DefaultChapterLength is used when a chapter has no end time.
	DefaultChapterLength time.Duration

	// UnknownArtist is used when no artist can be determined.
	UnknownArtist string
}

// DefaultConfig returns the default heuristics.
func DefaultConfig() Config {
	return Config{
		MusicKeywords: []string{
			"song", "track", "music", "tune", "instrumental", "vocal",
			"remix", "acoustic", "melody", "single", "cover", "♪", "🎵",
		},
		MinFieldLength:       3,
		Blocklist:            []string{"unknown", "volume"},
		DefaultChapterLength: 300 * time.Second,
		UnknownArtist:        "Unknown Artist",
		ArtistStopwords: []string{
			"note", "notes", "thanks", "thank", "sponsor", "sponsored", "sponsors",
			"support", "subscribe", "follow", "contact", "email", "links",
			"episode", "show", "host", "hosts", "guest", "guests", "credits",
		},
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MusicKeywords == nil {
		c.MusicKeywords = d.MusicKeywords
	}
	if c.MinFieldLength <= 0 {
		c.MinFieldLength = d.MinFieldLength
	}
	if c.Blocklist == nil {
		c.Blocklist = d.Blocklist
	}
	if c.ArtistStopwords == nil {
		c.ArtistStopwords = d.ArtistStopwords
	}
	if c.DefaultChapterLength <= 0 {
		c.DefaultChapterLength = d.DefaultChapterLength
	}
	if c.UnknownArtist == "" {
		c.UnknownArtist = d.UnknownArtist
	}
	return c
}
