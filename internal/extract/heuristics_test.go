package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitArtistTitle(t *testing.T) {
	tests := []struct {
		input      string
		wantArtist string
		wantTitle  string
		wantOK     bool
	}{
		{"The Lanterns - Headlights", "The Lanterns", "Headlights", true},
		{"Song: The Lanterns - Headlights", "The Lanterns", "Headlights", true},
		{"Track 3 - Jay-Z - Encore", "Jay-Z", "Encore", true},
		{"The Lanterns – Headlights", "The Lanterns", "Headlights", true},
		{"The Lanterns: Headlights", "The Lanterns", "Headlights", true},
		{`The Lanterns "Headlights"`, "The Lanterns", "Headlights", true},
		{"Headlights (The Lanterns)", "The Lanterns", "Headlights", true},
		{"Headlights (by The Lanterns)", "The Lanterns", "Headlights", true},
		{"Lo-Fi Morning", "", "Lo-Fi Morning", false},
		{"Now Playing: Intro Music", "", "Intro Music", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			artist, title, ok := SplitArtistTitle(tt.input)
			if artist != tt.wantArtist || title != tt.wantTitle || ok != tt.wantOK {
				t.Errorf("SplitArtistTitle(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.input, artist, title, ok, tt.wantArtist, tt.wantTitle, tt.wantOK)
			}
		})
	}
}

func TestIsMusicChapter(t *testing.T) {
	keywords := DefaultConfig().MusicKeywords

	tests := []struct {
		title string
		want  bool
	}{
		{"Song: The Lanterns - Headlights", true},
		{"Featured TRACK", true},
		{"Instrumental break", true},
		{"Intro", false},
		{"Listener mail", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := IsMusicChapter(tt.title, keywords); got != tt.want {
				t.Errorf("IsMusicChapter(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestMatchDescriptionLine(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name        string
		line        string
		wantOK      bool
		wantArtist  string
		wantTitle   string
		wantPattern string
		wantStart   float64
	}{
		{name: "dash", line: "The Lanterns - Headlights", wantOK: true, wantArtist: "The Lanterns", wantTitle: "Headlights", wantPattern: "artist-dash-title"},
		{name: "colon", line: "The Lanterns: Headlights", wantOK: true, wantArtist: "The Lanterns", wantTitle: "Headlights", wantPattern: "artist-colon-title"},
		{name: "by", line: "Headlights by The Lanterns", wantOK: true, wantArtist: "The Lanterns", wantTitle: "Headlights", wantPattern: "title-by-artist"},
		{name: "quoted", line: "The Lanterns 'Headlights'", wantOK: true, wantArtist: "The Lanterns", wantTitle: "Headlights", wantPattern: "artist-quoted-title"},
		{name: "pipe", line: "The Lanterns | Headlights", wantOK: true, wantArtist: "The Lanterns", wantTitle: "Headlights", wantPattern: "artist-pipe-title"},
		{name: "bullet", line: "• The Lanterns - Headlights", wantOK: true, wantArtist: "The Lanterns", wantTitle: "Headlights", wantPattern: "artist-dash-title"},
		{name: "numbered", line: "3. The Lanterns - Headlights", wantOK: true, wantArtist: "The Lanterns", wantTitle: "Headlights", wantPattern: "artist-dash-title"},
		{name: "timestamp", line: "01:02:03 The Lanterns - Headlights", wantOK: true, wantArtist: "The Lanterns", wantTitle: "Headlights", wantPattern: "artist-dash-title", wantStart: 3723},
		{name: "bracketed timestamp", line: "[12:30] - The Lanterns - Headlights", wantOK: true, wantArtist: "The Lanterns", wantTitle: "Headlights", wantPattern: "artist-dash-title", wantStart: 750},
		{name: "short field", line: "DJ - Go", wantOK: false},
		{name: "url", line: "Listen - https://example.com/song", wantOK: false},
		{name: "markup", line: "The Lanterns - <b>Headlights</b>", wantOK: false},
		{name: "unknown", line: "Unknown Artist - Headlights", wantOK: false},
		{name: "volume", line: "Mixtape Volume 3 - Side A", wantOK: false},
		{name: "plain prose", line: "Thanks for listening this week", wantOK: false},
		{name: "sponsor credit", line: "Thanks to our sponsor: Acme Corp", wantOK: false},
		{name: "note", line: "Note: this episode covers the new single", wantOK: false},
		{name: "stopword later in artist", line: "The Show Ponies - Headlights", wantOK: true, wantArtist: "The Show Ponies", wantTitle: "Headlights", wantPattern: "artist-dash-title"},
		{name: "zero timestamp", line: "00:00 The Lanterns - Headlights", wantOK: true, wantArtist: "The Lanterns", wantTitle: "Headlights", wantPattern: "artist-dash-title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := MatchDescriptionLine(tt.line, cfg)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantArtist, m.Artist)
			assert.Equal(t, tt.wantTitle, m.Title)
			assert.Equal(t, tt.wantPattern, m.Pattern)
			assert.Equal(t, tt.wantStart, m.StartTime)
		})
	}
}

func TestMatchDescriptionLine_ConfigurableThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinFieldLength = 2
	cfg.Blocklist = []string{}

	m, ok := MatchDescriptionLine("DJ - Go", cfg)
	assert.True(t, ok)
	assert.Equal(t, "DJ", m.Artist)

	_, ok = MatchDescriptionLine("Unknown Artist - Headlights", cfg)
	assert.True(t, ok)

	cfg.ArtistStopwords = []string{}
	m, ok = MatchDescriptionLine("Note: Headlights", cfg)
	assert.True(t, ok)
	assert.Equal(t, "Note", m.Artist)
}
