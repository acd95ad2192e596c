package model

import "time"

// Source tags how a MusicTrack was inferred. Consumers use it to decide how
// far to trust the title and artist.
type Source string

const (
	// SourceChapter comes from a podcast:chapters file.
	SourceChapter Source = "chapter"

	// SourceValueSplit comes from a podcast:valueTimeSplit segment.
	SourceValueSplit Source = "value-split"

	// SourceDescription is mined from episode free text. Heuristic.
	SourceDescription Source = "description"

	// SourceExternalFeed comes from a feed's own item list: playlist-style
	// feeds and resolved remote items.
	SourceExternalFeed Source = "external-feed"
)

// HighConfidence reports whether title/artist from this source can be
// trusted as-is. Description mining is the only low-confidence source.
func (s Source) HighConfidence() bool {
	return s != SourceDescription && s != ""
}

// MusicTrack is a track inferred from episode content rather than taken
// from a feed's native track list.
type MusicTrack struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`

	EpisodeID    string    `json:"episodeId,omitempty"`
	EpisodeTitle string    `json:"episodeTitle,omitempty"`
	EpisodeDate  time.Time `json:"episodeDate,omitempty"`

	// StartTime and EndTime bound the track within the episode audio, in
	// seconds. Both are zero when the track is not time-bounded.
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`

	// Duration is the track length in seconds.
	Duration float64 `json:"duration"`

	// AudioURL may be the episode's own enclosure.
	AudioURL string `json:"audioUrl,omitempty"`
	Image    string `json:"image,omitempty"`

	Source  Source `json:"source"`
	FeedURL string `json:"feedUrl,omitempty"`

	Payment     *PaymentInfo `json:"payment,omitempty"`
	Description string       `json:"description,omitempty"`

	// RemoteRef points at the feed/item the track lives in, when known.
	RemoteRef *RemoteItemReference `json:"remoteRef,omitempty"`
}

// TimeBounded reports whether the track occupies a window of the episode.
func (m MusicTrack) TimeBounded() bool {
	return m.StartTime != 0 || m.EndTime != 0
}

// Valid checks the MusicTrack invariants: the source is set and the time
// window is not inverted.
func (m MusicTrack) Valid() bool {
	if m.Source == "" {
		return false
	}
	if m.StartTime != 0 && m.EndTime != 0 && m.EndTime < m.StartTime {
		return false
	}
	return true
}

// Chapter is one entry of a podcast:chapters JSON file.
type Chapter struct {
	Title     string  `json:"title"`
	StartTime float64 `json:"startTime"`

	// EndTime is zero when the chapter file omits it.
	EndTime float64 `json:"endTime,omitempty"`
	URL     string  `json:"url,omitempty"`
	Image   string  `json:"image,omitempty"`
}
