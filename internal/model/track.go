package model

import "time"

// Track represents a single item of a feed.
//
// Track contains:
//   - Title, track number and HTML-stripped summary
//   - Duration normalized to "M:SS" form (see feed.NormalizeDuration)
//   - The playable media URL, which may be empty
//   - Podcasting 2.0 extras used by the extraction pipeline
//
// A Track with no URL is valid: the feed simply lists something without a
// playable source.
type Track struct {
	// GUID is the item guid, matched exactly when resolving remote items.
	GUID string `json:"guid,omitempty"`

	// Number is the track number (1-indexed). itunes:episode wins over position.
	Number int `json:"number"`

	// Title is the item title.
	Title string `json:"title"`

	// Duration is the normalized "M:SS" duration, "0:00" when unknown.
	Duration string `json:"duration"`

	// Seconds is the same duration in seconds.
	Seconds int `json:"seconds"`

	// URL is the playable media location. Empty when the item has none.
	URL string `json:"url,omitempty"`

	// Summary is the HTML-stripped item subtitle/summary/description.
	Summary string `json:"summary,omitempty"`

	// Description is the raw item description with markup intact.
	Description string `json:"-"`

	// Image is the per-track image (itunes:image href).
	Image string `json:"image,omitempty"`

	Explicit    bool      `json:"explicit"`
	Keywords    []string  `json:"keywords,omitempty"`
	PublishDate time.Time `json:"publishDate,omitempty"`

	// ChaptersURL is the podcast:chapters url attribute.
	ChaptersURL string `json:"chaptersUrl,omitempty"`

	// Value is the item-level podcast:value block.
	Value *ValueBlock `json:"value,omitempty"`

	// TimeSplits are the podcast:valueTimeSplit segments of the item.
	TimeSplits []ValueTimeSplit `json:"timeSplits,omitempty"`
}

// HasURL returns true if the track has a playable source.
func (t *Track) HasURL() bool {
	return t.URL != ""
}
