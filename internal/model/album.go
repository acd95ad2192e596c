package model

import (
	"strings"
	"time"
)

// Album represents one syndication feed's worth of music.
//
// Album is built once per successful parse and is treated as immutable
// afterwards. A feed that cannot be fetched or parsed produces no Album at
// all, never a partially filled one.
//
// Tracks follow source document order unless an ordering hook for the
// album's key was applied at parse time.
//
// Example:
//
//	album, err := parser.Parse(feedBytes)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%s by %s (%d tracks)\n", album.Title, album.Artist, len(album.Tracks))
type Album struct {
	// GUID is the channel-level podcast:guid, empty when the feed has none.
	GUID string `json:"guid,omitempty"`

	// FeedURL is the URL the feed was fetched from, when known.
	FeedURL string `json:"feedUrl,omitempty"`

	// Title is the channel title. Defaults to "Unknown Album".
	Title string `json:"title"`

	// Artist is the channel author. Defaults to "Unknown Artist".
	Artist string `json:"artist"`

	// Description is the HTML-stripped channel description.
	Description string `json:"description"`

	// Link is the channel website link.
	Link string `json:"link,omitempty"`

	// CoverArt is the resolved cover-art URL. Nil when absent or unsafe.
	CoverArt *string `json:"coverArt"`

	// Tracks contains the feed items in document order.
	Tracks []*Track `json:"tracks"`

	// ReleaseDate is the channel pubDate, falling back to lastBuildDate.
	ReleaseDate time.Time `json:"releaseDate,omitempty"`

	// Funding lists podcast:funding links.
	Funding []Funding `json:"funding,omitempty"`

	// PodRoll lists the remote items of the podcast:podroll block.
	PodRoll []RemoteItemReference `json:"podroll,omitempty"`

	// Publisher is the remote item whose medium is "publisher".
	Publisher *RemoteItemReference `json:"publisher,omitempty"`

	// RemoteItems are channel-level remote items outside the pod-roll,
	// excluding the publisher reference. Playlist and publisher feeds use them.
	RemoteItems []RemoteItemReference `json:"remoteItems,omitempty"`

	// Medium is the podcast:medium value (e.g. "music", "musicL", "publisher").
	Medium string `json:"medium,omitempty"`

	// Value is the channel-level podcast:value block.
	Value *ValueBlock `json:"value,omitempty"`

	Explicit bool     `json:"explicit"`
	Language string   `json:"language,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Owner    *Owner   `json:"owner,omitempty"`
}

// Funding is a podcast:funding link.
type Funding struct {
	URL     string `json:"url"`
	Message string `json:"message,omitempty"`
}

// Owner is the itunes:owner contact.
type Owner struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Medium values with special meaning.
const (
	MediumMusic         = "music"
	MediumMusicPlaylist = "musicL"
	MediumPublisher     = "publisher"
)

// HasCoverArt returns true if the album has a usable cover-art URL.
func (a *Album) HasCoverArt() bool {
	return a.CoverArt != nil && *a.CoverArt != ""
}

// IsPlaylist reports whether the whole feed should be treated as a playlist:
// it is flagged with the musicL medium or carries channel-level remote items.
func (a *Album) IsPlaylist() bool {
	return a.Medium == MediumMusicPlaylist || len(a.RemoteItems) > 0
}

// Key returns the stable identifier used for ordering hooks: the feed GUID
// when present, otherwise the lower-cased title.
func (a *Album) Key() string {
	if a.GUID != "" {
		return a.GUID
	}
	return strings.ToLower(strings.TrimSpace(a.Title))
}

// DedupKey returns lower(title)+"|"+lower(artist).
func (a *Album) DedupKey() string {
	return strings.ToLower(a.Title) + "|" + strings.ToLower(a.Artist)
}

// TrackByGUID returns the track whose GUID equals guid exactly, or nil.
func (a *Album) TrackByGUID(guid string) *Track {
	for _, t := range a.Tracks {
		if t.GUID == guid {
			return t
		}
	}
	return nil
}
