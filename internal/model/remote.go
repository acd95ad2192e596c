package model

import "fmt"

// RemoteItemReference is a (feedGuid, itemGuid) pair taken from a
// podcast:remoteItem element. A reference without ItemGUID denotes the
// whole feed. FeedURL and Medium are optional hints carried on the element.
type RemoteItemReference struct {
	FeedGUID string `json:"feedGuid,omitempty"`
	ItemGUID string `json:"itemGuid,omitempty"`
	FeedURL  string `json:"feedUrl,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Title    string `json:"title,omitempty"`
}

// IsWholeFeed reports whether the reference points at a feed, not an item.
func (r RemoteItemReference) IsWholeFeed() bool {
	return r.ItemGUID == ""
}

// IsBare reports whether the reference carries no feed URL hint.
func (r RemoteItemReference) IsBare() bool {
	return r.FeedURL == ""
}

func (r RemoteItemReference) String() string {
	switch {
	case r.FeedGUID != "" && r.ItemGUID != "":
		return fmt.Sprintf("%s/%s", r.FeedGUID, r.ItemGUID)
	case r.FeedGUID != "":
		return r.FeedGUID
	default:
		return r.FeedURL
	}
}

// ResolveMode says whether a resolution produced one item or a whole feed.
type ResolveMode string

const (
	ModeItem ResolveMode = "item"
	ModeFeed ResolveMode = "feed"
)

// ResolvedRemoteItem is the output of resolving a RemoteItemReference.
//
// Feed carries the resolved feed's metadata. In ModeItem, Item holds the
// matched track; in ModeFeed, Items holds the full item list. Ref is the
// original reference.
type ResolvedRemoteItem struct {
	Ref   RemoteItemReference `json:"ref"`
	Mode  ResolveMode         `json:"mode"`
	Feed  *Album              `json:"feed"`
	Item  *Track              `json:"item,omitempty"`
	Items []*Track            `json:"items,omitempty"`
}

// MusicTrack converts an item-mode resolution into a MusicTrack.
func (r *ResolvedRemoteItem) MusicTrack() (MusicTrack, bool) {
	if r == nil || r.Mode != ModeItem || r.Item == nil || r.Feed == nil {
		return MusicTrack{}, false
	}
	ref := r.Ref
	mt := MusicTrack{
		Title:        r.Item.Title,
		Artist:       r.Feed.Artist,
		EpisodeID:    r.Item.GUID,
		EpisodeTitle: r.Item.Title,
		EpisodeDate:  r.Item.PublishDate,
		Duration:     float64(r.Item.Seconds),
		AudioURL:     r.Item.URL,
		Image:        r.Item.Image,
		Source:       SourceExternalFeed,
		FeedURL:      r.Feed.FeedURL,
		Description:  r.Item.Summary,
		RemoteRef:    &ref,
	}
	if mt.Image == "" && r.Feed.HasCoverArt() {
		mt.Image = *r.Feed.CoverArt
	}
	mt.Payment = r.Item.Value.Payment()
	if mt.Payment == nil {
		mt.Payment = r.Feed.Value.Payment()
	}
	return mt, true
}

// Album returns the resolved feed as an album. For item mode the album is
// narrowed to the matched item.
func (r *ResolvedRemoteItem) Album() *Album {
	if r == nil || r.Feed == nil {
		return nil
	}
	if r.Mode == ModeFeed {
		return r.Feed
	}
	album := *r.Feed
	album.Tracks = nil
	if r.Item != nil {
		album.Tracks = []*Track{r.Item}
	}
	return &album
}
