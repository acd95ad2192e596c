package feed

import (
	"strings"

	"github.com/handiism/feedmusic/internal/model"
)

// AlbumReferences returns the album feeds a publisher feed points at: its
// channel-level remote items whose medium is "music". Pod-roll entries are
// recommendations, not albums, and are ignored.
func AlbumReferences(publisher *model.Album) []model.RemoteItemReference {
	if publisher == nil {
		return nil
	}
	var refs []model.RemoteItemReference
	for _, ref := range publisher.RemoteItems {
		if strings.EqualFold(ref.Medium, model.MediumMusic) {
			refs = append(refs, ref)
		}
	}
	return refs
}

// IsPublisherFeed reports whether the album is itself a publisher feed.
func IsPublisherFeed(a *model.Album) bool {
	return a != nil && strings.EqualFold(a.Medium, model.MediumPublisher)
}
