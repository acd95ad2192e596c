// Package feed parses RSS feeds with Podcasting 2.0 extensions into
// model.Album values.
//
// The package handles two main use cases:
//
//  1. Parsing a feed document into an album and its tracks
//  2. Collecting the album references of a publisher feed
//
// # Feed Parsing
//
// Use the Parser to turn fetched bytes into an Album:
//
//	parser := feed.NewParser(feed.WithOrdering(hooks))
//	album, err := parser.ParseWithURL(data, feedURL)
//	if errors.Is(err, feed.ErrInvalidFormat) {
//	    // malformed or channel-less document, no album
//	}
//
// Missing optional fields never fail a parse: a missing duration becomes
// "0:00", missing cover art is nil and a missing media URL leaves the
// track without a playable source.
//
// # Vendor Elements
//
// Funding, pod-roll, publisher and value elements are accepted with and
// without the "podcast:" prefix, because feeds in the wild use both.
//
// # Publisher Feeds
//
// A publisher feed lists album feeds as podcast:remoteItem entries:
//
//	refs := feed.AlbumReferences(publisherAlbum)
//	for _, ref := range refs {
//	    fmt.Println(ref.FeedGUID, ref.FeedURL)
//	}
package feed
