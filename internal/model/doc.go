// Package model defines the normalized value objects produced by the feed
// catalog core and consumed by its collaborators.
//
// # Album and Track
//
// Album is one parsed feed; it exclusively owns its Track list:
//
//	album, _ := parser.Parse(data)
//	for _, t := range album.Tracks {
//	    fmt.Println(t.Number, t.Title, t.Duration) // 1 Intro 2:05
//	}
//
// # MusicTrack
//
// MusicTrack is a song inferred from episode content. Its Source says how
// it was found and therefore how much its title/artist can be trusted:
//
//	if !mt.Source.HighConfidence() {
//	    // description-mined, show as a suggestion only
//	}
//
// # Remote items
//
// RemoteItemReference points at content in another feed by GUID.
// ResolvedRemoteItem is what resolving such a reference yields.
//
// # Value for value
//
// ValueBlock, ValueTimeSplit and ValueRecipient model podcast:value payment
// routing. PaymentInfo is the condensed form attached to a MusicTrack.
package model
