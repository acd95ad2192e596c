// Package catalog builds music catalogs from feed URLs.
//
// # Manager
//
// The Manager wires the feed client, parser, directory, resolver and
// extraction pipeline from settings and runs a catalog build:
//
//  1. Parse input URLs
//  2. Fetch and parse each feed through the batch path
//  3. Expand publisher feeds into the albums they reference
//  4. Deduplicate albums by title and artist
//  5. Extract music tracks from episodes (optional)
//
// # Basic Usage
//
//	manager, err := catalog.NewManager(settings, func(event catalog.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := manager.Initialize(ctx, "https://example.com/feed.xml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	tracks, err := manager.ExtractTracks(ctx)
//
// A feed that cannot be read is dropped with an error event; it never
// fails the build. An empty catalog after Initialize means no feed could
// be read.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
package catalog
