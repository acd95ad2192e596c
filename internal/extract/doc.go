// Package extract infers music tracks from podcast episodes and
// playlist-style feeds.
//
// Four independent extractors feed the Pipeline:
//
//  1. Chapters: entries of a podcast:chapters file whose title names a song
//  2. Value splits: podcast:valueTimeSplit segments paying a remote recipient
//  3. Descriptions: "Artist - Title" style lines mined from episode text
//  4. Playlists: whole feeds flagged musicL or carrying channel-level
//     remote items
//
// Their output is concatenated, so one song may show up from more than one
// extractor. Every model.MusicTrack carries its Source; description-mined
// tracks are heuristic and should be trusted less.
//
// # Usage
//
//	pipeline := extract.NewPipeline(extract.DefaultConfig(), client, parser,
//	    extract.WithResolver(orchestrator),
//	    extract.WithLogger(logger),
//	)
//
//	tracks, album, err := pipeline.ExtractFeed(ctx, feedURL)
//	if err != nil {
//	    // the feed itself could not be fetched or parsed
//	}
//
// A malformed chapter file, description or item is skipped; only an
// unreachable feed fails extraction.
//
// # Heuristics
//
// The title splitting and music-chapter detection rules are exported as
// pure functions (SplitArtistTitle, IsMusicChapter, MatchDescriptionLine)
// so they can be tested and reused on their own.
package extract
