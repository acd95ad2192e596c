// Package audio turns catalog data into playlists and ID3 tags.
//
// # Playlist Generation
//
// Playlists reference remote audio directly. Tracks mined from an episode
// point into the episode enclosure with a "#t=start,end" media fragment:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist(album.Title, audio.EntriesFromAlbum(album))
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
//
// # ID3 Tagging
//
// The Tagger writes feed metadata to a local MP3 file:
//
//	info, _ := audio.InfoFromResolved(resolved)
//	err := audio.NewTagger(nil).SaveTags(path, info, artworkBytes)
package audio
