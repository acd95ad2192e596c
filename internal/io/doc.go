// Package ioutils writes exported files and prepares cover art.
//
//	path := ioutils.ExportPath(settings.OutputPath, album.Title, ".m3u")
//	err := ioutils.WriteFile(ctx, path, []byte(content))
//
// ArtworkService shrinks downloaded cover art and re-encodes it as JPEG
// before it is embedded in an ID3 tag.
package ioutils
