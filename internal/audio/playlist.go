package audio

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	ioutils "github.com/handiism/feedmusic/internal/io"
	"github.com/handiism/feedmusic/internal/model"
)

// PlaylistFormat represents supported playlist file formats.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, widely supported
//   - PLS: INI-style format, used by Winamp
//   - WPL: XML format, Windows Media Player
//   - ZPL: XML format, Zune/Groove Music
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files (most compatible).
	// Can be extended with EXTINF lines for duration/title info.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS

	// FormatWPL creates .wpl files (Windows Media Player).
	FormatWPL

	// FormatZPL creates .zpl files (Zune/Groove Music).
	FormatZPL
)

// ParseFormat maps "m3u", "pls", "wpl" and "zpl" to a format. Unknown
// names fall back to M3U.
func ParseFormat(name string) PlaylistFormat {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pls":
		return FormatPLS
	case "wpl":
		return FormatWPL
	case "zpl":
		return FormatZPL
	default:
		return FormatM3U
	}
}

// Extension returns the file extension including the dot.
func (f PlaylistFormat) Extension() string {
	switch f {
	case FormatPLS:
		return ".pls"
	case FormatWPL:
		return ".wpl"
	case FormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// Entry is one playlist line: a remote location plus display metadata.
type Entry struct {
	Location string
	Title    string
	Artist   string
	Album    string
	Seconds  int
}

// EntriesFromAlbum lists the album tracks that have a playable URL.
func EntriesFromAlbum(album *model.Album) []Entry {
	var entries []Entry
	for _, t := range album.Tracks {
		if !t.HasURL() {
			continue
		}
		entries = append(entries, Entry{
			Location: t.URL,
			Title:    t.Title,
			Artist:   album.Artist,
			Album:    album.Title,
			Seconds:  t.Seconds,
		})
	}
	return entries
}

// EntriesFromTracks lists extracted tracks that have an audio URL. A
// time-bounded track points into the episode audio with a media fragment
// ("#t=start,end").
func EntriesFromTracks(tracks []model.MusicTrack) []Entry {
	var entries []Entry
	for _, t := range tracks {
		if t.AudioURL == "" {
			continue
		}
		loc := t.AudioURL
		seconds := int(t.Duration)
		if t.TimeBounded() {
			loc += "#t=" + formatSeconds(t.StartTime)
			if t.EndTime > t.StartTime {
				loc += "," + formatSeconds(t.EndTime)
				if seconds == 0 {
					seconds = int(t.EndTime - t.StartTime)
				}
			}
		}
		entries = append(entries, Entry{
			Location: loc,
			Title:    t.Title,
			Artist:   t.Artist,
			Album:    t.EpisodeTitle,
			Seconds:  seconds,
		})
	}
	return entries
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

// PlaylistCreator generates playlist files in various formats.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist(album.Title, EntriesFromAlbum(album))
//	os.WriteFile("night-drive.m3u", []byte(content), 0644)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:180,The Lanterns - Headlights
//	// https://cdn.example.com/headlights.mp3
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator. extended only affects
// M3U output.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Format returns the output format.
func (p *PlaylistCreator) Format() PlaylistFormat {
	return p.format
}

// CreatePlaylist generates playlist content. Entry locations are written
// as given, so remote URLs stay remote.
func (p *PlaylistCreator) CreatePlaylist(title string, entries []Entry) string {
	switch p.format {
	case FormatPLS:
		return p.createPLS(entries)
	case FormatWPL:
		return p.createWPL(title, entries)
	case FormatZPL:
		return p.createZPL(title, entries)
	default:
		return p.createM3U(entries)
	}
}

func (p *PlaylistCreator) createM3U(entries []Entry) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, e := range entries {
		if p.extended {
			sb.WriteString(fmt.Sprintf("#EXTINF:%d,%s - %s\n", e.Seconds, e.Artist, e.Title))
		}
		sb.WriteString(e.Location + "\n")
	}

	return sb.String()
}

// createPLS generates an INI-style PLS playlist:
//
//	[playlist]
//	File1=https://cdn.example.com/1.mp3
//	Title1=Artist - Title
//	Length1=180
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, e := range entries {
		idx := i + 1
		length := e.Seconds
		if length == 0 {
			length = -1
		}
		sb.WriteString(fmt.Sprintf("File%d=%s\n", idx, e.Location))
		sb.WriteString(fmt.Sprintf("Title%d=%s - %s\n", idx, e.Artist, e.Title))
		sb.WriteString(fmt.Sprintf("Length%d=%d\n", idx, length))
	}

	sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", len(entries)))
	sb.WriteString("Version=2\n")

	return sb.String()
}

func (p *PlaylistCreator) createWPL(title string, entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(title)))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("      <media src=\"%s\"/>\n", escapeXML(e.Location)))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// createZPL is WPL plus per-entry album, artist and duration attributes.
func (p *PlaylistCreator) createZPL(title string, entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(title)))
	sb.WriteString("    <meta name=\"Generator\" content=\"feedmusic\"/>\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(entries)))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("      <media src=\"%s\" albumTitle=\"%s\" albumArtist=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\" duration=\"%d\"/>\n",
			escapeXML(e.Location),
			escapeXML(e.Album),
			escapeXML(e.Artist),
			escapeXML(e.Title),
			escapeXML(e.Artist),
			e.Seconds*1000))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// WritePlaylist renders entries and writes the playlist to dir, named
// after title with the format's extension. It returns the written path.
func (p *PlaylistCreator) WritePlaylist(ctx context.Context, dir, title string, entries []Entry) (string, error) {
	path := ioutils.ExportPath(dir, title, p.format.Extension())
	if err := ioutils.WriteFile(ctx, path, []byte(p.CreatePlaylist(title, entries))); err != nil {
		return "", fmt.Errorf("failed to write playlist %s: %w", path, err)
	}
	return path, nil
}
