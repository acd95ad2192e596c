package audio

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/feedmusic/internal/model"
)

func TestPlaylistCreator_M3U(t *testing.T) {
	creator := NewPlaylistCreator(FormatM3U, false)

	content := creator.CreatePlaylist("Night Drive", EntriesFromAlbum(createTestAlbum()))

	want := "https://cdn.example.com/1.mp3\nhttps://cdn.example.com/2.mp3\n"
	if content != want {
		t.Errorf("M3U = %q, want %q", content, want)
	}
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	creator := NewPlaylistCreator(FormatM3U, true)

	content := creator.CreatePlaylist("Night Drive", EntriesFromAlbum(createTestAlbum()))

	if !strings.HasPrefix(content, "#EXTM3U\n") {
		t.Error("Extended M3U should start with #EXTM3U")
	}
	if !strings.Contains(content, "#EXTINF:180,The Lanterns - Headlights\n") {
		t.Errorf("Extended M3U missing EXTINF line:\n%s", content)
	}
}

func TestPlaylistCreator_PLS(t *testing.T) {
	creator := NewPlaylistCreator(FormatPLS, false)

	content := creator.CreatePlaylist("Night Drive", EntriesFromAlbum(createTestAlbum()))

	for _, want := range []string{
		"[playlist]\n",
		"File1=https://cdn.example.com/1.mp3\n",
		"Title2=The Lanterns - Overpass\n",
		"Length2=-1\n",
		"NumberOfEntries=2\n",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("PLS missing %q:\n%s", want, content)
		}
	}
}

func TestPlaylistCreator_WPL(t *testing.T) {
	creator := NewPlaylistCreator(FormatWPL, false)

	content := creator.CreatePlaylist("Night Drive", EntriesFromAlbum(createTestAlbum()))

	if !strings.Contains(content, "<?wpl") {
		t.Error("WPL should contain XML declaration")
	}
	if !strings.Contains(content, `<media src="https://cdn.example.com/2.mp3"/>`) {
		t.Error("WPL should contain media elements")
	}
}

func TestPlaylistCreator_ZPL(t *testing.T) {
	creator := NewPlaylistCreator(FormatZPL, false)

	content := creator.CreatePlaylist("Night Drive", EntriesFromAlbum(createTestAlbum()))

	if !strings.Contains(content, `albumTitle="Night Drive"`) {
		t.Error("ZPL should contain albumTitle attribute")
	}
	if !strings.Contains(content, `duration="180000"`) {
		t.Error("ZPL should contain duration in milliseconds")
	}
}

func TestPlaylistCreator_XMLEscape(t *testing.T) {
	album := &model.Album{
		Title:  "Album <Special>",
		Artist: "Artist & Co",
		Tracks: []*model.Track{{Title: `Track & "Quote"`, URL: "https://cdn.example.com/a.mp3?x=1&y=2"}},
	}

	creator := NewPlaylistCreator(FormatZPL, false)
	content := creator.CreatePlaylist(album.Title, EntriesFromAlbum(album))

	if strings.Contains(content, "<Special>") {
		t.Error("ZPL should escape < and >")
	}
	if !strings.Contains(content, "x=1&amp;y=2") {
		t.Error("ZPL should escape & in locations")
	}
	if !strings.Contains(content, "Track &amp; &quot;Quote&quot;") {
		t.Error("ZPL should escape quotes in titles")
	}
}

func TestEntriesFromTracks(t *testing.T) {
	tracks := []model.MusicTrack{
		{Title: "Afterglow", Artist: "Neon Sky", AudioURL: "https://cdn/ep.mp3", StartTime: 120, EndTime: 300.5, Source: model.SourceChapter},
		{Title: "No Audio", Artist: "Ghost", Source: model.SourceDescription},
		{Title: "Whole", Artist: "Band", AudioURL: "https://cdn/whole.mp3", Duration: 95, Source: model.SourceExternalFeed},
	}

	entries := EntriesFromTracks(tracks)
	if len(entries) != 2 {
		t.Fatalf("EntriesFromTracks() returned %d entries, want 2", len(entries))
	}
	if got, want := entries[0].Location, "https://cdn/ep.mp3#t=120,300.5"; got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
	if got, want := entries[0].Seconds, 180; got != want {
		t.Errorf("Seconds = %d, want %d", got, want)
	}
	if got, want := entries[1].Location, "https://cdn/whole.mp3"; got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  PlaylistFormat
		ext   string
	}{
		{"m3u", FormatM3U, ".m3u"},
		{"PLS", FormatPLS, ".pls"},
		{"wpl", FormatWPL, ".wpl"},
		{" zpl ", FormatZPL, ".zpl"},
		{"xspf", FormatM3U, ".m3u"},
	}

	for _, tt := range tests {
		got := ParseFormat(tt.input)
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if got.Extension() != tt.ext {
			t.Errorf("ParseFormat(%q).Extension() = %q, want %q", tt.input, got.Extension(), tt.ext)
		}
	}
}

func createTestAlbum() *model.Album {
	return &model.Album{
		Title:  "Night Drive",
		Artist: "The Lanterns",
		Tracks: []*model.Track{
			{Number: 1, Title: "Headlights", URL: "https://cdn.example.com/1.mp3", Seconds: 180, Duration: "3:00"},
			{Number: 2, Title: "Overpass", URL: "https://cdn.example.com/2.mp3"},
			{Number: 3, Title: "Unreleased"},
		},
	}
}

func TestPlaylistCreator_WritePlaylist(t *testing.T) {
	dir := t.TempDir()
	creator := NewPlaylistCreator(FormatPLS, false)

	path, err := creator.WritePlaylist(context.Background(), dir, "Night: Drive", EntriesFromAlbum(createTestAlbum()))
	if err != nil {
		t.Fatalf("WritePlaylist() error = %v", err)
	}
	if want := filepath.Join(dir, "Night_ Drive.pls"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "[playlist]\n") {
		t.Errorf("unexpected content:\n%s", data)
	}
}
