package audio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bogem/id3v2"

	"github.com/handiism/feedmusic/internal/model"
)

func writeFakeMP3(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "track.mp3")
	// Frame sync bytes followed by padding; enough for id3v2 to treat the
	// file as untagged audio.
	if err := os.WriteFile(path, append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 256)...), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTagger_SaveTags_Resolved(t *testing.T) {
	path := writeFakeMP3(t)
	resolved := &model.ResolvedRemoteItem{
		Mode: model.ModeItem,
		Feed: &model.Album{Title: "Night Drive", Artist: "The Lanterns", ReleaseDate: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)},
		Item: &model.Track{Title: "Headlights", Number: 3, Summary: "Opening track"},
	}

	info, ok := InfoFromResolved(resolved)
	if !ok {
		t.Fatal("InfoFromResolved() returned false for an item-mode resolution")
	}

	artwork := []byte("fake-jpeg")
	if err := NewTagger(nil).SaveTags(path, info, artwork); err != nil {
		t.Fatalf("SaveTags() error = %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer tag.Close()

	if got := tag.Title(); got != "Headlights" {
		t.Errorf("Title = %q, want %q", got, "Headlights")
	}
	if got := tag.Artist(); got != "The Lanterns" {
		t.Errorf("Artist = %q, want %q", got, "The Lanterns")
	}
	if got := tag.Album(); got != "Night Drive" {
		t.Errorf("Album = %q, want %q", got, "Night Drive")
	}
	if got := tag.GetTextFrame("TRCK").Text; got != "3" {
		t.Errorf("TRCK = %q, want %q", got, "3")
	}
	if got := tag.GetTextFrame("TYER").Text; got != "2023" {
		t.Errorf("TYER = %q, want %q", got, "2023")
	}

	comments := tag.GetFrames(tag.CommonID("Comments"))
	if len(comments) != 1 {
		t.Fatalf("got %d comment frames, want 1", len(comments))
	}
	if cf, ok := comments[0].(id3v2.CommentFrame); !ok || cf.Text != "Opening track" {
		t.Errorf("comment = %#v, want text %q", comments[0], "Opening track")
	}

	pics := tag.GetFrames(tag.CommonID("Attached picture"))
	if len(pics) != 1 {
		t.Fatalf("got %d picture frames, want 1", len(pics))
	}
	if pf, ok := pics[0].(id3v2.PictureFrame); !ok || !bytes.Equal(pf.Picture, artwork) {
		t.Error("artwork was not embedded")
	}
}

func TestTagger_SaveTags_MusicTrack(t *testing.T) {
	path := writeFakeMP3(t)
	info := InfoFromMusicTrack(model.MusicTrack{
		Title:        "Afterglow",
		Artist:       "Neon Sky",
		EpisodeTitle: "Episode 42",
		Source:       model.SourceChapter,
	})

	cfg := DefaultTagConfig()
	cfg.Album = TagDoNotModify
	if err := NewTagger(cfg).SaveTags(path, info, nil); err != nil {
		t.Fatalf("SaveTags() error = %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer tag.Close()

	if got := tag.Title(); got != "Afterglow" {
		t.Errorf("Title = %q, want %q", got, "Afterglow")
	}
	if got := tag.Album(); got != "" {
		t.Errorf("Album = %q, want it untouched", got)
	}
	if got := tag.GetTextFrame("TYER").Text; got != "" {
		t.Errorf("TYER = %q, want empty for an undated track", got)
	}
	comments := tag.GetFrames(tag.CommonID("Comments"))
	if len(comments) != 1 || comments[0].(id3v2.CommentFrame).Text != "source: chapter" {
		t.Errorf("comment frames = %#v", comments)
	}
}

func TestTagger_SaveTags_MissingFile(t *testing.T) {
	err := NewTagger(nil).SaveTags(filepath.Join(t.TempDir(), "nope.mp3"), TagInfo{Title: "x"}, nil)
	if !os.IsNotExist(err) {
		t.Errorf("SaveTags() error = %v, want not-exist", err)
	}
}

func TestInfoFromResolved_FeedMode(t *testing.T) {
	if _, ok := InfoFromResolved(&model.ResolvedRemoteItem{Mode: model.ModeFeed, Feed: &model.Album{}}); ok {
		t.Error("InfoFromResolved() should reject feed-mode resolutions")
	}
	if _, ok := InfoFromResolved(nil); ok {
		t.Error("InfoFromResolved(nil) should return false")
	}
}
