package audio

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bogem/id3v2"

	"github.com/handiism/feedmusic/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
type TagEditAction int

const (
	// TagEmpty clears the tag value.
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with the value from the feed.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags:  true,
//	    Artist:      TagModify,
//	    Album:       TagModify,
//	    TrackTitle:  TagModify,
//	    Year:        TagModify,
//	    Comments:    TagModify,      // Source and description
//	    AlbumArtist: TagDoNotModify, // Keep existing album artist
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, no string tags are modified.
	ModifyTags bool

	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// AlbumArtist controls the TPE2 (Album artist) frame.
	AlbumArtist TagEditAction

	// Album controls the TALB (Album title) frame.
	Album TagEditAction

	// Year controls the TYER (Year) frame.
	Year TagEditAction

	// Date controls the TDRC (Recording time) frame (ID3v2.4).
	Date TagEditAction

	// TrackNumber controls the TRCK (Track number) frame.
	TrackNumber TagEditAction

	// TrackTitle controls the TIT2 (Title) frame.
	TrackTitle TagEditAction

	// Comments controls the COMM (Comments) frame.
	Comments TagEditAction
}

// DefaultTagConfig returns a configuration that writes every field.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags:  true,
		Artist:      TagModify,
		AlbumArtist: TagModify,
		Album:       TagModify,
		Year:        TagModify,
		Date:        TagModify,
		TrackNumber: TagModify,
		TrackTitle:  TagModify,
		Comments:    TagModify,
	}
}

// TagInfo is the metadata written to a file.
type TagInfo struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Date        time.Time
	Number      int
	Comment     string
}

// InfoFromMusicTrack derives tag metadata from an extracted track. The
// episode stands in for the album.
func InfoFromMusicTrack(mt model.MusicTrack) TagInfo {
	comment := "source: " + string(mt.Source)
	if mt.Description != "" {
		comment += "\n" + mt.Description
	}
	return TagInfo{
		Title:   mt.Title,
		Artist:  mt.Artist,
		Album:   mt.EpisodeTitle,
		Date:    mt.EpisodeDate,
		Comment: comment,
	}
}

// InfoFromResolved derives tag metadata from an item-mode resolution. The
// resolved feed is the album.
func InfoFromResolved(r *model.ResolvedRemoteItem) (TagInfo, bool) {
	if r == nil || r.Mode != model.ModeItem || r.Item == nil || r.Feed == nil {
		return TagInfo{}, false
	}
	date := r.Item.PublishDate
	if date.IsZero() {
		date = r.Feed.ReleaseDate
	}
	return TagInfo{
		Title:       r.Item.Title,
		Artist:      r.Feed.Artist,
		Album:       r.Feed.Title,
		AlbumArtist: r.Feed.Artist,
		Date:        date,
		Number:      r.Item.Number,
		Comment:     r.Item.Summary,
	}, true
}

// Tagger writes ID3 tags to local MP3 files.
//
//	tagger := NewTagger(DefaultTagConfig())
//	info, _ := InfoFromResolved(resolved)
//	err := tagger.SaveTags("headlights.mp3", info, artworkBytes)
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger. A nil config means DefaultTagConfig().
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes info to the MP3 file at path, replacing the cover art
// when artwork is non-nil. The file must exist.
func (t *Tagger) SaveTags(path string, info TagInfo, artwork []byte) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to read tags of %s: %w", path, err)
	}
	defer tag.Close()

	if t.config.ModifyTags {
		t.updateStringTags(tag, info)
	}

	if artwork != nil {
		t.updateArtwork(tag, artwork)
	}

	return tag.Save()
}

func (t *Tagger) updateStringTags(tag *id3v2.Tag, info TagInfo) {
	switch t.config.Artist {
	case TagEmpty:
		tag.SetArtist("")
	case TagModify:
		tag.SetArtist(info.Artist)
	}

	switch t.config.Album {
	case TagEmpty:
		tag.SetAlbum("")
	case TagModify:
		tag.SetAlbum(info.Album)
	}

	// TYER is ID3v2.3, TDRC is ID3v2.4. Unknown dates leave both alone.
	switch t.config.Year {
	case TagEmpty:
		tag.DeleteFrames("TYER")
	case TagModify:
		if !info.Date.IsZero() {
			tag.AddTextFrame("TYER", id3v2.EncodingUTF8, info.Date.Format("2006"))
		}
	}

	switch t.config.Date {
	case TagEmpty:
		tag.DeleteFrames("TDRC")
	case TagModify:
		if !info.Date.IsZero() {
			tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, info.Date.Format("2006-01-02"))
		}
	}

	switch t.config.TrackNumber {
	case TagEmpty:
		tag.DeleteFrames("TRCK")
	case TagModify:
		if info.Number > 0 {
			tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, strconv.Itoa(info.Number))
		}
	}

	switch t.config.TrackTitle {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		tag.SetTitle(info.Title)
	}

	switch t.config.AlbumArtist {
	case TagEmpty:
		tag.DeleteFrames("TPE2")
	case TagModify:
		if info.AlbumArtist != "" {
			tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, info.AlbumArtist)
		}
	}

	switch t.config.Comments {
	case TagEmpty:
		tag.DeleteFrames(tag.CommonID("Comments"))
	case TagModify:
		if info.Comment != "" {
			tag.DeleteFrames(tag.CommonID("Comments"))
			tag.AddCommentFrame(id3v2.CommentFrame{
				Encoding:    id3v2.EncodingUTF8,
				Language:    "eng",
				Description: "",
				Text:        info.Comment,
			})
		}
	}
}

// updateArtwork embeds cover art as the front cover.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, artwork []byte) {
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	pic := id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	}
	tag.AddAttachedPicture(pic)
}
