package directory

import (
	"slices"
	"strings"
	"time"

	"github.com/handiism/feedmusic/internal/feed"
	"github.com/handiism/feedmusic/internal/model"
)

// Feed is a feed record as returned by the directory.
type Feed struct {
	ID           int64             `json:"id"`
	PodcastGUID  string            `json:"podcastGuid"`
	Title        string            `json:"title"`
	URL          string            `json:"url"`
	OriginalURL  string            `json:"originalUrl"`
	Link         string            `json:"link"`
	Description  string            `json:"description"`
	Author       string            `json:"author"`
	OwnerName    string            `json:"ownerName"`
	Image        string            `json:"image"`
	Artwork      string            `json:"artwork"`
	Medium       string            `json:"medium"`
	Language     string            `json:"language"`
	Explicit     bool              `json:"explicit"`
	EpisodeCount int               `json:"episodeCount"`
	Categories   map[string]string `json:"categories"`
	Value        *Value            `json:"value"`
}

// Episode is an episode record as returned by the directory.
type Episode struct {
	ID            int64  `json:"id"`
	GUID          string `json:"guid"`
	Title         string `json:"title"`
	Link          string `json:"link"`
	Description   string `json:"description"`
	DatePublished int64  `json:"datePublished"`
	EnclosureURL  string `json:"enclosureUrl"`
	EnclosureType string `json:"enclosureType"`
	Duration      int    `json:"duration"`
	Explicit      int    `json:"explicit"`
	Episode       int    `json:"episode"`
	Image         string `json:"image"`
	FeedImage     string `json:"feedImage"`
	FeedID        int64  `json:"feedId"`
	FeedTitle     string `json:"feedTitle"`
	FeedGUID      string `json:"podcastGuid"`
	FeedURL       string `json:"feedUrl"`
	ChaptersURL   string `json:"chaptersUrl"`
	Value         *Value `json:"value"`
}

// Value is the directory's rendering of a podcast:value block.
type Value struct {
	Model struct {
		Type      string `json:"type"`
		Method    string `json:"method"`
		Suggested string `json:"suggested"`
	} `json:"model"`
	Destinations []Destination `json:"destinations"`
}

// Destination is one value recipient.
type Destination struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Type        string  `json:"type"`
	Split       float64 `json:"split"`
	Fee         bool    `json:"fee"`
	CustomKey   string  `json:"customKey"`
	CustomValue string  `json:"customValue"`
}

// ToValueBlock converts the value into the model form. Nil stays nil.
func (v *Value) ToValueBlock() *model.ValueBlock {
	if v == nil {
		return nil
	}
	vb := &model.ValueBlock{
		Type:      v.Model.Type,
		Method:    v.Model.Method,
		Suggested: v.Model.Suggested,
	}
	for _, d := range v.Destinations {
		r := model.ValueRecipient{
			Name:        d.Name,
			Type:        model.RecipientLocal,
			Address:     d.Address,
			Percentage:  d.Split,
			CustomKey:   d.CustomKey,
			CustomValue: d.CustomValue,
			Fee:         d.Fee,
		}
		switch t := strings.ToLower(d.Type); t {
		case string(model.RecipientRemote):
			r.Type = model.RecipientRemote
		case string(model.RecipientLocal), "":
		default:
			r.AddressType = t
		}
		vb.Recipients = append(vb.Recipients, r)
	}
	return vb
}

// Album builds album metadata from the directory record, without tracks.
// It stands in for the feed document when the feed itself is unreachable.
func (f *Feed) Album() *model.Album {
	a := &model.Album{
		GUID:        f.PodcastGUID,
		FeedURL:     f.URL,
		Title:       f.Title,
		Artist:      firstNonEmpty(f.Author, f.OwnerName, "Unknown Artist"),
		Description: f.Description,
		Link:        f.Link,
		Medium:      f.Medium,
		Language:    f.Language,
		Explicit:    f.Explicit,
		Value:       f.Value.ToValueBlock(),
	}
	if a.Title == "" {
		a.Title = "Unknown Album"
	}
	if img := firstNonEmpty(f.Artwork, f.Image); img != "" {
		a.CoverArt = &img
	}
	for _, c := range f.Categories {
		a.Keywords = append(a.Keywords, c)
	}
	slices.Sort(a.Keywords)
	return a
}

// Track converts the episode into a feed-native track.
func (e *Episode) Track() *model.Track {
	t := &model.Track{
		GUID:        e.GUID,
		Number:      e.Episode,
		Title:       e.Title,
		Seconds:     e.Duration,
		Duration:    feed.FormatDuration(e.Duration),
		URL:         e.EnclosureURL,
		Summary:     feed.StripHTML(e.Description),
		Description: e.Description,
		Image:       firstNonEmpty(e.Image, e.FeedImage),
		Explicit:    e.Explicit == 1,
		ChaptersURL: e.ChaptersURL,
		Value:       e.Value.ToValueBlock(),
	}
	if e.DatePublished > 0 {
		t.PublishDate = time.Unix(e.DatePublished, 0).UTC()
	}
	if t.Number <= 0 {
		t.Number = 1
	}
	return t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
