// Package dto holds the JSON shapes of documents referenced from feeds.
package dto

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/handiism/feedmusic/internal/model"
)

// Version accepts the chapter file version as a string or a number.
type Version string

// UnmarshalJSON implements json.Unmarshaler.
func (v *Version) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Version(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Version(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// Seconds accepts a time offset as a number or a numeric string.
type Seconds float64

// UnmarshalJSON implements json.Unmarshaler.
func (s *Seconds) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*s = Seconds(f)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		// An unreadable offset counts as missing.
		*s = 0
		return nil
	}
	*s = Seconds(f)
	return nil
}

// JSONChapters is a podcast:chapters document.
type JSONChapters struct {
	Version  Version       `json:"version"`
	Chapters []JSONChapter `json:"chapters"`
}

// JSONChapter is one chapter entry. Some publishers write "image", others
// "img".
type JSONChapter struct {
	Title     string   `json:"title"`
	StartTime Seconds  `json:"startTime"`
	EndTime   *Seconds `json:"endTime,omitempty"`
	URL       string   `json:"url,omitempty"`
	Img       string   `json:"img,omitempty"`
	Image     string   `json:"image,omitempty"`
}

// ToChapters converts the document into model chapters. Untitled entries
// are skipped.
func (c *JSONChapters) ToChapters() []model.Chapter {
	out := make([]model.Chapter, 0, len(c.Chapters))
	for _, ch := range c.Chapters {
		title := strings.TrimSpace(ch.Title)
		if title == "" {
			continue
		}
		mc := model.Chapter{
			Title:     title,
			StartTime: float64(ch.StartTime),
			URL:       ch.URL,
			Image:     ch.Image,
		}
		if mc.Image == "" {
			mc.Image = ch.Img
		}
		if ch.EndTime != nil {
			mc.EndTime = float64(*ch.EndTime)
		}
		out = append(out, mc)
	}
	return out
}

// ParseChapters decodes a chapters document.
func ParseChapters(data []byte) ([]model.Chapter, error) {
	var doc JSONChapters
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.ToChapters(), nil
}
