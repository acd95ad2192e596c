package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/handiism/feedmusic/internal/feed"
	"github.com/handiism/feedmusic/internal/model"
)

// DescriptionMatch is one song found in episode text.
type DescriptionMatch struct {
	Artist  string
	Title   string
	Pattern string

	// StartTime is the leading timestamp of the line, in seconds. HasTime
	// tells a zero timestamp from none.
	StartTime float64
	HasTime   bool
}

// descriptionPattern is one line shape. Artist and title are capture
// group indexes.
type descriptionPattern struct {
	name   string
	re     *regexp.Regexp
	artist int
	title  int
}

var descriptionPatterns = []descriptionPattern{
	{"artist-dash-title", regexp.MustCompile(`^(.+?)\s+[-–—]\s+(.+)$`), 1, 2},
	{"artist-colon-title", regexp.MustCompile(`^([^:]+?):\s+(.+)$`), 1, 2},
	{"title-by-artist", regexp.MustCompile(`(?i)^(.+?)\s+by\s+(.+)$`), 2, 1},
	{"artist-quoted-title", regexp.MustCompile(`^(.+?)\s+["“'‘](.+?)["”'’]$`), 1, 2},
	{"artist-pipe-title", regexp.MustCompile(`^(.+?)\s*\|\s*(.+)$`), 1, 2},
}

var (
	bulletRegex    = regexp.MustCompile(`^(?:[-*•·–—>]+|\d{1,3}[.)])\s+`)
	timestampRegex = regexp.MustCompile(`^[\[(]?((?:\d{1,2}:)?\d{1,2}:\d{2})[\])]?\s*(?:[-–—]\s*)?`)
	markupRegex    = regexp.MustCompile(`[<>]|&[a-zA-Z#0-9]+;`)
	urlRegex       = regexp.MustCompile(`(?i)https?://|www\.|\.(?:com|net|org|io|fm)\b`)
)

// MatchDescriptionLine applies the description patterns to one line of
// text. Bullets and a leading timestamp are removed first. A match is
// discarded when either field contains markup or a URL or is shorter than
// cfg.MinFieldLength. It is also discarded when the line contains a
// blocklisted word or the artist opens with one of cfg.ArtistStopwords.
func MatchDescriptionLine(line string, cfg Config) (DescriptionMatch, bool) {
	cfg = cfg.withDefaults()

	line = strings.TrimSpace(line)
	line = bulletRegex.ReplaceAllString(line, "")

	var m DescriptionMatch
	if ts := timestampRegex.FindStringSubmatch(line); ts != nil {
		if secs, ok := feed.ParseDuration(ts[1]); ok {
			m.StartTime = float64(secs)
			m.HasTime = true
		}
		line = strings.TrimSpace(line[len(ts[0]):])
		line = bulletRegex.ReplaceAllString(line, "")
	}
	if line == "" || blocklisted(line, cfg.Blocklist) {
		return DescriptionMatch{}, false
	}

	for _, p := range descriptionPatterns {
		sub := p.re.FindStringSubmatch(line)
		if sub == nil {
			continue
		}
		artist := strings.TrimSpace(sub[p.artist])
		title := strings.Trim(strings.TrimSpace(sub[p.title]), `"“”'‘’`)
		if !acceptableField(artist, cfg) || !acceptableField(title, cfg) || proseLead(artist, cfg.ArtistStopwords) {
			continue
		}
		m.Artist, m.Title, m.Pattern = artist, title, p.name
		return m, true
	}
	return DescriptionMatch{}, false
}

func acceptableField(s string, cfg Config) bool {
	if utf8.RuneCountInString(s) < cfg.MinFieldLength {
		return false
	}
	return !markupRegex.MatchString(s) && !urlRegex.MatchString(s)
}

// proseLead reports whether the artist field opens with a stopword, as in
// "Thanks to our sponsor: Acme" or "Note: ...".
func proseLead(artist string, stopwords []string) bool {
	first, _, _ := strings.Cut(strings.ToLower(artist), " ")
	first = strings.TrimFunc(first, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
	if first == "" {
		return false
	}
	for _, w := range stopwords {
		if strings.EqualFold(w, first) {
			return true
		}
	}
	return false
}

func blocklisted(line string, words []string) bool {
	lower := strings.ToLower(line)
	for _, w := range words {
		if w != "" && strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// extractDescription mines the episode description line by line. The
// same artist and title pair is reported once. A timestamped match ends
// where the next timestamped match starts.
func (p *Pipeline) extractDescription(album *model.Album, track *model.Track) []model.MusicTrack {
	text := track.Description
	if text == "" {
		text = track.Summary
	}
	if text == "" {
		return nil
	}

	var (
		out   []model.MusicTrack
		timed []bool
	)
	seen := make(map[string]bool)
	for _, line := range feed.TextLines(text) {
		m, ok := MatchDescriptionLine(line, p.cfg)
		if !ok {
			continue
		}
		key := strings.ToLower(m.Artist + "|" + m.Title)
		if seen[key] {
			continue
		}
		seen[key] = true

		mt := episodeTrack(album, track, model.SourceDescription)
		mt.Artist = m.Artist
		mt.Title = m.Title
		mt.Description = line
		if m.HasTime {
			mt.StartTime = m.StartTime
		}
		out = append(out, mt)
		timed = append(timed, m.HasTime)
	}

	for i := range out {
		if !timed[i] {
			continue
		}
		for j := i + 1; j < len(out); j++ {
			if timed[j] && out[j].StartTime > out[i].StartTime {
				out[i].EndTime = out[j].StartTime
				out[i].Duration = out[i].EndTime - out[i].StartTime
				break
			}
		}
	}
	return out
}
