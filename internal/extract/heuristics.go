package extract

import (
	"regexp"
	"strings"
)

// splitRule splits a title into artist and title. Rules are tried in
// order; the first that matches wins.
type splitRule struct {
	name  string
	split func(s string) (artist, title string, ok bool)
}

var (
	musicPrefixRegex = regexp.MustCompile(`(?i)^\s*(?:now playing|featured (?:song|track)|song|track|music|tune)\s*#?\d*\s*[:\-–—]\s*`)
	spacedDashRegex  = regexp.MustCompile(`^(.+?)\s+[-–—]\s+(.+)$`)
	wideDashRegex    = regexp.MustCompile(`^(.+?)\s*[–—]\s*(.+)$`)
	colonRegex       = regexp.MustCompile(`^([^:]+?)\s*:\s*(.+)$`)
	quotedRegex      = regexp.MustCompile(`^(.+?)\s*["“'‘](.+?)["”'’]\s*$`)
	parenRegex       = regexp.MustCompile(`(?i)^(.+?)\s*\((?:by\s+)?(.+?)\)\s*$`)
)

func regexRule(name string, re *regexp.Regexp, artistGroup, titleGroup int) splitRule {
	return splitRule{
		name: name,
		split: func(s string) (string, string, bool) {
			m := re.FindStringSubmatch(s)
			if m == nil {
				return "", "", false
			}
			artist := strings.TrimSpace(m[artistGroup])
			title := strings.TrimSpace(m[titleGroup])
			if artist == "" || title == "" {
				return "", "", false
			}
			return artist, title, true
		},
	}
}

// splitRules in precedence order: dash, colon, quotes, parentheses.
var splitRules = []splitRule{
	regexRule("dash", spacedDashRegex, 1, 2),
	regexRule("wide-dash", wideDashRegex, 1, 2),
	regexRule("colon", colonRegex, 1, 2),
	regexRule("quotes", quotedRegex, 1, 2),
	// "Title (Artist)" and "Title (by Artist)"
	regexRule("parentheses", parenRegex, 2, 1),
}

// StripMusicPrefix removes a leading marker such as "Song:" or
// "Track 3 -" from a chapter title.
func StripMusicPrefix(s string) string {
	return strings.TrimSpace(musicPrefixRegex.ReplaceAllString(s, ""))
}

// SplitArtistTitle splits a chapter or item title into artist and title.
// A leading music marker is dropped first. When no rule matches, ok is
// false and title is the cleaned input.
//
//	SplitArtistTitle("Song: The Lanterns - Headlights") // "The Lanterns", "Headlights", true
//	SplitArtistTitle("Headlights (The Lanterns)")       // "The Lanterns", "Headlights", true
func SplitArtistTitle(s string) (artist, title string, ok bool) {
	cleaned := StripMusicPrefix(s)
	if cleaned == "" {
		cleaned = strings.TrimSpace(s)
	}
	for _, rule := range splitRules {
		if a, t, ok := rule.split(cleaned); ok {
			return a, t, true
		}
	}
	return "", cleaned, false
}

// IsMusicChapter reports whether a chapter title contains one of the
// music keywords. Matching is case-insensitive.
func IsMusicChapter(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
