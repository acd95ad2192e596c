package feed

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	tagRegex        = regexp.MustCompile(`<[^>]*>`)
	blockTagRegex   = regexp.MustCompile(`(?i)<\s*(br|/p|/li|/div|/h[1-6]|li)\b[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	blankLineRegex  = regexp.MustCompile(`[ \t\f\v\r]+`)
)

// entityReplacer decodes the entities feeds commonly leave in text. &amp;
// goes last so "&amp;lt;" becomes "&lt;" and not "<".
var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&#039;", "'",
	"&apos;", "'",
)

func decodeEntities(s string) string {
	s = entityReplacer.Replace(s)
	return strings.ReplaceAll(s, "&amp;", "&")
}

// StripHTML removes markup from a free-text field, decodes the common
// entities and collapses whitespace.
//
//	StripHTML("Rock &amp; Roll <b>Live</b>") // "Rock & Roll Live"
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	s = tagRegex.ReplaceAllString(s, " ")
	s = decodeEntities(s)
	// Decoding can expose markup that was double-escaped.
	s = tagRegex.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// TextLines is like StripHTML but keeps line structure: line breaks and
// the ends of paragraphs and list items separate lines. Empty lines are
// dropped.
func TextLines(s string) []string {
	s = blockTagRegex.ReplaceAllString(s, "\n")
	s = tagRegex.ReplaceAllString(s, " ")
	s = decodeEntities(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(blankLineRegex.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ParseDuration converts a duration string to seconds. It accepts bare
// seconds ("125", "125.7"), "MM:SS" and "H:MM:SS". Fractions are
// truncated.
func ParseDuration(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, false
	}

	total := 0.0
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return 0, false
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, false
		}
		// Only the last component may carry a fraction.
		if i < len(parts)-1 && v != math.Trunc(v) {
			return 0, false
		}
		total = total*60 + v
	}
	return int(total), true
}

// FormatDuration renders seconds as "M:SS". Hours fold into minutes.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// NormalizeDuration normalizes an itunes:duration value to "M:SS".
// Missing or unparseable input yields "0:00".
//
//	NormalizeDuration("125")     // "2:05"
//	NormalizeDuration("1:05:30") // "65:30"
func NormalizeDuration(s string) string {
	secs, ok := ParseDuration(s)
	if !ok {
		return "0:00"
	}
	return FormatDuration(secs)
}

var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04 -0700",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDate tries the date layouts seen in feeds. The zero time means
// unknown.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "explicit", "1":
		return true
	}
	return false
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// safeURL rejects script and inline-data URLs.
func safeURL(u string) bool {
	lower := strings.ToLower(u)
	return !strings.Contains(lower, "javascript:") && !strings.Contains(lower, "data:")
}
