// Package ordering provides named post-processing hooks that override the
// source order of an album's tracks.
//
// Track order normally follows the feed. A few albums publish their items
// out of sequence; for those a canonical title sequence can be registered
// under the album's key (feed GUID or lower-cased title). This is a narrow
// override, not a general sorting mechanism.
//
//	hooks := ordering.NewRegistry()
//	hooks.Register("c0ffee-guid", ordering.NewCanonicalOrder("Concept Album", []string{
//	    "Prologue", "The Long Road", "Epilogue",
//	}))
//	perm, ok := hooks.Order(album.Key(), titles)
package ordering

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Hook computes a new order for a list of track titles. It returns a
// permutation of indexes into titles.
type Hook interface {
	Name() string
	Order(titles []string) []int
}

// Registry maps album keys to hooks. The zero value is not usable; create
// one with NewRegistry. Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	hooks map[string]Hook
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[string]Hook)}
}

// Register installs a hook for an album key. Keys are matched
// case-insensitively.
func (r *Registry) Register(albumKey string, hook Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[strings.ToLower(strings.TrimSpace(albumKey))] = hook
}

// Lookup returns the hook registered for an album key.
func (r *Registry) Lookup(albumKey string) (Hook, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hooks[strings.ToLower(strings.TrimSpace(albumKey))]
	return h, ok
}

// Order applies the hook registered for albumKey, if any.
func (r *Registry) Order(albumKey string, titles []string) ([]int, bool) {
	h, ok := r.Lookup(albumKey)
	if !ok {
		return nil, false
	}
	return h.Order(titles), true
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks)
}

// CanonicalOrder orders tracks by an externally supplied title sequence.
// A track matches a sequence entry when either normalized title contains
// the other. Tracks matching no entry keep their relative source order
// after all matched tracks.
type CanonicalOrder struct {
	name     string
	sequence []string
}

// NewCanonicalOrder creates a CanonicalOrder hook.
func NewCanonicalOrder(name string, sequence []string) *CanonicalOrder {
	normalized := make([]string, 0, len(sequence))
	for _, s := range sequence {
		if n := Normalize(s); n != "" {
			normalized = append(normalized, n)
		}
	}
	return &CanonicalOrder{name: name, sequence: normalized}
}

// Name returns the hook name.
func (c *CanonicalOrder) Name() string {
	return c.name
}

// Order implements Hook.
func (c *CanonicalOrder) Order(titles []string) []int {
	used := make([]bool, len(titles))
	normalized := make([]string, len(titles))
	for i, t := range titles {
		normalized[i] = Normalize(t)
	}

	perm := make([]int, 0, len(titles))
	for _, want := range c.sequence {
		for i, got := range normalized {
			if used[i] || got == "" {
				continue
			}
			if strings.Contains(got, want) || strings.Contains(want, got) {
				used[i] = true
				perm = append(perm, i)
				break
			}
		}
	}
	for i := range titles {
		if !used[i] {
			perm = append(perm, i)
		}
	}
	return perm
}

var (
	punctRegex      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Normalize folds a title for comparison: decomposes and drops diacritics,
// replaces punctuation with spaces, lower-cases and collapses whitespace.
func Normalize(text string) string {
	text = norm.NFKD.String(text)

	var b strings.Builder
	for _, r := range text {
		if !unicode.IsMark(r) {
			b.WriteRune(r)
		}
	}
	text = b.String()

	text = punctRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(strings.ToLower(text))
}

// Apply reorders items by perm. Indexes outside items are ignored, and
// items missing from perm are appended in their original order.
func Apply[T any](items []T, perm []int) []T {
	out := make([]T, 0, len(items))
	seen := make([]bool, len(items))
	for _, i := range perm {
		if i < 0 || i >= len(items) || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, items[i])
	}
	for i, item := range items {
		if !seen[i] {
			out = append(out, item)
		}
	}
	return out
}
