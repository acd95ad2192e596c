package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// Canonical prefixes for the namespaces the parser cares about. The XML
// decoder reports declared namespaces by URI; undeclared prefixes come
// through verbatim, so both forms end up on the same prefix.
var namespacePrefixes = map[string]string{
	"https://podcastindex.org/namespace/1.0":                                     "podcast",
	"http://podcastindex.org/namespace/1.0":                                      "podcast",
	"https://github.com/podcastindex-org/podcast-namespace/blob/main/docs/1.0.md": "podcast",
	"http://www.itunes.com/dtds/podcast-1.0.dtd":                                 "itunes",
	"https://www.itunes.com/dtds/podcast-1.0.dtd":                                "itunes",
	"http://search.yahoo.com/mrss/":                                              "media",
	"http://purl.org/rss/1.0/modules/content/":                                   "content",
	"http://www.w3.org/2005/Atom":                                                "atom",
}

// inlineElements are HTML elements whose text belongs to the enclosing
// element when a feed embeds markup without escaping it.
var inlineElements = map[string]bool{
	"a": true, "b": true, "i": true, "u": true, "em": true, "strong": true,
	"span": true, "p": true, "br": true, "li": true, "ul": true, "ol": true,
	"div": true, "small": true, "code": true,
}

// node is a minimal element tree built from the token stream.
type node struct {
	defaultNS string
	prefix    string
	local     string
	attrs     map[string]string
	text      strings.Builder
	children  []*node
}

func canonicalPrefix(space string) string {
	if p, ok := namespacePrefixes[strings.ToLower(space)]; ok {
		return p
	}
	return space
}

// parseDocument decodes data into an element tree rooted at a synthetic
// document node.
func parseDocument(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charsetReader

	root := &node{}
	stack := []*node{root}
	sawElement := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawElement = true
			parent := stack[len(stack)-1]
			n := &node{
				defaultNS: parent.defaultNS,
				local:     t.Name.Local,
				attrs:     make(map[string]string, len(t.Attr)),
			}
			for _, a := range t.Attr {
				if a.Name.Space == "" && a.Name.Local == "xmlns" {
					n.defaultNS = a.Value
					continue
				}
				if a.Name.Space == "xmlns" {
					continue
				}
				if _, exists := n.attrs[a.Name.Local]; !exists {
					n.attrs[a.Name.Local] = a.Value
				}
			}
			// Elements in the default namespace are unprefixed.
			if t.Name.Space != n.defaultNS {
				n.prefix = canonicalPrefix(t.Name.Space)
			}
			parent.children = append(parent.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 1 {
				closed := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				// Unescaped markup inside a text field still reads as text.
				if closed.prefix == "" && inlineElements[strings.ToLower(closed.local)] {
					stack[len(stack)-1].text.WriteString(closed.text.String())
				}
			}
		case xml.CharData:
			stack[len(stack)-1].text.Write(t)
		}
	}

	if !sawElement {
		return nil, errors.New("document has no elements")
	}
	return root, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

// matches reports whether the element has the given qualified name.
// "podcast:funding" requires the podcast prefix; "funding" requires no
// prefix at all.
func (n *node) matches(name string) bool {
	prefix, local, found := strings.Cut(name, ":")
	if !found {
		return n.prefix == "" && n.local == name
	}
	return n.prefix == prefix && n.local == local
}

func (n *node) matchesAny(names []string) bool {
	for _, name := range names {
		if n.matches(name) {
			return true
		}
	}
	return false
}

// child returns the first direct child matching any of names.
func (n *node) child(names ...string) *node {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		if c.matchesAny(names) {
			return c
		}
	}
	return nil
}

// all returns the direct children matching any of names, in order.
func (n *node) all(names ...string) []*node {
	if n == nil {
		return nil
	}
	var out []*node
	for _, c := range n.children {
		if c.matchesAny(names) {
			out = append(out, c)
		}
	}
	return out
}

// find returns the first descendant (depth first) matching any of names.
func (n *node) find(names ...string) *node {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		if c.matchesAny(names) {
			return c
		}
		if found := c.find(names...); found != nil {
			return found
		}
	}
	return nil
}

// value returns the trimmed text content of the element.
func (n *node) value() string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.text.String())
}

// childValue returns the text of the first child matching any of names
// that has non-empty text.
func (n *node) childValue(names ...string) string {
	for _, name := range names {
		for _, c := range n.all(name) {
			if v := c.value(); v != "" {
				return v
			}
		}
	}
	return ""
}

// attr returns an attribute value by local name, trimmed.
func (n *node) attr(name string) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.attrs[name])
}
