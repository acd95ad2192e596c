package feed

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/handiism/feedmusic/internal/model"
	"github.com/handiism/feedmusic/internal/ordering"
)

// Parser converts feed documents into Album values.
//
// A Parser holds no per-document state and is safe for concurrent use.
// Construct it once and share it.
//
// Example usage:
//
//	parser := feed.NewParser(feed.WithLogger(logger))
//
//	data, err := client.Fetch(ctx, feedURL)
//	if err != nil {
//	    return err
//	}
//
//	album, err := parser.ParseWithURL(data, feedURL)
//	if err != nil {
//	    return fmt.Errorf("failed to parse feed: %w", err)
//	}
//
//	for _, track := range album.Tracks {
//	    fmt.Printf("  %d. %s (%s)\n", track.Number, track.Title, track.Duration)
//	}
type Parser struct {
	hooks  *ordering.Registry
	logger *zap.Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithOrdering installs track-order overrides keyed by album key.
func WithOrdering(r *ordering.Registry) ParserOption {
	return func(p *Parser) { p.hooks = r }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) ParserOption {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewParser creates a Parser.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Element spellings. Feeds in the wild use both the namespaced and the
// bare form of the podcast elements.
var (
	remoteItemNames = []string{"podcast:remoteItem", "remoteItem"}
	valueNames      = []string{"podcast:value", "value"}
)

// Parse parses a feed document into an Album.
//
// The only failures are a document that is not XML and a document without
// a <channel> element; both return a *ParseError. Every optional field
// falls back to its default:
//   - title "Unknown Album", artist "Unknown Artist"
//   - description and link empty
//   - cover art nil
//   - track duration "0:00", track URL empty
func (p *Parser) Parse(data []byte) (*model.Album, error) {
	root, err := parseDocument(data)
	if err != nil {
		return nil, &ParseError{Kind: KindInvalidFormat, Err: err}
	}

	channel := root.find("channel")
	if channel == nil {
		return nil, &ParseError{Kind: KindNoChannel}
	}

	album := &model.Album{
		GUID:        channel.childValue("podcast:guid", "guid"),
		Title:       orDefault(StripHTML(channel.childValue("title")), "Unknown Album"),
		Artist:      orDefault(StripHTML(channel.childValue("itunes:author", "author", "managingEditor")), "Unknown Artist"),
		Description: StripHTML(channel.childValue("description", "itunes:summary", "content:encoded")),
		Link:        channel.childValue("link"),
		Medium:      channel.childValue("podcast:medium", "medium"),
		Explicit:    parseBool(channel.childValue("itunes:explicit")),
		Language:    channel.childValue("language"),
		Keywords:    keywords(channel),
		Owner:       owner(channel),
		Funding:     funding(channel),
		Value:       valueBlock(channel.child(valueNames...)),
	}

	album.ReleaseDate = parseDate(channel.childValue("pubDate"))
	if album.ReleaseDate.IsZero() {
		album.ReleaseDate = parseDate(channel.childValue("lastBuildDate"))
	}

	items := channel.all("item")
	album.CoverArt = coverArt(channel, items)

	for _, block := range channel.all("podcast:podroll", "podroll") {
		for _, ri := range block.all(remoteItemNames...) {
			if ref, ok := remoteItem(ri); ok {
				album.PodRoll = append(album.PodRoll, ref)
			}
		}
	}

	for _, ri := range channel.all(remoteItemNames...) {
		ref, ok := remoteItem(ri)
		if !ok {
			continue
		}
		if strings.EqualFold(ref.Medium, model.MediumPublisher) {
			if album.Publisher == nil {
				album.Publisher = &ref
			}
			continue
		}
		album.RemoteItems = append(album.RemoteItems, ref)
	}
	if album.Publisher == nil {
		album.Publisher = publisherBlock(channel)
	}

	album.Tracks = make([]*model.Track, 0, len(items))
	numbered := make([]bool, len(items))
	for i, item := range items {
		album.Tracks = append(album.Tracks, p.track(item, i))
		_, numbered[i] = positiveInt(item.childValue("itunes:episode"))
	}

	p.applyOrdering(album, numbered)
	return album, nil
}

// ParseWithURL parses data and records url as the album's feed URL.
func (p *Parser) ParseWithURL(data []byte, url string) (*model.Album, error) {
	album, err := p.Parse(data)
	if err != nil {
		return nil, err
	}
	album.FeedURL = url
	return album, nil
}

func (p *Parser) track(item *node, index int) *model.Track {
	durationText := item.childValue("itunes:duration", "duration")
	seconds, _ := ParseDuration(durationText)

	description := item.childValue("description", "content:encoded", "itunes:summary")

	t := &model.Track{
		GUID:        item.childValue("guid"),
		Number:      index + 1,
		Title:       orDefault(StripHTML(item.childValue("title")), fmt.Sprintf("Track %d", index+1)),
		Duration:    NormalizeDuration(durationText),
		Seconds:     seconds,
		URL:         mediaURL(item),
		Summary:     StripHTML(firstNonEmpty(item.childValue("itunes:subtitle"), item.childValue("itunes:summary"), description)),
		Description: description,
		Explicit:    parseBool(item.childValue("itunes:explicit")),
		Keywords:    keywords(item),
		PublishDate: parseDate(item.childValue("pubDate")),
		ChaptersURL: item.child("podcast:chapters", "chapters").attr("url"),
		Value:       valueBlock(item.child(valueNames...)),
	}

	if n, ok := positiveInt(item.childValue("itunes:episode")); ok {
		t.Number = n
	}
	if href := item.child("itunes:image").attr("href"); href != "" && safeURL(href) {
		t.Image = href
	}

	// Time splits live inside the value block, but some feeds put them
	// directly under the item.
	splitParents := []*node{item.child(valueNames...), item}
	for _, parent := range splitParents {
		for _, s := range parent.all("podcast:valueTimeSplit", "valueTimeSplit") {
			t.TimeSplits = append(t.TimeSplits, timeSplit(s))
		}
	}

	return t
}

// applyOrdering reorders album.Tracks through the registered hook. Tracks
// without an itunes:episode number are renumbered by their new position.
func (p *Parser) applyOrdering(album *model.Album, numbered []bool) {
	if p.hooks == nil || len(album.Tracks) == 0 {
		return
	}
	titles := make([]string, len(album.Tracks))
	for i, t := range album.Tracks {
		titles[i] = t.Title
	}
	perm, ok := p.hooks.Order(album.Key(), titles)
	if !ok {
		return
	}
	album.Tracks = ordering.Apply(album.Tracks, perm)
	numbered = ordering.Apply(numbered, perm)
	for i, t := range album.Tracks {
		if !numbered[i] {
			t.Number = i + 1
		}
	}
	p.logger.Debug("Applied track order override",
		zap.String("album", album.Title),
		zap.String("key", album.Key()))
}

// coverArt resolves the album image: channel itunes:image, then
// <image><url>, then the first item's itunes:image. The first URL found
// wins; an unsafe one means no cover art.
func coverArt(channel *node, items []*node) *string {
	candidates := []string{
		channel.child("itunes:image").attr("href"),
		channel.child("image").childValue("url"),
	}
	if len(items) > 0 {
		candidates = append(candidates, items[0].child("itunes:image").attr("href"))
	}

	for _, u := range candidates {
		if u == "" {
			continue
		}
		if !safeURL(u) {
			return nil
		}
		return &u
	}
	return nil
}

// mediaURL resolves the playable location: enclosure url, then <link>,
// then media:content url.
func mediaURL(item *node) string {
	return firstNonEmpty(
		item.child("enclosure").attr("url"),
		item.childValue("link"),
		item.child("media:content").attr("url"),
	)
}

func remoteItem(n *node) (model.RemoteItemReference, bool) {
	ref := model.RemoteItemReference{
		FeedGUID: n.attr("feedGuid"),
		ItemGUID: n.attr("itemGuid"),
		FeedURL:  n.attr("feedUrl"),
		Medium:   n.attr("medium"),
		Title:    StripHTML(n.attr("title")),
	}
	if ref.Title == "" {
		ref.Title = StripHTML(n.value())
	}
	if ref.FeedGUID == "" && ref.FeedURL == "" {
		return model.RemoteItemReference{}, false
	}
	return ref, true
}

// publisherBlock reads the reference inside a podcast:publisher element.
func publisherBlock(channel *node) *model.RemoteItemReference {
	for _, block := range channel.all("podcast:publisher", "publisher") {
		for _, ri := range block.all(remoteItemNames...) {
			ref, ok := remoteItem(ri)
			if !ok {
				continue
			}
			if ref.Medium == "" {
				ref.Medium = model.MediumPublisher
			}
			if strings.EqualFold(ref.Medium, model.MediumPublisher) {
				return &ref
			}
		}
	}
	return nil
}

func funding(channel *node) []model.Funding {
	var out []model.Funding
	for _, f := range channel.all("podcast:funding", "funding") {
		u := f.attr("url")
		if u == "" || !safeURL(u) {
			continue
		}
		out = append(out, model.Funding{URL: u, Message: StripHTML(f.value())})
	}
	return out
}

func owner(channel *node) *model.Owner {
	o := channel.child("itunes:owner")
	if o == nil {
		return nil
	}
	name := o.childValue("itunes:name", "name")
	email := o.childValue("itunes:email", "email")
	if name == "" && email == "" {
		return nil
	}
	return &model.Owner{Name: name, Email: email}
}

// keywords merges itunes:keywords with category names, without duplicates.
func keywords(n *node) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(k string) {
		k = strings.TrimSpace(StripHTML(k))
		if k == "" || seen[strings.ToLower(k)] {
			return
		}
		seen[strings.ToLower(k)] = true
		out = append(out, k)
	}

	for _, k := range strings.Split(n.childValue("itunes:keywords"), ",") {
		add(k)
	}
	for _, c := range n.all("category") {
		add(c.value())
	}
	var walk func(*node)
	walk = func(c *node) {
		for _, cat := range c.all("itunes:category") {
			add(cat.attr("text"))
			walk(cat)
		}
	}
	walk(n)
	return out
}

func valueBlock(n *node) *model.ValueBlock {
	if n == nil {
		return nil
	}
	v := &model.ValueBlock{
		Type:      n.attr("type"),
		Method:    n.attr("method"),
		Suggested: n.attr("suggested"),
	}
	for _, r := range n.all("podcast:valueRecipient", "valueRecipient") {
		v.Recipients = append(v.Recipients, recipient(r))
	}
	return v
}

// recipient reads a valueRecipient. Its type attribute names either the
// split type (local/remote) or, in most feeds, the address type (node,
// lnaddress); the latter are local recipients.
func recipient(n *node) model.ValueRecipient {
	r := model.ValueRecipient{
		Name:        StripHTML(n.attr("name")),
		Type:        model.RecipientLocal,
		Address:     n.attr("address"),
		Percentage:  parseFloat(firstNonEmpty(n.attr("split"), n.attr("percentage"))),
		Amount:      parseFloat(n.attr("amount")),
		CustomKey:   n.attr("customKey"),
		CustomValue: n.attr("customValue"),
		Fee:         parseBool(n.attr("fee")),
	}
	switch typ := strings.ToLower(n.attr("type")); typ {
	case string(model.RecipientLocal), "":
	case string(model.RecipientRemote):
		r.Type = model.RecipientRemote
	default:
		r.AddressType = typ
	}
	return r
}

func timeSplit(n *node) model.ValueTimeSplit {
	s := model.ValueTimeSplit{
		StartTime: parseFloat(n.attr("startTime")),
		Duration:  parseFloat(n.attr("duration")),
	}
	if s.Duration == 0 {
		if end := parseFloat(n.attr("endTime")); end > s.StartTime {
			s.Duration = end - s.StartTime
		}
	}

	for _, r := range n.all("podcast:valueRecipient", "valueRecipient") {
		s.Recipients = append(s.Recipients, recipient(r))
	}

	// A remote item inside the split routes the share to another feed.
	remotePct := parseFloat(n.attr("remotePercentage"))
	if remotePct == 0 {
		remotePct = 100
	}
	for _, ri := range n.all(remoteItemNames...) {
		ref, ok := remoteItem(ri)
		if !ok {
			continue
		}
		s.Recipients = append(s.Recipients, model.ValueRecipient{
			Name:       ref.Title,
			Type:       model.RecipientRemote,
			Percentage: remotePct,
			Ref:        &ref,
		})
	}
	return s
}

func positiveInt(s string) (int, bool) {
	var n int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &n); err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
