package feed

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/feedmusic/internal/model"
	"github.com/handiism/feedmusic/internal/ordering"
)

const fullFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"
     xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd"
     xmlns:podcast="https://podcastindex.org/namespace/1.0"
     xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <title>Night Drive</title>
    <itunes:author>The Lanterns</itunes:author>
    <description><![CDATA[Rock &amp; Roll <b>Live</b>]]></description>
    <link>https://lanterns.example.com</link>
    <language>en</language>
    <pubDate>Mon, 02 Jan 2023 15:04:05 +0000</pubDate>
    <itunes:explicit>yes</itunes:explicit>
    <itunes:keywords>synth, night</itunes:keywords>
    <itunes:category text="Music"><itunes:category text="Synthwave"/></itunes:category>
    <itunes:owner><itunes:name>Lantern Records</itunes:name><itunes:email>hi@lanterns.example.com</itunes:email></itunes:owner>
    <itunes:image href="https://cdn.example.com/cover.jpg"/>
    <podcast:guid>917393e3-1b1e-5cef-ace4-edaa54e1f810</podcast:guid>
    <podcast:medium>music</podcast:medium>
    <podcast:funding url="https://patreon.example.com/lanterns">Support us</podcast:funding>
    <funding url="https://kofi.example.com/lanterns">Buy a coffee</funding>
    <podcast:podroll>
      <podcast:remoteItem feedGuid="aaa" feedUrl="https://a.example.com/feed.xml"/>
      <remoteItem feedGuid="bbb"/>
    </podcast:podroll>
    <podcast:remoteItem feedGuid="pub-1" feedUrl="https://pub.example.com/feed.xml" medium="publisher"/>
    <podcast:value type="lightning" method="keysend" suggested="0.00000005000">
      <podcast:valueRecipient name="Band" type="node" address="02abc" split="90"/>
      <podcast:valueRecipient name="Host" type="node" address="03def" split="10" fee="true"/>
    </podcast:value>
    <item>
      <title>Headlights</title>
      <guid isPermaLink="false">track-1</guid>
      <itunes:duration>125</itunes:duration>
      <enclosure url="https://cdn.example.com/headlights.mp3" type="audio/mpeg" length="1"/>
      <itunes:image href="https://cdn.example.com/headlights.jpg"/>
      <itunes:subtitle>Opening &lt;i&gt;track&lt;/i&gt;</itunes:subtitle>
      <pubDate>Tue, 03 Jan 2023 10:00:00 GMT</pubDate>
      <podcast:chapters url="https://cdn.example.com/headlights.json" type="application/json+chapters"/>
    </item>
    <item>
      <title>Overpass</title>
      <itunes:duration>1:05:30</itunes:duration>
      <link>https://lanterns.example.com/overpass</link>
      <itunes:episode>7</itunes:episode>
      <itunes:explicit>true</itunes:explicit>
    </item>
    <item>
      <title>Tunnel</title>
      <media:content url="https://cdn.example.com/tunnel.mp3"/>
    </item>
  </channel>
</rss>`

func TestParser_FullFeed(t *testing.T) {
	album, err := NewParser().ParseWithURL([]byte(fullFeed), "https://lanterns.example.com/feed.xml")
	require.NoError(t, err)

	assert.Equal(t, "Night Drive", album.Title)
	assert.Equal(t, "The Lanterns", album.Artist)
	assert.Equal(t, "Rock & Roll Live", album.Description)
	assert.Equal(t, "https://lanterns.example.com", album.Link)
	assert.Equal(t, "https://lanterns.example.com/feed.xml", album.FeedURL)
	assert.Equal(t, "917393e3-1b1e-5cef-ace4-edaa54e1f810", album.GUID)
	assert.Equal(t, model.MediumMusic, album.Medium)
	assert.Equal(t, "en", album.Language)
	assert.True(t, album.Explicit)
	assert.Equal(t, time.Date(2023, 1, 2, 15, 4, 5, 0, time.UTC), album.ReleaseDate.UTC())
	assert.Equal(t, []string{"synth", "night", "Music", "Synthwave"}, album.Keywords)
	require.NotNil(t, album.Owner)
	assert.Equal(t, "Lantern Records", album.Owner.Name)

	require.True(t, album.HasCoverArt())
	assert.Equal(t, "https://cdn.example.com/cover.jpg", *album.CoverArt)

	assert.Equal(t, []model.Funding{
		{URL: "https://patreon.example.com/lanterns", Message: "Support us"},
		{URL: "https://kofi.example.com/lanterns", Message: "Buy a coffee"},
	}, album.Funding)

	require.Len(t, album.PodRoll, 2)
	assert.Equal(t, "aaa", album.PodRoll[0].FeedGUID)
	assert.Equal(t, "bbb", album.PodRoll[1].FeedGUID)

	require.NotNil(t, album.Publisher)
	assert.Equal(t, "pub-1", album.Publisher.FeedGUID)
	assert.Empty(t, album.RemoteItems)
	assert.False(t, album.IsPlaylist())

	require.NotNil(t, album.Value)
	require.Len(t, album.Value.Recipients, 2)
	assert.Equal(t, model.RecipientLocal, album.Value.Recipients[0].Type)
	assert.Equal(t, "node", album.Value.Recipients[0].AddressType)
	assert.Equal(t, 90.0, album.Value.Recipients[0].Percentage)
	assert.True(t, album.Value.Recipients[1].Fee)

	require.Len(t, album.Tracks, 3)

	first := album.Tracks[0]
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, "track-1", first.GUID)
	assert.Equal(t, "Opening track", first.Summary)
	assert.Equal(t, "https://cdn.example.com/headlights.json", first.ChaptersURL)

	second := album.Tracks[1]
	assert.Equal(t, "65:30", second.Duration)
	assert.Equal(t, 3930, second.Seconds)
	assert.Equal(t, "https://lanterns.example.com/overpass", second.URL)
	assert.Equal(t, 7, second.Number)
	assert.True(t, second.Explicit)

	third := album.Tracks[2]
	assert.Equal(t, "https://cdn.example.com/tunnel.mp3", third.URL)
	assert.Equal(t, "0:00", third.Duration)
	assert.Equal(t, 3, third.Number)
}

func TestParser_RoundTripTrack(t *testing.T) {
	album, err := NewParser().Parse([]byte(fullFeed))
	require.NoError(t, err)

	got := album.Tracks[0]
	assert.Equal(t, "Headlights", got.Title)
	assert.Equal(t, "2:05", got.Duration)
	assert.Equal(t, "https://cdn.example.com/headlights.mp3", got.URL)
	assert.Equal(t, "https://cdn.example.com/headlights.jpg", got.Image)
}

func TestParser_MissingOptionalFields(t *testing.T) {
	doc := `<rss><channel><item><enclosure type="audio/mpeg"/></item></channel></rss>`

	album, err := NewParser().Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "Unknown Album", album.Title)
	assert.Equal(t, "Unknown Artist", album.Artist)
	assert.Empty(t, album.Description)
	assert.Empty(t, album.Link)
	assert.Nil(t, album.CoverArt)
	assert.Nil(t, album.Publisher)
	assert.Nil(t, album.Value)
	assert.True(t, album.ReleaseDate.IsZero())

	require.Len(t, album.Tracks, 1)
	assert.Equal(t, "0:00", album.Tracks[0].Duration)
	assert.Empty(t, album.Tracks[0].URL)
	assert.False(t, album.Tracks[0].HasURL())
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		wantNoChann bool
	}{
		{name: "not xml", doc: "this is not a feed"},
		{name: "empty", doc: ""},
		{name: "no channel", doc: `<rss version="2.0"><item/></rss>`, wantNoChann: true},
		{name: "atom", doc: `<feed xmlns="http://www.w3.org/2005/Atom"><title>x</title></feed>`, wantNoChann: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			album, err := NewParser().Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Nil(t, album)
			assert.True(t, errors.Is(err, ErrInvalidFormat))
			assert.Equal(t, tt.wantNoChann, errors.Is(err, ErrNoChannel))

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
		})
	}
}

func TestParser_CoverArt(t *testing.T) {
	tests := []struct {
		name    string
		channel string
		item    string
		want    string
	}{
		{
			name:    "channel itunes image",
			channel: `<itunes:image href="https://a/1.jpg"/><image><url>https://a/2.jpg</url></image>`,
			item:    `<itunes:image href="https://a/3.jpg"/>`,
			want:    "https://a/1.jpg",
		},
		{
			name:    "channel image url",
			channel: `<image><url>https://a/2.jpg</url></image>`,
			item:    `<itunes:image href="https://a/3.jpg"/>`,
			want:    "https://a/2.jpg",
		},
		{
			name: "first item image",
			item: `<itunes:image href="https://a/3.jpg"/>`,
			want: "https://a/3.jpg",
		},
		{
			name:    "javascript rejected",
			channel: `<itunes:image href="javascript:alert(1)"/>`,
			item:    `<itunes:image href="https://a/3.jpg"/>`,
		},
		{
			name:    "data url rejected",
			channel: `<image><url>data:image/png;base64,AAAA</url></image>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `<rss xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd"><channel>` +
				tt.channel + `<item><title>x</title>` + tt.item + `</item></channel></rss>`

			album, err := NewParser().Parse([]byte(doc))
			require.NoError(t, err)

			if tt.want == "" {
				assert.Nil(t, album.CoverArt)
				return
			}
			require.NotNil(t, album.CoverArt)
			assert.Equal(t, tt.want, *album.CoverArt)
		})
	}
}

func TestParser_BarePublisherAndPlaylistItems(t *testing.T) {
	doc := `<rss><channel>
		<title>Mixtape</title>
		<medium>musicL</medium>
		<remoteItem feedGuid="f1" itemGuid="i1"/>
		<remoteItem feedGuid="f2" feedUrl="https://f2.example.com/feed.xml" medium="music"/>
		<publisher><remoteItem feedGuid="pub" feedUrl="https://pub.example.com/feed.xml"/></publisher>
	</channel></rss>`

	album, err := NewParser().Parse([]byte(doc))
	require.NoError(t, err)

	assert.True(t, album.IsPlaylist())
	require.Len(t, album.RemoteItems, 2)
	assert.Equal(t, model.RemoteItemReference{FeedGUID: "f1", ItemGUID: "i1"}, album.RemoteItems[0])
	assert.True(t, album.RemoteItems[0].IsBare())
	assert.False(t, album.RemoteItems[1].IsBare())

	require.NotNil(t, album.Publisher)
	assert.Equal(t, "pub", album.Publisher.FeedGUID)
	assert.Equal(t, model.MediumPublisher, album.Publisher.Medium)
}

func TestParser_ValueTimeSplits(t *testing.T) {
	doc := `<rss xmlns:podcast="https://podcastindex.org/namespace/1.0"><channel><item>
		<title>Episode 12</title>
		<podcast:value type="lightning" method="keysend">
			<podcast:valueRecipient name="Host" type="node" address="03host" split="100"/>
			<podcast:valueTimeSplit startTime="60" duration="180" remotePercentage="90">
				<podcast:remoteItem feedGuid="song-feed" itemGuid="song-item"/>
			</podcast:valueTimeSplit>
			<podcast:valueTimeSplit startTime="300" endTime="420">
				<podcast:valueRecipient name="Guest Artist" type="remote" address="guest@getalby.com" split="50"/>
			</podcast:valueTimeSplit>
		</podcast:value>
	</item></channel></rss>`

	album, err := NewParser().Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, album.Tracks, 1)

	splits := album.Tracks[0].TimeSplits
	require.Len(t, splits, 2)

	assert.Equal(t, 60.0, splits[0].StartTime)
	assert.Equal(t, 180.0, splits[0].Duration)
	remote, ok := splits[0].FirstRemote()
	require.True(t, ok)
	assert.Equal(t, 90.0, remote.Percentage)
	require.NotNil(t, remote.Ref)
	assert.Equal(t, "song-item", remote.Ref.ItemGUID)

	assert.Equal(t, 120.0, splits[1].Duration)
	assert.True(t, splits[1].IsMusicCandidate())
	assert.Equal(t, "guest@getalby.com", splits[1].Recipients[0].Address)
}

func TestParser_OrderingHook(t *testing.T) {
	hooks := ordering.NewRegistry()
	hooks.Register("night drive", ordering.NewCanonicalOrder("night drive", []string{"Tunnel", "Headlights"}))

	doc := `<rss><channel><title>Night Drive</title>
		<item><title>Headlights</title></item>
		<item><title>Overpass</title><itunes:episode>9</itunes:episode></item>
		<item><title>Tunnel</title></item>
	</channel></rss>`

	album, err := NewParser(WithOrdering(hooks)).Parse([]byte(doc))
	require.NoError(t, err)

	var (
		titles  []string
		numbers []int
	)
	for _, tr := range album.Tracks {
		titles = append(titles, tr.Title)
		numbers = append(numbers, tr.Number)
	}
	assert.Equal(t, []string{"Tunnel", "Headlights", "Overpass"}, titles)
	assert.Equal(t, []int{1, 2, 9}, numbers)
}

func TestParser_UnescapedMarkupAndEntities(t *testing.T) {
	doc := `<rss><channel><title>Caf&eacute; Sessions</title>
		<description>Rock &amp; Roll <b>Live</b></description>
	</channel></rss>`

	album, err := NewParser().Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "Café Sessions", album.Title)
	assert.Equal(t, "Rock & Roll Live", album.Description)
}

func TestAlbumReferences(t *testing.T) {
	publisher := &model.Album{
		Medium: model.MediumPublisher,
		RemoteItems: []model.RemoteItemReference{
			{FeedGUID: "a", Medium: "music"},
			{FeedGUID: "b", Medium: "podcast"},
			{FeedGUID: "c", Medium: "Music"},
		},
	}

	refs := AlbumReferences(publisher)
	require.Len(t, refs, 2)
	assert.Equal(t, "a", refs[0].FeedGUID)
	assert.Equal(t, "c", refs[1].FeedGUID)
	assert.True(t, IsPublisherFeed(publisher))
	assert.Nil(t, AlbumReferences(nil))
}
