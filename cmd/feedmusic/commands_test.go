package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/feedmusic/internal/model"
	"github.com/handiism/feedmusic/internal/resolve"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		input   string
		want    model.RemoteItemReference
		wantErr bool
	}{
		{"feed-1", model.RemoteItemReference{FeedGUID: "feed-1"}, false},
		{"feed-1/item-9", model.RemoteItemReference{FeedGUID: "feed-1", ItemGUID: "item-9"}, false},
		{" feed-1/item-9 ", model.RemoteItemReference{FeedGUID: "feed-1", ItemGUID: "item-9"}, false},
		{"/item-9", model.RemoteItemReference{}, true},
		{"", model.RemoteItemReference{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseRef(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToView(t *testing.T) {
	ref := model.RemoteItemReference{FeedGUID: "f", ItemGUID: "i"}

	ok := toView(resolve.Result{Ref: ref, Item: &model.ResolvedRemoteItem{
		Ref:  ref,
		Mode: model.ModeItem,
		Feed: &model.Album{Title: "Night Drive", Artist: "The Lanterns"},
		Item: &model.Track{GUID: "i", Title: "Headlights"},
	}})
	require.NotNil(t, ok.Track)
	assert.Equal(t, "Headlights", ok.Track.Title)
	assert.Equal(t, "The Lanterns", ok.Track.Artist)
	assert.Empty(t, ok.Error)

	failed := toView(resolve.Result{Ref: ref, Err: errors.New("boom")})
	assert.Equal(t, "error", failed.Kind)
	assert.Equal(t, "boom", failed.Error)
	assert.Nil(t, failed.Track)
}

func TestFilterHighConfidence(t *testing.T) {
	tracks := []model.MusicTrack{
		{Title: "a", Source: model.SourceChapter},
		{Title: "b", Source: model.SourceDescription},
		{Title: "c", Source: model.SourceValueSplit},
	}
	got := filterHighConfidence(tracks)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, "c", got[1].Title)
}

func TestCoverURL(t *testing.T) {
	art := "https://img/feed.jpg"
	r := &model.ResolvedRemoteItem{Feed: &model.Album{CoverArt: &art}, Item: &model.Track{}}
	assert.Equal(t, art, coverURL(r))

	r.Item.Image = "https://img/item.jpg"
	assert.Equal(t, "https://img/item.jpg", coverURL(r))
}

func TestRootCommand_Parse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, `<rss><channel>
			<title>Night Drive</title>
			<itunes:author>The Lanterns</itunes:author>
			<item><title>Headlights</title><guid>a-1</guid><itunes:duration>125</itunes:duration>
				<enclosure url="https://cdn/a1.mp3"/></item>
		</channel></rss>`)
	}))
	defer srv.Close()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{
		"parse", srv.URL + "/feed.xml",
		"--env-file", filepath.Join(t.TempDir(), "missing.env"),
		"--retry-attempts", "1",
		"--log-level", "error",
	})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())

	var albums []model.Album
	require.NoError(t, json.Unmarshal(out.Bytes(), &albums))
	require.Len(t, albums, 1)
	assert.Equal(t, "Night Drive", albums[0].Title)
	require.Len(t, albums[0].Tracks, 1)
	assert.Equal(t, "2:05", albums[0].Tracks[0].Duration)
	assert.Contains(t, errOut.String(), "Found album: The Lanterns - Night Drive")
	assert.Equal(t, 1, settings.RetryAttempts)
}
