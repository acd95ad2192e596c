package extract

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/handiism/feedmusic/internal/feed"
	"github.com/handiism/feedmusic/internal/model"
	"github.com/handiism/feedmusic/internal/resolve"
)

// Fetcher retrieves feeds and auxiliary documents such as chapter files.
// *http.Client of the internal http package satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	Get(ctx context.Context, url string, header http.Header) ([]byte, error)
}

// BatchResolver resolves remote item references, one result per
// reference in input order.
type BatchResolver interface {
	ResolveAll(ctx context.Context, refs []model.RemoteItemReference) []resolve.Result
}

// Pipeline runs the extractors.
type Pipeline struct {
	cfg      Config
	fetcher  Fetcher
	parser   *feed.Parser
	resolver BatchResolver
	logger   *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithResolver sets the resolver used for playlist remote items. Without
// one, remote items are returned as unresolved skeletons.
func WithResolver(r BatchResolver) Option {
	return func(p *Pipeline) { p.resolver = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPipeline creates a Pipeline. fetcher may be nil, in which case
// chapter files are not fetched and ExtractFeed is unavailable.
func NewPipeline(cfg Config, fetcher Fetcher, parser *feed.Parser, opts ...Option) *Pipeline {
	if parser == nil {
		parser = feed.NewParser()
	}
	p := &Pipeline{
		cfg:     cfg.withDefaults(),
		fetcher: fetcher,
		parser:  parser,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ExtractEpisode runs the chapter, value-split and description extractors
// over one episode and concatenates their output in that order.
func (p *Pipeline) ExtractEpisode(ctx context.Context, album *model.Album, episode *model.Track) []model.MusicTrack {
	var out []model.MusicTrack
	out = append(out, p.extractChapters(ctx, album, episode)...)
	out = append(out, p.extractValueSplits(album, episode)...)
	out = append(out, p.extractDescription(album, episode)...)
	return out
}

// ExtractAlbum extracts every track of a parsed feed. Playlist feeds go
// through playlist extraction; other feeds are processed episode by
// episode.
func (p *Pipeline) ExtractAlbum(ctx context.Context, album *model.Album) []model.MusicTrack {
	if album == nil {
		return nil
	}
	if album.IsPlaylist() {
		return p.extractPlaylist(ctx, album)
	}

	var out []model.MusicTrack
	for _, episode := range album.Tracks {
		if ctx.Err() != nil {
			break
		}
		out = append(out, p.ExtractEpisode(ctx, album, episode)...)
	}
	return out
}

// ExtractFeed fetches and parses a feed and extracts its tracks. It fails
// only when the feed itself cannot be fetched or parsed.
func (p *Pipeline) ExtractFeed(ctx context.Context, url string) ([]model.MusicTrack, *model.Album, error) {
	if p.fetcher == nil {
		return nil, nil, fmt.Errorf("extract %s: no fetcher configured", url)
	}

	data, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	album, err := p.parser.ParseWithURL(data, url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	tracks := p.ExtractAlbum(ctx, album)
	p.logger.Info("Extracted tracks",
		zap.String("url", url),
		zap.String("album", album.Title),
		zap.Int("tracks", len(tracks)))
	return tracks, album, nil
}

// episodeTrack fills the episode fields shared by every extractor.
func episodeTrack(album *model.Album, episode *model.Track, source model.Source) model.MusicTrack {
	mt := model.MusicTrack{
		EpisodeID:    episode.GUID,
		EpisodeTitle: episode.Title,
		EpisodeDate:  episode.PublishDate,
		AudioURL:     episode.URL,
		Image:        episode.Image,
		Source:       source,
		FeedURL:      album.FeedURL,
	}
	if mt.Image == "" && album.HasCoverArt() {
		mt.Image = *album.CoverArt
	}
	return mt
}
