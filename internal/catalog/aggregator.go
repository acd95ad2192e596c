package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/handiism/feedmusic/internal/feed"
	"github.com/handiism/feedmusic/internal/model"
	"github.com/handiism/feedmusic/internal/resolve"
)

// Fetcher retrieves feed documents.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Batcher runs resolutions and feed fetches through the paced batch path.
// *resolve.Orchestrator satisfies it.
type Batcher interface {
	ResolveAll(ctx context.Context, refs []model.RemoteItemReference) []resolve.Result
	FetchAlbums(ctx context.Context, urls []string) []resolve.AlbumResult
}

// Aggregator builds an artist discography from a publisher feed.
type Aggregator struct {
	fetcher  Fetcher
	parser   *feed.Parser
	batch    Batcher
	logger   *zap.Logger
	recorder Recorder
}

// NewAggregator creates an Aggregator.
func NewAggregator(fetcher Fetcher, parser *feed.Parser, batch Batcher, logger *zap.Logger) *Aggregator {
	if parser == nil {
		parser = feed.NewParser()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		fetcher:  fetcher,
		parser:   parser,
		batch:    batch,
		logger:   logger,
		recorder: nopRecorder{},
	}
}

// Aggregate fetches and parses the publisher feed at url and returns the
// albums it references. Only the publisher feed itself failing is an
// error; albums that cannot be fetched are dropped.
func (a *Aggregator) Aggregate(ctx context.Context, url string) ([]*model.Album, error) {
	data, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch publisher feed: %w", err)
	}
	publisher, err := a.parser.ParseWithURL(data, url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse publisher feed: %w", err)
	}
	return a.AggregateAlbum(ctx, publisher), nil
}

// AggregateAlbum expands an already parsed publisher feed.
//
// Every remote item with medium "music" is an album. A bare reference is
// resolved through the directory; a reference carrying a feed URL is
// fetched as an ordinary album feed. Results keep the publisher's order
// and are deduplicated by title and artist, first occurrence wins.
func (a *Aggregator) AggregateAlbum(ctx context.Context, publisher *model.Album) []*model.Album {
	refs := feed.AlbumReferences(publisher)
	slots := make([]*model.Album, len(refs))

	var (
		bare    []model.RemoteItemReference
		bareIdx []int
		urls    []string
		urlIdx  []int
	)
	for i, ref := range refs {
		if ref.IsBare() {
			bare = append(bare, ref)
			bareIdx = append(bareIdx, i)
		} else {
			urls = append(urls, ref.FeedURL)
			urlIdx = append(urlIdx, i)
		}
	}

	log := a.logger.With(zap.String("publisher", publisher.Title))
	log.Info("Aggregating publisher feed",
		zap.Int("bare", len(bare)),
		zap.Int("with_url", len(urls)))

	if len(bare) > 0 {
		for j, r := range a.batch.ResolveAll(ctx, bare) {
			if !r.OK() {
				a.recorder.AlbumDropped("resolve")
				log.Warn("Dropping album", zap.Stringer("ref", r.Ref), zap.Error(r.Err))
				continue
			}
			slots[bareIdx[j]] = r.Item.Album()
		}
	}

	if len(urls) > 0 {
		for j, r := range a.batch.FetchAlbums(ctx, urls) {
			if !r.OK() {
				a.recorder.AlbumDropped(dropReason(r.Err))
				log.Warn("Dropping album", zap.String("url", r.URL), zap.Error(r.Err))
				continue
			}
			slots[urlIdx[j]] = r.Album
		}
	}

	albums := Dedup(slots)
	for range albums {
		a.recorder.AlbumParsed()
	}
	log.Info("Publisher aggregated",
		zap.Int("references", len(refs)),
		zap.Int("albums", len(albums)))
	return albums
}

// Dedup drops nil albums and albums whose DedupKey was already seen.
func Dedup(albums []*model.Album) []*model.Album {
	seen := make(map[string]struct{}, len(albums))
	out := make([]*model.Album, 0, len(albums))
	for _, album := range albums {
		if album == nil {
			continue
		}
		key := album.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, album)
	}
	return out
}
