package resolve

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/handiism/feedmusic/internal/directory"
	"github.com/handiism/feedmusic/internal/feed"
	"github.com/handiism/feedmusic/internal/model"
)

// Directory is the subset of the directory client the resolver needs.
type Directory interface {
	LookupFeedByGUID(ctx context.Context, guid string) (*directory.Feed, error)
	LookupEpisodeByGUID(ctx context.Context, feedGUID, itemGUID string) (*directory.Episode, error)
}

// FeedFetcher retrieves feed documents.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Resolver resolves a single reference. It holds no per-reference state
// and is safe for concurrent use.
type Resolver struct {
	dir      Directory
	fetcher  FeedFetcher
	parser   *feed.Parser
	logger   *zap.Logger
	fallback bool
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the logger.
func WithResolverLogger(l *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithEpisodeFallback enables or disables the episode lookup used when a
// resolved feed cannot be fetched. Enabled by default.
func WithEpisodeFallback(enabled bool) ResolverOption {
	return func(r *Resolver) { r.fallback = enabled }
}

// NewResolver creates a Resolver. dir may be nil when every reference
// carries a feed URL.
func NewResolver(dir Directory, fetcher FeedFetcher, parser *feed.Parser, opts ...ResolverOption) *Resolver {
	if parser == nil {
		parser = feed.NewParser()
	}
	r := &Resolver{
		dir:      dir,
		fetcher:  fetcher,
		parser:   parser,
		logger:   zap.NewNop(),
		fallback: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve resolves ref.
//
// With a feed GUID the directory supplies the feed URL; a reference with
// only a feed URL is fetched directly. Without an item GUID the whole feed
// is the result (model.ModeFeed). Otherwise the item whose GUID equals
// ref.ItemGUID is returned; there is no fuzzy matching.
//
// Failures are *ResolutionError values. A directory entry without a URL
// is KindNoFeedURL and is never retried or guessed around.
func (r *Resolver) Resolve(ctx context.Context, ref model.RemoteItemReference) (*model.ResolvedRemoteItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, failure(KindCancelled, ref, err)
	}

	feedURL, dirFeed, err := r.feedURL(ctx, ref)
	if err != nil {
		return nil, err
	}

	album, err := r.fetchAlbum(ctx, feedURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, failure(KindCancelled, ref, ctx.Err())
		}
		if item, ok := r.episodeFallback(ctx, ref, dirFeed); ok {
			return item, nil
		}
		return nil, failure(KindFetchFailed, ref, err)
	}

	if ref.ItemGUID == "" {
		return &model.ResolvedRemoteItem{
			Ref:   ref,
			Mode:  model.ModeFeed,
			Feed:  album,
			Items: album.Tracks,
		}, nil
	}

	item := album.TrackByGUID(ref.ItemGUID)
	if item == nil {
		return nil, failure(KindItemNotFound, ref, nil)
	}
	return &model.ResolvedRemoteItem{
		Ref:  ref,
		Mode: model.ModeItem,
		Feed: album,
		Item: item,
	}, nil
}

// feedURL decides where the feed lives.
func (r *Resolver) feedURL(ctx context.Context, ref model.RemoteItemReference) (string, *directory.Feed, error) {
	if ref.FeedGUID == "" || r.dir == nil {
		if ref.FeedURL != "" {
			return ref.FeedURL, nil, nil
		}
		if ref.FeedGUID == "" {
			return "", nil, failure(KindInvalidReference, ref, nil)
		}
		return "", nil, failure(KindAPIError, ref, errors.New("no directory configured"))
	}

	f, err := r.dir.LookupFeedByGUID(ctx, ref.FeedGUID)
	if err != nil {
		if ctx.Err() != nil {
			return "", nil, failure(KindCancelled, ref, ctx.Err())
		}
		if !errors.Is(err, directory.ErrNotFound) {
			return "", nil, failure(KindAPIError, ref, err)
		}
		// A URL carried on the reference is not a guess.
		if ref.FeedURL != "" {
			r.logger.Debug("Feed not in directory, using carried feed url",
				zap.String("feed_guid", ref.FeedGUID),
				zap.String("url", ref.FeedURL))
			return ref.FeedURL, nil, nil
		}
		return "", nil, failure(KindNotFoundInDirectory, ref, err)
	}

	if f.URL == "" {
		return "", nil, failure(KindNoFeedURL, ref, nil)
	}
	return f.URL, f, nil
}

func (r *Resolver) fetchAlbum(ctx context.Context, url string) (*model.Album, error) {
	data, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return r.parser.ParseWithURL(data, url)
}

// episodeFallback asks the directory for the episode itself when the
// feed could not be fetched. It needs both GUIDs.
func (r *Resolver) episodeFallback(ctx context.Context, ref model.RemoteItemReference, dirFeed *directory.Feed) (*model.ResolvedRemoteItem, bool) {
	if !r.fallback || r.dir == nil || ref.FeedGUID == "" || ref.ItemGUID == "" {
		return nil, false
	}

	ep, err := r.dir.LookupEpisodeByGUID(ctx, ref.FeedGUID, ref.ItemGUID)
	if err != nil {
		r.logger.Debug("Episode fallback failed",
			zap.String("feed_guid", ref.FeedGUID),
			zap.String("item_guid", ref.ItemGUID),
			zap.Error(err))
		return nil, false
	}

	var album *model.Album
	if dirFeed != nil {
		album = dirFeed.Album()
	} else {
		album = &model.Album{
			GUID:    ref.FeedGUID,
			FeedURL: firstNonEmpty(ep.FeedURL, ref.FeedURL),
			Title:   firstNonEmpty(ep.FeedTitle, "Unknown Album"),
			Artist:  "Unknown Artist",
		}
		if ep.FeedImage != "" {
			img := ep.FeedImage
			album.CoverArt = &img
		}
	}
	item := ep.Track()
	album.Tracks = []*model.Track{item}

	r.logger.Info("Resolved through episode lookup",
		zap.String("feed_guid", ref.FeedGUID),
		zap.String("item_guid", ref.ItemGUID))

	return &model.ResolvedRemoteItem{
		Ref:  ref,
		Mode: model.ModeItem,
		Feed: album,
		Item: item,
	}, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
