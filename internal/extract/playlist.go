package extract

import (
	"context"

	"go.uber.org/zap"

	"github.com/handiism/feedmusic/internal/model"
)

// extractPlaylist treats the whole feed as a playlist. Each channel-level
// remote item becomes one track skeleton that is resolved through the
// batch resolver; each ordinary item becomes one track.
//
// A remote item that cannot be resolved keeps its skeleton: the reference
// is carried on RemoteRef so a consumer can try again later.
func (p *Pipeline) extractPlaylist(ctx context.Context, album *model.Album) []model.MusicTrack {
	var out []model.MusicTrack

	if len(album.RemoteItems) > 0 {
		out = append(out, p.remoteItemTracks(ctx, album)...)
	}

	for _, item := range album.Tracks {
		mt := episodeTrack(album, item, model.SourceExternalFeed)
		if artist, title, ok := SplitArtistTitle(item.Title); ok {
			mt.Artist, mt.Title = artist, title
		} else {
			mt.Artist, mt.Title = album.Artist, item.Title
		}
		mt.Duration = float64(item.Seconds)
		mt.Description = item.Summary
		mt.Payment = item.Value.Payment()
		if mt.Payment == nil {
			mt.Payment = album.Value.Payment()
		}
		out = append(out, mt)
	}
	return out
}

func (p *Pipeline) remoteItemTracks(ctx context.Context, album *model.Album) []model.MusicTrack {
	skeletons := make([]model.MusicTrack, len(album.RemoteItems))
	for i, ref := range album.RemoteItems {
		title := ref.Title
		if title == "" {
			title = ref.String()
		}
		skeletons[i] = model.MusicTrack{
			Title:     title,
			Artist:    p.cfg.UnknownArtist,
			Source:    model.SourceExternalFeed,
			FeedURL:   ref.FeedURL,
			RemoteRef: &ref,
		}
	}

	if p.resolver == nil {
		return skeletons
	}

	results := p.resolver.ResolveAll(ctx, album.RemoteItems)

	var out []model.MusicTrack
	for i, res := range results {
		if i >= len(skeletons) {
			break
		}
		if !res.OK() {
			p.logger.Warn("Failed to resolve playlist entry",
				zap.String("feed_guid", res.Ref.FeedGUID),
				zap.String("item_guid", res.Ref.ItemGUID),
				zap.Error(res.Err))
			out = append(out, skeletons[i])
			continue
		}
		out = append(out, resolvedTracks(res.Item)...)
	}
	return out
}

// resolvedTracks converts a resolution into tracks: one for item mode,
// one per feed item for feed mode.
func resolvedTracks(r *model.ResolvedRemoteItem) []model.MusicTrack {
	if r.Mode == model.ModeItem {
		if mt, ok := r.MusicTrack(); ok {
			return []model.MusicTrack{mt}
		}
		return nil
	}

	out := make([]model.MusicTrack, 0, len(r.Items))
	for _, item := range r.Items {
		single := model.ResolvedRemoteItem{Ref: r.Ref, Mode: model.ModeItem, Feed: r.Feed, Item: item}
		single.Ref.ItemGUID = item.GUID
		if mt, ok := single.MusicTrack(); ok {
			out = append(out, mt)
		}
	}
	return out
}
