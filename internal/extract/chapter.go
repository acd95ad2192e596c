package extract

import (
	"context"

	"go.uber.org/zap"

	"github.com/handiism/feedmusic/internal/feed/dto"
	"github.com/handiism/feedmusic/internal/model"
)

// extractChapters fetches the episode's chapter file and keeps the
// chapters that name a song. A missing or broken chapter file yields no
// tracks.
func (p *Pipeline) extractChapters(ctx context.Context, album *model.Album, track *model.Track) []model.MusicTrack {
	if track.ChaptersURL == "" || p.fetcher == nil {
		return nil
	}

	data, err := p.fetcher.Get(ctx, track.ChaptersURL, nil)
	if err != nil {
		p.logger.Warn("Failed to fetch chapters",
			zap.String("url", track.ChaptersURL),
			zap.String("episode", track.Title),
			zap.Error(err))
		return nil
	}

	chapters, err := dto.ParseChapters(data)
	if err != nil {
		p.logger.Warn("Failed to parse chapters",
			zap.String("url", track.ChaptersURL),
			zap.Error(err))
		return nil
	}

	return p.chapterTracks(album, track, chapters)
}

func (p *Pipeline) chapterTracks(album *model.Album, track *model.Track, chapters []model.Chapter) []model.MusicTrack {
	var out []model.MusicTrack
	for _, ch := range chapters {
		if !IsMusicChapter(ch.Title, p.cfg.MusicKeywords) {
			continue
		}

		mt := episodeTrack(album, track, model.SourceChapter)
		artist, title, ok := SplitArtistTitle(ch.Title)
		if ok {
			mt.Artist = artist
		} else {
			mt.Artist = p.cfg.UnknownArtist
		}
		mt.Title = title

		mt.StartTime = ch.StartTime
		mt.EndTime = ch.EndTime
		if mt.EndTime <= mt.StartTime {
			mt.EndTime = mt.StartTime + p.cfg.DefaultChapterLength.Seconds()
		}
		mt.Duration = mt.EndTime - mt.StartTime
		if ch.Image != "" {
			mt.Image = ch.Image
		}
		out = append(out, mt)
	}
	return out
}
