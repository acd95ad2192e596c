package extract

import (
	"fmt"

	"github.com/handiism/feedmusic/internal/model"
)

// extractValueSplits turns music-candidate time splits into tracks. A
// split that only pays local recipients produces nothing.
func (p *Pipeline) extractValueSplits(album *model.Album, track *model.Track) []model.MusicTrack {
	var out []model.MusicTrack
	for _, split := range track.TimeSplits {
		if !split.IsMusicCandidate() {
			continue
		}
		recipient, _ := split.FirstRemote()

		mt := episodeTrack(album, track, model.SourceValueSplit)
		mt.StartTime = split.StartTime
		mt.EndTime = split.StartTime + split.Duration
		mt.Duration = split.Duration
		mt.Payment = model.PaymentFromRecipient(recipient)
		mt.Artist = p.cfg.UnknownArtist

		name := recipient.Name
		if recipient.Ref != nil {
			ref := *recipient.Ref
			mt.RemoteRef = &ref
			if name == "" {
				name = ref.Title
			}
		}

		switch {
		case name == "":
			mt.Title = "Music Track at " + clockLabel(int(split.StartTime))
		default:
			if artist, title, ok := SplitArtistTitle(name); ok {
				mt.Artist, mt.Title = artist, title
			} else {
				mt.Title = name
			}
		}
		out = append(out, mt)
	}
	return out
}

// clockLabel renders seconds as MM:SS with zero-padded minutes. Minutes
// are not folded into hours.
func clockLabel(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
