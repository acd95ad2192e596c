package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/handiism/feedmusic/internal/audio"
	"github.com/handiism/feedmusic/internal/catalog"
	"github.com/handiism/feedmusic/internal/model"
	"github.com/handiism/feedmusic/internal/resolve"
)

var errEmptyCatalog = errors.New("no feed could be read")

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <feed-url>...",
		Short: "Parse feeds into albums, expanding publisher feeds",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := buildCatalog(cmd, args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), mgr.Albums())
		},
	}
}

func newTracksCmd() *cobra.Command {
	var highConfidence bool

	cmd := &cobra.Command{
		Use:   "tracks <feed-url>...",
		Short: "Extract music tracks from every episode of the given feeds",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := buildCatalog(cmd, args)
			if err != nil {
				return err
			}
			tracks, err := mgr.ExtractTracks(cmd.Context())
			if err != nil {
				return err
			}
			if highConfidence {
				tracks = filterHighConfidence(tracks)
			}
			return writeJSON(cmd.OutOrStdout(), tracks)
		},
	}
	cmd.Flags().BoolVar(&highConfidence, "high-confidence", false, "drop tracks mined from episode descriptions")
	return cmd
}

func newEpisodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "episode <feed-url> <episode-guid>",
		Short: "Extract music tracks from one episode",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}
			tracks, err := mgr.ExtractEpisode(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), tracks)
		},
	}
}

// resultView is the JSON shape of one resolution.
type resultView struct {
	Ref   model.RemoteItemReference `json:"ref"`
	Track *model.MusicTrack         `json:"track,omitempty"`
	Album *model.Album              `json:"album,omitempty"`
	Kind  string                    `json:"kind,omitempty"`
	Error string                    `json:"error,omitempty"`
}

func newResolveCmd() *cobra.Command {
	var feedURL string

	cmd := &cobra.Command{
		Use:   "resolve <feed-guid>[/<item-guid>]...",
		Short: "Resolve remote item references through the directory",
		Long: `Resolve remote item references through the directory. A reference without an
item GUID resolves to the whole feed. References are resolved in batches of
--batch-size with --inter-batch-delay between batches.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs := make([]model.RemoteItemReference, 0, len(args))
			for _, arg := range args {
				ref, err := parseRef(arg)
				if err != nil {
					return err
				}
				ref.FeedURL = feedURL
				refs = append(refs, ref)
			}

			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}
			results, summary := mgr.Resolve(cmd.Context(), refs)

			views := make([]resultView, len(results))
			for i, r := range results {
				views[i] = toView(r)
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				Results []resultView    `json:"results"`
				Summary resolve.Summary `json:"summary"`
			}{views, summary})
		},
	}
	cmd.Flags().StringVar(&feedURL, "feed-url", "", "feed URL hint used when the directory lookup fails")
	return cmd
}

func newPublisherCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publisher <publisher-feed-url>",
		Short: "List the albums referenced by a publisher feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}
			albums, err := mgr.Aggregate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), albums)
		},
	}
}

func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <term>...",
		Short: "Search the directory for music feeds",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}
			feeds, err := mgr.Search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), feeds)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of feeds")
	return cmd
}

func newPlaylistCmd() *cobra.Command {
	var withTracks bool

	cmd := &cobra.Command{
		Use:   "playlist <feed-url>...",
		Short: "Write a playlist per album to --output-path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := buildCatalog(cmd, args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			creator := audio.NewPlaylistCreator(audio.ParseFormat(settings.PlaylistFormat), settings.M3UExtended)
			var paths []string

			for _, album := range mgr.Albums() {
				entries := audio.EntriesFromAlbum(album)
				if len(entries) == 0 {
					logger.Info("Skipping album without playable tracks", zap.String("album", album.Title))
					continue
				}
				path, err := creator.WritePlaylist(ctx, settings.OutputPath, album.Artist+" - "+album.Title, entries)
				if err != nil {
					return err
				}
				paths = append(paths, path)
			}

			if withTracks {
				tracks, err := mgr.ExtractTracks(ctx)
				if err != nil {
					return err
				}
				if entries := audio.EntriesFromTracks(tracks); len(entries) > 0 {
					path, err := creator.WritePlaylist(ctx, settings.OutputPath, "Extracted tracks", entries)
					if err != nil {
						return err
					}
					paths = append(paths, path)
				}
			}

			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withTracks, "tracks", false, "also write a playlist of tracks extracted from episodes")
	return cmd
}

func newTagCmd() *cobra.Command {
	var (
		feedURL   string
		noArtwork bool
	)

	cmd := &cobra.Command{
		Use:   "tag <file.mp3> <feed-guid>/<item-guid>",
		Short: "Write ID3 tags to a local MP3 from a resolved remote item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[1])
			if err != nil {
				return err
			}
			if ref.IsWholeFeed() {
				return fmt.Errorf("reference %q needs an item GUID", args[1])
			}
			ref.FeedURL = feedURL

			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			resolved, err := mgr.ResolveOne(ctx, ref)
			if err != nil {
				return err
			}
			info, ok := audio.InfoFromResolved(resolved)
			if !ok {
				return fmt.Errorf("reference %s did not resolve to an item", ref)
			}

			var artwork []byte
			if url := coverURL(resolved); url != "" && !noArtwork {
				artwork, err = mgr.Artwork(ctx, url)
				if err != nil {
					logger.Warn("Skipping artwork", zap.String("url", url), zap.Error(err))
					artwork = nil
				}
			}

			if err := audio.NewTagger(nil).SaveTags(args[0], info, artwork); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tagged %s: %s - %s\n", args[0], info.Artist, info.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&feedURL, "feed-url", "", "feed URL hint used when the directory lookup fails")
	cmd.Flags().BoolVar(&noArtwork, "no-artwork", false, "do not embed cover art")
	return cmd
}

// buildCatalog runs Initialize over urls. An empty catalog is an error.
func buildCatalog(cmd *cobra.Command, urls []string) (*catalog.Manager, error) {
	mgr, err := newManager(cmd)
	if err != nil {
		return nil, err
	}
	if err := mgr.Initialize(cmd.Context(), strings.Join(urls, "\n")); err != nil {
		return nil, err
	}
	if len(mgr.Albums()) == 0 {
		return nil, errEmptyCatalog
	}
	return mgr, nil
}

// parseRef parses "feedGuid" or "feedGuid/itemGuid".
func parseRef(s string) (model.RemoteItemReference, error) {
	feedGUID, itemGUID, _ := strings.Cut(strings.TrimSpace(s), "/")
	if feedGUID == "" {
		return model.RemoteItemReference{}, fmt.Errorf("invalid reference %q: missing feed GUID", s)
	}
	return model.RemoteItemReference{FeedGUID: feedGUID, ItemGUID: itemGUID}, nil
}

func toView(r resolve.Result) resultView {
	view := resultView{Ref: r.Ref}
	if !r.OK() {
		view.Error = r.Err.Error()
		view.Kind = "error"
		if kind, ok := resolve.KindOf(r.Err); ok {
			view.Kind = kind.String()
		}
		return view
	}
	if mt, ok := r.Item.MusicTrack(); ok {
		view.Track = &mt
		return view
	}
	view.Album = r.Item.Album()
	return view
}

func coverURL(r *model.ResolvedRemoteItem) string {
	if r.Item != nil && r.Item.Image != "" {
		return r.Item.Image
	}
	if r.Feed != nil && r.Feed.HasCoverArt() {
		return *r.Feed.CoverArt
	}
	return ""
}

func filterHighConfidence(tracks []model.MusicTrack) []model.MusicTrack {
	out := tracks[:0]
	for _, t := range tracks {
		if t.Source.HighConfidence() {
			out = append(out, t)
		}
	}
	return out
}
