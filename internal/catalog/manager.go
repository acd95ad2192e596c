package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/feedmusic/internal/config"
	"github.com/handiism/feedmusic/internal/directory"
	"github.com/handiism/feedmusic/internal/extract"
	"github.com/handiism/feedmusic/internal/feed"
	feedhttp "github.com/handiism/feedmusic/internal/http"
	ioutils "github.com/handiism/feedmusic/internal/io"
	"github.com/handiism/feedmusic/internal/metrics"
	"github.com/handiism/feedmusic/internal/model"
	"github.com/handiism/feedmusic/internal/resolve"
)

// ErrNoDirectory is returned by operations that need directory credentials
// when none are configured.
var ErrNoDirectory = errors.New("directory API credentials not configured")

// ErrEpisodeNotFound is returned when a feed has no item with the requested
// GUID.
var ErrEpisodeNotFound = errors.New("episode not found")

// Manager coordinates catalog builds.
type Manager struct {
	settings   *config.Settings
	httpClient *feedhttp.Client
	parser     *feed.Parser
	directory  *directory.Client
	resolver   *resolve.Resolver
	orch       *resolve.Orchestrator
	pipeline   *extract.Pipeline
	aggregator *Aggregator
	artwork    *ioutils.ArtworkService
	logger     *zap.Logger
	recorder   Recorder

	albums     []*model.Album
	totalFeeds int32
	doneFeeds  int32

	onProgress func(ProgressEvent)
	mu         sync.RWMutex
}

// Option configures a Manager.
type Option func(*managerOptions)

type managerOptions struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	httpOps []feedhttp.Option
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *zap.Logger) Option {
	return func(o *managerOptions) { o.logger = l }
}

// WithMetrics reports fetches, resolutions and albums to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *managerOptions) { o.metrics = m }
}

// WithHTTPOptions appends options to the feed client, after the ones
// derived from settings.
func WithHTTPOptions(opts ...feedhttp.Option) Option {
	return func(o *managerOptions) { o.httpOps = append(o.httpOps, opts...) }
}

// NewManager wires the components from settings. Directory lookups are
// enabled only when settings carry API credentials.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) (*Manager, error) {
	o := managerOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	httpOpts := append(settings.ToHTTPOptions(), feedhttp.WithLogger(o.logger.Named("http")))
	var recorder Recorder = nopRecorder{}
	var batchRecorder resolve.Recorder
	if o.metrics != nil {
		httpOpts = append(httpOpts, feedhttp.WithObserver(o.metrics))
		recorder = o.metrics
		batchRecorder = o.metrics
	}
	httpOpts = append(httpOpts, o.httpOps...)

	client := feedhttp.NewClient(httpOpts...)
	client.MarkLarge(settings.LargeFeedURLs...)

	parser := feed.NewParser(
		feed.WithOrdering(settings.ToOrdering()),
		feed.WithLogger(o.logger.Named("feed")),
	)

	m := &Manager{
		settings:   settings,
		httpClient: client,
		parser:     parser,
		artwork:    ioutils.NewArtworkService(),
		logger:     o.logger,
		recorder:   recorder,
		onProgress: onProgress,
	}

	var dir resolve.Directory
	if settings.HasDirectoryCredentials() {
		dc, err := directory.NewClient(settings.ToDirectoryConfig(), client,
			directory.WithLogger(o.logger.Named("directory")))
		if err != nil {
			return nil, fmt.Errorf("failed to create directory client: %w", err)
		}
		m.directory = dc
		dir = dc
	}

	m.resolver = resolve.NewResolver(dir, client, parser,
		resolve.WithResolverLogger(o.logger.Named("resolve")),
		resolve.WithEpisodeFallback(settings.EpisodeFallback))

	orchOpts := []resolve.OrchestratorOption{resolve.WithLogger(o.logger.Named("batch"))}
	if batchRecorder != nil {
		orchOpts = append(orchOpts, resolve.WithRecorder(batchRecorder))
	}
	m.orch = resolve.NewOrchestrator(m.resolver, client, parser, settings.ToBatchOptions(), orchOpts...)

	m.pipeline = extract.NewPipeline(settings.ToExtractConfig(), client, parser,
		extract.WithResolver(m.orch),
		extract.WithLogger(o.logger.Named("extract")))

	m.aggregator = NewAggregator(client, parser, m.orch, o.logger.Named("publisher"))
	m.aggregator.recorder = recorder

	return m, nil
}

// Initialize fetches and parses the feeds listed in input, one URL per
// line. Feeds that fail are dropped with a logged reason. Publisher feeds
// are expanded into the albums they reference. The catalog is rebuilt on
// every call; an empty catalog means every feed failed.
func (m *Manager) Initialize(ctx context.Context, input string) error {
	urls := ParseInputURLs(input)
	runID := uuid.NewString()
	log := m.logger.With(zap.String("run_id", runID))

	atomic.StoreInt32(&m.totalFeeds, int32(len(urls)))
	atomic.StoreInt32(&m.doneFeeds, 0)
	log.Info("Building catalog", zap.Int("feeds", len(urls)))

	var collected []*model.Album
	for _, r := range m.orch.FetchAlbums(ctx, urls) {
		atomic.AddInt32(&m.doneFeeds, 1)

		if !r.OK() {
			reason := dropReason(r.Err)
			m.recorder.AlbumDropped(reason)
			log.Warn("Dropping feed", zap.String("url", r.URL), zap.String("reason", reason), zap.Error(r.Err))
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error reading %s: %v", r.URL, r.Err), Level: LevelError})
			continue
		}

		album := r.Album
		if feed.IsPublisherFeed(album) {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Expanding publisher feed: %s", album.Title), Level: LevelInfo})
			expanded := m.aggregator.AggregateAlbum(ctx, album)
			for _, a := range expanded {
				m.foundAlbum(a)
			}
			collected = append(collected, expanded...)
			continue
		}

		m.recorder.AlbumParsed()
		m.foundAlbum(album)
		collected = append(collected, album)
	}

	albums := Dedup(collected)

	m.mu.Lock()
	m.albums = albums
	m.mu.Unlock()

	log.Info("Catalog built", zap.Int("albums", len(albums)))
	if len(albums) == 0 && len(urls) > 0 {
		m.progress(ProgressEvent{Message: "No feed could be read", Level: LevelWarning})
	}
	return ctx.Err()
}

// ExtractTracks runs the extraction pipeline over every album, at most
// settings.MaxConcurrentFeeds at a time. Tracks are returned grouped by
// album in catalog order.
func (m *Manager) ExtractTracks(ctx context.Context) ([]model.MusicTrack, error) {
	albums := m.Albums()
	perAlbum := make([][]model.MusicTrack, len(albums))

	var g errgroup.Group
	g.SetLimit(max(1, m.settings.MaxConcurrentFeeds))

	for i, album := range albums {
		g.Go(func() error {
			tracks := m.pipeline.ExtractAlbum(ctx, album)
			perAlbum[i] = tracks
			level := LevelSuccess
			if len(tracks) == 0 {
				level = LevelVerbose
			}
			m.progress(ProgressEvent{Message: fmt.Sprintf("Extracted %d tracks from %s", len(tracks), album.Title), Level: level})
			return nil
		})
	}
	_ = g.Wait()

	var out []model.MusicTrack
	for _, tracks := range perAlbum {
		out = append(out, tracks...)
	}
	return out, ctx.Err()
}

// ExtractFeed fetches one feed and extracts its tracks.
func (m *Manager) ExtractFeed(ctx context.Context, url string) ([]model.MusicTrack, *model.Album, error) {
	return m.pipeline.ExtractFeed(ctx, url)
}

// ExtractEpisode fetches the feed at url and extracts the tracks of the
// episode whose GUID is episodeGUID.
func (m *Manager) ExtractEpisode(ctx context.Context, url, episodeGUID string) ([]model.MusicTrack, error) {
	r := m.orch.FetchAlbums(ctx, []string{url})[0]
	if !r.OK() {
		return nil, r.Err
	}
	episode := r.Album.TrackByGUID(episodeGUID)
	if episode == nil {
		return nil, fmt.Errorf("%w: %s in %s", ErrEpisodeNotFound, episodeGUID, url)
	}
	return m.pipeline.ExtractEpisode(ctx, r.Album, episode), nil
}

// Artwork downloads the image at url and prepares it for embedding.
func (m *Manager) Artwork(ctx context.Context, url string) ([]byte, error) {
	data, err := m.httpClient.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return m.artwork.Prepare(ctx, data, ioutils.DefaultArtworkSize)
}

// Resolve resolves references through the batch path.
func (m *Manager) Resolve(ctx context.Context, refs []model.RemoteItemReference) ([]resolve.Result, resolve.Summary) {
	results := m.orch.ResolveAll(ctx, refs)
	return results, resolve.Summarize(results)
}

// ResolveOne resolves a single reference without batching.
func (m *Manager) ResolveOne(ctx context.Context, ref model.RemoteItemReference) (*model.ResolvedRemoteItem, error) {
	return m.resolver.Resolve(ctx, ref)
}

// Aggregate builds the discography of a publisher feed.
func (m *Manager) Aggregate(ctx context.Context, publisherURL string) ([]*model.Album, error) {
	return m.aggregator.Aggregate(ctx, publisherURL)
}

// Search queries the directory for music feeds.
func (m *Manager) Search(ctx context.Context, query string, limit int) ([]directory.Feed, error) {
	if m.directory == nil {
		return nil, ErrNoDirectory
	}
	return m.directory.SearchMusic(ctx, query, limit)
}

// Albums returns the albums of the last Initialize.
func (m *Manager) Albums() []*model.Album {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Album, len(m.albums))
	copy(out, m.albums)
	return out
}

// GetAlbumNames returns the names of all initialized albums.
func (m *Manager) GetAlbumNames() []string {
	albums := m.Albums()
	names := make([]string, len(albums))
	for i, album := range albums {
		names[i] = fmt.Sprintf("%s - %s (%d tracks)", album.Artist, album.Title, len(album.Tracks))
	}
	return names
}

// GetProgress returns how many input feeds have been processed.
func (m *Manager) GetProgress() (done, total int32) {
	return atomic.LoadInt32(&m.doneFeeds), atomic.LoadInt32(&m.totalFeeds)
}

// ParseInputURLs returns the http(s) URLs of input, one per line or
// separated by whitespace.
func ParseInputURLs(input string) []string {
	var urls []string
	for _, field := range strings.Fields(input) {
		if strings.HasPrefix(field, "http://") || strings.HasPrefix(field, "https://") {
			urls = append(urls, field)
		}
	}
	return urls
}

func (m *Manager) foundAlbum(album *model.Album) {
	m.progress(ProgressEvent{Message: fmt.Sprintf("Found album: %s - %s (%d tracks)", album.Artist, album.Title, len(album.Tracks)), Level: LevelInfo})
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}

func dropReason(err error) string {
	var pe *feed.ParseError
	var fe *feedhttp.FetchError
	switch {
	case errors.As(err, &pe):
		return "parse"
	case errors.As(err, &fe):
		return fe.Kind.String()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "fetch"
	}
}
