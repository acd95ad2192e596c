package resolve

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/feedmusic/internal/feed"
	"github.com/handiism/feedmusic/internal/model"
)

// Options controls batching.
type Options struct {
	// BatchSize is the number of references resolved concurrently.
	BatchSize int

	// InterBatchDelay is the pause before each batch after the first. It
	// is the client-side rate limit for the directory API.
	InterBatchDelay time.Duration
}

// DefaultOptions returns batches of 5 with a 500ms pause.
func DefaultOptions() Options {
	return Options{
		BatchSize:       5,
		InterBatchDelay: 500 * time.Millisecond,
	}
}

func (o Options) normalized() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultOptions().BatchSize
	}
	if o.InterBatchDelay < 0 {
		o.InterBatchDelay = 0
	}
	return o
}

// Result is the outcome for one reference: Item on success, Err (a
// *ResolutionError) on failure.
type Result struct {
	Ref  model.RemoteItemReference
	Item *model.ResolvedRemoteItem
	Err  error
}

// OK reports whether the reference resolved.
func (r Result) OK() bool {
	return r.Err == nil && r.Item != nil
}

// AlbumResult is the outcome for one feed URL.
type AlbumResult struct {
	URL   string
	Album *model.Album
	Err   error
}

// OK reports whether the feed was fetched and parsed.
func (r AlbumResult) OK() bool {
	return r.Err == nil && r.Album != nil
}

// ItemResolver resolves a single reference. *Resolver satisfies it.
type ItemResolver interface {
	Resolve(ctx context.Context, ref model.RemoteItemReference) (*model.ResolvedRemoteItem, error)
}

// Recorder receives resolution and batch measurements.
type Recorder interface {
	Resolution(outcome string)
	Batch(size int, elapsed time.Duration)
}

// Orchestrator runs resolutions and feed fetches in paced batches.
type Orchestrator struct {
	resolver ItemResolver
	fetcher  FeedFetcher
	parser   *feed.Parser
	opts     Options
	logger   *zap.Logger
	recorder Recorder
	sleep    func(ctx context.Context, d time.Duration) error
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) OrchestratorOption {
	return func(o *Orchestrator) { o.recorder = r }
}

// NewOrchestrator creates an Orchestrator. fetcher and parser are used by
// FetchAlbums.
func NewOrchestrator(resolver ItemResolver, fetcher FeedFetcher, parser *feed.Parser, opts Options, options ...OrchestratorOption) *Orchestrator {
	if parser == nil {
		parser = feed.NewParser()
	}
	o := &Orchestrator{
		resolver: resolver,
		fetcher:  fetcher,
		parser:   parser,
		opts:     opts.normalized(),
		logger:   zap.NewNop(),
		sleep:    sleepContext,
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// ResolveAll resolves refs with the orchestrator's options.
func (o *Orchestrator) ResolveAll(ctx context.Context, refs []model.RemoteItemReference) []Result {
	return o.ResolveAllWith(ctx, refs, o.opts)
}

// ResolveAllWith resolves refs in batches of opts.BatchSize, waiting
// opts.InterBatchDelay before each batch after the first. It returns one
// Result per reference in input order. References not reached because ctx
// ended fail with KindCancelled.
func (o *Orchestrator) ResolveAllWith(ctx context.Context, refs []model.RemoteItemReference, opts Options) []Result {
	runID := uuid.NewString()
	log := o.logger.With(zap.String("run_id", runID))
	log.Info("Resolving references", zap.Int("count", len(refs)))

	results := runBatches(ctx, refs, opts.normalized(), o.sleep, o.batchDone,
		func(ctx context.Context, ref model.RemoteItemReference) Result {
			item, err := o.resolver.Resolve(ctx, ref)
			if err != nil {
				log.Warn("Failed to resolve reference",
					zap.String("feed_guid", ref.FeedGUID),
					zap.String("item_guid", ref.ItemGUID),
					zap.Error(err))
				return Result{Ref: ref, Err: err}
			}
			return Result{Ref: ref, Item: item}
		},
		func(ref model.RemoteItemReference, err error) Result {
			return Result{Ref: ref, Err: failure(KindCancelled, ref, err)}
		},
	)

	if o.recorder != nil {
		for _, r := range results {
			o.recorder.Resolution(outcome(r.Err))
		}
	}

	s := Summarize(results)
	log.Info("Resolution finished",
		zap.Int("succeeded", s.Succeeded),
		zap.Int("failed", s.Failed))
	return results
}

// FetchAlbums fetches and parses feed URLs through the same batch path.
// One AlbumResult is returned per URL, in input order.
func (o *Orchestrator) FetchAlbums(ctx context.Context, urls []string) []AlbumResult {
	runID := uuid.NewString()
	log := o.logger.With(zap.String("run_id", runID))

	return runBatches(ctx, urls, o.opts, o.sleep, o.batchDone,
		func(ctx context.Context, url string) AlbumResult {
			data, err := o.fetcher.Fetch(ctx, url)
			if err != nil {
				log.Warn("Failed to fetch feed", zap.String("url", url), zap.Error(err))
				return AlbumResult{URL: url, Err: err}
			}
			album, err := o.parser.ParseWithURL(data, url)
			if err != nil {
				log.Warn("Failed to parse feed", zap.String("url", url), zap.Error(err))
				return AlbumResult{URL: url, Err: err}
			}
			return AlbumResult{URL: url, Album: album}
		},
		func(url string, err error) AlbumResult {
			return AlbumResult{URL: url, Err: err}
		},
	)
}

func (o *Orchestrator) batchDone(size int, elapsed time.Duration) {
	if o.recorder != nil {
		o.recorder.Batch(size, elapsed)
	}
}

// runBatches applies fn to every item, opts.BatchSize at a time. Each
// goroutine writes only its own slot of the pre-sized result slice, so
// output order is input order. Items not started because ctx ended get
// skipped(item, ctx.Err()).
func runBatches[T, R any](
	ctx context.Context,
	items []T,
	opts Options,
	sleep func(context.Context, time.Duration) error,
	done func(size int, elapsed time.Duration),
	fn func(context.Context, T) R,
	skipped func(T, error) R,
) []R {
	results := make([]R, len(items))

	for start := 0; start < len(items); start += opts.BatchSize {
		if start > 0 && opts.InterBatchDelay > 0 {
			if err := sleep(ctx, opts.InterBatchDelay); err != nil {
				fillSkipped(results, items, start, err, skipped)
				return results
			}
		}
		if err := ctx.Err(); err != nil {
			fillSkipped(results, items, start, err, skipped)
			return results
		}

		end := min(start+opts.BatchSize, len(items))
		began := time.Now()

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				results[i] = fn(ctx, items[i])
				return nil
			})
		}
		_ = g.Wait()

		done(end-start, time.Since(began))
	}
	return results
}

func fillSkipped[T, R any](results []R, items []T, from int, err error, skipped func(T, error) R) {
	for i := from; i < len(items); i++ {
		results[i] = skipped(items[i], err)
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind, ok := KindOf(err); ok {
		return kind.String()
	}
	return "error"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
