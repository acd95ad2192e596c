// Package metrics exposes Prometheus collectors for feed fetching,
// reference resolution and catalog builds.
//
// Metrics satisfies the observer interfaces of the http, resolve and
// catalog packages, so one value can be handed to every component:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(reg)
//	client := feedhttp.NewClient(feedhttp.WithObserver(m))
//	orch := resolve.NewOrchestrator(resolver, client, parser, opts, resolve.WithRecorder(m))
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "feedmusic"

// Metrics holds the collectors.
type Metrics struct {
	FetchAttempts *prometheus.CounterVec
	Resolutions   *prometheus.CounterVec
	BatchDuration prometheus.Histogram
	BatchSize     prometheus.Histogram
	AlbumsParsed  prometheus.Counter
	AlbumsDropped *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_attempts_total",
				Help:      "Feed fetch attempts by outcome",
			},
			[]string{"outcome"},
		),
		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolutions_total",
				Help:      "Remote item resolutions by outcome",
			},
			[]string{"outcome"},
		),
		BatchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_duration_seconds",
				Help:      "Time spent resolving one batch",
				Buckets:   prometheus.DefBuckets,
			},
		),
		BatchSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_size",
				Help:      "Number of references per batch",
				Buckets:   prometheus.LinearBuckets(1, 2, 8),
			},
		),
		AlbumsParsed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "albums_parsed_total",
				Help:      "Feeds parsed into albums",
			},
		),
		AlbumsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "albums_dropped_total",
				Help:      "Feeds dropped from a catalog by reason",
			},
			[]string{"reason"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.FetchAttempts,
			m.Resolutions,
			m.BatchDuration,
			m.BatchSize,
			m.AlbumsParsed,
			m.AlbumsDropped,
		)
	}
	return m
}

// FetchAttempt records one fetch attempt.
func (m *Metrics) FetchAttempt(outcome string) {
	m.FetchAttempts.WithLabelValues(outcome).Inc()
}

// Resolution records one resolved or failed reference.
func (m *Metrics) Resolution(outcome string) {
	m.Resolutions.WithLabelValues(outcome).Inc()
}

// Batch records one finished batch.
func (m *Metrics) Batch(size int, elapsed time.Duration) {
	m.BatchSize.Observe(float64(size))
	m.BatchDuration.Observe(elapsed.Seconds())
}

// AlbumParsed records a feed that became an album.
func (m *Metrics) AlbumParsed() {
	m.AlbumsParsed.Inc()
}

// AlbumDropped records a feed left out of a catalog.
func (m *Metrics) AlbumDropped(reason string) {
	m.AlbumsDropped.WithLabelValues(reason).Inc()
}

// Handler serves the metrics gathered by g plus health endpoints.
func Handler(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"feedmusic"}`))
	})
	return mux
}

// Serve listens on addr until ctx ends.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           Handler(g),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shut down metrics server", zap.Error(err))
		}
	}()

	logger.Info("Serving metrics", zap.String("addr", addr))
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server failed: %w", err)
	}
	return nil
}
