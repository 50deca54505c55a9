// Package metrics holds the Prometheus collectors shared by the exporter and the worker.
//
// Harvest metrics:
//   - harvest_pages_total{result} (Counter): listing pages fetched, result is "ok" or "error"
//   - harvest_items_discovered_total (Counter): entries extracted from listing pages
//   - harvest_resolutions_total{strategy} (Counter): detail pages resolved, by winning strategy or "none"
//   - harvest_fetch_duration_seconds{kind} (Histogram): fetch latency, kind is "listing" or "detail"
//
// Worker metrics:
//   - worker_entries_indexed_total{backend} (Counter): entries written to an indexer
//   - worker_entries_skipped_total (Counter): entries skipped as unchanged
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	PagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_pages_total",
			Help: "Total number of listing pages fetched",
		},
		[]string{"result"}, // "ok", "error"
	)

	ItemsDiscovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "harvest_items_discovered_total",
			Help: "Total number of entries extracted from listing pages",
		},
	)

	Resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_resolutions_total",
			Help: "Total number of detail pages resolved by strategy",
		},
		[]string{"strategy"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "harvest_fetch_duration_seconds",
			Help:    "Duration of listing and detail fetches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"}, // "listing", "detail"
	)

	EntriesIndexed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_entries_indexed_total",
			Help: "Total number of entries written to an indexer",
		},
		[]string{"backend"},
	)

	EntriesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "worker_entries_skipped_total",
			Help: "Total number of unchanged entries skipped",
		},
	)
)

// ObserveFetch records a fetch duration since start
func ObserveFetch(kind string, start time.Time) {
	FetchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// Serve exposes /metrics on addr until ctx is cancelled. An empty addr disables it.
func Serve(ctx context.Context, addr string, logger zerolog.Logger) {
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()
}
