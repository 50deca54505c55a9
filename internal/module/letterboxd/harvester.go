// Package letterboxd harvests a paginated list and resolves each entry's movie database identifier.
package letterboxd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/project-tktt/letterboxd-export/internal/common/fetcher"
	"github.com/project-tktt/letterboxd-export/internal/domain"
	"github.com/project-tktt/letterboxd-export/internal/metrics"
	"github.com/project-tktt/letterboxd-export/internal/module"
)

const (
	Source = "letterboxd"
	// DefaultConcurrency bounds both the page and the resolution pool
	DefaultConcurrency = 20
)

var (
	// ErrSeedFetch is returned when the first listing page cannot be fetched
	ErrSeedFetch = errors.New("seed page fetch failed")
	// ErrInvalidListURL is returned for list URLs without an http(s) scheme and host
	ErrInvalidListURL = errors.New("invalid list url")
)

// Config holds harvester configuration
type Config struct {
	PageConcurrency    int
	ResolveConcurrency int
	Selectors          Selectors
	// Strategies overrides the default fallback chain when set
	Strategies []Strategy
}

// Harvester implements module.Harvester for list pages
type Harvester struct {
	fetcher  fetcher.Fetcher
	pages    *PageFetcher
	resolver ItemResolver
	config   Config
	logger   zerolog.Logger
}

var _ module.Harvester = (*Harvester)(nil)

// NewHarvester creates a harvester sharing one fetcher between both phases
func NewHarvester(f fetcher.Fetcher, cfg Config, logger zerolog.Logger) *Harvester {
	if cfg.PageConcurrency < 1 {
		cfg.PageConcurrency = DefaultConcurrency
	}
	if cfg.ResolveConcurrency < 1 {
		cfg.ResolveConcurrency = DefaultConcurrency
	}
	if cfg.Selectors == (Selectors{}) {
		cfg.Selectors = DefaultSelectors()
	}
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = DefaultStrategies(cfg.Selectors)
	}

	return &Harvester{
		fetcher:  f,
		pages:    NewPageFetcher(f, cfg.PageConcurrency, cfg.Selectors, logger),
		resolver: NewResolver(f, cfg.Strategies, logger),
		config:   cfg,
		logger:   logger,
	}
}

func (h *Harvester) Source() string {
	return Source
}

// Harvest returns the list's records sorted by discovery order
func (h *Harvester) Harvest(ctx context.Context, listURL string) ([]domain.ResolvedRecord, error) {
	var records []domain.ResolvedRecord
	err := h.HarvestWithCallback(ctx, listURL, func(r []domain.ResolvedRecord) error {
		records = r
		return nil
	})
	return records, err
}

// HarvestWithCallback runs the fetch phase, then the resolution phase, then merges
func (h *Harvester) HarvestWithCallback(ctx context.Context, listURL string, handler module.RecordHandler) error {
	start := time.Now()

	items, err := h.CollectItems(ctx, listURL)
	if err != nil {
		return err
	}

	h.logger.Info().
		Int("items", len(items)).
		Int("concurrency", h.config.ResolveConcurrency).
		Msg("resolving identifiers")

	records := ResolveAll(ctx, h.resolver, items, h.config.ResolveConcurrency)
	merged := MergeByDiscovery(items, records)

	resolved := 0
	for _, r := range merged {
		if r.Resolved() {
			resolved++
		}
	}
	h.logger.Info().
		Int("records", len(merged)).
		Int("resolved", resolved).
		Dur("duration", time.Since(start)).
		Msg("harvest complete")

	if err := handler(merged); err != nil {
		return fmt.Errorf("handle records: %w", err)
	}
	return nil
}

// CollectItems fetches the seed page, discovers the page count and extracts every page
func (h *Harvester) CollectItems(ctx context.Context, listURL string) ([]domain.ItemRef, error) {
	base, origin, err := NormalizeListURL(listURL)
	if err != nil {
		return nil, err
	}

	fetchStart := time.Now()
	seed, err := h.fetcher.Fetch(ctx, base)
	metrics.ObserveFetch("listing", fetchStart)
	if err != nil {
		metrics.PagesFetched.WithLabelValues("error").Inc()
		h.logger.Error().Err(err).Str("url", base).Msg("seed page fetch failed")
		return nil, fmt.Errorf("%w: %w", ErrSeedFetch, err)
	}
	metrics.PagesFetched.WithLabelValues("ok").Inc()

	totalPages := DiscoverPageCount(seed, h.config.Selectors)
	items := ExtractListing(seed, origin, 0, h.config.Selectors)

	h.logger.Info().
		Str("url", base).
		Int("total_pages", totalPages).
		Int("first_page_items", len(items)).
		Msg("starting page fetch")

	for _, page := range h.pages.FetchPages(ctx, base, origin, totalPages, len(items)) {
		items = append(items, page.Items...)
	}

	metrics.ItemsDiscovered.Add(float64(len(items)))
	return items, nil
}

// NormalizeListURL trims whitespace and trailing slashes and returns the base URL with its origin
func NormalizeListURL(raw string) (base, origin string, err error) {
	base = strings.TrimRight(strings.TrimSpace(raw), "/")

	u, err := url.Parse(base)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidListURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidListURL, raw)
	}

	return base, u.Scheme + "://" + u.Host, nil
}
