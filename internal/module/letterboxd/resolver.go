package letterboxd

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/project-tktt/letterboxd-export/internal/common/fetcher"
	"github.com/project-tktt/letterboxd-export/internal/domain"
	"github.com/project-tktt/letterboxd-export/internal/metrics"
)

// ItemResolver turns one listing entry into exactly one record
type ItemResolver interface {
	Resolve(ctx context.Context, item domain.ItemRef) domain.ResolvedRecord
}

// Resolver fetches a detail page and applies strategies in priority order
type Resolver struct {
	fetcher    fetcher.Fetcher
	strategies []Strategy
	logger     zerolog.Logger
}

// NewResolver creates a resolver over an ordered strategy chain
func NewResolver(f fetcher.Fetcher, strategies []Strategy, logger zerolog.Logger) *Resolver {
	return &Resolver{
		fetcher:    f,
		strategies: strategies,
		logger:     logger,
	}
}

// Resolve never fails: fetch errors and unmatched pages yield a record without an identifier
func (r *Resolver) Resolve(ctx context.Context, item domain.ItemRef) domain.ResolvedRecord {
	record := domain.ResolvedRecord{
		SourceURL: item.SourceURL,
		MediaType: domain.MediaMovie,
		Title:     item.Title,
	}

	start := time.Now()
	doc, err := r.fetcher.Fetch(ctx, item.SourceURL)
	metrics.ObserveFetch("detail", start)
	if err != nil {
		metrics.Resolutions.WithLabelValues("fetch_failed").Inc()
		r.logger.Warn().
			Err(err).
			Str("url", item.SourceURL).
			Msg("detail page fetch failed")
		return record
	}

	for _, s := range r.strategies {
		match, ok := s.Attempt(doc)
		if !ok {
			continue
		}

		metrics.Resolutions.WithLabelValues(s.Name()).Inc()
		r.logger.Debug().
			Str("url", item.SourceURL).
			Str("strategy", s.Name()).
			Str("id", match.ID).
			Msg("resolved")

		record.CanonicalID = match.ID
		record.MediaType = match.MediaType
		return record
	}

	metrics.Resolutions.WithLabelValues("none").Inc()
	r.logger.Info().
		Str("url", item.SourceURL).
		Str("title", item.Title).
		Msg("no identifier found")
	return record
}
