package letterboxd

import (
	"context"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/project-tktt/letterboxd-export/internal/common/fetcher"
	"github.com/project-tktt/letterboxd-export/internal/domain"
	"github.com/project-tktt/letterboxd-export/internal/metrics"
)

// pageResult is the outcome of fetching a single listing page
type pageResult struct {
	PageNumber int
	Doc        *goquery.Document
	Error      error
}

// PageFetcher fetches listing pages 2..N with a bounded worker pool
type PageFetcher struct {
	fetcher     fetcher.Fetcher
	concurrency int
	selectors   Selectors
	logger      zerolog.Logger
}

// NewPageFetcher creates a page fetcher running at most concurrency fetches at once
func NewPageFetcher(f fetcher.Fetcher, concurrency int, sel Selectors, logger zerolog.Logger) *PageFetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &PageFetcher{
		fetcher:     f,
		concurrency: concurrency,
		selectors:   sel,
		logger:      logger,
	}
}

// FetchPages fetches pages 2..totalPages of base and extracts them in page order.
// Offsets continue from firstOffset so every page occupies its own range.
// Failed pages are logged and contribute nothing.
func (pf *PageFetcher) FetchPages(ctx context.Context, base, origin string, totalPages, firstOffset int) []domain.ListingPage {
	if totalPages < 2 {
		return nil
	}

	remaining := totalPages - 1
	pageQueue := make(chan int, remaining)
	results := make(chan pageResult, remaining)

	// Fill page queue (skip page 1, already fetched)
	for page := 2; page <= totalPages; page++ {
		pageQueue <- page
	}
	close(pageQueue)

	workers := pf.concurrency
	if workers > remaining {
		workers = remaining
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go pf.worker(ctx, base, pageQueue, results, &wg)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	docs := make(map[int]*goquery.Document, remaining)
	for result := range results {
		if result.Error != nil {
			metrics.PagesFetched.WithLabelValues("error").Inc()
			pf.logger.Warn().
				Err(result.Error).
				Int("page", result.PageNumber).
				Msg("listing page fetch failed")
			continue
		}
		metrics.PagesFetched.WithLabelValues("ok").Inc()
		docs[result.PageNumber] = result.Doc
	}

	// Offsets are fixed by page number once every fetch has settled
	pages := make([]domain.ListingPage, 0, len(docs))
	offset := firstOffset
	for page := 2; page <= totalPages; page++ {
		doc, ok := docs[page]
		if !ok {
			continue
		}
		items := ExtractListing(doc, origin, offset, pf.selectors)
		offset += len(items)
		pages = append(pages, domain.ListingPage{PageNumber: page, Items: items})
	}

	return pages
}

// worker processes pages from the queue
func (pf *PageFetcher) worker(ctx context.Context, base string, pageQueue <-chan int, results chan<- pageResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for pageNum := range pageQueue {
		start := time.Now()
		doc, err := pf.fetcher.Fetch(ctx, PageURL(base, pageNum))
		metrics.ObserveFetch("listing", start)

		results <- pageResult{PageNumber: pageNum, Doc: doc, Error: err}
	}
}
