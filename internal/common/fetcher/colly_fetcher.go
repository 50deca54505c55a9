package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// CollyFetcher implements Fetcher on top of a shared colly collector.
// Every call clones the collector so concurrent fetches never share callbacks.
type CollyFetcher struct {
	collector *colly.Collector
	config    Config
}

// NewCollyFetcher creates a fetcher that sends the configured user agent on every request
func NewCollyFetcher(config Config) *CollyFetcher {
	c := colly.NewCollector(
		colly.UserAgent(config.UserAgent),
		colly.AllowURLRevisit(),
	)
	// Statuses are classified in Fetch so every 2xx body is kept
	c.ParseHTTPErrorResponse = true

	if config.Timeout > 0 {
		c.SetRequestTimeout(time.Duration(config.Timeout) * time.Millisecond)
	}

	// Configure rate limiting
	if config.RequestDelay > 0 {
		parallelism := config.Parallelism
		if parallelism < 1 {
			parallelism = 1
		}
		c.Limit(&colly.LimitRule{
			DomainGlob:  "*",
			Parallelism: parallelism,
			Delay:       time.Duration(config.RequestDelay) * time.Millisecond,
			RandomDelay: time.Duration(config.RequestDelay/2) * time.Millisecond,
		})
	}

	return &CollyFetcher{
		collector: c,
		config:    config,
	}
}

func (f *CollyFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var body []byte
	var statusErr error

	collector := f.collector.Clone()
	collector.Context = ctx

	collector.OnResponse(func(r *colly.Response) {
		if r.StatusCode < 200 || r.StatusCode > 299 {
			statusErr = &StatusError{URL: url, StatusCode: r.StatusCode}
			return
		}
		body = r.Body
	})

	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			statusErr = &StatusError{URL: url, StatusCode: r.StatusCode}
		}
	})

	if err := collector.Visit(url); err != nil {
		if statusErr != nil {
			return nil, statusErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("visit %s: %w", url, err)
	}

	if statusErr != nil {
		return nil, statusErr
	}
	if body == nil {
		return nil, errors.New("empty response from " + url)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	return doc, nil
}
