package fetcher

import (
	"context"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher retrieves a page and parses it into a queryable document.
// Any transport failure or non-2xx status is an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Config holds common configuration for fetchers
type Config struct {
	UserAgent string
	// Timeout applies to each request, 0 keeps the collector default
	Timeout int // milliseconds
	// RequestDelay is a politeness delay per request, 0 disables pacing
	RequestDelay int // milliseconds
	// Parallelism caps in-flight requests while pacing is enabled
	Parallelism int
}

// StatusError reports a response whose status code is not a success
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d (%s) for %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}
