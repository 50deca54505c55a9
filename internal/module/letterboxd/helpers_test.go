package letterboxd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned HTML by URL and records every call
type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	delays map[string]time.Duration
	calls  []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages:  map[string]string{},
		errs:   map[string]error{},
		delays: map[string]time.Duration{},
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	html, ok := f.pages[url]
	err := f.errs[url]
	delay := f.delays[url]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no fixture for %s", url)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (f *fakeFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == url {
			n++
		}
	}
	return n
}

var errTransport = errors.New("connection reset by peer")

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

type poster struct {
	link  string
	title string
}

// listingHTML renders a listing page; an empty link omits the target attribute
func listingHTML(lastPageHref string, posters ...poster) string {
	var b strings.Builder
	b.WriteString("<html><body><ul class=\"poster-list\">")
	for _, p := range posters {
		b.WriteString(`<li class="poster-container"><div class="film-poster"`)
		if p.link != "" {
			fmt.Fprintf(&b, ` data-target-link="%s"`, p.link)
		}
		b.WriteString(">")
		if p.title != "" {
			fmt.Fprintf(&b, `<img alt="%s" src="x.jpg">`, p.title)
		} else {
			b.WriteString(`<img src="x.jpg">`)
		}
		b.WriteString("</div></li>")
	}
	b.WriteString("</ul>")
	if lastPageHref != "" {
		fmt.Fprintf(&b, `<div class="paginate-pages"><ul><li><a href="/u/list/l/page/2/">2</a></li><li><a href="%s">last</a></li></ul></div>`, lastPageHref)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func rootAttrHTML(id, kind string) string {
	return fmt.Sprintf(`<html><body data-tmdb-id="%s" data-tmdb-type="%s"><h1>film</h1></body></html>`, id, kind)
}
