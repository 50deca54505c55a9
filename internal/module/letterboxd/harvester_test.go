package letterboxd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-tktt/letterboxd-export/internal/common/fetcher"
	"github.com/project-tktt/letterboxd-export/internal/domain"
)

const testList = "https://letterboxd.com/u/list/l"

func newTestHarvester(f fetcher.Fetcher, concurrency int) *Harvester {
	return NewHarvester(f, Config{PageConcurrency: concurrency, ResolveConcurrency: concurrency}, zerolog.Nop())
}

func TestHarvester_SinglePage(t *testing.T) {
	f := newFakeFetcher()
	f.pages[testList] = listingHTML("",
		poster{link: "/film/a/", title: "A"},
		poster{link: "/film/b/", title: "B"},
		poster{link: "/film/c/", title: "C"},
	)
	for _, slug := range []string{"a", "b", "c"} {
		f.pages["https://letterboxd.com/film/"+slug+"/"] = rootAttrHTML("603", "movie")
	}

	records, err := newTestHarvester(f, 20).Harvest(context.Background(), testList+"/")
	require.NoError(t, err)

	require.Len(t, records, 3)
	for i, slug := range []string{"a", "b", "c"} {
		assert.Equal(t, "https://letterboxd.com/film/"+slug+"/", records[i].SourceURL)
		assert.Equal(t, "603", records[i].CanonicalID)
		assert.Equal(t, domain.MediaMovie, records[i].MediaType)
	}
}

func TestHarvester_PreservesPageOrderRegardlessOfCompletion(t *testing.T) {
	f := newFakeFetcher()
	f.pages[testList] = listingHTML("/u/list/l/page/4/", poster{link: "/film/p1a/", title: "p1a"}, poster{link: "/film/p1b/", title: "p1b"})
	f.pages[PageURL(testList, 2)] = listingHTML("", poster{link: "/film/p2a/", title: "p2a"})
	f.pages[PageURL(testList, 3)] = listingHTML("", poster{link: "/film/p3a/", title: "p3a"}, poster{link: "/film/p3b/", title: "p3b"})
	f.pages[PageURL(testList, 4)] = listingHTML("", poster{link: "/film/p4a/", title: "p4a"})

	// page 2 finishes last, detail of the first item finishes last
	f.delays[PageURL(testList, 2)] = 30 * time.Millisecond
	f.delays["https://letterboxd.com/film/p1a/"] = 20 * time.Millisecond

	want := []string{"p1a", "p1b", "p2a", "p3a", "p3b", "p4a"}
	for i, slug := range want {
		f.pages["https://letterboxd.com/film/"+slug+"/"] = rootAttrHTML(fmt.Sprint(100+i), "movie")
	}

	records, err := newTestHarvester(f, 4).Harvest(context.Background(), testList)
	require.NoError(t, err)

	require.Len(t, records, len(want))
	for i, slug := range want {
		assert.Equal(t, slug, records[i].Title)
		assert.Equal(t, fmt.Sprint(100+i), records[i].CanonicalID)
	}
}

func TestHarvester_FailedPageDropped(t *testing.T) {
	f := newFakeFetcher()
	f.pages[testList] = listingHTML("/u/list/l/page/3/", poster{link: "/film/a/", title: "A"})
	f.errs[PageURL(testList, 2)] = &fetcher.StatusError{URL: PageURL(testList, 2), StatusCode: http.StatusBadGateway}
	f.pages[PageURL(testList, 3)] = listingHTML("", poster{link: "/film/c/", title: "C"})
	f.pages["https://letterboxd.com/film/a/"] = rootAttrHTML("1", "movie")
	f.pages["https://letterboxd.com/film/c/"] = rootAttrHTML("3", "tv")

	records, err := newTestHarvester(f, 2).Harvest(context.Background(), testList)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].Title)
	assert.Equal(t, "C", records[1].Title)
	assert.Equal(t, domain.MediaShow, records[1].MediaType)
}

func TestHarvester_DetailFailureKeepsBatch(t *testing.T) {
	f := newFakeFetcher()
	f.pages[testList] = listingHTML("", poster{link: "/film/a/", title: "A"}, poster{link: "/film/b/", title: "B"})
	f.pages["https://letterboxd.com/film/a/"] = rootAttrHTML("10", "movie")
	f.errs["https://letterboxd.com/film/b/"] = errTransport

	records, err := newTestHarvester(f, 20).Harvest(context.Background(), testList)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "10", records[0].CanonicalID)
	assert.Equal(t, domain.ResolvedRecord{SourceURL: "https://letterboxd.com/film/b/", MediaType: domain.MediaMovie, Title: "B"}, records[1])
}

func TestHarvester_SeedFailureIsFatal(t *testing.T) {
	f := newFakeFetcher()
	f.errs[testList] = errTransport

	_, err := newTestHarvester(f, 20).Harvest(context.Background(), testList)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSeedFetch))
	assert.True(t, errors.Is(err, errTransport))
}

func TestHarvester_InvalidListURL(t *testing.T) {
	_, err := newTestHarvester(newFakeFetcher(), 20).Harvest(context.Background(), "letterboxd.com/u/list/l")

	assert.ErrorIs(t, err, ErrInvalidListURL)
}

func TestHarvester_HandlerError(t *testing.T) {
	f := newFakeFetcher()
	f.pages[testList] = listingHTML("")
	boom := errors.New("disk full")

	err := newTestHarvester(f, 20).HarvestWithCallback(context.Background(), testList, func([]domain.ResolvedRecord) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestHarvester_TotalItemsAcrossPages(t *testing.T) {
	f := newFakeFetcher()
	counts := []int{3, 2, 4}
	f.pages[testList] = listingHTML("/u/list/l/page/3/")
	total := 0
	for page, k := range counts {
		var posters []poster
		for i := 0; i < k; i++ {
			slug := fmt.Sprintf("p%d-%d", page+1, i)
			posters = append(posters, poster{link: "/film/" + slug + "/", title: slug})
			f.pages["https://letterboxd.com/film/"+slug+"/"] = rootAttrHTML("1", "movie")
		}
		html := listingHTML("", posters...)
		if page == 0 {
			html = listingHTML("/u/list/l/page/3/", posters...)
		}
		f.pages[PageURL(testList, page+1)] = html
		total += k
	}

	items, err := newTestHarvester(f, 3).CollectItems(context.Background(), testList)
	require.NoError(t, err)

	require.Len(t, items, total)
	for i, item := range items {
		assert.Equal(t, i, item.DiscoveryOrder)
	}
}

func TestNormalizeListURL(t *testing.T) {
	base, origin, err := NormalizeListURL("  https://letterboxd.com/u/list/l/ ")
	require.NoError(t, err)
	assert.Equal(t, "https://letterboxd.com/u/list/l", base)
	assert.Equal(t, "https://letterboxd.com", origin)

	_, _, err = NormalizeListURL("ftp://letterboxd.com/u/list/l")
	assert.ErrorIs(t, err, ErrInvalidListURL)
}

// TestHarvester_EndToEnd drives the colly fetcher against a local site
func TestHarvester_EndToEnd(t *testing.T) {
	var uaSeen []string
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/u/list/l/", func(w http.ResponseWriter, r *http.Request) {
		uaSeen = append(uaSeen, r.UserAgent())
		switch {
		case strings.HasSuffix(r.URL.Path, "/page/2/"):
			fmt.Fprint(w, listingHTML("",
				poster{link: "/film/breaking-bad/", title: "Breaking Bad"},
				poster{title: "Malformed"},
			))
		case r.URL.Path == "/u/list/l/":
			fmt.Fprint(w, listingHTML("/u/list/l/page/2/",
				poster{link: "/film/matrix/", title: "The Matrix"},
				poster{link: "/film/inception/", title: "Inception"},
				poster{link: "/film/missing/", title: "Missing"},
			))
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/u/list/l", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/u/list/l/", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/film/matrix/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rootAttrHTML("603", "movie"))
	})
	mux.HandleFunc("/film/breaking-bad/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="https://www.themoviedb.org/tv/1396/" data-track-action="TMDB">TMDB</a></body></html>`)
	})
	mux.HandleFunc("/film/inception/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><script type="application/ld+json">{"sameAs":["https://www.themoviedb.org/movie/27205"]}</script></head><body></body></html>`)
	})
	mux.HandleFunc("/film/missing/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	})

	f := fetcher.NewCollyFetcher(fetcher.Config{UserAgent: "export-test/1.0", Timeout: 5000})
	h := NewHarvester(f, Config{PageConcurrency: 2, ResolveConcurrency: 3}, zerolog.Nop())

	records, err := h.Harvest(context.Background(), srv.URL+"/u/list/l/")
	require.NoError(t, err)

	assert.Equal(t, []domain.ResolvedRecord{
		{SourceURL: srv.URL + "/film/matrix/", CanonicalID: "603", MediaType: domain.MediaMovie, Title: "The Matrix"},
		{SourceURL: srv.URL + "/film/inception/", CanonicalID: "27205", MediaType: domain.MediaMovie, Title: "Inception"},
		{SourceURL: srv.URL + "/film/missing/", MediaType: domain.MediaMovie, Title: "Missing"},
		{SourceURL: srv.URL + "/film/breaking-bad/", CanonicalID: "1396", MediaType: domain.MediaShow, Title: "Breaking Bad"},
	}, records)

	for _, ua := range uaSeen {
		assert.Equal(t, "export-test/1.0", ua)
	}
}
