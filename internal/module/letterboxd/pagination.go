package letterboxd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DiscoverPageCount reads the pagination control of a seed listing page.
// A missing control or an unparsable last link means a single page.
func DiscoverPageCount(doc *goquery.Document, sel Selectors) int {
	control := doc.Find(sel.Pagination).First()
	if control.Length() == 0 {
		return 1
	}

	last := control.Find(sel.PageLink).Last()
	href, ok := last.Attr("href")
	if !ok {
		return 1
	}

	return pageNumberFromHref(href)
}

// pageNumberFromHref parses ".../page/5/" into 5, returning 1 on any failure
func pageNumberFromHref(href string) int {
	idx := strings.LastIndex(href, "/page/")
	if idx < 0 {
		return 1
	}

	segment := strings.Trim(href[idx+len("/page/"):], "/")
	n, err := strconv.Atoi(segment)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// PageURL builds the listing URL of page n from a normalized base URL
func PageURL(base string, n int) string {
	if n <= 1 {
		return base
	}
	return fmt.Sprintf("%s/page/%d/", base, n)
}
