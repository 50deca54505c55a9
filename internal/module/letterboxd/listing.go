package letterboxd

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/project-tktt/letterboxd-export/internal/domain"
)

// ExtractListing returns the entries of one listing page in document order.
// Posters without a target link are skipped. DiscoveryOrder starts at offset.
func ExtractListing(doc *goquery.Document, origin string, offset int, sel Selectors) []domain.ItemRef {
	var items []domain.ItemRef

	doc.Find(sel.PosterContainer).Each(func(_ int, container *goquery.Selection) {
		poster := container.Find(sel.Poster).First()
		link, ok := poster.Attr(sel.TargetLinkAttr)
		link = strings.TrimSpace(link)
		if !ok || link == "" {
			return
		}

		title := strings.TrimSpace(poster.Find(sel.PosterImage).First().AttrOr("alt", ""))
		if title == "" {
			title = domain.UntitledItem
		}

		items = append(items, domain.ItemRef{
			SourceURL:      absoluteURL(origin, link),
			Title:          title,
			DiscoveryOrder: offset + len(items),
		})
	})

	return items
}

func absoluteURL(origin, link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return origin + link
}
