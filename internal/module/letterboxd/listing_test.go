package letterboxd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-tktt/letterboxd-export/internal/domain"
)

func TestExtractListing(t *testing.T) {
	doc := parseHTML(t, listingHTML("",
		poster{link: "/film/inception/", title: "Inception"},
		poster{link: "", title: "Broken"},
		poster{link: "/film/untitled/"},
		poster{link: "/film/heat/", title: "Heat"},
	))

	items := ExtractListing(doc, "https://letterboxd.com", 10, DefaultSelectors())

	require.Len(t, items, 3)
	assert.Equal(t, domain.ItemRef{SourceURL: "https://letterboxd.com/film/inception/", Title: "Inception", DiscoveryOrder: 10}, items[0])
	assert.Equal(t, domain.ItemRef{SourceURL: "https://letterboxd.com/film/untitled/", Title: domain.UntitledItem, DiscoveryOrder: 11}, items[1])
	assert.Equal(t, domain.ItemRef{SourceURL: "https://letterboxd.com/film/heat/", Title: "Heat", DiscoveryOrder: 12}, items[2])
}

func TestExtractListing_SkipsPosterWithoutTargetLink(t *testing.T) {
	doc := parseHTML(t, listingHTML("", poster{title: "No link"}))

	items := ExtractListing(doc, "https://letterboxd.com", 0, DefaultSelectors())

	assert.Empty(t, items)
}

func TestExtractListing_EmptyPage(t *testing.T) {
	doc := parseHTML(t, `<html><body><p>This list is empty.</p></body></html>`)

	assert.Empty(t, ExtractListing(doc, "https://letterboxd.com", 0, DefaultSelectors()))
}
