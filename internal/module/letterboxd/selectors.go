package letterboxd

// Selectors defines the CSS selectors and attributes read from listing and detail pages
type Selectors struct {
	// Listing page selectors
	PosterContainer string
	Poster          string
	TargetLinkAttr  string
	PosterImage     string

	// Pagination control
	Pagination string
	PageLink   string

	// Detail page selectors
	Root             string
	RootIDAttr       string
	RootTypeAttr     string
	ActionLink       string
	EmbeddedMetadata string

	// ExternalDomain identifies sameAs links that point at the movie database
	ExternalDomain string
}

// DefaultSelectors returns the selectors for the current site markup
func DefaultSelectors() Selectors {
	return Selectors{
		PosterContainer: "li.poster-container",
		Poster:          "div.film-poster",
		TargetLinkAttr:  "data-target-link",
		PosterImage:     "img",

		Pagination: "div.paginate-pages",
		PageLink:   "a",

		Root:             "body",
		RootIDAttr:       "data-tmdb-id",
		RootTypeAttr:     "data-tmdb-type",
		ActionLink:       `a[data-track-action="TMDB"]`,
		EmbeddedMetadata: `script[type="application/ld+json"]`,

		ExternalDomain: "themoviedb.org",
	}
}
