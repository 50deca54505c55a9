package domain

import "time"

// MediaType classifies a resolved entry
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaShow  MediaType = "show"
)

// MediaTypeFromTMDB maps a TMDB type token ("movie", "tv") to a MediaType.
// Anything other than "tv" is a movie.
func MediaTypeFromTMDB(kind string) MediaType {
	if kind == "tv" {
		return MediaShow
	}
	return MediaMovie
}

// UntitledItem is used when a listing entry carries no poster alt text
const UntitledItem = "No Title Found"

// ItemRef is one entry found on a listing page
type ItemRef struct {
	SourceURL      string `json:"source_url"`
	Title          string `json:"title"`
	DiscoveryOrder int    `json:"discovery_order"`
}

// ListingPage holds the entries extracted from one listing page, in page order
type ListingPage struct {
	PageNumber int       `json:"page_number"`
	Items      []ItemRef `json:"items"`
}

// ResolvedRecord is the outcome of resolving one ItemRef.
// CanonicalID is empty when no strategy matched or the detail fetch failed.
type ResolvedRecord struct {
	SourceURL   string    `json:"source_url"`
	CanonicalID string    `json:"canonical_id"`
	MediaType   MediaType `json:"media_type"`
	Title       string    `json:"title"`
}

// Resolved reports whether a canonical identifier was found
func (r ResolvedRecord) Resolved() bool {
	return r.CanonicalID != ""
}

// Fields returns the four output columns in order: source URL, canonical ID, media type, title
func (r ResolvedRecord) Fields() []string {
	return []string{r.SourceURL, r.CanonicalID, string(r.MediaType), r.Title}
}

// ExportMessage wraps a merged record for the export queue
type ExportMessage struct {
	ListURL    string         `json:"list_url"`
	Position   int            `json:"position"`
	Record     ResolvedRecord `json:"record"`
	ExportedAt time.Time      `json:"exported_at"`
}
