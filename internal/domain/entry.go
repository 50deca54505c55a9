package domain

import "time"

// Entry is a normalized list entry ready for indexing
type Entry struct {
	ID         string    `json:"id"`
	ListURL    string    `json:"list_url"`
	Position   int       `json:"position"`
	SourceURL  string    `json:"source_url"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	TMDBID     string    `json:"tmdb_id"`
	MediaType  MediaType `json:"media_type"`
	TMDBURL    string    `json:"tmdb_url"`
	Resolved   bool      `json:"resolved"`
	ExportedAt time.Time `json:"exported_at"`
	IndexedAt  time.Time `json:"indexed_at"`
}

// Fingerprint is the value tracked for change detection between exports
func (e *Entry) Fingerprint() string {
	return e.TMDBID + "|" + string(e.MediaType) + "|" + e.Title
}
