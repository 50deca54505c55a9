package normalizer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/project-tktt/letterboxd-export/internal/domain"
)

// TMDBBaseURL is the public site canonical identifiers are linked to
const TMDBBaseURL = "https://www.themoviedb.org"

// Normalizer converts export messages to indexable entries
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a new normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Normalize converts an ExportMessage to an Entry
func (n *Normalizer) Normalize(msg *domain.ExportMessage) (*domain.Entry, error) {
	rec := msg.Record
	if rec.SourceURL == "" {
		return nil, fmt.Errorf("message at position %d has no source url", msg.Position)
	}

	mediaType := rec.MediaType
	if mediaType != domain.MediaShow {
		mediaType = domain.MediaMovie
	}

	return &domain.Entry{
		ID:         EntryID(msg.ListURL, rec.SourceURL),
		ListURL:    msg.ListURL,
		Position:   msg.Position,
		SourceURL:  rec.SourceURL,
		Slug:       Slug(rec.SourceURL),
		Title:      html.UnescapeString(strings.TrimSpace(rec.Title)),
		TMDBID:     rec.CanonicalID,
		MediaType:  mediaType,
		TMDBURL:    TMDBURL(rec.CanonicalID, mediaType),
		Resolved:   rec.Resolved(),
		ExportedAt: msg.ExportedAt,
		IndexedAt:  n.now().UTC(),
	}, nil
}

// EntryID is stable per (list, source) pair
func EntryID(listURL, sourceURL string) string {
	h := sha256.Sum256([]byte(listURL + "|" + sourceURL))
	return hex.EncodeToString(h[:16]) // First 16 bytes (32 hex chars)
}

// Slug returns the last path segment of a detail URL
func Slug(sourceURL string) string {
	path := sourceURL
	if u, err := url.Parse(sourceURL); err == nil {
		path = u.Path
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	return segments[len(segments)-1]
}

// TMDBURL links a canonical identifier, empty when unresolved
func TMDBURL(id string, mediaType domain.MediaType) string {
	if id == "" {
		return ""
	}
	kind := "movie"
	if mediaType == domain.MediaShow {
		kind = "tv"
	}
	return fmt.Sprintf("%s/%s/%s", TMDBBaseURL, kind, id)
}
