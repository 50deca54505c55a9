package cleaner

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/project-tktt/letterboxd-export/internal/domain"
)

// Cleaner strips markup from scraped text using Bluemonday
type Cleaner struct {
	policy *bluemonday.Policy
}

// NewCleaner creates a cleaner that strips ALL HTML
func NewCleaner() *Cleaner {
	return &Cleaner{policy: bluemonday.StrictPolicy()}
}

// CleanToText removes all HTML and returns plain text on a single line
func (c *Cleaner) CleanToText(s string) string {
	text := c.policy.Sanitize(s)

	// StrictPolicy escapes entities, undo that for plain text storage
	text = html.UnescapeString(text)

	return strings.Join(strings.Fields(text), " ")
}

// CleanEntry sanitizes the free-text fields of an entry in place.
// A title that cleans down to nothing becomes the untitled sentinel.
func (c *Cleaner) CleanEntry(e *domain.Entry) {
	e.Title = c.CleanToText(e.Title)
	if e.Title == "" {
		e.Title = domain.UntitledItem
	}
}
