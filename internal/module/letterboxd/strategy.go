package letterboxd

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/project-tktt/letterboxd-export/internal/domain"
)

// externalPathPattern matches "/movie/603" or "/tv/1396" inside a database URL
var externalPathPattern = regexp.MustCompile(`/(movie|tv)/(\d+)`)

// Match is a canonical identifier found on a detail page
type Match struct {
	ID        string
	MediaType domain.MediaType
}

// Strategy extracts a canonical identifier from a detail page document.
// Attempt must not modify the document and reports false when it has no match.
type Strategy interface {
	Name() string
	Attempt(doc *goquery.Document) (Match, bool)
}

// DefaultStrategies returns the fallback chain in priority order
func DefaultStrategies(sel Selectors) []Strategy {
	return []Strategy{
		RootAttributes{Selector: sel.Root, IDAttr: sel.RootIDAttr, TypeAttr: sel.RootTypeAttr},
		ActionLink{Selector: sel.ActionLink},
		EmbeddedMetadata{Selector: sel.EmbeddedMetadata, Domain: sel.ExternalDomain},
	}
}

// RootAttributes reads the identifier and type directly from the page root element
type RootAttributes struct {
	Selector string
	IDAttr   string
	TypeAttr string
}

func (RootAttributes) Name() string { return "root_attributes" }

func (s RootAttributes) Attempt(doc *goquery.Document) (Match, bool) {
	root := doc.Find(s.Selector).First()
	id := strings.TrimSpace(root.AttrOr(s.IDAttr, ""))
	if id == "" {
		return Match{}, false
	}

	kind := strings.ToLower(strings.TrimSpace(root.AttrOr(s.TypeAttr, "")))
	return Match{ID: id, MediaType: domain.MediaTypeFromTMDB(kind)}, true
}

// ActionLink parses the href of the external database button
type ActionLink struct {
	Selector string
}

func (ActionLink) Name() string { return "action_link" }

func (s ActionLink) Attempt(doc *goquery.Document) (Match, bool) {
	href, ok := doc.Find(s.Selector).First().Attr("href")
	if !ok {
		return Match{}, false
	}
	return matchExternalPath(href)
}

// EmbeddedMetadata scans structured-data blocks for a sameAs link to the external database
type EmbeddedMetadata struct {
	Selector string
	Domain   string
}

func (EmbeddedMetadata) Name() string { return "embedded_metadata" }

func (s EmbeddedMetadata) Attempt(doc *goquery.Document) (Match, bool) {
	var match Match
	var found bool

	doc.Find(s.Selector).EachWithBreak(func(_ int, script *goquery.Selection) bool {
		match, found = s.attemptBlock(script.Text())
		return !found
	})

	return match, found
}

func (s EmbeddedMetadata) attemptBlock(raw string) (Match, bool) {
	var payload any
	if err := json.Unmarshal([]byte(stripCDATA(raw)), &payload); err != nil {
		return Match{}, false
	}

	var objects []map[string]any
	switch v := payload.(type) {
	case map[string]any:
		objects = append(objects, v)
	case []any:
		for _, el := range v {
			if obj, ok := el.(map[string]any); ok {
				objects = append(objects, obj)
			}
		}
	}

	for _, obj := range objects {
		if match, ok := firstExternalMatch(obj["sameAs"], s.Domain); ok {
			return match, true
		}
	}

	return Match{}, false
}

// firstExternalMatch accepts sameAs as a string or a list of strings.
// Links on host without an identifier path are passed over.
func firstExternalMatch(sameAs any, host string) (Match, bool) {
	var links []string
	switch v := sameAs.(type) {
	case string:
		links = append(links, v)
	case []any:
		for _, el := range v {
			if link, ok := el.(string); ok {
				links = append(links, link)
			}
		}
	}

	for _, link := range links {
		if !strings.Contains(link, host) {
			continue
		}
		if match, ok := matchExternalPath(link); ok {
			return match, true
		}
	}
	return Match{}, false
}

func stripCDATA(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "/* <![CDATA[ */")
	raw = strings.TrimSuffix(raw, "/* ]]> */")
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "<![CDATA[")
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "]]>")
	return strings.TrimSpace(raw)
}

func matchExternalPath(link string) (Match, bool) {
	m := externalPathPattern.FindStringSubmatch(link)
	if m == nil {
		return Match{}, false
	}
	return Match{ID: m[2], MediaType: domain.MediaTypeFromTMDB(m[1])}, true
}
