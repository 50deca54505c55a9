// Package social compares who a user follows with who follows them back and
// optionally unfollows the difference through a browser session.
package social

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// SiteOrigin is the only host profile URLs may point at
const SiteOrigin = "https://letterboxd.com/"

// Relation names a paginated relationship list on a profile
type Relation string

const (
	Followers Relation = "followers"
	Following Relation = "following"
)

// ErrInvalidProfileURL is returned for URLs outside the site
var ErrInvalidProfileURL = errors.New("invalid profile url")

// Session is the browser-automation boundary used by the unfollow workflow
type Session interface {
	// ListPage returns the profile links on one relationship page.
	// An empty result marks the end of the list.
	ListPage(ctx context.Context, pageURL string) ([]string, error)
	// Login signs in and reports an error when the signed-in marker never appears
	Login(ctx context.Context, username, password string) error
	// ToggleFollow opens a profile and clicks its following button.
	// It returns false when the button is absent.
	ToggleFollow(ctx context.Context, username string) (bool, error)
	Close() error
}

// ValidateProfileURL ensures raw is a site profile URL and returns it with a trailing slash
func ValidateProfileURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	if !strings.HasPrefix(raw, SiteOrigin) {
		return "", fmt.Errorf("%w: must start with %s", ErrInvalidProfileURL, SiteOrigin)
	}
	if _, err := url.Parse(raw); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidProfileURL, err)
	}
	if NormalizeUsername(raw) == NormalizeUsername(SiteOrigin) {
		return "", fmt.Errorf("%w: missing username", ErrInvalidProfileURL)
	}
	return raw, nil
}

// NormalizeUsername reduces a profile link or name to its lowercase last path segment
func NormalizeUsername(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return strings.ToLower(s)
}

// RelationPageURL builds the URL of page n of a relationship list
func RelationPageURL(profileURL string, rel Relation, n int) string {
	return fmt.Sprintf("%s%s/page/%d/", profileURL, rel, n)
}
