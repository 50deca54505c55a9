package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-tktt/letterboxd-export/internal/domain"
)

func TestNormalize(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	n := &Normalizer{now: func() time.Time { return fixed }}

	msg := &domain.ExportMessage{
		ListURL:  "https://letterboxd.com/u/list/l",
		Position: 3,
		Record: domain.ResolvedRecord{
			SourceURL:   "https://letterboxd.com/film/breaking-bad/",
			CanonicalID: "1396",
			MediaType:   domain.MediaShow,
			Title:       " Breaking Bad &amp; Co ",
		},
		ExportedAt: fixed.Add(-time.Hour),
	}

	e, err := n.Normalize(msg)
	require.NoError(t, err)

	assert.Equal(t, EntryID(msg.ListURL, msg.Record.SourceURL), e.ID)
	assert.Len(t, e.ID, 32)
	assert.Equal(t, 3, e.Position)
	assert.Equal(t, "breaking-bad", e.Slug)
	assert.Equal(t, "Breaking Bad & Co", e.Title)
	assert.Equal(t, "https://www.themoviedb.org/tv/1396", e.TMDBURL)
	assert.True(t, e.Resolved)
	assert.Equal(t, fixed, e.IndexedAt)
}

func TestNormalize_Unresolved(t *testing.T) {
	e, err := NewNormalizer().Normalize(&domain.ExportMessage{
		Record: domain.ResolvedRecord{SourceURL: "https://letterboxd.com/film/x/", Title: "X"},
	})
	require.NoError(t, err)

	assert.False(t, e.Resolved)
	assert.Empty(t, e.TMDBURL)
	assert.Equal(t, domain.MediaMovie, e.MediaType)
}

func TestNormalize_MissingSourceURL(t *testing.T) {
	_, err := NewNormalizer().Normalize(&domain.ExportMessage{Position: 4})
	assert.Error(t, err)
}

func TestEntryID_StablePerList(t *testing.T) {
	a := EntryID("https://letterboxd.com/u/list/a", "https://letterboxd.com/film/heat/")
	b := EntryID("https://letterboxd.com/u/list/b", "https://letterboxd.com/film/heat/")

	assert.Equal(t, a, EntryID("https://letterboxd.com/u/list/a", "https://letterboxd.com/film/heat/"))
	assert.NotEqual(t, a, b)
}
