package social

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProfileURL(t *testing.T) {
	got, err := ValidateProfileURL("https://letterboxd.com/someone")
	require.NoError(t, err)
	assert.Equal(t, "https://letterboxd.com/someone/", got)

	for _, bad := range []string{
		"http://letterboxd.com/someone/",
		"https://example.com/someone/",
		"letterboxd.com/someone",
		"https://letterboxd.com/",
	} {
		_, err := ValidateProfileURL(bad)
		assert.ErrorIs(t, err, ErrInvalidProfileURL, bad)
	}
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "alice", NormalizeUsername("/Alice/"))
	assert.Equal(t, "bob", NormalizeUsername("https://letterboxd.com/bob/"))
	assert.Equal(t, "carol", NormalizeUsername("  carol "))
	assert.Equal(t, "", NormalizeUsername("//"))
}

func TestRelationPageURL(t *testing.T) {
	assert.Equal(t, "https://letterboxd.com/me/following/page/2/", RelationPageURL("https://letterboxd.com/me/", Following, 2))
}
