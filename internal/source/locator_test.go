package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"premise_fetcher/internal/domain"
)

func TestParseURL(t *testing.T) {
	u, err := ParseURL("www.reddit.com/r/nosleep/", "reddit.com")
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, []string{"r", "nosleep"}, PathSegments(u))

	_, err = ParseURL("https://notreddit.com/r/x", "reddit.com")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = ParseURL("ftp://reddit.com/r/x", "reddit.com")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = ParseURL("", "reddit.com")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		limit, def, ceiling, want int
	}{
		{0, 25, 100, 25},
		{10, 25, 100, 10},
		{500, 25, 100, 100},
		{500, 10, 0, 500},
	}
	for _, tt := range tests {
		got, err := ClampLimit(tt.limit, tt.def, tt.ceiling)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ClampLimit(-1, 25, 100)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCheckSort(t *testing.T) {
	got, err := CheckSort("", "hot", "hot", "new")
	require.NoError(t, err)
	assert.Equal(t, "hot", got)

	got, err = CheckSort("new", "hot", "hot", "new")
	require.NoError(t, err)
	assert.Equal(t, "new", got)

	_, err = CheckSort("best", "hot", "hot", "new")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
