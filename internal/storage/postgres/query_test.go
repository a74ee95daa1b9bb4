package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"premise_fetcher/internal/domain"
	"premise_fetcher/internal/query"
	"premise_fetcher/testdata/utils"
)

func TestWhereClause(t *testing.T) {
	where, args := whereClause(query.Filter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	where, args = whereClause(query.Filter{
		Platform: domain.PlatformReddit,
		Niche:    "horror",
		Used:     utils.Ptr(false),
		From:     &from,
		MinLikes: utils.Ptr(int64(10)),
	})

	assert.Equal(t, " WHERE source_platform = $1 AND niche = $2 AND used = $3 AND observed_at >= $4 AND likes >= $5", where)
	assert.Equal(t, []any{domain.PlatformReddit, "horror", false, from, int64(10)}, args)
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "created_at DESC, id ASC", orderClause(query.DefaultSort))
	assert.Equal(t, "likes ASC, id ASC", orderClause(query.BuildSort("likes", "asc")))
	assert.Equal(t, "observed_at DESC, id ASC", orderClause(query.BuildSort("data", "")))
	assert.Equal(t, "created_at ASC, id ASC", orderClause(query.Sort{Field: "bogus"}))
}
