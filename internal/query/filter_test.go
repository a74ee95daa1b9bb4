package query

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"premise_fetcher/internal/domain"
	"premise_fetcher/testdata/utils"
)

var base = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func syntheticPremises(n int) []domain.Premise {
	rng := rand.New(rand.NewPCG(42, 7))
	niches := []string{"", "horror", "romance"}
	subs := []string{"", "ghosts", "letters"}
	platforms := []domain.Platform{domain.PlatformYouTube, domain.PlatformReddit, domain.PlatformTikTok}

	out := make([]domain.Premise, n)
	for i := range out {
		out[i] = domain.Premise{
			ID:       fmt.Sprintf("p%03d", i),
			Source:   domain.SourceRef{ID: fmt.Sprintf("s%d", i%4), Platform: platforms[i%3]},
			Link:     fmt.Sprintf("https://example.com/%d", i),
			Niche:    niches[rng.IntN(len(niches))],
			SubNiche: subs[rng.IntN(len(subs))],
			Used:     rng.IntN(2) == 0,
			Metrics: domain.Metrics{
				ObservedAt: base.Add(time.Duration(rng.IntN(60*24)) * time.Hour),
				Likes:      rng.Int64N(1000),
				Comments:   rng.Int64N(100),
				Views:      rng.Int64N(10000),
			},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return out
}

func TestFilter_SubsetComposition(t *testing.T) {
	data := syntheticPremises(300)

	niche := "horror"
	subNiche := "ghosts"
	used := true
	from := base.Add(10 * 24 * time.Hour)
	to := base.Add(40 * 24 * time.Hour)
	minLikes := int64(500)

	type constraint struct {
		name  string
		apply func(*Filter)
		holds func(*domain.Premise) bool
	}
	constraints := []constraint{
		{"niche", func(f *Filter) { f.Niche = niche }, func(p *domain.Premise) bool { return p.Niche == niche }},
		{"subNiche", func(f *Filter) { f.SubNiche = subNiche }, func(p *domain.Premise) bool { return p.SubNiche == subNiche }},
		{"used", func(f *Filter) { f.Used = &used }, func(p *domain.Premise) bool { return p.Used == used }},
		{"dateRange", func(f *Filter) { f.From, f.To = &from, &to }, func(p *domain.Premise) bool {
			at := p.Metrics.ObservedAt
			return !at.Before(from) && !at.After(to)
		}},
		{"minLikes", func(f *Filter) { f.MinLikes = &minLikes }, func(p *domain.Premise) bool { return p.Metrics.Likes >= minLikes }},
	}

	for mask := 0; mask < 1<<len(constraints); mask++ {
		var f Filter
		var active []constraint
		for i, c := range constraints {
			if mask&(1<<i) != 0 {
				c.apply(&f)
				active = append(active, c)
			}
		}

		t.Run(fmt.Sprintf("mask_%02d", mask), func(t *testing.T) {
			for i := range data {
				p := &data[i]
				want := true
				for _, c := range active {
					want = want && c.holds(p)
				}
				require.Equal(t, want, f.Matches(p), "premise %s", p.ID)
			}
		})
	}
}

func TestFilter_EqualityConstraints(t *testing.T) {
	p := &domain.Premise{
		Source:  domain.SourceRef{ID: "s1", Platform: domain.PlatformReddit},
		Metrics: domain.Metrics{Comments: 5, Views: 0},
	}

	assert.True(t, Filter{}.Matches(p))
	assert.True(t, Filter{SourceID: "s1"}.Matches(p))
	assert.False(t, Filter{SourceID: "s2"}.Matches(p))
	assert.True(t, Filter{Platform: domain.PlatformReddit}.Matches(p))
	assert.False(t, Filter{Platform: domain.PlatformYouTube}.Matches(p))
	assert.True(t, Filter{MinComments: utils.Ptr(int64(5))}.Matches(p))
	assert.False(t, Filter{MinComments: utils.Ptr(int64(6))}.Matches(p))
	assert.True(t, Filter{MinViews: utils.Ptr(int64(0))}.Matches(p))
	assert.False(t, Filter{MinViews: utils.Ptr(int64(1))}.Matches(p))
}

func TestFilter_DateBoundsInclusive(t *testing.T) {
	at := base.Add(time.Hour)
	p := &domain.Premise{Metrics: domain.Metrics{ObservedAt: at}}

	assert.True(t, Filter{From: &at, To: &at}.Matches(p))
	before := at.Add(-time.Nanosecond)
	after := at.Add(time.Nanosecond)
	assert.False(t, Filter{From: &after}.Matches(p))
	assert.False(t, Filter{To: &before}.Matches(p))
}

func TestBuildSort(t *testing.T) {
	tests := []struct {
		key, dir string
		want     Sort
	}{
		{"likes", "", Sort{Field: SortLikes, Desc: true}},
		{"likes", "asc", Sort{Field: SortLikes, Desc: false}},
		{"LIKES", "ASC", Sort{Field: SortLikes, Desc: false}},
		{"data", "desc", Sort{Field: SortObservedAt, Desc: true}},
		{"comentarios", "asc", Sort{Field: SortComments}},
		{"visualizacoes", "", Sort{Field: SortViews, Desc: true}},
		{"updated", "", Sort{Field: SortUpdatedAt, Desc: true}},
		{"", "asc", DefaultSort},
		{"bogus", "asc", DefaultSort},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BuildSort(tt.key, tt.dir), "%s/%s", tt.key, tt.dir)
	}
}

func TestSort_Less(t *testing.T) {
	data := syntheticPremises(50)

	s := BuildSort("likes", "desc")
	sort.Slice(data, func(i, j int) bool { return s.Less(&data[i], &data[j]) })
	for i := 1; i < len(data); i++ {
		assert.GreaterOrEqual(t, data[i-1].Metrics.Likes, data[i].Metrics.Likes)
	}

	sort.Slice(data, func(i, j int) bool { return DefaultSort.Less(&data[i], &data[j]) })
	assert.Equal(t, "p049", data[0].ID)
}

func TestPage(t *testing.T) {
	p := NewPage(0, 0)
	assert.Equal(t, Page{Number: 1, Size: DefaultPageSize}, p)
	assert.Equal(t, 0, p.Offset())

	p = NewPage(3, 20)
	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, 3, p.TotalPages(45))
	assert.Equal(t, 2, p.TotalPages(40))
	assert.Equal(t, 0, p.TotalPages(0))

	assert.Equal(t, MaxPageSize, NewPage(1, 1000).Size)

	assert.Equal(t, Pagination{Total: 45, Page: 3, PageSize: 20, TotalPages: 3}, p.Paginate(45))
}

func TestPage_HugeNumbers(t *testing.T) {
	p := NewPage(math.MaxInt, MaxPageSize)
	assert.Equal(t, MaxPage, p.Number)
	assert.Equal(t, (MaxPage-1)*MaxPageSize, p.Offset())

	raw := Page{Number: math.MaxInt, Size: MaxPageSize}
	assert.Equal(t, math.MaxInt, raw.Offset())
	assert.Equal(t, 0, Page{Number: -5, Size: 10}.Offset())
	assert.Equal(t, 0, Page{Number: 3, Size: 0}.Offset())
}

func TestBuild(t *testing.T) {
	used := false
	q := Build(Params{Niche: "horror", Used: &used, SortBy: "views", Order: "asc", Page: 2, PageSize: 10})

	assert.Equal(t, "horror", q.Filter.Niche)
	assert.Equal(t, &used, q.Filter.Used)
	assert.Equal(t, Sort{Field: SortViews}, q.Sort)
	assert.Equal(t, 10, q.Page.Offset())
	assert.False(t, q.Filter.IsEmpty())
	assert.True(t, Filter{}.IsEmpty())
}
