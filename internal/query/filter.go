// Package query translates listing parameters into a store-agnostic filter,
// ordering and page window for premises.
package query

import (
	"time"

	"premise_fetcher/internal/domain"
)

// Params are the optional listing parameters accepted from callers.
type Params struct {
	SourceID    string
	Platform    domain.Platform
	Niche       string
	SubNiche    string
	Used        *bool
	From        *time.Time
	To          *time.Time
	MinLikes    *int64
	MinComments *int64
	MinViews    *int64

	SortBy   string
	Order    string
	Page     int
	PageSize int
}

// Filter is a conjunction of optional premise constraints.
// A nil or empty field does not constrain the result.
type Filter struct {
	SourceID    string
	Platform    domain.Platform
	Niche       string
	SubNiche    string
	Used        *bool
	From        *time.Time
	To          *time.Time
	MinLikes    *int64
	MinComments *int64
	MinViews    *int64
}

// Query bundles everything a store needs to serve one listing page.
type Query struct {
	Filter Filter
	Sort   Sort
	Page   Page
}

// Build turns listing parameters into a Query.
func Build(p Params) Query {
	return Query{
		Filter: BuildFilter(p),
		Sort:   BuildSort(p.SortBy, p.Order),
		Page:   NewPage(p.Page, p.PageSize),
	}
}

// BuildFilter copies the filtering subset of p.
func BuildFilter(p Params) Filter {
	return Filter{
		SourceID:    p.SourceID,
		Platform:    p.Platform,
		Niche:       p.Niche,
		SubNiche:    p.SubNiche,
		Used:        p.Used,
		From:        p.From,
		To:          p.To,
		MinLikes:    p.MinLikes,
		MinComments: p.MinComments,
		MinViews:    p.MinViews,
	}
}

// Matches reports whether the premise satisfies every constraint of the filter.
func (f Filter) Matches(p *domain.Premise) bool {
	switch {
	case f.SourceID != "" && p.Source.ID != f.SourceID:
		return false
	case f.Platform != "" && p.Source.Platform != f.Platform:
		return false
	case f.Niche != "" && p.Niche != f.Niche:
		return false
	case f.SubNiche != "" && p.SubNiche != f.SubNiche:
		return false
	case f.Used != nil && p.Used != *f.Used:
		return false
	case f.From != nil && p.Metrics.ObservedAt.Before(*f.From):
		return false
	case f.To != nil && p.Metrics.ObservedAt.After(*f.To):
		return false
	case f.MinLikes != nil && p.Metrics.Likes < *f.MinLikes:
		return false
	case f.MinComments != nil && p.Metrics.Comments < *f.MinComments:
		return false
	case f.MinViews != nil && p.Metrics.Views < *f.MinViews:
		return false
	}
	return true
}

// IsEmpty reports whether the filter has no constraint at all.
func (f Filter) IsEmpty() bool {
	return f == Filter{}
}
