package query

import (
	"strings"

	"premise_fetcher/internal/domain"
)

// SortField is a sortable premise attribute.
type SortField string

const (
	SortCreatedAt  SortField = "created"
	SortUpdatedAt  SortField = "updated"
	SortObservedAt SortField = "date"
	SortLikes      SortField = "likes"
	SortComments   SortField = "comments"
	SortViews      SortField = "views"
)

// sortKeys maps accepted sort keys, including the legacy Portuguese ones,
// onto sortable fields.
var sortKeys = map[string]SortField{
	"created":       SortCreatedAt,
	"updated":       SortUpdatedAt,
	"date":          SortObservedAt,
	"data":          SortObservedAt,
	"likes":         SortLikes,
	"comments":      SortComments,
	"comentarios":   SortComments,
	"views":         SortViews,
	"visualizacoes": SortViews,
}

// Sort is an ordering over one premise field.
type Sort struct {
	Field SortField
	Desc  bool
}

// DefaultSort lists the most recently created premises first.
var DefaultSort = Sort{Field: SortCreatedAt, Desc: true}

// BuildSort resolves a sort key and direction. Unknown keys fall back to
// DefaultSort; the direction defaults to descending.
func BuildSort(key, direction string) Sort {
	field, ok := sortKeys[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return DefaultSort
	}
	return Sort{
		Field: field,
		Desc:  !strings.EqualFold(strings.TrimSpace(direction), "asc"),
	}
}

// Less orders a before b according to s. Ties are broken by id for a stable order.
func (s Sort) Less(a, b *domain.Premise) bool {
	c := s.compare(a, b)
	if c == 0 {
		return a.ID < b.ID
	}
	if s.Desc {
		return c > 0
	}
	return c < 0
}

func (s Sort) compare(a, b *domain.Premise) int {
	switch s.Field {
	case SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortObservedAt:
		return a.Metrics.ObservedAt.Compare(b.Metrics.ObservedAt)
	case SortLikes:
		return cmpInt(a.Metrics.Likes, b.Metrics.Likes)
	case SortComments:
		return cmpInt(a.Metrics.Comments, b.Metrics.Comments)
	case SortViews:
		return cmpInt(a.Metrics.Views, b.Metrics.Views)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
