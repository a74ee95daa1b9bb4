package query

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps Offset well inside a 32-bit int.
	MaxPage = 1_000_000
)

// Page is a 1-based page window.
type Page struct {
	Number int
	Size   int
}

// NewPage applies defaults: page 1, size DefaultPageSize, size capped at
// MaxPageSize and number capped at MaxPage.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if number > MaxPage {
		number = MaxPage
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset is the number of records to skip. It saturates at math.MaxInt for
// windows built without NewPage and never goes negative.
func (p Page) Offset() int {
	if p.Number < 1 || p.Size < 1 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// TotalPages returns ceil(total/size).
func (p Page) TotalPages(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + p.Size - 1) / p.Size
}

// Pagination is the page metadata returned alongside a listing.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// Paginate builds the pagination block for total matching records.
func (p Page) Paginate(total int) Pagination {
	return Pagination{
		Total:      total,
		Page:       p.Number,
		PageSize:   p.Size,
		TotalPages: p.TotalPages(total),
	}
}
