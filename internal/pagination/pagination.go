package pagination

import (
	"math"
	"net/http"
	"strconv"

	"github.com/frahmantamala/shifts-logger/internal"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
)

var ErrInvalidPageRequest = internal.NewValidationError("page and pageSize must be positive integers", internal.ErrCodeInvalidPage)

// PageRequest is a 1-based page window.
type PageRequest struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

func (p PageRequest) Validate() error {
	if p.PageNumber < 1 || p.PageSize < 1 {
		return ErrInvalidPageRequest
	}
	return nil
}

// Offset is the number of items preceding the window. It saturates at
// math.MaxInt instead of wrapping for very large page numbers.
func (p PageRequest) Offset() int {
	if p.PageNumber < 1 || p.PageSize < 1 {
		return 0
	}
	if p.PageNumber-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.PageNumber - 1) * p.PageSize
}

// Beyond reports whether the window starts at or past the last of
// totalCount items, so no item can fall inside it.
func (p PageRequest) Beyond(totalCount int64) bool {
	return p.PageNumber > TotalPages(totalCount, p.PageSize)
}

func (p PageRequest) Limit() int {
	return p.PageSize
}

// FromQuery reads page and pageSize, defaulting missing values.
func FromQuery(r *http.Request) (PageRequest, error) {
	req := PageRequest{PageNumber: DefaultPageNumber, PageSize: DefaultPageSize}
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return PageRequest{}, ErrInvalidPageRequest
		}
		req.PageNumber = n
	}
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return PageRequest{}, ErrInvalidPageRequest
		}
		req.PageSize = n
	}

	if err := req.Validate(); err != nil {
		return PageRequest{}, err
	}
	return req, nil
}

// Page is one window of an ordered result set.
type Page[T any] struct {
	Items      []T   `json:"items"`
	PageNumber int   `json:"pageNumber"`
	TotalPages int   `json:"totalPages"`
	TotalCount int64 `json:"totalCount"`
}

// Empty is the canonical page for an empty result set.
func Empty[T any]() Page[T] {
	return Page[T]{Items: []T{}}
}

// TotalPages is ceil(totalCount / pageSize), or 0 when pageSize is not positive.
func TotalPages(totalCount int64, pageSize int) int {
	if pageSize <= 0 || totalCount <= 0 {
		return 0
	}
	size := int64(pageSize)
	pages := totalCount / size
	if totalCount%size != 0 {
		pages++
	}
	return int(pages)
}

// Paginate builds a page from window, which the caller has already
// restricted to the requested page. Out-of-range page numbers are not
// clamped.
func Paginate[T any](window []T, totalCount int64, pageNumber, pageSize int) Page[T] {
	if totalCount == 0 {
		return Empty[T]()
	}
	items := window
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		PageNumber: pageNumber,
		TotalPages: TotalPages(totalCount, pageSize),
		TotalCount: totalCount,
	}
}

// PaginateSlice windows an in-memory result set itself.
func PaginateSlice[T any](all []T, pageNumber, pageSize int) Page[T] {
	total := int64(len(all))
	if total == 0 {
		return Empty[T]()
	}
	return Paginate(window(all, pageNumber, pageSize), total, pageNumber, pageSize)
}

func window[T any](all []T, pageNumber, pageSize int) []T {
	req := PageRequest{PageNumber: pageNumber, PageSize: pageSize}
	if pageNumber < 1 || pageSize < 1 || req.Beyond(int64(len(all))) {
		return []T{}
	}
	start := req.Offset()
	end := len(all)
	if pageSize < end-start {
		end = start + pageSize
	}
	out := make([]T, end-start)
	copy(out, all[start:end])
	return out
}

// Map converts the items of a page, keeping its metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, len(p.Items))
	for i, item := range p.Items {
		items[i] = fn(item)
	}
	return Page[U]{
		Items:      items,
		PageNumber: p.PageNumber,
		TotalPages: p.TotalPages,
		TotalCount: p.TotalCount,
	}
}
