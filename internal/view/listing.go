package view

import (
	"context"
	"sync"

	"campus-reveal-backend/internal/model"
	"campus-reveal-backend/internal/parse"
)

// PageSize is the number of colleges per listing page.
const PageSize = 20

// CollegeSource lists colleges.
type CollegeSource interface {
	ListColleges(ctx context.Context, name string) ([]model.College, error)
}

// Filter keeps the colleges whose name contains query, ignoring case.
// An empty query keeps everything. Order is preserved.
func Filter(colleges []model.College, query string) []model.College {
	if query == "" {
		return colleges
	}
	out := make([]model.College, 0, len(colleges))
	for _, c := range colleges {
		if parse.NameMatches(c.Name, query) {
			out = append(out, c)
		}
	}
	return out
}

// PageCount is the number of pages needed for n items.
func PageCount(n int) int {
	return (n + PageSize - 1) / PageSize
}

// Paginate returns the items on the 1-based page. Out-of-range pages are empty.
func Paginate[T any](items []T, page int) []T {
	if page < 1 {
		return nil
	}
	start := (page - 1) * PageSize
	if start >= len(items) {
		return nil
	}
	end := min(start+PageSize, len(items))
	return items[start:end]
}

// Listing is the searchable, paginated college list. The full list is
// fetched once per activation; searching and paging work on that copy.
type Listing struct {
	src CollegeSource

	mu       sync.Mutex
	token    uint64
	colleges Fetch[[]model.College]
	query    string
	page     int
}

// NewListing creates a listing backed by src.
func NewListing(src CollegeSource) *Listing {
	return &Listing{src: src, page: 1}
}

// Activate fetches the full college list. If another activation starts
// before this one finishes, this result is dropped and ErrSuperseded returned.
func (l *Listing) Activate(ctx context.Context) error {
	l.mu.Lock()
	l.token++
	token := l.token
	l.colleges = Fetch[[]model.College]{Loading: true}
	l.mu.Unlock()

	colleges, err := l.src.ListColleges(ctx, "")

	l.mu.Lock()
	defer l.mu.Unlock()
	if token != l.token {
		return ErrSuperseded
	}
	l.colleges = Fetch[[]model.College]{Data: colleges, Err: err}
	return err
}

// State returns the current fetch state of the full list.
func (l *Listing) State() Fetch[[]model.College] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.colleges
}

// SetQuery changes the search text and returns to the first page.
func (l *Listing) SetQuery(q string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.query = q
	l.page = 1
}

// Query returns the current search text.
func (l *Listing) Query() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query
}

// Filtered returns every college matching the current query.
func (l *Listing) Filtered() []model.College {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Filter(l.colleges.Data, l.query)
}

// Page returns the current 1-based page.
func (l *Listing) Page() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page
}

// Pages returns the number of pages for the current query.
func (l *Listing) Pages() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return PageCount(len(Filter(l.colleges.Data, l.query)))
}

// Items returns the colleges on the current page.
func (l *Listing) Items() []model.College {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Paginate(Filter(l.colleges.Data, l.query), l.page)
}

// HasPrev reports whether a previous page exists.
func (l *Listing) HasPrev() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page > 1
}

// HasNext reports whether a next page exists.
func (l *Listing) HasNext() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page < PageCount(len(Filter(l.colleges.Data, l.query)))
}

// Next moves forward one page unless already on the last.
func (l *Listing) Next() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.page >= PageCount(len(Filter(l.colleges.Data, l.query))) {
		return false
	}
	l.page++
	return true
}

// Prev moves back one page unless already on the first.
func (l *Listing) Prev() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.page <= 1 {
		return false
	}
	l.page--
	return true
}

// GoTo jumps to page, clamped to the available range.
func (l *Listing) GoTo(page int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	last := max(PageCount(len(Filter(l.colleges.Data, l.query))), 1)
	l.page = min(max(page, 1), last)
	return l.page
}
