// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Default limits used when Configure has not been called.
const (
	DefaultLimit = 20
	DefaultMax   = 100
)

// MaxPage bounds ?page so Skip cannot overflow. Pages past the data are
// empty.
const MaxPage = 1 << 24

var (
	mu       sync.RWMutex
	defLimit = DefaultLimit
	maxLimit = DefaultMax
)

// Configure sets the default and maximum page sizes. Non-positive values
// keep the current setting. Call once at startup.
func Configure(def, max int) {
	mu.Lock()
	defer mu.Unlock()
	if def > 0 {
		defLimit = def
	}
	if max > 0 {
		maxLimit = max
	}
	if defLimit > maxLimit {
		defLimit = maxLimit
	}
}

// Limits returns the configured default and maximum page sizes.
func Limits() (def, max int) {
	mu.RLock()
	defer mu.RUnlock()
	return defLimit, maxLimit
}

// Params is a normalized page request. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// Skip is the number of documents before this page.
func (p Params) Skip() int64 {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	return int64(p.Page-1) * int64(p.Limit)
}

// FindOptions returns skip/limit options for a Mongo Find.
func (p Params) FindOptions() *options.FindOptions {
	return options.Find().SetSkip(p.Skip()).SetLimit(int64(p.Limit))
}

// Parse reads ?page and ?limit using the configured limits.
func Parse(r *http.Request) Params {
	def, max := Limits()
	return ParseWith(r, def, max)
}

// ParseWith reads ?page and ?limit. Missing or invalid values fall back to
// page 1 and def; limit is capped at max.
func ParseWith(r *http.Request, def, max int) Params {
	return Normalize(atoi(query.Get(r, "page")), atoi(query.Get(r, "limit")), def, max)
}

// Normalize clamps page to [1, MaxPage] and limit to [1, max], using def
// for a non-positive limit.
func Normalize(page, limit, def, max int) Params {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return Params{Page: page, Limit: limit}
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Meta is the pagination block returned with list data.
type Meta struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// BuildMeta computes page counts for total matching documents.
func BuildMeta(p Params, total int64) Meta {
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Meta{
		Page:    p.Page,
		Limit:   p.Limit,
		Total:   total,
		Pages:   pages,
		HasNext: p.Page < pages,
		HasPrev: p.Page > 1,
	}
}

// Slice returns the page of items selected by p, for lists that are
// filtered in memory (embedded goals, expenses).
func Slice[T any](items []T, p Params) []T {
	skip := p.Skip()
	if skip < 0 || skip >= int64(len(items)) {
		return []T{}
	}
	start := int(skip)
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
