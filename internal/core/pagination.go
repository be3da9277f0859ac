// AngelaMos | 2026
// pagination.go

package core

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PageParams struct {
	Page     int
	PageSize int
}

// ParsePageParams reads ?page= and ?page_size=, falling back to defaults
// for anything missing or malformed.
func ParsePageParams(r *http.Request) PageParams {
	q := r.URL.Query()

	p := PageParams{}
	p.Page, _ = strconv.Atoi(q.Get("page"))          //nolint:errcheck // defaulted below
	p.PageSize, _ = strconv.Atoi(q.Get("page_size")) //nolint:errcheck // defaulted below
	p.Normalize()

	return p
}

func (p *PageParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// EscapeLike escapes LIKE/ILIKE wildcards in user supplied search text.
func EscapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

// ParseID parses a positive int64 path parameter.
func ParseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
