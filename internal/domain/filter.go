package domain

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50
)

// Privacy is the admin-only privacy selector. Non-admin callers are always
// restricted to public rows whatever the value.
type Privacy int

const (
	PrivacyAll Privacy = iota
	PrivacyPublic
	PrivacyPrivate
)

// ParsePrivacy maps the is_private query parameter.
// "true" selects private rows, "false" public ones, anything else all.
func ParsePrivacy(v string) Privacy {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1":
		return PrivacyPrivate
	case "false", "0":
		return PrivacyPublic
	default:
		return PrivacyAll
	}
}

type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortTitle     SortField = "title"
	SortUpdatedAt SortField = "updated_at"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Filter selects, orders and pages bookmarks.
type Filter struct {
	Query      string
	CategoryID *int64
	Privacy    Privacy
	SortBy     SortField
	SortOrder  SortOrder
	Page       int
	Limit      int
}

// Normalize replaces anything outside the allow-lists with defaults.
func (f Filter) Normalize() Filter {
	f.Query = strings.TrimSpace(f.Query)
	switch f.SortBy {
	case SortCreatedAt, SortTitle, SortUpdatedAt:
	default:
		f.SortBy = SortCreatedAt
	}
	switch SortOrder(strings.ToLower(string(f.SortOrder))) {
	case SortAsc:
		f.SortOrder = SortAsc
	default:
		f.SortOrder = SortDesc
	}
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	return f
}

// Offset is the row offset of the current page. ok is false when the
// offset does not fit in an int, which means the page is past any result.
func (f Filter) Offset() (offset int, ok bool) {
	if f.Page > 1 && f.Limit > math.MaxInt/(f.Page-1) {
		return 0, false
	}
	return (f.Page - 1) * f.Limit, true
}

// FilterFromQuery builds a Filter from URL query values. Unparseable
// numbers fall back to defaults.
func FilterFromQuery(get func(string) string) Filter {
	f := Filter{
		Query:     get("query"),
		Privacy:   ParsePrivacy(get("is_private")),
		SortBy:    SortField(get("sort_by")),
		SortOrder: SortOrder(get("sort_order")),
	}
	if v := get("category_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.CategoryID = &id
		}
	}
	f.Page, _ = strconv.Atoi(get("page"))
	f.Limit, _ = strconv.Atoi(get("limit"))
	return f.Normalize()
}

// Page is one page of query results.
type Page struct {
	Bookmarks  []Bookmark `json:"bookmarks"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
}

// TotalPages is ceil(total/limit), 0 for an empty result.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}
