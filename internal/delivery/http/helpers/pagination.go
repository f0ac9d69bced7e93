package helpers

import (
	"net/http"
	"strconv"

	"churchsite/internal/domain"
)

// ParsePagination reads page and limit from the request query string.
// Missing or invalid values are left zero so the service applies its own defaults and caps.
func ParsePagination(r *http.Request) domain.PaginationParams {
	var p domain.PaginationParams
	if s := r.URL.Query().Get("page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			p.Page = v
		}
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			p.Limit = v
		}
	}
	return p
}

// ParseBool reads an optional boolean query parameter. Unparseable values count as absent.
func ParseBool(r *http.Request, key string) *bool {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &v
}
