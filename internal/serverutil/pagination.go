package serverutil

import (
	"net/http"
	"strconv"
)

// PageMeta holds pagination metadata for API responses.
type PageMeta struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// Page parses offset-based pagination parameters (?offset=20&limit=10).
//
// Out of range limits fall back to the default, negative offsets to zero.
func Page(r *http.Request, defaultLimit, maxLimit int) (limit int, offset int) {
	query := r.URL.Query()

	limit, _ = strconv.Atoi(query.Get("limit"))
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	offset, _ = strconv.Atoi(query.Get("offset"))
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
