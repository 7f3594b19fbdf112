package common

import (
	"net/http"
	"strconv"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// PaginationParams is the limit/offset window for list endpoints.
type PaginationParams struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ExtractPaginationParams reads limit/offset from the request query. The
// second return reports whether the caller supplied either parameter; list
// endpoints fall back to the full result set when neither is present.
// Unparsable or out-of-range values are ignored rather than rejected.
func ExtractPaginationParams(r *http.Request) (PaginationParams, bool) {
	params := PaginationParams{Limit: defaultLimit}
	supplied := false

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			params.Limit = min(limit, maxLimit)
			supplied = true
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset >= 0 {
			params.Offset = offset
			supplied = true
		}
	}

	return params, supplied
}

// Window clamps the parameters against the total item count and returns the
// [start, end) slice bounds.
func (p PaginationParams) Window(total int) (int, int) {
	start := min(p.Offset, total)
	end := min(start+p.Limit, total)
	return start, end
}

// BuildPaginationMeta describes the window a response covers. Page numbers
// are derived from the offset, so an offset that is not a multiple of the
// limit still lands on the page containing it.
func BuildPaginationMeta(limit, offset, total int) *PaginationInfo {
	if limit <= 0 {
		limit = defaultLimit
	}
	page := offset/limit + 1
	totalPages := totalPageCount(total, limit)

	return &PaginationInfo{
		Page:       page,
		PageSize:   limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

func totalPageCount(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
