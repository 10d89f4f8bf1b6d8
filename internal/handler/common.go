package handler // handler defines http handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// pagination is the envelope block returned by every paginated read.
type pagination struct {
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	Total           int64 `json:"total"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// paginatedResponse wraps a page of results. Data stays `any` so the
// same shape round-trips through the cache regardless of element type.
type paginatedResponse struct {
	Success    bool       `json:"success"`
	Data       any        `json:"data"`
	Pagination pagination `json:"pagination"`
}

// searchResponse wraps a search result together with the query echo.
type searchResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Query   string `json:"query"`
}

func newPagination(page, limit int, total int64) pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return pagination{
		Page:            page,
		Limit:           limit,
		Total:           total,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

// parsePagination reads ?page and ?limit with the defaults and bounds
// shared by every paginated endpoint: page >= 1 (default 1), limit
// 1..100 (default 10).
func parsePagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// parseSearch reads ?q and ?limit for search endpoints. The query is
// required and capped at 255 characters; limit defaults to 10 with a
// maximum of 50.
func parseSearch(c echo.Context) (q string, limit int, ok bool) {
	q = c.QueryParam("q")
	if q == "" || len(q) > 255 {
		return "", 0, false
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	return q, limit, true
}

// getUserID extracts the user_id placed in context by the JWT
// middleware and converts it to uint64. JSON numbers arrive as
// float64 after claim parsing.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}
