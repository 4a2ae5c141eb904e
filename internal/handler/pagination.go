package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// pageMeta is the pagination envelope attached to every list response.
type pageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

func newPageMeta(total, page, limit int) pageMeta {
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pageMeta{Total: total, Page: page, Limit: limit, TotalPages: pages}
}

// pageParams reads ?page= and ?limit= with defaults 1 and 10, clamping
// nonsense back into range.  Limit is capped to keep a single request from
// dragging the whole table over the wire.
func pageParams(c echo.Context) (page, limit int) {
	page, limit = 1, 10
	if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 0 {
		page = n
	}
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 {
		limit = n
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// boolParam parses an optional tri-state query flag: nil when absent or
// unparseable.
func boolParam(c echo.Context, name string) *bool {
	s := c.QueryParam(name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &v
}
