// Package handler contains the HTTP handlers.  Handlers bind and
// validate the request, call a repository or service, and translate
// domain errors into status codes.
package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// pageParams reads the page and pageSize query parameters, clamping
// them to sane bounds.  Pages are 1-based.
func pageParams(c echo.Context) (page, limit, offset int) {
	page = 1
	if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 0 {
		page = n
	}
	limit = defaultPageSize
	if n, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && n > 0 {
		limit = n
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit, (page - 1) * limit
}

// pageMeta is the pagination block of a list response.
type pageMeta struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	Limit    int `json:"limit"`
	LastPage int `json:"lastPage"`
}

// paged wraps a result page in the standard list envelope.
func paged(data interface{}, total, page, limit int) echo.Map {
	last := (total + limit - 1) / limit
	if last < 1 {
		last = 1
	}
	return echo.Map{
		"data": data,
		"meta": pageMeta{Total: total, Page: page, Limit: limit, LastPage: last},
	}
}
