package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func queryContext(t *testing.T, target string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestPageParams_Defaults(t *testing.T) {
	page, limit, offset := pageParams(queryContext(t, "/v1/movies"))
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageSize, limit)
	assert.Equal(t, 0, offset)
}

func TestPageParams_Explicit(t *testing.T) {
	page, limit, offset := pageParams(queryContext(t, "/v1/movies?page=3&pageSize=10"))
	assert.Equal(t, 3, page)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)
}

func TestPageParams_ClampsOversizedPage(t *testing.T) {
	_, limit, _ := pageParams(queryContext(t, "/v1/movies?pageSize=10000"))
	assert.Equal(t, maxPageSize, limit)
}

func TestPageParams_IgnoresGarbage(t *testing.T) {
	page, limit, _ := pageParams(queryContext(t, "/v1/movies?page=abc&pageSize=-5"))
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageSize, limit)
}

func TestPaged_LastPage(t *testing.T) {
	out := paged([]int{1, 2}, 41, 1, 20)
	meta := out["meta"].(pageMeta)
	assert.Equal(t, 41, meta.Total)
	assert.Equal(t, 3, meta.LastPage)
}

func TestPaged_EmptyResult(t *testing.T) {
	out := paged([]int{}, 0, 1, 20)
	meta := out["meta"].(pageMeta)
	assert.Equal(t, 0, meta.Total)
	assert.Equal(t, 1, meta.LastPage)
}
