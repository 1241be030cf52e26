package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/camp-planner/internal/application"
)

// pathParam returns a trimmed chi URL parameter.
func pathParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}

// pageFromQuery reads the skip and limit query parameters. Unparseable
// values fall back to the defaults rather than failing the request.
func pageFromQuery(r *http.Request) application.Page {
	var page application.Page
	if skip, err := strconv.Atoi(r.URL.Query().Get("skip")); err == nil {
		page.Skip = skip
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		page.Limit = limit
	}
	return page
}

// listResponse is the envelope every collection endpoint returns.
type listResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

func newListResponse[T any](data []T, count int) listResponse[T] {
	if data == nil {
		data = []T{}
	}
	return listResponse[T]{Data: data, Count: count}
}
