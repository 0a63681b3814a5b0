package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/geolayers/internal/core"
)

// multipartOverhead is the slack allowed on top of the file size limit for
// multipart boundaries and part headers.
const multipartOverhead = 1 << 20

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseIndex parses a column or feature index. Range checks are left to the
// engine so that unknown layers are reported before bad indexes.
func parseIndex(name, val string, defaultVal int) (int, error) {
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", core.ErrInvalidArgument, name, val)
	}
	return i, nil
}

// sortParams reads the sort column and direction, defaulting to the first
// column in ascending order.
func sortParams(r *http.Request) (int, string, error) {
	col, err := parseIndex("sort", r.URL.Query().Get("sort"), 0)
	if err != nil {
		return 0, "", err
	}
	dir := r.URL.Query().Get("dir")
	if dir == "" {
		dir = string(core.SortAscending)
	}
	return col, dir, nil
}

// hasParam reports whether any of the named query parameters is present.
func hasParam(r *http.Request, names ...string) bool {
	q := r.URL.Query()
	for _, n := range names {
		if q.Has(n) {
			return true
		}
	}
	return false
}
