package validators

import (
	"net/http"
	"strconv"
	"strings"
)

// QueryFilters turns query parameters into an equality filter map. Values
// that parse as numbers or booleans are typed accordingly; everything else
// stays a string. The first value wins for repeated keys.
func QueryFilters(r *http.Request) map[string]any {
	values := r.URL.Query()
	if len(values) == 0 {
		return nil
	}

	filters := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		filters[key] = coerceFilterValue(strings.TrimSpace(vals[0]))
	}
	if len(filters) == 0 {
		return nil
	}
	return filters
}

func coerceFilterValue(raw string) any {
	if raw == "true" {
		return true
	}
	if raw == "false" {
		return false
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	return raw
}
