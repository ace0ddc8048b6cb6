package goSession

import "strings"

// IsPublicRoute reports whether route exactly matches one of public, ignoring
// query, fragment and a trailing slash.
func IsPublicRoute(route string, public []string) bool {
	path := normalizeRoute(route)
	for _, p := range public {
		if normalizeRoute(p) == path {
			return true
		}
	}
	return false
}

func normalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
		if route == "" {
			route = "/"
		}
	}
	return route
}
