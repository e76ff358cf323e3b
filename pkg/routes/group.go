package routes

import "net/http"

// Group represents a collection of routes under a common URL prefix.
// Groups can contain child groups for hierarchical route organization.
type Group struct {
	Prefix      string
	Description string
	Routes      []Route
	Children    []Group
}

// Route represents an HTTP route with method, pattern, and handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Patterns returns the ServeMux patterns of the group and its children,
// each prefixed with parent.
func (g Group) Patterns(parent string) []string {
	prefix := parent + g.Prefix
	patterns := make([]string, 0, len(g.Routes))
	for _, route := range g.Routes {
		patterns = append(patterns, route.Method+" "+prefix+route.Pattern)
	}
	for _, child := range g.Children {
		patterns = append(patterns, child.Patterns(prefix)...)
	}
	return patterns
}

// Register mounts every route in groups onto mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		register(mux, "", group)
	}
}

func register(mux *http.ServeMux, parent string, group Group) {
	prefix := parent + group.Prefix
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+prefix+route.Pattern, route.Handler)
	}
	for _, child := range group.Children {
		register(mux, prefix, child)
	}
}
