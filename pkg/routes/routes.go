// Package routes registers grouped handlers on a ServeMux using Go 1.22
// method patterns.
package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group collects routes under a shared prefix.
type Group struct {
	Prefix string
	Routes []Route
}

// Patterns returns the mux patterns the group registers, in order.
func (g Group) Patterns() []string {
	patterns := make([]string, 0, len(g.Routes))
	for _, r := range g.Routes {
		patterns = append(patterns, r.Method+" "+g.Prefix+r.Pattern)
	}
	return patterns
}

// Register adds every route of every group to mux and returns the
// registered patterns.
func Register(mux *http.ServeMux, groups ...Group) []string {
	var registered []string
	for _, g := range groups {
		for i, pattern := range g.Patterns() {
			mux.HandleFunc(pattern, g.Routes[i].Handler)
			registered = append(registered, pattern)
		}
	}
	return registered
}
