// Package routes declares HTTP routes as data so handlers can publish them
// and callers can register or list them.
package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler. Summary is a
// one-line description surfaced by route listings.
type Route struct {
	Method  string
	Pattern string
	Summary string
	Handler http.HandlerFunc
}

// Endpoint is the listed form of a registered route.
type Endpoint struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Summary string `json:"summary,omitempty"`
}
