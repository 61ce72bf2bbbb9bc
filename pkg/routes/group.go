package routes

import "net/http"

// Group organizes routes under a common prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux and returns
// the registered endpoints in declaration order.
func Register(mux *http.ServeMux, groups ...Group) []Endpoint {
	var endpoints []Endpoint
	for _, group := range groups {
		walk("", group, func(prefix string, route Route) {
			mux.HandleFunc(route.Method+" "+prefix+route.Pattern, route.Handler)
			endpoints = append(endpoints, Endpoint{
				Method:  route.Method,
				Path:    prefix + route.Pattern,
				Summary: route.Summary,
			})
		})
	}
	return endpoints
}

func walk(parentPrefix string, group Group, fn func(prefix string, route Route)) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		fn(fullPrefix, route)
	}
	for _, child := range group.Children {
		walk(fullPrefix, child, fn)
	}
}
