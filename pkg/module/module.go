// Package module mounts prefix-scoped HTTP handlers, each with its own
// middleware stack, under a single top-level router.
package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/JaimeStill/greenhouse/pkg/middleware"
)

// Module is an HTTP handler that strips its prefix and delegates to an inner
// router wrapped in its own middleware stack. Middleware must be added with
// Use before the module serves its first request.
type Module struct {
	prefix     string
	router     http.Handler
	middleware *middleware.Stack

	once    sync.Once
	handler http.Handler
}

// New creates a Module with the given single-level prefix (e.g. "/api").
// Panics if the prefix is empty, missing a leading slash, or multi-level.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Handler returns the inner router wrapped with the module's middleware stack.
func (m *Module) Handler() http.Handler {
	m.once.Do(func() {
		m.handler = m.middleware.Apply(m.router)
	})
	return m.handler
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// ServeHTTP strips the module prefix from the request path and dispatches to
// the wrapped router.
func (m *Module) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	m.Handler().ServeHTTP(w, withPath(req, strings.TrimPrefix(req.URL.Path, m.prefix)))
}

// Serve is ServeHTTP under the name the Router dispatches through.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.ServeHTTP(w, req)
}

// Use adds middleware to the module's stack.
func (m *Module) Use(mws ...middleware.Middleware) {
	m.middleware.Use(mws...)
}

func withPath(req *http.Request, path string) *http.Request {
	if path == "" {
		path = "/"
	}
	request := new(http.Request)
	*request = *req
	request.URL = new(url.URL)
	*request.URL = *req.URL
	request.URL.Path = path
	request.URL.RawPath = ""
	return request
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Count(prefix, "/") != 1:
		return fmt.Errorf("module prefix must be single-level sub-path: %s", prefix)
	}
	return nil
}
