// Package middleware holds the HTTP middleware shared by every module.
package middleware

import "net/http"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Stack is an ordered middleware chain. The first middleware added is the
// outermost.
type Stack struct {
	chain []Middleware
}

// New creates an empty Stack.
func New() *Stack {
	return &Stack{}
}

// Use appends mws to the stack.
func (s *Stack) Use(mws ...Middleware) {
	s.chain = append(s.chain, mws...)
}

// Len returns the number of middleware in the stack.
func (s *Stack) Len() int {
	return len(s.chain)
}

// Apply wraps handler with every middleware in the stack.
func (s *Stack) Apply(handler http.Handler) http.Handler {
	for i := len(s.chain) - 1; i >= 0; i-- {
		handler = s.chain[i](handler)
	}
	return handler
}
