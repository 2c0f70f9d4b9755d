// Package middleware provides the HTTP middleware stack: request ids,
// request logging, CORS, and trailing-slash normalization.
package middleware

import "net/http"

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// System composes middleware into a single wrapping chain.
type System interface {
	Use(m Middleware)
	Wrap(handler http.Handler) http.Handler
}

type chain struct {
	stack []Middleware
}

// New creates an empty middleware system.
func New() System {
	return &chain{}
}

// Use appends middleware to the chain. Middleware run in the order added:
// the first registered is the outermost wrapper.
func (c *chain) Use(m Middleware) {
	c.stack = append(c.stack, m)
}

// Wrap applies the chain to the handler.
func (c *chain) Wrap(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(c.stack) - 1; i >= 0; i-- {
		wrapped = c.stack[i](wrapped)
	}
	return wrapped
}
