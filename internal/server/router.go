package server

import (
	"net/http"
	"slices"
)

// BasicRouter dispatches method-qualified patterns ("GET /songs/{id}") through an [http.ServeMux].
//
// Middleware wraps the whole mux, so unmatched paths (404) and wrong methods (405 with an Allow
// header) pass through recovery, logging and rate limiting like any other request.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	chain       http.Handler
	patterns    []string
}

func NewBasicRouter() *BasicRouter {
	mux := http.NewServeMux()
	return &BasicRouter{mux: mux, chain: mux}
}

// Use appends middleware; the first added is the outermost.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
	r.chain = r.Apply(r.mux)
}

// Handle registers handler for method and path. An empty method matches every method.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	pattern := path
	if method != "" {
		pattern = method + " " + path
	}
	r.register(pattern, handler)
}

// Handler registers every pattern listed by handler.Routes.
func (r *BasicRouter) Handler(handler Handler) {
	for _, pattern := range handler.Routes() {
		r.register(pattern, handler)
	}
}

func (r *BasicRouter) register(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
	r.patterns = append(r.patterns, pattern)
}

// Patterns lists the registered patterns in registration order.
func (r *BasicRouter) Patterns() []string {
	return slices.Clone(r.patterns)
}

func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.chain.ServeHTTP(w, req)
}

// Apply wraps handler with the registered middleware.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	for _, mw := range slices.Backward(r.middlewares) {
		handler = mw(handler)
	}
	return handler
}
