// Package httpx builds HTTP endpoints from declarative route definitions.
//
// A RouteDefinition bundles metadata, an ordered middleware chain, a
// request schema, and a handler. Handler construction runs middlewares in
// declared order (any of them may short-circuit with a terminal response),
// then binds and validates the request against the schema, and only then
// invokes the handler. Validation and authorization failures never reach
// the handler.
package httpx

import (
	"log/slog"
	"net/http"
)

// Middleware is a pipeline stage that may extend the request context or
// short-circuit the chain by returning an error. A returned *Error is
// written as the terminal response; any other error maps to a 500.
type Middleware func(w http.ResponseWriter, r *http.Request, rc *RequestContext) error

// HandlerFunc is the terminal stage of a route pipeline. The request
// context carries the bound schema values and middleware attachments.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, rc *RequestContext) error

// Schema declares the validated shape of a request. Each factory returns
// a fresh struct the request section is bound into; nil sections are
// skipped. Validation rules come from `validate` struct tags.
type Schema struct {
	Params func() any
	Query  func() any
	Body   func() any
}

// RouteDefinition describes one endpoint. Definitions are immutable after
// registration.
type RouteDefinition struct {
	Name        string
	Summary     string
	Description string
	Tags        []string
	Before      []Middleware
	Schema      Schema
	Handler     HandlerFunc
}

// RequestContext is the per-invocation value threaded through a route
// pipeline. It is constructed when the request arrives and discarded when
// the handler returns.
type RequestContext struct {
	Params any
	Query  any
	Body   any

	values map[string]any
}

// Set attaches a middleware-provided value to the context.
func (rc *RequestContext) Set(key string, v any) {
	if rc.values == nil {
		rc.values = make(map[string]any)
	}
	rc.values[key] = v
}

// Get returns a middleware-provided value, or nil if absent.
func (rc *RequestContext) Get(key string) any {
	return rc.values[key]
}

// Handler compiles a route definition into an http.HandlerFunc.
func Handler(def RouteDefinition, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		rc := &RequestContext{}

		for _, mw := range def.Before {
			if err := mw(w, r, rc); err != nil {
				writeError(w, r, logger, def.Name, err)
				return
			}
		}

		if err := bindRequest(r, def.Schema, rc); err != nil {
			writeError(w, r, logger, def.Name, err)
			return
		}

		if err := def.Handler(w, r, rc); err != nil {
			writeError(w, r, logger, def.Name, err)
			return
		}
	}
}

func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, route string, err error) {
	httpErr, ok := err.(*Error)
	if !ok {
		logger.Error("route failed",
			slog.String("route", route),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		httpErr = Internal("internal server error")
	} else if httpErr.Status >= http.StatusInternalServerError {
		logger.Error("route failed",
			slog.String("route", route),
			slog.String("path", r.URL.Path),
			slog.String("error", httpErr.Message),
		)
	}

	WriteErr(w, httpErr)
}
