package server

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// TimeoutMiddleware caps each request's context at the given duration.
// Cancellation is cooperative: handlers see the deadline through
// ctx.Done(). When the deadline passes and the handler returned without
// writing anything, the middleware answers 503 so the client is not left
// with an empty 200.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			wrapped := &timeoutResponseWriter{ResponseWriter: w}
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			if !wrapped.wrote && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"error":"Request timed out"}`))
			}
		})
	}
}

// timeoutResponseWriter tracks whether the handler produced a response.
type timeoutResponseWriter struct {
	http.ResponseWriter
	wrote bool
}

func (tw *timeoutResponseWriter) WriteHeader(code int) {
	tw.wrote = true
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutResponseWriter) Write(b []byte) (int, error) {
	tw.wrote = true
	return tw.ResponseWriter.Write(b)
}

// Flush forwards Flush to the underlying ResponseWriter if it supports
// http.Flusher, preserving streaming support.
func (tw *timeoutResponseWriter) Flush() {
	if f, ok := tw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
