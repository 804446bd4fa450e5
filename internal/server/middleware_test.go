package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	RequestIDMiddleware(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if seen == "" {
		t.Error("request ID missing from context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("X-Request-ID header = %q, context = %q", got, seen)
	}
}

func TestGetRequestID_Unset(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() = %q, want empty", got)
	}
}

func TestRequestIDMiddleware_InboundID(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid inbound ID is preserved", func(t *testing.T) {
		const inbound = "8c3f9f3e-9e2b-4a8e-b6e7-1a2b3c4d5e6f"
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Request-ID", inbound)

		rec := httptest.NewRecorder()
		RequestIDMiddleware(handler).ServeHTTP(rec, req)

		if got := rec.Header().Get("X-Request-ID"); got != inbound {
			t.Errorf("X-Request-ID = %q, want inbound %q", got, inbound)
		}
	})

	t.Run("malformed inbound ID is replaced", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Request-ID", "not-a-uuid; rm -rf /")

		rec := httptest.NewRecorder()
		RequestIDMiddleware(handler).ServeHTTP(rec, req)

		got := rec.Header().Get("X-Request-ID")
		if got == "" || got == "not-a-uuid; rm -rf /" {
			t.Errorf("X-Request-ID = %q, want a fresh UUID", got)
		}
	})
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		AddLogField(r.Context(), "tenant", "acme")
		AddError(r.Context(), errors.New("soft failure"))
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	LoggingMiddleware(logger)(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/api/thing", nil))

	out := buf.String()
	if !strings.Contains(out, "request started") || !strings.Contains(out, "request completed") {
		t.Fatalf("missing start/completion logs:\n%s", out)
	}
	if !strings.Contains(out, "status=418") {
		t.Errorf("captured status missing:\n%s", out)
	}
	if !strings.Contains(out, "tenant=acme") {
		t.Errorf("AddLogField value missing:\n%s", out)
	}
	if !strings.Contains(out, "soft failure") {
		t.Errorf("AddError value missing:\n%s", out)
	}
}

func TestAddLogField_NoMiddleware(t *testing.T) {
	// Must not panic without the middleware's fields map in context.
	AddLogField(context.Background(), "k", "v")
	AddError(context.Background(), errors.New("x"))
}

func TestTimeoutMiddleware(t *testing.T) {
	var deadlineSet bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, deadlineSet = r.Context().Deadline()
		select {
		case <-r.Context().Done():
			w.WriteHeader(http.StatusServiceUnavailable)
		case <-time.After(time.Second):
			w.WriteHeader(http.StatusOK)
		}
	})

	rec := httptest.NewRecorder()
	TimeoutMiddleware(10 * time.Millisecond)(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if !deadlineSet {
		t.Error("no deadline on request context")
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want handler to observe cancellation", rec.Code)
	}
}

func TestTimeoutMiddleware_SilentHandler(t *testing.T) {
	// Handler gives up on deadline without writing anything
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	rec := httptest.NewRecorder()
	TimeoutMiddleware(10 * time.Millisecond)(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 for a timed-out silent handler", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "timed out") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestTimeoutMiddleware_FastHandlerUntouched(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	TimeoutMiddleware(time.Second)(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want the handler's own status", rec.Code)
	}
}

func TestServer_OpsEndpoints(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s := New(0, time.Second, logger, nil)

	t.Run("healthz", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"ok"`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "go_goroutines") {
			t.Error("prometheus runtime metrics missing")
		}
	})

	t.Run("recoverer contains panics", func(t *testing.T) {
		s.Router.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
			panic("kaboom")
		})
		rec := httptest.NewRecorder()
		s.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/boom", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500 from recoverer", rec.Code)
		}
	})
}
