package action

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/opsboard/opsboard/internal/httpx"
)

func dispatchRouter(t *testing.T, client *Client) *chi.Mux {
	t.Helper()
	reg := httpx.NewRegistry(nil)
	RegisterRoutes(reg, client)
	r := chi.NewRouter()
	reg.Mount(r)
	return r
}

type echoInput struct {
	Name string `json:"name" validate:"required"`
}

func TestDispatchRoute(t *testing.T) {
	client := New(nil)
	client.Register(Definition{
		Name:  "app.echo",
		Kind:  Query,
		Input: func() any { return &echoInput{} },
		Handler: func(ctx context.Context, inv *Invocation) (*Result, error) {
			return &Result{Data: map[string]string{"echo": inv.Input.(*echoInput).Name}}, nil
		},
	})
	client.Register(Definition{
		Name: "app.redirect",
		Kind: Mutate,
		Handler: func(ctx context.Context, inv *Invocation) (*Result, error) {
			return &Result{Redirect: "/app/acme"}, nil
		},
	})
	client.Register(Definition{
		Name: "app.guarded",
		Kind: Mutate,
		Handler: func(ctx context.Context, inv *Invocation) (*Result, error) {
			return nil, ErrUnauthorized
		},
	})
	client.Register(Definition{
		Name: "app.broken",
		Kind: Mutate,
		Handler: func(ctx context.Context, inv *Invocation) (*Result, error) {
			return nil, errors.New("upstream rejected the request")
		},
	})

	r := dispatchRouter(t, client)

	post := func(name, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/actions/"+name, strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	t.Run("success with data", func(t *testing.T) {
		rec := post("app.echo", `{"name":"ada"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var resp dispatchResponse
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if !resp.OK {
			t.Error("ok = false on success")
		}
	})

	t.Run("success with redirect", func(t *testing.T) {
		rec := post("app.redirect", ``)
		var resp dispatchResponse
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Redirect != "/app/acme" {
			t.Errorf("redirect = %q", resp.Redirect)
		}
	})

	t.Run("validation failure", func(t *testing.T) {
		rec := post("app.echo", `{}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp dispatchResponse
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.OK || resp.Fields["name"] == "" {
			t.Errorf("resp = %+v, want field detail for name", resp)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		if rec := post("app.echo", `{`); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		if rec := post("app.guarded", ``); rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("domain failure rides the envelope", func(t *testing.T) {
		rec := post("app.broken", ``)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp dispatchResponse
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.OK || resp.Error == "" {
			t.Errorf("resp = %+v", resp)
		}
	})

	t.Run("unknown action", func(t *testing.T) {
		if rec := post("app.missing", ``); rec.Code != http.StatusNotFound {
			t.Errorf("status = %d", rec.Code)
		}
	})
}
