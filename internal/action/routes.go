package action

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opsboard/opsboard/internal/httpx"
)

// dispatchResponse is the wire shape of an action outcome. Failures ride
// in the same envelope as successes so the caller always gets a result,
// never a bare 500.
type dispatchResponse struct {
	OK       bool              `json:"ok"`
	Data     any               `json:"data,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
	Error    string            `json:"error,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// RegisterRoutes exposes the action client over HTTP: POST
// /api/actions/{name} with the action input as the JSON body.
func RegisterRoutes(reg *httpx.Registry, client *Client, before ...httpx.Middleware) {
	reg.Post("/api/actions/{name}", httpx.RouteDefinition{
		Name:    "actions.dispatch",
		Summary: "Execute a named action",
		Tags:    []string{"actions"},
		Before:  before,
		Handler: func(w http.ResponseWriter, r *http.Request, rc *httpx.RequestContext) error {
			name := chi.URLParam(r, "name")

			def, ok := client.actions[name]
			if !ok {
				return httpx.NotFound("Unknown action")
			}

			var input any
			if def.Input != nil {
				input = def.Input()
				if err := json.NewDecoder(r.Body).Decode(input); err != nil {
					return httpx.BadRequest("Invalid JSON body")
				}
			}

			result, err := client.Execute(r.Context(), name, input)
			if err != nil {
				status, resp := dispatchError(err)
				httpx.WriteJSON(w, status, resp)
				return nil
			}

			httpx.WriteJSON(w, http.StatusOK, dispatchResponse{
				OK:       true,
				Data:     result.Data,
				Redirect: result.Redirect,
			})
			return nil
		},
	})
}

func dispatchError(err error) (int, dispatchResponse) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, dispatchResponse{
			OK:     false,
			Error:  "Validation failed",
			Fields: verr.Fields,
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, dispatchResponse{OK: false, Error: "Unauthorized"}
	default:
		return http.StatusBadRequest, dispatchResponse{OK: false, Error: err.Error()}
	}
}
