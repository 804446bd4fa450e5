package storage

import (
	"net/http"

	"github.com/opsboard/opsboard/internal/httpx"
)

// scopeParams are the path params shared by every storage route.
type scopeParams struct {
	Context string `param:"context" validate:"required,oneof=tenants users shared"`
	ID      string `param:"id" validate:"required"`
}

type deleteBody struct {
	Path string `json:"path"`
}

// RegisterRoutes mounts the file storage API. The handlers delegate all
// mutation to the provider; empty-path and missing-file checks happen
// before the provider is touched.
func RegisterRoutes(reg *httpx.Registry, provider Provider, before ...httpx.Middleware) {
	params := func() any { return &scopeParams{} }

	reg.Post("/api/storage/{context}/{id}/upload", httpx.RouteDefinition{
		Name:    "storage.upload",
		Summary: "Upload a file into a storage scope",
		Tags:    []string{"storage"},
		Before:  before,
		Schema:  httpx.Schema{Params: params},
		Handler: func(w http.ResponseWriter, r *http.Request, rc *httpx.RequestContext) error {
			p := rc.Params.(*scopeParams)

			file, header, err := r.FormFile("file")
			if err != nil {
				return httpx.BadRequest("File is required")
			}
			defer file.Close()

			path, err := provider.Upload(r.Context(), Scope(p.Context), p.ID, header.Filename, file)
			if err == ErrInvalidPath {
				return httpx.BadRequest("File name is invalid")
			}
			if err != nil {
				return err
			}

			httpx.WriteJSON(w, http.StatusOK, map[string]string{"path": path})
			return nil
		},
	})

	reg.Delete("/api/storage/{context}/{id}/delete", httpx.RouteDefinition{
		Name:    "storage.delete",
		Summary: "Delete one file from a storage scope",
		Tags:    []string{"storage"},
		Before:  before,
		Schema: httpx.Schema{
			Params: params,
			Body:   func() any { return &deleteBody{} },
		},
		Handler: func(w http.ResponseWriter, r *http.Request, rc *httpx.RequestContext) error {
			p := rc.Params.(*scopeParams)
			body := rc.Body.(*deleteBody)

			if body.Path == "" {
				return httpx.BadRequest("Path is required")
			}

			if err := provider.Delete(r.Context(), Scope(p.Context), p.ID, body.Path); err != nil {
				return err
			}

			httpx.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
			return nil
		},
	})

	reg.Delete("/api/storage/{context}/{id}/delete-all", httpx.RouteDefinition{
		Name:    "storage.delete_all",
		Summary: "Delete every file in a storage scope",
		Tags:    []string{"storage"},
		Before:  before,
		Schema:  httpx.Schema{Params: params},
		Handler: func(w http.ResponseWriter, r *http.Request, rc *httpx.RequestContext) error {
			p := rc.Params.(*scopeParams)

			if err := provider.DeleteAll(r.Context(), Scope(p.Context), p.ID); err != nil {
				return err
			}

			httpx.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
			return nil
		},
	})

	reg.Get("/api/storage/{context}/{id}/list", httpx.RouteDefinition{
		Name:    "storage.list",
		Summary: "List files in a storage scope",
		Tags:    []string{"storage"},
		Before:  before,
		Schema:  httpx.Schema{Params: params},
		Handler: func(w http.ResponseWriter, r *http.Request, rc *httpx.RequestContext) error {
			p := rc.Params.(*scopeParams)

			files, err := provider.List(r.Context(), Scope(p.Context), p.ID)
			if err != nil {
				return err
			}

			httpx.WriteJSON(w, http.StatusOK, map[string]any{"files": files})
			return nil
		},
	})
}
