package i18n

import (
	"net/http"

	"github.com/opsboard/opsboard/internal/httpx"
)

type translationsResponse struct {
	Locale   string            `json:"locale"`
	Messages map[string]string `json:"messages"`
}

// RegisterRoutes exposes the resolved dictionary for the caller's
// preferred language, negotiated from the Accept-Language header.
func RegisterRoutes(reg *httpx.Registry, bundle *Bundle) {
	reg.Get("/api/translations", httpx.RouteDefinition{
		Name:    "i18n.translations",
		Summary: "Dictionary for the negotiated locale",
		Tags:    []string{"i18n"},
		Handler: func(w http.ResponseWriter, r *http.Request, rc *httpx.RequestContext) error {
			loc := bundle.Resolve(r.Header.Get("Accept-Language"))
			httpx.WriteJSON(w, http.StatusOK, translationsResponse{
				Locale:   loc.Tag.String(),
				Messages: loc.Messages(),
			})
			return nil
		},
	})
}
