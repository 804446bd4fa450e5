package billing

import (
	"log/slog"
	"net/http"

	"github.com/opsboard/opsboard/internal/httpx"
)

type syncResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// RegisterRoutes mounts the billing sync endpoint. The handler reports
// use-case failures as a structured payload instead of an unhandled 500.
func RegisterRoutes(reg *httpx.Registry, syncer *Syncer, before ...httpx.Middleware) {
	reg.Get("/api/billing/sync", httpx.RouteDefinition{
		Name:    "billing.sync",
		Summary: "Synchronize plans with the payment provider",
		Tags:    []string{"billing"},
		Before:  before,
		Handler: func(w http.ResponseWriter, r *http.Request, rc *httpx.RequestContext) error {
			if err := syncer.SyncPlans(r.Context()); err != nil {
				syncer.logger.Error("plan sync failed", slog.String("error", err.Error()))
				httpx.WriteJSON(w, http.StatusInternalServerError, syncResponse{
					Status: "SYNC_FAILED",
					Error:  err.Error(),
				})
				return nil
			}

			httpx.WriteJSON(w, http.StatusOK, syncResponse{Status: "SYNC_COMPLETED"})
			return nil
		},
	})
}
