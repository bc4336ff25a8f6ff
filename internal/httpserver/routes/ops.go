package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/kompas/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kompas/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/kompas/internal/httpserver/mw"
)

func init() { Register("ops", registerOps) }

// Ops endpoints only answer to allowed networks and hosts.
func registerOps(r chi.Router, d deps.Deps) {
	ops := r.With(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	)
	ops.Get("/readyz", handlers.Readyz(d))
	ops.Get("/infra", handlers.Infra(d))
	ops.Post("/reload", handlers.Reload(d))
	ops.Method("GET", "/metrics", handlers.Metrics(d))
}
