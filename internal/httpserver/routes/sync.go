package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/opsdeck/opsdeck/internal/httpserver/deps"
	"github.com/opsdeck/opsdeck/internal/httpserver/handlers"
	"github.com/opsdeck/opsdeck/internal/httpserver/mw"
)

func init() { Register(registerSync) }

func registerSync(r chi.Router, d deps.Deps) {
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).
		Post("/api/sync", handlers.SyncNow(d))
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).
		Get("/api/sync", handlers.SyncStatus(d))
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).
		Get("/api/sync/status", handlers.SyncStatus(d))
}
