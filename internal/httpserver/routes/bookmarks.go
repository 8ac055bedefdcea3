package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/opsdeck/opsdeck/internal/httpserver/deps"
	"github.com/opsdeck/opsdeck/internal/httpserver/handlers"
	"github.com/opsdeck/opsdeck/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Route("/api/bookmarks", func(r chi.Router) {
		r.Use(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))

		r.Get("/", handlers.ListBookmarks(d))
		r.Post("/", handlers.CreateBookmark(d))
		r.Put("/{id}", handlers.UpdateBookmark(d))
		r.Delete("/{id}", handlers.DeleteBookmark(d))

		r.Post("/category", handlers.CreateCategory(d))
		r.Put("/category/{id}", handlers.UpdateCategory(d))
		// Legacy dashboard frontends update categories with a POST.
		r.Post("/category/{id}", handlers.UpdateCategory(d))
		r.Delete("/category/{id}", handlers.DeleteCategory(d))
	})
}
