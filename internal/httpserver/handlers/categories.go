package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opsdeck/opsdeck/internal/domain"
	"github.com/opsdeck/opsdeck/internal/httpserver/deps"
)

type categoryResponse struct {
	Category *domain.Category `json:"category"`
}

// CreateCategory stores a new category locally and queues it for sync.
func CreateCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.Category
		if err := decode(r, &in); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
			return
		}
		cat, err := d.Bookmarks.AddCategory(r.Context(), &in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, categoryResponse{Category: cat})
	}
}

// UpdateCategory rewrites an existing category. Registered for both PUT and
// the legacy POST route older dashboard frontends use.
func UpdateCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.Category
		if err := decode(r, &in); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
			return
		}
		in.ID = chi.URLParam(r, "id")
		cat, err := d.Bookmarks.UpdateCategory(r.Context(), &in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, categoryResponse{Category: cat})
	}
}

// DeleteCategory removes a category and all its bookmarks.
func DeleteCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Bookmarks.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
