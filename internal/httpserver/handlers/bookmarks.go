package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opsdeck/opsdeck/internal/domain"
	"github.com/opsdeck/opsdeck/internal/httpserver/deps"
)

type categoriesResponse struct {
	Categories []*domain.Category `json:"categories"`
}

type bookmarkResponse struct {
	Bookmark *domain.Bookmark `json:"bookmark"`
}

// ListBookmarks returns every category with its bookmarks.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := d.Bookmarks.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if cats == nil {
			cats = []*domain.Category{}
		}
		writeJSON(w, http.StatusOK, categoriesResponse{Categories: cats})
	}
}

// CreateBookmark stores a new bookmark locally and queues it for sync.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.Bookmark
		if err := decode(r, &in); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
			return
		}
		bm, err := d.Bookmarks.AddBookmark(r.Context(), &in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, bookmarkResponse{Bookmark: bm})
	}
}

// UpdateBookmark rewrites an existing bookmark.
func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.Bookmark
		if err := decode(r, &in); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
			return
		}
		in.ID = chi.URLParam(r, "id")
		bm, err := d.Bookmarks.UpdateBookmark(r.Context(), &in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, bookmarkResponse{Bookmark: bm})
	}
}

// DeleteBookmark removes a bookmark.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Bookmarks.DeleteBookmark(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
