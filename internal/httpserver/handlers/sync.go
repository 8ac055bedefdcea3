package handlers

import (
	"net/http"

	"github.com/opsdeck/opsdeck/internal/bookmarks"
	"github.com/opsdeck/opsdeck/internal/httpserver/deps"
)

type syncResponse struct {
	Clean  bool             `json:"clean"`
	Status bookmarks.Status `json:"status"`
}

// SyncNow forces a drain of the pending-change ledger and reports the
// resulting state. Clean is false when at least one change stayed queued.
func SyncNow(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clean := d.Bookmarks.SyncNow(r.Context())
		writeJSON(w, http.StatusOK, syncResponse{
			Clean:  clean,
			Status: d.Bookmarks.Status(r.Context()),
		})
	}
}

// SyncStatus reports connectivity, queue depth and last sync time.
func SyncStatus(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Bookmarks.Status(r.Context()))
	}
}
