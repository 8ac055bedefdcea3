package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/opsdeck/opsdeck/internal/bookmarks"
	"github.com/opsdeck/opsdeck/internal/domain"
	"github.com/opsdeck/opsdeck/internal/httpserver/deps"
	"github.com/opsdeck/opsdeck/internal/ledger"
	"github.com/opsdeck/opsdeck/internal/logger"
	"github.com/opsdeck/opsdeck/internal/sources/seed"
	"github.com/opsdeck/opsdeck/internal/store/memory"
)

type noopDrainer struct{}

func (noopDrainer) Drain(context.Context) bool { return true }

func newTestRouter(t *testing.T) (chi.Router, *bookmarks.Service) {
	t.Helper()
	log := logger.New("error", false)
	st := memory.New()
	led := ledger.New(filepath.Join(t.TempDir(), "sync_state.json"), log)
	svc := bookmarks.New(st, led, noopDrainer{}, nil, seed.NewLoader(""), log)

	d := deps.Deps{
		Logger:    log,
		StartTime: time.Now(),
		Bookmarks: svc,
	}

	r := chi.NewRouter()
	r.Get("/api/bookmarks", ListBookmarks(d))
	r.Post("/api/bookmarks", CreateBookmark(d))
	r.Put("/api/bookmarks/{id}", UpdateBookmark(d))
	r.Delete("/api/bookmarks/{id}", DeleteBookmark(d))
	r.Post("/api/bookmarks/category", CreateCategory(d))
	r.Put("/api/bookmarks/category/{id}", UpdateCategory(d))
	r.Post("/api/bookmarks/category/{id}", UpdateCategory(d))
	r.Delete("/api/bookmarks/category/{id}", DeleteCategory(d))
	r.Post("/api/sync", SyncNow(d))
	r.Get("/api/sync/status", SyncStatus(d))
	r.Get("/healthz", Healthz(d))
	return r, svc
}

func doJSON(t *testing.T, r chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndListBookmarks(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/bookmarks/category", map[string]string{
		"name": "Tools", "icon": "wrench",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: status %d, body %s", rec.Code, rec.Body)
	}
	var catResp struct {
		Category domain.Category `json:"category"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &catResp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/bookmarks", map[string]string{
		"title": "Nmap", "url": "nmap.org", "category_id": catResp.Category.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create bookmark: status %d, body %s", rec.Code, rec.Body)
	}
	var bmResp struct {
		Bookmark domain.Bookmark `json:"bookmark"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &bmResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if bmResp.Bookmark.URL != "https://nmap.org" {
		t.Errorf("expected normalized url, got %q", bmResp.Bookmark.URL)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/bookmarks", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	var listResp struct {
		Categories []*domain.Category `json:"categories"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listResp.Categories) != 1 || len(listResp.Categories[0].Bookmarks) != 1 {
		t.Errorf("unexpected list: %s", rec.Body)
	}
}

func TestCreateBookmarkValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/bookmarks", map[string]string{
		"title": "", "url": "nmap.org", "category_id": "nope",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/bookmarks", bytes.NewBufferString("{not json"))
	rec2 := httptest.NewRecorder()
	r.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed json, got %d", rec2.Code)
	}
}

func TestUpdateMissingBookmarkIs404(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := doJSON(t, r, http.MethodPut, "/api/bookmarks/missing", map[string]string{
		"title": "X", "url": "https://x.org", "category_id": "c",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d (%s)", rec.Code, rec.Body)
	}
}

func TestCategoryUpdateAcceptsLegacyPost(t *testing.T) {
	r, svc := newTestRouter(t)
	cat, err := svc.AddCategory(context.Background(), &domain.Category{Name: "Tools"})
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}

	for _, method := range []string{http.MethodPut, http.MethodPost} {
		rec := doJSON(t, r, method, "/api/bookmarks/category/"+cat.ID, map[string]string{
			"name": "Renamed via " + method,
		})
		if rec.Code != http.StatusOK {
			t.Errorf("%s update: status %d, body %s", method, rec.Code, rec.Body)
		}
	}
}

func TestDeleteCategoryCascades(t *testing.T) {
	r, svc := newTestRouter(t)
	ctx := context.Background()

	cat, err := svc.AddCategory(ctx, &domain.Category{Name: "Tools"})
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	if _, err := svc.AddBookmark(ctx, &domain.Bookmark{Title: "Nmap", URL: "nmap.org", CategoryID: cat.ID}); err != nil {
		t.Fatalf("AddBookmark: %v", err)
	}

	rec := doJSON(t, r, http.MethodDelete, "/api/bookmarks/category/"+cat.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}

	cats, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(cats) != 0 {
		t.Errorf("expected empty store, got %+v", cats)
	}
}

func TestSyncEndpoints(t *testing.T) {
	r, svc := newTestRouter(t)
	if _, err := svc.AddCategory(context.Background(), &domain.Category{Name: "Tools"}); err != nil {
		t.Fatalf("AddCategory: %v", err)
	}

	rec := doJSON(t, r, http.MethodGet, "/api/sync/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	var st bookmarks.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.PendingCount != 1 {
		t.Errorf("expected 1 pending change, got %d", st.PendingCount)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/sync", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("sync: %d", rec.Code)
	}
	var resp struct {
		Clean bool `json:"clean"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Clean {
		t.Error("expected clean sync from noop drainer")
	}
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected ok, got %q", resp.Status)
	}
}
