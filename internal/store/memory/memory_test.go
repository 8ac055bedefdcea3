package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opsdeck/opsdeck/internal/domain"
	"github.com/opsdeck/opsdeck/internal/store"
)

func TestSaveAndGetCategory(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.SaveCategory(ctx, &domain.Category{ID: "tools", Name: "Tools", Icon: "wrench"})
	if err != nil {
		t.Fatalf("SaveCategory: %v", err)
	}
	if id != "tools" {
		t.Errorf("expected id tools, got %q", id)
	}

	cat, err := s.GetCategory(ctx, "tools")
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if cat.Name != "Tools" || cat.Icon != "wrench" {
		t.Errorf("unexpected category: %+v", cat)
	}
}

func TestSaveCategoryGeneratesID(t *testing.T) {
	s := New()
	id, err := s.SaveCategory(context.Background(), &domain.Category{Name: "Tools"})
	if err != nil {
		t.Fatalf("SaveCategory: %v", err)
	}
	if !domain.IsTemporaryID(id) {
		t.Errorf("expected generated id to classify as temporary, got %q", id)
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetCategory(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for category, got %v", err)
	}
	if _, err := s.GetBookmark(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for bookmark, got %v", err)
	}
}

func TestInsertionOrderPreserved(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, c := range []*domain.Category{
		{ID: "recon", Name: "Recon"},
		{ID: "tools", Name: "Tools"},
		{ID: "news", Name: "News"},
	} {
		if _, err := s.SaveCategory(ctx, c); err != nil {
			t.Fatalf("SaveCategory: %v", err)
		}
	}
	// Re-save the first category; it must keep its position.
	if _, err := s.SaveCategory(ctx, &domain.Category{ID: "recon", Name: "Reconnaissance"}); err != nil {
		t.Fatalf("SaveCategory: %v", err)
	}

	for _, b := range []*domain.Bookmark{
		{ID: "b1", Title: "Nmap", URL: "https://nmap.org", CategoryID: "tools"},
		{ID: "b2", Title: "Shodan", URL: "https://shodan.io", CategoryID: "recon"},
		{ID: "b3", Title: "Burp", URL: "https://portswigger.net", CategoryID: "tools"},
	} {
		if _, err := s.SaveBookmark(ctx, b); err != nil {
			t.Fatalf("SaveBookmark: %v", err)
		}
	}

	cats, err := s.GetAllCategoriesWithBookmarks(ctx)
	if err != nil {
		t.Fatalf("GetAllCategoriesWithBookmarks: %v", err)
	}
	if len(cats) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(cats))
	}
	if cats[0].ID != "recon" || cats[1].ID != "tools" || cats[2].ID != "news" {
		t.Errorf("unexpected category order: %s %s %s", cats[0].ID, cats[1].ID, cats[2].ID)
	}
	if cats[0].Name != "Reconnaissance" {
		t.Errorf("expected upsert to update name, got %q", cats[0].Name)
	}

	tools := cats[1]
	if len(tools.Bookmarks) != 2 {
		t.Fatalf("expected 2 bookmarks in tools, got %d", len(tools.Bookmarks))
	}
	if tools.Bookmarks[0].ID != "b1" || tools.Bookmarks[1].ID != "b3" {
		t.Errorf("unexpected bookmark order: %s %s", tools.Bookmarks[0].ID, tools.Bookmarks[1].ID)
	}
}

func TestDeleteCategoryCascades(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.SaveCategory(ctx, &domain.Category{ID: "tools", Name: "Tools"}); err != nil {
		t.Fatalf("SaveCategory: %v", err)
	}
	if _, err := s.SaveCategory(ctx, &domain.Category{ID: "news", Name: "News"}); err != nil {
		t.Fatalf("SaveCategory: %v", err)
	}
	if _, err := s.SaveBookmark(ctx, &domain.Bookmark{ID: "b1", Title: "Nmap", URL: "https://nmap.org", CategoryID: "tools"}); err != nil {
		t.Fatalf("SaveBookmark: %v", err)
	}
	if _, err := s.SaveBookmark(ctx, &domain.Bookmark{ID: "b2", Title: "HN", URL: "https://news.ycombinator.com", CategoryID: "news"}); err != nil {
		t.Fatalf("SaveBookmark: %v", err)
	}

	if err := s.DeleteCategory(ctx, "tools"); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	if _, err := s.GetBookmark(ctx, "b1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected cascaded bookmark to be gone, got %v", err)
	}
	if _, err := s.GetBookmark(ctx, "b2"); err != nil {
		t.Errorf("expected unrelated bookmark to survive, got %v", err)
	}
}

func TestReturnedCategoriesAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.SaveCategory(ctx, &domain.Category{ID: "tools", Name: "Tools"}); err != nil {
		t.Fatalf("SaveCategory: %v", err)
	}

	cats, err := s.GetAllCategoriesWithBookmarks(ctx)
	if err != nil {
		t.Fatalf("GetAllCategoriesWithBookmarks: %v", err)
	}
	cats[0].Name = "Mutated"

	cat, err := s.GetCategory(ctx, "tools")
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if cat.Name != "Tools" {
		t.Errorf("caller mutation leaked into store: %q", cat.Name)
	}
}

func TestLastSyncTimeRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	got, err := s.LastSyncTime(ctx)
	if err != nil {
		t.Fatalf("LastSyncTime: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("expected zero time before first sync, got %v", got)
	}

	now := time.Now().Truncate(time.Millisecond)
	if err := s.SetLastSyncTime(ctx, now); err != nil {
		t.Fatalf("SetLastSyncTime: %v", err)
	}
	got, err = s.LastSyncTime(ctx)
	if err != nil {
		t.Fatalf("LastSyncTime: %v", err)
	}
	if !got.Equal(now) {
		t.Errorf("expected %v, got %v", now, got)
	}
}

func TestClearAll(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.SaveCategory(ctx, &domain.Category{ID: "tools", Name: "Tools"}); err != nil {
		t.Fatalf("SaveCategory: %v", err)
	}
	if err := s.SetLastSyncTime(ctx, time.Now()); err != nil {
		t.Fatalf("SetLastSyncTime: %v", err)
	}

	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}

	cats, err := s.GetAllCategoriesWithBookmarks(ctx)
	if err != nil {
		t.Fatalf("GetAllCategoriesWithBookmarks: %v", err)
	}
	if len(cats) != 0 {
		t.Errorf("expected empty store after ClearAll, got %d categories", len(cats))
	}
	got, err := s.LastSyncTime(ctx)
	if err != nil {
		t.Fatalf("LastSyncTime: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("expected sync time reset, got %v", got)
	}
}
