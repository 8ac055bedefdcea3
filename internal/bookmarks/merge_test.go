package bookmarks

import (
	"testing"

	"github.com/opsdeck/opsdeck/internal/domain"
)

func TestMergeServerWinsOnSharedIDs(t *testing.T) {
	api := []*domain.Category{
		{ID: "1", Name: "Tools (server)", Bookmarks: []*domain.Bookmark{
			{ID: "10", Title: "Nmap", URL: "https://nmap.org", CategoryID: "1"},
		}},
	}
	local := []*domain.Category{
		{ID: "1", Name: "Tools (local)", Bookmarks: []*domain.Bookmark{
			{ID: "10", Title: "Nmap (stale)", URL: "https://nmap.org", CategoryID: "1"},
		}},
	}

	merged := MergeCategories(api, local)
	if len(merged) != 1 {
		t.Fatalf("expected 1 category, got %d", len(merged))
	}
	if merged[0].Name != "Tools (server)" {
		t.Errorf("expected server category to win, got %q", merged[0].Name)
	}
	if len(merged[0].Bookmarks) != 1 || merged[0].Bookmarks[0].Title != "Nmap" {
		t.Errorf("expected server bookmark to win, got %+v", merged[0].Bookmarks)
	}
}

func TestMergePreservesLocalOnlyEntries(t *testing.T) {
	api := []*domain.Category{
		{ID: "1", Name: "Tools", Bookmarks: []*domain.Bookmark{
			{ID: "10", Title: "Nmap", URL: "https://nmap.org", CategoryID: "1"},
		}},
	}
	tempBm := domain.NewTemporaryID()
	tempCat := domain.NewTemporaryID()
	local := []*domain.Category{
		{ID: "1", Name: "Tools", Bookmarks: []*domain.Bookmark{
			{ID: tempBm, Title: "Offline Add", URL: "https://example.com", CategoryID: "1"},
		}},
		{ID: tempCat, Name: "Offline Category"},
	}

	merged := MergeCategories(api, local)
	if len(merged) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(merged))
	}
	if len(merged[0].Bookmarks) != 2 {
		t.Fatalf("expected local-only bookmark appended, got %d", len(merged[0].Bookmarks))
	}
	if merged[0].Bookmarks[1].ID != tempBm {
		t.Errorf("expected local bookmark after server ones, got %q", merged[0].Bookmarks[1].ID)
	}
	if merged[1].ID != tempCat {
		t.Errorf("expected local-only category appended, got %q", merged[1].ID)
	}
}

func TestMergeDoesNotAliasInputs(t *testing.T) {
	api := []*domain.Category{
		{ID: "1", Name: "Tools", Bookmarks: []*domain.Bookmark{
			{ID: "10", Title: "Nmap", URL: "https://nmap.org", CategoryID: "1"},
		}},
	}
	merged := MergeCategories(api, nil)
	merged[0].Name = "Mutated"
	merged[0].Bookmarks[0].Title = "Mutated"

	if api[0].Name != "Tools" || api[0].Bookmarks[0].Title != "Nmap" {
		t.Error("merge result aliases its inputs")
	}
}
