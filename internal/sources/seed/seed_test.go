package seed

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	config, err := NewLoader("").Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(config.Categories) == 0 {
		t.Fatal("expected built-in defaults")
	}
	if config.Categories[0].ID != "security-tools" {
		t.Errorf("unexpected first default category: %q", config.Categories[0].ID)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.yaml")
	content := `categories:
  - id: homelab
    name: Homelab
    icon: globe
    bookmarks:
      - title: Proxmox
        url: pve.local:8006
        color: bg-orange-500
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	config, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(config.Categories) != 1 || config.Categories[0].Name != "Homelab" {
		t.Fatalf("unexpected config: %+v", config)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := NewLoader("/nonexistent/bookmarks.yaml").Load(); err == nil {
		t.Error("expected error for missing seed file")
	}
}

func TestMapCategories(t *testing.T) {
	config := Config{Categories: []Category{
		{
			Name: "Security News",
			Bookmarks: []Bookmark{
				{Title: "Krebs", URL: "krebsonsecurity.com"},
				{Title: "", URL: "https://skipped.example"},
			},
		},
		{Name: ""},
	}}

	cats, err := NewMapper().MapCategories(config)
	if err != nil {
		t.Fatalf("MapCategories: %v", err)
	}
	if len(cats) != 1 {
		t.Fatalf("expected 1 category, got %d", len(cats))
	}
	cat := cats[0]
	if cat.ID != "security-news" {
		t.Errorf("expected derived slug id, got %q", cat.ID)
	}
	if len(cat.Bookmarks) != 1 {
		t.Fatalf("expected untitled bookmark skipped, got %d", len(cat.Bookmarks))
	}
	bm := cat.Bookmarks[0]
	if bm.URL != "https://krebsonsecurity.com" {
		t.Errorf("expected normalized url, got %q", bm.URL)
	}
	if bm.CategoryID != "security-news" {
		t.Errorf("expected category reference set, got %q", bm.CategoryID)
	}
}

func TestDefaultsMapCleanly(t *testing.T) {
	cats, err := NewMapper().MapCategories(Defaults())
	if err != nil {
		t.Fatalf("MapCategories: %v", err)
	}
	if len(cats) != 5 {
		t.Errorf("expected 5 default categories, got %d", len(cats))
	}
	for _, cat := range cats {
		for _, bm := range cat.Bookmarks {
			if bm.CategoryID != cat.ID {
				t.Errorf("bookmark %s references %q, want %q", bm.ID, bm.CategoryID, cat.ID)
			}
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Security News", want: "security-news"},
		{in: "  Useful   Tools ", want: "useful-tools"},
		{in: "C2 Frameworks", want: "c2-frameworks"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
