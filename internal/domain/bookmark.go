package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is returned when user input is missing required fields.
// It is always surfaced synchronously, before any local or remote mutation.
var ErrValidation = errors.New("validation failed")

// Bookmark is a single saved link. CategoryID must reference an existing
// Category at creation time.
type Bookmark struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Color      string `json:"color,omitempty"`
	Icon       string `json:"icon,omitempty"`
	CategoryID string `json:"category_id"`
}

// Category groups bookmarks. Bookmarks is populated in display order when
// the category is fetched with expansion, nil otherwise.
type Category struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Icon      string      `json:"icon"`
	Bookmarks []*Bookmark `json:"bookmarks,omitempty"`
}

// Icon names known to the dashboard UI.
var knownIcons = map[string]bool{
	"shield-alert": true,
	"book-open":    true,
	"newspaper":    true,
	"code":         true,
	"wrench":       true,
	"globe":        true,
	"terminal":     true,
	"lock":         true,
}

// DefaultIcon is used when a category carries no icon or an unknown one.
const DefaultIcon = "globe"

// ValidIcon reports whether name belongs to the icon enumeration.
func ValidIcon(name string) bool {
	return knownIcons[name]
}

// NormalizeIcon maps unknown or empty icon names to DefaultIcon.
func NormalizeIcon(name string) string {
	if ValidIcon(name) {
		return name
	}
	return DefaultIcon
}

// NormalizeURL prefixes https:// when the input has no scheme.
func NormalizeURL(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}

// Validate checks the fields required before a bookmark may be persisted.
func (b *Bookmark) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("%w: bookmark title is required", ErrValidation)
	}
	if strings.TrimSpace(b.URL) == "" {
		return fmt.Errorf("%w: bookmark url is required", ErrValidation)
	}
	if strings.TrimSpace(b.CategoryID) == "" {
		return fmt.Errorf("%w: bookmark category_id is required", ErrValidation)
	}
	return nil
}

// Validate checks the fields required before a category may be persisted.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name is required", ErrValidation)
	}
	return nil
}

// Clone returns a deep copy, so callers can mutate without affecting stored state.
func (c *Category) Clone() *Category {
	cp := *c
	if c.Bookmarks != nil {
		cp.Bookmarks = make([]*Bookmark, len(c.Bookmarks))
		for i, b := range c.Bookmarks {
			bc := *b
			cp.Bookmarks[i] = &bc
		}
	}
	return &cp
}
