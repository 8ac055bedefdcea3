// Package store defines the local persistence contract for bookmark data
// and selects between the available backends.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/opsdeck/opsdeck/internal/domain"
)

// ErrNotFound is returned when an entity id does not exist in the store.
var ErrNotFound = errors.New("not found")

// Store is the local persistence layer for categories and bookmarks.
// Implementations must preserve insertion order: categories are returned in
// the order they were first saved, and bookmarks likewise within each
// category. Save operations are idempotent upserts keyed by id and assign a
// generated temporary id when the entity carries none.
type Store interface {
	GetAllCategoriesWithBookmarks(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetBookmark(ctx context.Context, id string) (*domain.Bookmark, error)

	// SaveCategory upserts a category (without touching its bookmarks) and
	// returns the id it was stored under.
	SaveCategory(ctx context.Context, c *domain.Category) (string, error)
	SaveBookmark(ctx context.Context, b *domain.Bookmark) (string, error)

	// DeleteCategory removes the category and cascades to every bookmark
	// whose category_id matches.
	DeleteCategory(ctx context.Context, id string) error
	DeleteBookmark(ctx context.Context, id string) error

	SetLastSyncTime(ctx context.Context, t time.Time) error
	LastSyncTime(ctx context.Context) (time.Time, error)

	// ClearAll wipes categories, bookmarks and sync metadata (logout/reset).
	ClearAll(ctx context.Context) error

	Close() error
}
