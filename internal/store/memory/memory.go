// Package memory implements the bookmark store as mutex-guarded in-process
// maps. It is the fallback backend when no durable store can be opened, and
// the fixture backend in tests. Data does not survive a restart.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/opsdeck/opsdeck/internal/domain"
	"github.com/opsdeck/opsdeck/internal/store"
)

// Store keeps categories and bookmarks in memory, preserving insertion order
// through explicit order slices.
type Store struct {
	mu            sync.RWMutex
	categories    map[string]*domain.Category
	bookmarks     map[string]*domain.Bookmark
	categoryOrder []string
	bookmarkOrder []string
	lastSync      time.Time
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		categories: make(map[string]*domain.Category),
		bookmarks:  make(map[string]*domain.Bookmark),
	}
}

func (s *Store) GetAllCategoriesWithBookmarks(_ context.Context) ([]*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Category, 0, len(s.categoryOrder))
	for _, catID := range s.categoryOrder {
		cat, ok := s.categories[catID]
		if !ok {
			continue
		}
		cp := *cat
		cp.Bookmarks = nil
		for _, bmID := range s.bookmarkOrder {
			bm, ok := s.bookmarks[bmID]
			if !ok || bm.CategoryID != catID {
				continue
			}
			bc := *bm
			cp.Bookmarks = append(cp.Bookmarks, &bc)
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cat, ok := s.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", id, store.ErrNotFound)
	}
	cp := *cat
	return &cp, nil
}

func (s *Store) GetBookmark(_ context.Context, id string) (*domain.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bm, ok := s.bookmarks[id]
	if !ok {
		return nil, fmt.Errorf("bookmark %s: %w", id, store.ErrNotFound)
	}
	cp := *bm
	return &cp, nil
}

func (s *Store) SaveCategory(_ context.Context, c *domain.Category) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = domain.NewTemporaryID()
	}
	cp := *c
	cp.Bookmarks = nil
	if _, exists := s.categories[cp.ID]; !exists {
		s.categoryOrder = append(s.categoryOrder, cp.ID)
	}
	s.categories[cp.ID] = &cp
	return cp.ID, nil
}

func (s *Store) SaveBookmark(_ context.Context, b *domain.Bookmark) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = domain.NewTemporaryID()
	}
	cp := *b
	if _, exists := s.bookmarks[cp.ID]; !exists {
		s.bookmarkOrder = append(s.bookmarkOrder, cp.ID)
	}
	s.bookmarks[cp.ID] = &cp
	return cp.ID, nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.categories, id)
	s.categoryOrder = removeID(s.categoryOrder, id)

	for bmID, bm := range s.bookmarks {
		if bm.CategoryID == id {
			delete(s.bookmarks, bmID)
			s.bookmarkOrder = removeID(s.bookmarkOrder, bmID)
		}
	}
	return nil
}

func (s *Store) DeleteBookmark(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.bookmarks, id)
	s.bookmarkOrder = removeID(s.bookmarkOrder, id)
	return nil
}

func (s *Store) SetLastSyncTime(_ context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSync = t
	return nil
}

func (s *Store) LastSyncTime(_ context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync, nil
}

func (s *Store) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories = make(map[string]*domain.Category)
	s.bookmarks = make(map[string]*domain.Bookmark)
	s.categoryOrder = nil
	s.bookmarkOrder = nil
	s.lastSync = time.Time{}
	return nil
}

func (s *Store) Close() error { return nil }

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
