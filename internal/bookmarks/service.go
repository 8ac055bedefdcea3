// Package bookmarks is the entry point for bookmark and category mutations.
// Every write lands in the local store first, is journaled in the ledger,
// and is pushed to the remote API opportunistically; callers get the local
// result back immediately and never wait on the network.
package bookmarks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opsdeck/opsdeck/internal/domain"
	"github.com/opsdeck/opsdeck/internal/ledger"
	"github.com/opsdeck/opsdeck/internal/logger"
	"github.com/opsdeck/opsdeck/internal/sources/seed"
	"github.com/opsdeck/opsdeck/internal/store"
)

// Drainer replays the pending-change ledger.
type Drainer interface {
	Drain(ctx context.Context) bool
}

// Fetcher pulls the server's full category set for the startup merge.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]*domain.Category, error)
}

// Status summarizes the sync state for status endpoints and the CLI.
type Status struct {
	Online       bool      `json:"online"`
	PendingCount int       `json:"pending_count"`
	LastSyncTime time.Time `json:"last_sync_time"`
}

// Service owns all bookmark and category mutations.
type Service struct {
	store   store.Store
	ledger  *ledger.Ledger
	drainer Drainer
	fetcher Fetcher // nil when running without a remote
	seeds   *seed.Loader
	log     logger.Logger
}

func New(st store.Store, led *ledger.Ledger, drainer Drainer, fetcher Fetcher, seeds *seed.Loader, log logger.Logger) *Service {
	return &Service{
		store:   st,
		ledger:  led,
		drainer: drainer,
		fetcher: fetcher,
		seeds:   seeds,
		log:     log,
	}
}

// Initialize pulls the server's categories (when a remote is configured),
// merges them with local state so offline creations survive, and seeds the
// starter set into an empty store. A failed fetch flips the connectivity
// flag and leaves local data untouched.
func (s *Service) Initialize(ctx context.Context) error {
	local, err := s.store.GetAllCategoriesWithBookmarks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load local bookmarks: %w", err)
	}

	if s.fetcher != nil {
		remote, err := s.fetcher.FetchAll(ctx)
		if err != nil {
			s.log.Warn("remote fetch failed, using local bookmarks", logger.Error(err))
			s.ledger.SetOnline(false)
		} else {
			s.ledger.SetOnline(true)
			if len(remote) > 0 {
				merged := MergeCategories(remote, local)
				if err := s.saveCategories(ctx, merged); err != nil {
					return fmt.Errorf("failed to persist merged bookmarks: %w", err)
				}
				local = merged
			}
			s.ledger.SetLastSyncTime(time.Now())
		}
	}

	if len(local) == 0 {
		if err := s.seedDefaults(ctx); err != nil {
			return fmt.Errorf("failed to seed bookmarks: %w", err)
		}
	}
	return nil
}

// List returns every category with its bookmarks in display order.
func (s *Service) List(ctx context.Context) ([]*domain.Category, error) {
	return s.store.GetAllCategoriesWithBookmarks(ctx)
}

// GetBookmark returns a single bookmark by id.
func (s *Service) GetBookmark(ctx context.Context, id string) (*domain.Bookmark, error) {
	return s.store.GetBookmark(ctx, id)
}

// AddBookmark validates and stores a new bookmark under a temporary id and
// queues its creation for sync. The local copy is returned immediately.
func (s *Service) AddBookmark(ctx context.Context, b *domain.Bookmark) (*domain.Bookmark, error) {
	b.URL = domain.NormalizeURL(b.URL)
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetCategory(ctx, b.CategoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: category %s does not exist", domain.ErrValidation, b.CategoryID)
		}
		return nil, err
	}

	b.ID = domain.NewTemporaryID()
	if _, err := s.store.SaveBookmark(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to save bookmark: %w", err)
	}

	cp := *b
	s.track(domain.PendingChange{
		ID:         b.ID,
		Type:       domain.ChangeAdd,
		EntityType: domain.EntityBookmark,
		Bookmark:   &cp,
	})
	return b, nil
}

// UpdateBookmark writes the new state locally and queues the update.
func (s *Service) UpdateBookmark(ctx context.Context, b *domain.Bookmark) (*domain.Bookmark, error) {
	b.URL = domain.NormalizeURL(b.URL)
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetBookmark(ctx, b.ID); err != nil {
		return nil, err
	}

	if _, err := s.store.SaveBookmark(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to save bookmark: %w", err)
	}

	cp := *b
	s.track(domain.PendingChange{
		ID:         b.ID,
		Type:       domain.ChangeUpdate,
		EntityType: domain.EntityBookmark,
		Bookmark:   &cp,
	})
	return b, nil
}

// DeleteBookmark removes the bookmark locally right away and queues the
// remote delete.
func (s *Service) DeleteBookmark(ctx context.Context, id string) error {
	if err := s.store.DeleteBookmark(ctx, id); err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	s.track(domain.PendingChange{
		ID:         id,
		Type:       domain.ChangeDelete,
		EntityType: domain.EntityBookmark,
	})
	return nil
}

// AddCategory validates and stores a new category under a temporary id and
// queues its creation for sync.
func (s *Service) AddCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	c.Icon = domain.NormalizeIcon(c.Icon)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	c.ID = domain.NewTemporaryID()
	c.Bookmarks = nil
	if _, err := s.store.SaveCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save category: %w", err)
	}

	cp := *c
	s.track(domain.PendingChange{
		ID:         c.ID,
		Type:       domain.ChangeAdd,
		EntityType: domain.EntityCategory,
		Category:   &cp,
	})
	return c, nil
}

// UpdateCategory writes the new state locally and queues the update.
func (s *Service) UpdateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	c.Icon = domain.NormalizeIcon(c.Icon)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetCategory(ctx, c.ID); err != nil {
		return nil, err
	}

	c.Bookmarks = nil
	if _, err := s.store.SaveCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save category: %w", err)
	}

	cp := *c
	s.track(domain.PendingChange{
		ID:         c.ID,
		Type:       domain.ChangeUpdate,
		EntityType: domain.EntityCategory,
		Category:   &cp,
	})
	return c, nil
}

// DeleteCategory removes the category and all its bookmarks locally and
// queues the remote delete. The cascade happens in the store.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	s.track(domain.PendingChange{
		ID:         id,
		Type:       domain.ChangeDelete,
		EntityType: domain.EntityCategory,
	})
	return nil
}

// SyncNow forces a drain and reports whether the pass was clean.
func (s *Service) SyncNow(ctx context.Context) bool {
	if s.drainer == nil {
		return false
	}
	return s.drainer.Drain(ctx)
}

// Status reports connectivity, queue depth and the last sync time.
func (s *Service) Status(_ context.Context) Status {
	return Status{
		Online:       s.ledger.Online(),
		PendingCount: s.ledger.PendingCount(),
		LastSyncTime: s.ledger.LastSyncTime(),
	}
}

// Reset wipes local bookmark data and the ledger.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	s.ledger.Reset()
	return nil
}

// track journals the change and kicks a background drain while online.
// The caller is never blocked on the network.
func (s *Service) track(ch domain.PendingChange) {
	s.ledger.Track(ch)
	if s.drainer != nil && s.ledger.Online() {
		go s.drainer.Drain(context.Background())
	}
}

func (s *Service) seedDefaults(ctx context.Context) error {
	config, err := s.seeds.Load()
	if err != nil {
		return err
	}
	cats, err := seed.NewMapper().MapCategories(config)
	if err != nil {
		return err
	}
	s.log.Info("seeding default bookmarks", logger.Int("categories", len(cats)))
	return s.saveCategories(ctx, cats)
}

// saveCategories upserts categories and their bookmarks without touching
// the ledger; this is bulk persistence, not a user mutation.
func (s *Service) saveCategories(ctx context.Context, cats []*domain.Category) error {
	for _, cat := range cats {
		if _, err := s.store.SaveCategory(ctx, cat); err != nil {
			return err
		}
		for _, bm := range cat.Bookmarks {
			if _, err := s.store.SaveBookmark(ctx, bm); err != nil {
				return err
			}
		}
	}
	return nil
}
