// Package redis implements the bookmark store on Redis. Entities are stored
// as JSON strings keyed by ID, with two lists preserving display order. This
// backend is for dashboards that already run a Redis instance and want the
// local state shared across restarts of the daemon.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opsdeck/opsdeck/internal/domain"
	"github.com/opsdeck/opsdeck/internal/store"
)

// Store is the Redis-backed bookmark store.
type Store struct {
	client *redis.Client
}

// New wraps an already-connected Redis client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) GetAllCategoriesWithBookmarks(ctx context.Context) ([]*domain.Category, error) {
	catIDs, err := s.client.LRange(ctx, KeyCategoryOrder, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get category order: %w", err)
	}

	categories := make([]*domain.Category, 0, len(catIDs))
	index := make(map[string]*domain.Category, len(catIDs))
	for _, id := range catIDs {
		cat, err := s.GetCategory(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		categories = append(categories, cat)
		index[cat.ID] = cat
	}

	bmIDs, err := s.client.LRange(ctx, KeyBookmarkOrder, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark order: %w", err)
	}
	for _, id := range bmIDs {
		bm, err := s.GetBookmark(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if cat, ok := index[bm.CategoryID]; ok {
			cat.Bookmarks = append(cat.Bookmarks, bm)
		}
	}

	return categories, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	data, err := s.client.Get(ctx, CategoryKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("category %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	var cat domain.Category
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to unmarshal category: %w", err)
	}
	cat.Bookmarks = nil
	return &cat, nil
}

func (s *Store) GetBookmark(ctx context.Context, id string) (*domain.Bookmark, error) {
	data, err := s.client.Get(ctx, BookmarkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("bookmark %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}

	var bm domain.Bookmark
	if err := json.Unmarshal(data, &bm); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookmark: %w", err)
	}
	return &bm, nil
}

func (s *Store) SaveCategory(ctx context.Context, c *domain.Category) (string, error) {
	if c.ID == "" {
		c.ID = domain.NewTemporaryID()
	}
	cp := *c
	cp.Bookmarks = nil
	data, err := json.Marshal(&cp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal category: %w", err)
	}

	existed, err := s.client.Exists(ctx, CategoryKey(cp.ID)).Result()
	if err != nil {
		return "", fmt.Errorf("failed to check category existence: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, CategoryKey(cp.ID), data, 0)
	if existed == 0 {
		pipe.RPush(ctx, KeyCategoryOrder, cp.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to save category: %w", err)
	}
	return cp.ID, nil
}

func (s *Store) SaveBookmark(ctx context.Context, b *domain.Bookmark) (string, error) {
	if b.ID == "" {
		b.ID = domain.NewTemporaryID()
	}
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("failed to marshal bookmark: %w", err)
	}

	existed, err := s.client.Exists(ctx, BookmarkKey(b.ID)).Result()
	if err != nil {
		return "", fmt.Errorf("failed to check bookmark existence: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, BookmarkKey(b.ID), data, 0)
	if existed == 0 {
		pipe.RPush(ctx, KeyBookmarkOrder, b.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to save bookmark: %w", err)
	}
	return b.ID, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	// Cascade: collect bookmarks pointing at this category before deleting.
	bmIDs, err := s.client.LRange(ctx, KeyBookmarkOrder, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to get bookmark order: %w", err)
	}

	pipe := s.client.Pipeline()
	for _, bmID := range bmIDs {
		bm, err := s.GetBookmark(ctx, bmID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return err
		}
		if bm.CategoryID == id {
			pipe.Del(ctx, BookmarkKey(bmID))
			pipe.LRem(ctx, KeyBookmarkOrder, 0, bmID)
		}
	}
	pipe.Del(ctx, CategoryKey(id))
	pipe.LRem(ctx, KeyCategoryOrder, 0, id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (s *Store) DeleteBookmark(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, BookmarkKey(id))
	pipe.LRem(ctx, KeyBookmarkOrder, 0, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return nil
}

func (s *Store) SetLastSyncTime(ctx context.Context, t time.Time) error {
	if err := s.client.Set(ctx, KeyLastSync, strconv.FormatInt(t.UnixMilli(), 10), 0).Err(); err != nil {
		return fmt.Errorf("failed to set last sync time: %w", err)
	}
	return nil
}

func (s *Store) LastSyncTime(ctx context.Context) (time.Time, error) {
	raw, err := s.client.Get(ctx, KeyLastSync).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to get last sync time: %w", err)
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse last sync time: %w", err)
	}
	return time.UnixMilli(ms), nil
}

func (s *Store) ClearAll(ctx context.Context) error {
	for _, key := range []string{KeyCategoryOrder, KeyBookmarkOrder} {
		ids, err := s.client.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", key, err)
		}
		pipe := s.client.Pipeline()
		for _, id := range ids {
			if key == KeyCategoryOrder {
				pipe.Del(ctx, CategoryKey(id))
			} else {
				pipe.Del(ctx, BookmarkKey(id))
			}
		}
		pipe.Del(ctx, key)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	if err := s.client.Del(ctx, KeyLastSync).Err(); err != nil {
		return fmt.Errorf("failed to clear last sync time: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
