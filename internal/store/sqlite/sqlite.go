// Package sqlite implements the bookmark store on a local sqlite file, the
// durable indexed backend. Display order is materialized in a position
// column assigned at first insert and preserved across upserts.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/opsdeck/opsdeck/internal/domain"
	"github.com/opsdeck/opsdeck/internal/store"
)

const lastSyncKey = "lastSync"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id       TEXT PRIMARY KEY,
		name     TEXT NOT NULL,
		icon     TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bookmarks (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		url         TEXT NOT NULL,
		color       TEXT NOT NULL DEFAULT '',
		icon        TEXT NOT NULL DEFAULT '',
		category_id TEXT NOT NULL,
		position    INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookmarks_category ON bookmarks(category_id)`,
	`CREATE TABLE IF NOT EXISTS sync_info (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}

// Store is the sqlite-backed bookmark store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and applies the
// schema. The parent directory is created when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) GetAllCategoriesWithBookmarks(ctx context.Context) ([]*domain.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, icon FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	index := make(map[string]*domain.Category)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
		index[c.ID] = &c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	bmRows, err := s.db.QueryContext(ctx,
		`SELECT id, title, url, color, icon, category_id FROM bookmarks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer bmRows.Close()

	for bmRows.Next() {
		var b domain.Bookmark
		if err := bmRows.Scan(&b.ID, &b.Title, &b.URL, &b.Color, &b.Icon, &b.CategoryID); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		// Bookmarks whose category is gone are not rendered.
		if cat, ok := index[b.CategoryID]; ok {
			cat.Bookmarks = append(cat.Bookmarks, &b)
		}
	}
	if err := bmRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookmarks: %w", err)
	}

	return categories, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, icon FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Icon)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

func (s *Store) GetBookmark(ctx context.Context, id string) (*domain.Bookmark, error) {
	var b domain.Bookmark
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, url, color, icon, category_id FROM bookmarks WHERE id = ?`, id).
		Scan(&b.ID, &b.Title, &b.URL, &b.Color, &b.Icon, &b.CategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("bookmark %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}
	return &b, nil
}

func (s *Store) SaveCategory(ctx context.Context, c *domain.Category) (string, error) {
	if c.ID == "" {
		c.ID = domain.NewTemporaryID()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, icon, position)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM categories))
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, icon = excluded.icon`,
		c.ID, c.Name, c.Icon)
	if err != nil {
		return "", fmt.Errorf("failed to save category: %w", err)
	}
	return c.ID, nil
}

func (s *Store) SaveBookmark(ctx context.Context, b *domain.Bookmark) (string, error) {
	if b.ID == "" {
		b.ID = domain.NewTemporaryID()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookmarks (id, title, url, color, icon, category_id, position)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM bookmarks))
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			color = excluded.color,
			icon = excluded.icon,
			category_id = excluded.category_id`,
		b.ID, b.Title, b.URL, b.Color, b.Icon, b.CategoryID)
	if err != nil {
		return "", fmt.Errorf("failed to save bookmark: %w", err)
	}
	return b.ID, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bookmarks WHERE category_id = ?`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to cascade bookmark deletion: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit category deletion: %w", err)
	}
	return nil
}

func (s *Store) DeleteBookmark(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return nil
}

func (s *Store) SetLastSyncTime(ctx context.Context, t time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_info (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		lastSyncKey, strconv.FormatInt(t.UnixMilli(), 10))
	if err != nil {
		return fmt.Errorf("failed to set last sync time: %w", err)
	}
	return nil
}

func (s *Store) LastSyncTime(ctx context.Context) (time.Time, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM sync_info WHERE key = ?`, lastSyncKey).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
	for _, table := range []string{"bookmarks", "categories", "sync_info"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
