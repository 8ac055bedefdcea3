// Package sync replays the pending-change ledger against the remote API.
// One drain walks a snapshot of the ledger in timestamp order, applies each
// change, removes confirmed entries immediately, and leaves failed ones
// queued for the next attempt.
package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/opsdeck/opsdeck/internal/domain"
	"github.com/opsdeck/opsdeck/internal/ledger"
	"github.com/opsdeck/opsdeck/internal/logger"
	"github.com/opsdeck/opsdeck/internal/remote"
	"github.com/opsdeck/opsdeck/internal/store"
)

// API is the slice of the remote client the engine needs.
type API interface {
	CreateBookmark(ctx context.Context, b *domain.Bookmark) (*domain.Bookmark, error)
	UpdateBookmark(ctx context.Context, b *domain.Bookmark) error
	DeleteBookmark(ctx context.Context, id string) error
	CreateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
}

// outcome classifies what happened to a single change during a drain.
type outcome int

const (
	applied outcome = iota // confirmed (or provably moot), remove from ledger
	skipped                // not attemptable yet, leave queued, not a failure
	failed                 // request failed, leave queued, report the drain dirty
)

// Engine drains the ledger. A mutex serializes drains: overlapping triggers
// (a tracked change and an online transition firing together) must not
// replay the same entry twice.
type Engine struct {
	store  store.Store
	ledger *ledger.Ledger
	api    API
	log    logger.Logger

	mu sync.Mutex
}

func New(st store.Store, led *ledger.Ledger, api API, log logger.Logger) *Engine {
	return &Engine{store: st, ledger: led, api: api, log: log}
}

// Drain replays every pending change once. It returns true only when every
// change in the pass was confirmed; a single failure makes the whole pass
// report false while the other changes still go through. Offline, an empty
// ledger, or a drain already in flight all make it a no-op returning false.
func (e *Engine) Drain(ctx context.Context) bool {
	if !e.mu.TryLock() {
		e.log.Debug("drain already in flight, skipping")
		return false
	}
	defer e.mu.Unlock()

	if !e.ledger.Online() {
		return false
	}
	snapshot := e.ledger.Snapshot()
	if len(snapshot) == 0 {
		return false
	}

	e.log.Info("draining pending changes", logger.Int("count", len(snapshot)))

	hadErrors := false
	appliedCount := 0
	for i := range snapshot {
		ch := snapshot[i]

		var (
			out outcome
			err error
		)
		switch ch.EntityType {
		case domain.EntityBookmark:
			out, err = e.applyBookmark(ctx, snapshot, i)
		case domain.EntityCategory:
			out, err = e.applyCategory(ctx, snapshot, i)
		default:
			// Unknown entries cannot ever be applied; drop them.
			e.log.Warn("dropping change with unknown entity type",
				logger.String("entity_type", string(ch.EntityType)),
				logger.String("id", ch.ID))
			out = applied
		}

		switch out {
		case applied:
			e.ledger.Remove(ch)
			appliedCount++
		case skipped:
			e.log.Debug("change not attemptable yet, leaving queued",
				logger.String("id", ch.ID),
				logger.String("type", string(ch.Type)))
		case failed:
			hadErrors = true
			e.log.Warn("failed to apply change, leaving queued",
				logger.String("id", ch.ID),
				logger.String("type", string(ch.Type)),
				logger.String("entity_type", string(ch.EntityType)),
				logger.Error(err))
		}
	}

	// The sync time marks the attempt, not a fully clean pass.
	now := time.Now()
	e.ledger.SetLastSyncTime(now)
	if err := e.store.SetLastSyncTime(ctx, now); err != nil {
		e.log.Warn("failed to persist last sync time", logger.Error(err))
	}

	e.log.Info("drain finished",
		logger.Int("applied", appliedCount),
		logger.Int("remaining", e.ledger.PendingCount()),
		logger.Bool("clean", !hadErrors))

	return !hadErrors
}

func (e *Engine) applyBookmark(ctx context.Context, snapshot []domain.PendingChange, i int) (outcome, error) {
	ch := snapshot[i]
	temp := domain.IsTemporaryID(ch.ID)

	switch {
	case ch.Type == domain.ChangeDelete:
		if temp {
			// The server never saw this bookmark; nothing to delete.
			return applied, nil
		}
		err := e.api.DeleteBookmark(ctx, ch.ID)
		if err != nil && !remote.IsNotFound(err) {
			return failed, err
		}
		return applied, nil

	case ch.Type == domain.ChangeAdd || temp:
		// An update against an id the server never assigned must be sent
		// as a create; a PUT would just 404.
		return e.createBookmark(ctx, snapshot, i)

	default: // update on a server-assigned id
		if ch.Bookmark == nil {
			return applied, nil
		}
		if out, err := e.checkCategoryRef(ctx, ch); out != applied || err != nil {
			return out, err
		}
		if err := e.api.UpdateBookmark(ctx, ch.Bookmark); err != nil {
			return failed, err
		}
		return applied, nil
	}
}

func (e *Engine) createBookmark(ctx context.Context, snapshot []domain.PendingChange, i int) (outcome, error) {
	ch := snapshot[i]
	if ch.Bookmark == nil {
		return applied, nil
	}
	if out, err := e.checkCategoryRef(ctx, ch); out != applied || err != nil {
		return out, err
	}

	created, err := e.api.CreateBookmark(ctx, ch.Bookmark)
	if err != nil {
		return failed, err
	}

	if domain.IsTemporaryID(ch.ID) && created.ID != ch.ID {
		if err := e.reconcileBookmarkID(ctx, ch.ID, created); err != nil {
			e.log.Warn("failed to reconcile bookmark id locally",
				logger.String("temp_id", ch.ID),
				logger.String("server_id", created.ID),
				logger.Error(err))
		}
		// Drop this entry under its old identity before renaming the rest,
		// otherwise the rename would orphan it in the ledger.
		e.ledger.Remove(ch)
		rewriteEntityID(snapshot[i+1:], ch.ID, created.ID)
		e.ledger.RewriteEntityID(ch.ID, created.ID)
	}
	return applied, nil
}

// checkCategoryRef guards a bookmark create/update whose category is not
// yet known to the server. The change waits until the category's own create
// has gone through and rewritten the reference; if both the category and
// the bookmark are gone locally the change is moot.
func (e *Engine) checkCategoryRef(ctx context.Context, ch domain.PendingChange) (outcome, error) {
	if !domain.IsTemporaryID(ch.Bookmark.CategoryID) {
		return applied, nil
	}
	if _, err := e.store.GetCategory(ctx, ch.Bookmark.CategoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if _, berr := e.store.GetBookmark(ctx, ch.ID); errors.Is(berr, store.ErrNotFound) {
				// Category and bookmark both deleted locally; nothing to sync.
				return applied, nil
			}
			return skipped, nil
		}
		return skipped, nil
	}
	// Category still exists locally under a temporary id: its create has
	// not succeeded yet, so the server cannot accept this reference.
	return skipped, nil
}

func (e *Engine) applyCategory(ctx context.Context, snapshot []domain.PendingChange, i int) (outcome, error) {
	ch := snapshot[i]
	temp := domain.IsTemporaryID(ch.ID)

	switch {
	case ch.Type == domain.ChangeDelete:
		if temp {
			return applied, nil
		}
		err := e.api.DeleteCategory(ctx, ch.ID)
		if err != nil && !remote.IsNotFound(err) {
			return failed, err
		}
		return applied, nil

	case ch.Type == domain.ChangeAdd || temp:
		return e.createCategory(ctx, snapshot, i)

	default:
		if ch.Category == nil {
			return applied, nil
		}
		if err := e.api.UpdateCategory(ctx, ch.Category); err != nil {
			return failed, err
		}
		return applied, nil
	}
}

func (e *Engine) createCategory(ctx context.Context, snapshot []domain.PendingChange, i int) (outcome, error) {
	ch := snapshot[i]
	if ch.Category == nil {
		return applied, nil
	}

	created, err := e.api.CreateCategory(ctx, ch.Category)
	if err != nil {
		return failed, err
	}

	if domain.IsTemporaryID(ch.ID) && created.ID != ch.ID {
		if err := e.reconcileCategoryID(ctx, ch.ID, created); err != nil {
			e.log.Warn("failed to reconcile category id locally",
				logger.String("temp_id", ch.ID),
				logger.String("server_id", created.ID),
				logger.Error(err))
		}
		e.ledger.Remove(ch)
		rewriteEntityID(snapshot[i+1:], ch.ID, created.ID)
		rewriteCategoryRef(snapshot[i+1:], ch.ID, created.ID)
		e.ledger.RewriteEntityID(ch.ID, created.ID)
		e.ledger.RewriteCategoryRef(ch.ID, created.ID)
	}
	return applied, nil
}

// reconcileBookmarkID swaps the local temporary record for the server's copy.
func (e *Engine) reconcileBookmarkID(ctx context.Context, tempID string, created *domain.Bookmark) error {
	if _, err := e.store.SaveBookmark(ctx, created); err != nil {
		return err
	}
	return e.store.DeleteBookmark(ctx, tempID)
}

// reconcileCategoryID swaps the local temporary category for the server's
// copy and repoints every bookmark that referenced the temporary id. The
// repointing happens before the temporary category is deleted so the
// cascade finds nothing left to remove.
func (e *Engine) reconcileCategoryID(ctx context.Context, tempID string, created *domain.Category) error {
	if _, err := e.store.SaveCategory(ctx, created); err != nil {
		return err
	}

	cats, err := e.store.GetAllCategoriesWithBookmarks(ctx)
	if err != nil {
		return err
	}
	for _, cat := range cats {
		if cat.ID != tempID {
			continue
		}
		for _, bm := range cat.Bookmarks {
			bm.CategoryID = created.ID
			if _, err := e.store.SaveBookmark(ctx, bm); err != nil {
				return err
			}
		}
	}

	return e.store.DeleteCategory(ctx, tempID)
}

func rewriteEntityID(changes []domain.PendingChange, oldID, newID string) {
	for i := range changes {
		ch := &changes[i]
		if ch.ID == oldID {
			ch.ID = newID
		}
		if ch.Bookmark != nil && ch.Bookmark.ID == oldID {
			ch.Bookmark.ID = newID
		}
		if ch.Category != nil && ch.Category.ID == oldID {
			ch.Category.ID = newID
		}
	}
}

func rewriteCategoryRef(changes []domain.PendingChange, oldID, newID string) {
	for i := range changes {
		if bm := changes[i].Bookmark; bm != nil && bm.CategoryID == oldID {
			bm.CategoryID = newID
		}
	}
}
