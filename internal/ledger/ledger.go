// Package ledger records local mutations made while the remote API is
// unreachable, so they can be replayed once connectivity returns. The ledger
// is persisted as a JSON state file next to the bookmark database and
// survives daemon restarts.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/opsdeck/opsdeck/internal/domain"
	"github.com/opsdeck/opsdeck/internal/logger"
)

// state is the on-disk shape of the ledger.
type state struct {
	LastSyncTime   int64                  `json:"lastSyncTime"`
	PendingChanges []domain.PendingChange `json:"pendingChanges"`
	IsOnline       bool                   `json:"isOnline"`
}

// Ledger is the mutex-guarded pending-change journal.
type Ledger struct {
	mu           sync.Mutex
	path         string
	st           state
	log          logger.Logger
	onDrainReady func()
}

// New loads the ledger state from path. A missing or unreadable state file
// starts an empty ledger; local persistence must not be blocked by a corrupt
// journal.
func New(path string, log logger.Logger) *Ledger {
	l := &Ledger{path: path, log: log, st: state{IsOnline: true}}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("failed to read sync state, starting empty",
				logger.String("path", path), logger.Error(err))
		}
		return l
	}
	if err := json.Unmarshal(data, &l.st); err != nil {
		log.Warn("failed to parse sync state, starting empty",
			logger.String("path", path), logger.Error(err))
		l.st = state{IsOnline: true}
	}
	return l
}

// SetDrainReadyHook registers the callback fired when connectivity flips
// from offline to online while changes are pending.
func (l *Ledger) SetDrainReadyHook(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onDrainReady = fn
}

// Track appends a change to the journal. A zero timestamp is stamped with
// the current time so replay order reflects the order mutations happened.
func (l *Ledger) Track(ch domain.PendingChange) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ch.Timestamp == 0 {
		ch.Timestamp = time.Now().UnixMilli()
	}
	l.st.PendingChanges = append(l.st.PendingChanges, ch)
	l.persistLocked()
}

// Snapshot returns a copy of the pending changes sorted by timestamp,
// oldest first.
func (l *Ledger) Snapshot() []domain.PendingChange {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.PendingChange, len(l.st.PendingChanges))
	copy(out, l.st.PendingChanges)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

// Remove drops the journal entry matching the given change: same entity id,
// timestamp, type and entity type. Removing an entry that is already gone is
// a no-op, which makes replay idempotent. Other entries for the same entity
// stay queued; a failed later change must survive an earlier success.
func (l *Ledger) Remove(ch domain.PendingChange) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.st.PendingChanges {
		if e.ID == ch.ID && e.Timestamp == ch.Timestamp &&
			e.Type == ch.Type && e.EntityType == ch.EntityType {
			l.st.PendingChanges = append(l.st.PendingChanges[:i], l.st.PendingChanges[i+1:]...)
			l.persistLocked()
			return
		}
	}
}

// RewriteEntityID replaces oldID with newID on every pending change for
// that entity, including the payload ids. Used when the server assigns a
// permanent id to an entity created offline.
func (l *Ledger) RewriteEntityID(oldID, newID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	changed := false
	for i := range l.st.PendingChanges {
		ch := &l.st.PendingChanges[i]
		if ch.ID == oldID {
			ch.ID = newID
			changed = true
		}
		if ch.Bookmark != nil && ch.Bookmark.ID == oldID {
			ch.Bookmark.ID = newID
			changed = true
		}
		if ch.Category != nil && ch.Category.ID == oldID {
			ch.Category.ID = newID
			changed = true
		}
	}
	if changed {
		l.persistLocked()
	}
}

// RewriteCategoryRef updates the category reference on every pending
// bookmark payload that pointed at oldID.
func (l *Ledger) RewriteCategoryRef(oldID, newID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	changed := false
	for i := range l.st.PendingChanges {
		bm := l.st.PendingChanges[i].Bookmark
		if bm != nil && bm.CategoryID == oldID {
			bm.CategoryID = newID
			changed = true
		}
	}
	if changed {
		l.persistLocked()
	}
}

// PendingCount reports how many changes await replay.
func (l *Ledger) PendingCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.st.PendingChanges)
}

// Online reports the last known connectivity state.
func (l *Ledger) Online() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.st.IsOnline
}

// SetOnline records a connectivity transition. Coming back online with
// pending changes fires the drain-ready hook on its own goroutine.
func (l *Ledger) SetOnline(online bool) {
	l.mu.Lock()
	wasOnline := l.st.IsOnline
	if wasOnline != online {
		l.st.IsOnline = online
		l.persistLocked()
	}
	fire := online && !wasOnline && len(l.st.PendingChanges) > 0 && l.onDrainReady != nil
	hook := l.onDrainReady
	l.mu.Unlock()

	if fire {
		go hook()
	}
}

// LastSyncTime returns the time of the last completed replay attempt, or
// the zero time when no sync has run yet.
func (l *Ledger) LastSyncTime() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.st.LastSyncTime == 0 {
		return time.Time{}
	}
	return time.UnixMilli(l.st.LastSyncTime)
}

// SetLastSyncTime records the time of a completed replay attempt.
func (l *Ledger) SetLastSyncTime(t time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.st.LastSyncTime = t.UnixMilli()
	l.persistLocked()
}

// Reset wipes the journal and sync metadata (logout/reset).
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	online := l.st.IsOnline
	l.st = state{IsOnline: online}
	l.persistLocked()
}

// persistLocked writes the state file atomically (temp file then rename).
// A persist failure is logged, not returned: the in-memory journal stays
// authoritative for the life of the process.
func (l *Ledger) persistLocked() {
	data, err := json.MarshalIndent(&l.st, "", "  ")
	if err != nil {
		l.log.Error("failed to marshal sync state", logger.Error(err))
		return
	}

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			l.log.Error("failed to create state directory",
				logger.String("path", l.path), logger.Error(err))
			return
		}
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		l.log.Error("failed to write sync state",
			logger.String("path", tmp), logger.Error(err))
		return
	}
	if err := os.Rename(tmp, l.path); err != nil {
		l.log.Error("failed to replace sync state",
			logger.String("path", l.path), logger.Error(err))
	}
}

// Describe returns a short human summary used by the status command.
func (l *Ledger) Describe() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	mode := "online"
	if !l.st.IsOnline {
		mode = "offline"
	}
	return fmt.Sprintf("%s, %d pending", mode, len(l.st.PendingChanges))
}
