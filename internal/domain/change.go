package domain

// ChangeType describes what happened to an entity.
type ChangeType string

const (
	ChangeAdd    ChangeType = "add"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// EntityType names the kind of entity a change applies to.
type EntityType string

const (
	EntityBookmark EntityType = "bookmark"
	EntityCategory EntityType = "category"
)

// PendingChange is one ledger entry: a local mutation not yet confirmed by
// the remote API. ID is the affected entity's identifier and is the key used
// for idempotent removal once the change has been applied (or is provably
// moot). Exactly one of Bookmark/Category is set for add/update; both are
// nil for deletes, which carry only the ID.
type PendingChange struct {
	ID         string     `json:"id"`
	Type       ChangeType `json:"type"`
	EntityType EntityType `json:"entityType"`
	Bookmark   *Bookmark  `json:"bookmark,omitempty"`
	Category   *Category  `json:"category,omitempty"`
	Timestamp  int64      `json:"timestamp"` // unix milliseconds, ordering key
}
