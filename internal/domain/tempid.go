package domain

import (
	"strings"

	"github.com/google/uuid"
)

// TempIDPrefix marks client-generated identifiers the server has never seen.
const TempIDPrefix = "temp_"

// NewTemporaryID returns a fresh client-side placeholder identifier.
func NewTemporaryID() string {
	return TempIDPrefix + uuid.NewString()
}

// IsTemporaryID classifies an identifier as client-generated. The predicate
// is shared by every component that decides whether an id may be sent to the
// remote API; nothing else may re-implement this heuristic.
//
// An id is temporary when it carries the reserved prefix or is longer than
// 10 characters. Server-assigned ids are short numeric values; the length
// rule also covers legacy 13-digit timestamp-style ids.
func IsTemporaryID(id string) bool {
	if id == "" {
		return false
	}
	if strings.HasPrefix(id, TempIDPrefix) {
		return true
	}
	return len(id) > 10
}
