// Package access computes effective permissions on snippet records.
//
// Permission is derived per request from the record itself: the owner id set
// at creation, the public flag, and the two share sets (read and write, both
// keyed by email). Nothing here touches the store.
package access

import (
	"github.com/dalemusser/snipsave/internal/domain/models"
)

// Level is an effective permission on a record. Levels are ordered:
// None < Read < Write < Owner.
type Level int

const (
	None Level = iota
	Read
	Write
	Owner
)

// String returns the level name for logging.
func (l Level) String() string {
	switch l {
	case Owner:
		return "owner"
	case Write:
		return "write"
	case Read:
		return "read"
	default:
		return "none"
	}
}

// Effective returns the caller's permission on a record.
//
// Ownership is by id and immutable after creation. Write share implies read.
// Public records are readable by anyone.
func Effective(id models.Identity, s *models.Snippet) Level {
	if s.OwnerID != "" && s.OwnerID == id.ID {
		return Owner
	}
	if id.Email != "" && contains(s.CanEdit, id.Email) {
		return Write
	}
	if s.IsPublic {
		return Read
	}
	if id.Email != "" && contains(s.SharedWith, id.Email) {
		return Read
	}
	return None
}

// CanRead reports whether the record is visible to the caller.
func CanRead(id models.Identity, s *models.Snippet) bool {
	return Effective(id, s) >= Read
}

// CanWrite reports whether the caller may update the record's content.
func CanWrite(id models.Identity, s *models.Snippet) bool {
	return Effective(id, s) >= Write
}

// IsOwner reports whether the caller owns the record. Delete, rename, and
// re-share all require ownership.
func IsOwner(id models.Identity, s *models.Snippet) bool {
	return Effective(id, s) == Owner
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
