package domain

import "time"

// ChangeType represents the kind of vault mutation.
type ChangeType int

const (
	// ChangeUpserted indicates a created or modified document.
	ChangeUpserted ChangeType = iota

	// ChangeDeleted indicates a removed document.
	ChangeDeleted
)

// DocumentChange is a change notification from the host environment.
// Rapid repeated notifications for the same path are coalesced by the
// indexer: only the latest content matters.
type DocumentChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Path is the vault-relative document path.
	Path string

	// Content is the full document body. Empty for deletions.
	Content string

	// Tags are host-supplied tags, merged with tags extracted from
	// the content itself.
	Tags []string

	// LastModified is the modification time reported by the host.
	LastModified time.Time
}
