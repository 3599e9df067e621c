package driven

import (
	"context"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
)

// IndexStore persists the three-table inverted index schema:
// Documents, Terms and Folders. Backed by SQLite.
//
// Term rows are lifecycle-bound to their document; ReplaceTerms is the
// only write path for them and is transactional, so a crash mid-update
// never leaves stale and fresh rows mixed for the same document.
type IndexStore interface {
	// UpsertDocument creates or updates a document row, lazily
	// creating the parent folder. On return doc.ID and doc.FolderID
	// are populated.
	UpsertDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by vault path.
	// Returns domain.ErrNotFound if no such document is indexed.
	GetDocument(ctx context.Context, path string) (*domain.Document, error)

	// DocumentsByID retrieves documents in bulk for result scoring.
	// Missing IDs are silently absent from the returned map.
	DocumentsByID(ctx context.Context, ids []int64) (map[int64]domain.Document, error)

	// DocumentCount returns the total number of indexed documents.
	DocumentCount(ctx context.Context) (int, error)

	// DeleteDocument removes a document by path, cascade-deleting all
	// of its term rows. Deleting an unknown path is a no-op.
	DeleteDocument(ctx context.Context, path string) error

	// ReplaceTerms atomically deletes all existing term rows for the
	// document (both sources) and inserts the new set.
	ReplaceTerms(ctx context.Context, documentID int64, entries []domain.TermEntry) error

	// TermsByDocument returns all term rows owned by a document.
	TermsByDocument(ctx context.Context, documentID int64) ([]domain.TermEntry, error)

	// LookupTerm returns all term rows for an exact term, across
	// documents and sources. A miss returns an empty slice, not an
	// error.
	LookupTerm(ctx context.Context, term string) ([]domain.TermEntry, error)

	// LookupByFolder returns all term rows whose denormalized folder
	// reference matches, enabling folder-scoped queries.
	LookupByFolder(ctx context.Context, folderID int64) ([]domain.TermEntry, error)

	// FolderByPath retrieves a folder row by vault path.
	// Returns domain.ErrNotFound if the folder was never indexed into.
	FolderByPath(ctx context.Context, path string) (*domain.Folder, error)

	// RenameFolder re-keys a folder, its descendant folders and the
	// documents beneath them to the new path prefix.
	RenameFolder(ctx context.Context, oldPath, newPath string) error

	// RemoveFolder deletes the folder subtree and every document
	// beneath it, cascading into their term rows. Folder rows
	// referenced by surviving terms are never touched.
	RemoveFolder(ctx context.Context, path string) error

	// PruneFolders opportunistically garbage-collects folder rows no
	// longer referenced by any term. Orphans are otherwise harmless.
	PruneFolders(ctx context.Context) error
}
