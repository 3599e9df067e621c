package driving

import (
	"context"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
)

// IndexerService accepts vault mutation notifications and keeps the
// inverted index in sync. Notifications for the same path are
// coalesced and serialized; different paths may index concurrently.
type IndexerService interface {
	// OnDocumentChanged schedules re-indexing for a created or
	// modified document. A pending re-index for the same path is
	// superseded, not queued.
	OnDocumentChanged(ctx context.Context, change domain.DocumentChange) error

	// OnDocumentDeleted schedules removal of a document and its terms.
	OnDocumentDeleted(ctx context.Context, path string) error

	// OnFolderRenamed cascades a folder rename into folder and
	// document rows.
	OnFolderRenamed(ctx context.Context, oldPath, newPath string) error

	// OnFolderRemoved cascades a folder removal into the documents
	// beneath it.
	OnFolderRemoved(ctx context.Context, path string) error

	// Rebuild walks the vault root and re-indexes every document,
	// bounded-concurrently. Interruptible between documents via ctx.
	// Returns a job identifier for status reporting.
	Rebuild(ctx context.Context, root string) (string, error)

	// Status reports the state of the most recent rebuild.
	Status() RebuildStatus

	// Flush blocks until all scheduled index work has completed or
	// the context is cancelled.
	Flush(ctx context.Context) error
}

// RebuildStatus describes a full vault rebuild.
type RebuildStatus struct {
	// JobID identifies the rebuild run.
	JobID string

	// Running indicates whether the rebuild is still in progress.
	Running bool

	// DocumentsIndexed is the count of documents indexed so far.
	DocumentsIndexed int

	// ErrorCount is the number of documents skipped due to errors.
	ErrorCount int
}
