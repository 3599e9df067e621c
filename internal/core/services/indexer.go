package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/memento-labs/vaultsearch/internal/analyzers"
	"github.com/memento-labs/vaultsearch/internal/core/domain"
	"github.com/memento-labs/vaultsearch/internal/core/ports/driven"
	"github.com/memento-labs/vaultsearch/internal/core/ports/driving"
	"github.com/memento-labs/vaultsearch/internal/frontmatter"
	"github.com/memento-labs/vaultsearch/internal/logger"
	"github.com/memento-labs/vaultsearch/internal/tokenizer"
)

// Ensure Indexer implements the interface.
var _ driving.IndexerService = (*Indexer)(nil)

// indexableExtensions are the file types a full rebuild picks up.
var indexableExtensions = map[string]struct{}{
	".md":  {},
	".txt": {},
}

// Indexer keeps the inverted index in sync with the vault.
//
// Change notifications are coalesced per path: a pending re-index is
// superseded, not queued, when a newer notification arrives before it
// runs. One worker goroutine per active path serializes ReplaceTerms
// calls for that path; different paths index concurrently, with the
// store's per-document transaction as the unit of isolation.
type Indexer struct {
	store       driven.IndexStore
	contentTok  *tokenizer.Tokenizer
	filenameTok *tokenizer.Tokenizer
	pipeline    *analyzers.Pipeline
	debounce    time.Duration
	concurrency int

	mu      sync.Mutex
	pending map[string]*domain.DocumentChange
	active  map[string]bool
	locks   sync.Map // path -> *sync.Mutex
	wg      sync.WaitGroup

	rebuildMu sync.Mutex
	rebuild   driving.RebuildStatus
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithDebounce sets the per-path debounce window.
func WithDebounce(window time.Duration) IndexerOption {
	return func(ix *Indexer) {
		ix.debounce = window
	}
}

// WithRebuildConcurrency bounds concurrent document indexing during a
// full rebuild.
func WithRebuildConcurrency(n int) IndexerOption {
	return func(ix *Indexer) {
		if n > 0 {
			ix.concurrency = n
		}
	}
}

// NewIndexer creates an indexer. contentTok and filenameTok tokenize
// document bodies and file names respectively; both feed the same
// analyzer pipeline so queries and documents expand symmetrically.
func NewIndexer(
	store driven.IndexStore,
	contentTok *tokenizer.Tokenizer,
	filenameTok *tokenizer.Tokenizer,
	pipeline *analyzers.Pipeline,
	opts ...IndexerOption,
) *Indexer {
	ix := &Indexer{
		store:       store,
		contentTok:  contentTok,
		filenameTok: filenameTok,
		pipeline:    pipeline,
		concurrency: 4,
		pending:     make(map[string]*domain.DocumentChange),
		active:      make(map[string]bool),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// OnDocumentChanged schedules re-indexing for a created or modified
// document. Returns immediately; the work happens on a per-path worker.
func (ix *Indexer) OnDocumentChanged(ctx context.Context, change domain.DocumentChange) error {
	if change.Path == "" {
		return fmt.Errorf("%w: change path required", domain.ErrInvalidInput)
	}
	change.Type = domain.ChangeUpserted
	change.Path = domain.ToSlashPath(change.Path)
	ix.enqueue(ctx, change)
	return nil
}

// OnDocumentDeleted schedules removal of a document and its terms.
// Deletions flow through the same per-path queue as changes, so a
// delete cannot overtake an in-flight re-index of the same path.
func (ix *Indexer) OnDocumentDeleted(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("%w: path required", domain.ErrInvalidInput)
	}
	ix.enqueue(ctx, domain.DocumentChange{
		Type: domain.ChangeDeleted,
		Path: domain.ToSlashPath(path),
	})
	return nil
}

// OnFolderRenamed cascades a folder rename into folder and document
// rows. Term rows keep their folder id, which the rename preserves.
func (ix *Indexer) OnFolderRenamed(ctx context.Context, oldPath, newPath string) error {
	logger.Info("Folder renamed: %s -> %s", oldPath, newPath)
	if err := ix.store.RenameFolder(ctx, oldPath, newPath); err != nil {
		return fmt.Errorf("rename folder: %w", err)
	}
	return nil
}

// OnFolderRemoved cascades a folder removal into the documents beneath
// it and opportunistically prunes orphaned folder rows.
func (ix *Indexer) OnFolderRemoved(ctx context.Context, path string) error {
	logger.Info("Folder removed: %s", path)
	if err := ix.store.RemoveFolder(ctx, path); err != nil {
		return fmt.Errorf("remove folder: %w", err)
	}
	if err := ix.store.PruneFolders(ctx); err != nil {
		logger.Warn("Pruning folders: %v", err)
	}
	return nil
}

// enqueue records the latest change for a path and ensures a worker is
// draining it.
func (ix *Indexer) enqueue(ctx context.Context, change domain.DocumentChange) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, superseded := ix.pending[change.Path]; superseded {
		logger.Debug("Superseding pending re-index for %s", change.Path)
	}
	ix.pending[change.Path] = &change

	if ix.active[change.Path] {
		return
	}
	ix.active[change.Path] = true
	ix.wg.Add(1)
	go ix.drain(ctx, change.Path)
}

// drain processes the latest pending change for a path until none
// remains. Only the newest snapshot is ever indexed.
func (ix *Indexer) drain(ctx context.Context, path string) {
	defer ix.wg.Done()

	for {
		if ix.debounce > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(ix.debounce):
			}
		}

		ix.mu.Lock()
		change, ok := ix.pending[path]
		if !ok {
			ix.active[path] = false
			ix.mu.Unlock()
			return
		}
		delete(ix.pending, path)
		ix.mu.Unlock()

		if err := ix.apply(ctx, *change); err != nil {
			// The store rolled back; the previous term set is intact.
			logger.Error("Indexing %s: %v", path, err)
		}
	}
}

// apply performs one re-index or delete for a document. A per-path
// lock serializes queued changes with rebuild work on the same path.
func (ix *Indexer) apply(ctx context.Context, change domain.DocumentChange) error {
	lock := ix.pathLock(change.Path)
	lock.Lock()
	defer lock.Unlock()

	if change.Type == domain.ChangeDeleted {
		logger.Debug("Deleting document %s", change.Path)
		return ix.store.DeleteDocument(ctx, change.Path)
	}
	return ix.indexDocument(ctx, change)
}

// pathLock returns the serialization lock for a path.
func (ix *Indexer) pathLock(path string) *sync.Mutex {
	lock, _ := ix.locks.LoadOrStore(path, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// indexDocument tokenizes body and filename separately, computes the
// document token count from content frequencies and swaps the term set
// transactionally.
func (ix *Indexer) indexDocument(ctx context.Context, change domain.DocumentChange) error {
	logger.Section("Indexing " + change.Path)

	contentTokens := ix.pipeline.Process(ix.contentTok.Tokenize(change.Content))

	fileName := domain.FileNameFromPath(change.Path)
	nameTokens := ix.pipeline.Process(ix.filenameTok.Tokenize(domain.StripExtension(fileName)))

	tokenCount := 0
	for _, tok := range contentTokens {
		tokenCount += tok.Count
	}
	logger.Debug("Tokens: %d content terms (%d occurrences), %d filename terms",
		len(contentTokens), tokenCount, len(nameTokens))

	tags := mergeTags(change.Tags, frontmatter.ExtractTags(change.Content))

	doc := &domain.Document{
		Path:         change.Path,
		FileName:     fileName,
		LastModified: change.LastModified,
		Tags:         tags,
		TokenCount:   tokenCount,
	}
	if err := ix.store.UpsertDocument(ctx, doc); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}

	entries := make([]domain.TermEntry, 0, len(contentTokens)+len(nameTokens))
	entries = appendEntries(entries, contentTokens, doc, domain.SourceContent)
	entries = appendEntries(entries, nameTokens, doc, domain.SourceFilename)

	if err := ix.store.ReplaceTerms(ctx, doc.ID, entries); err != nil {
		return fmt.Errorf("replace terms: %w", err)
	}

	logger.Info("Indexed %s: %d term rows, tokenCount=%d", change.Path, len(entries), tokenCount)
	return nil
}

// Flush blocks until all scheduled index work has completed or the
// context is cancelled.
func (ix *Indexer) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		ix.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Rebuild walks the vault root and re-indexes every indexable file
// with bounded concurrency. It is interruptible between documents via
// ctx; an individual document is always indexed whole. Rebuild work
// shares the per-path locks with queued change notifications, so a
// rebuild never interleaves with a re-index of the same path.
func (ix *Indexer) Rebuild(ctx context.Context, root string) (string, error) {
	ix.rebuildMu.Lock()
	if ix.rebuild.Running {
		ix.rebuildMu.Unlock()
		return "", domain.ErrRebuildInProgress
	}
	jobID := uuid.New().String()
	ix.rebuild = driving.RebuildStatus{JobID: jobID, Running: true}
	ix.rebuildMu.Unlock()

	defer func() {
		ix.rebuildMu.Lock()
		ix.rebuild.Running = false
		ix.rebuildMu.Unlock()
	}()

	logger.Section("Rebuild " + root)

	paths, err := collectIndexablePaths(root)
	if err != nil {
		return jobID, fmt.Errorf("walking vault: %w", err)
	}
	logger.Info("Rebuild %s: %d documents", jobID, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.concurrency)

	for _, p := range paths {
		if gctx.Err() != nil {
			break // interruptible between documents
		}
		p := p
		g.Go(func() error {
			change, err := readChange(root, p)
			if err != nil {
				// Access failure, not a content change: keep the
				// document's previous index entries intact.
				logger.Warn("Skipping %s: %v", p, err)
				ix.bumpRebuild(func(st *driving.RebuildStatus) { st.ErrorCount++ })
				return nil
			}
			if err := ix.apply(gctx, *change); err != nil {
				ix.bumpRebuild(func(st *driving.RebuildStatus) { st.ErrorCount++ })
				return nil
			}
			ix.bumpRebuild(func(st *driving.RebuildStatus) { st.DocumentsIndexed++ })
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return jobID, err
	}
	return jobID, ctx.Err()
}

// Status reports the state of the most recent rebuild.
func (ix *Indexer) Status() driving.RebuildStatus {
	ix.rebuildMu.Lock()
	defer ix.rebuildMu.Unlock()
	return ix.rebuild
}

// bumpRebuild mutates the rebuild status under its lock.
func (ix *Indexer) bumpRebuild(f func(*driving.RebuildStatus)) {
	ix.rebuildMu.Lock()
	f(&ix.rebuild)
	ix.rebuildMu.Unlock()
}

// appendEntries converts analyzed tokens into term rows for one source.
func appendEntries(entries []domain.TermEntry, tokens []domain.Token, doc *domain.Document, source domain.TermSource) []domain.TermEntry {
	for _, tok := range tokens {
		entries = append(entries, domain.TermEntry{
			Term:       tok.Term,
			DocumentID: doc.ID,
			Source:     source,
			FolderID:   doc.FolderID,
			Frequency:  tok.Count,
			Positions:  tok.Positions,
		})
	}
	return entries
}

// mergeTags unions host-supplied and extracted tags, lowercased.
func mergeTags(lists ...[]string) []string {
	set := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, tag := range list {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			if _, ok := set[tag]; ok {
				continue
			}
			set[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}

// collectIndexablePaths lists vault-relative paths of indexable files.
func collectIndexablePaths(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Hidden directories (e.g. .git, .obsidian) are not notes.
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := indexableExtensions[strings.ToLower(filepath.Ext(p))]; !ok {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		paths = append(paths, domain.ToSlashPath(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// readChange loads one vault file into a change notification.
func readChange(root, rel string) (*domain.DocumentChange, error) {
	full := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, err
	}
	return &domain.DocumentChange{
		Type:         domain.ChangeUpserted,
		Path:         rel,
		Content:      string(data),
		LastModified: info.ModTime().UTC(),
	}, nil
}
