package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
)

// newTestIndexer wires an indexer over the fake store with no debounce
// so tests do not sleep.
func newTestIndexer(t *testing.T, store *fakeStore, opts ...IndexerOption) *Indexer {
	t.Helper()
	contentTok, nameTok, pipeline := newTestTextStack(t)
	return NewIndexer(store, contentTok, nameTok, pipeline, opts...)
}

func TestIndexer_IndexesDocumentChange(t *testing.T) {
	store := newFakeStore()
	ix := newTestIndexer(t, store)
	ctx := context.Background()

	require.NoError(t, ix.OnDocumentChanged(ctx, domain.DocumentChange{
		Path:         "notes/greeting.md",
		Content:      "Hello world hello",
		Tags:         []string{"Work"},
		LastModified: time.Now().UTC(),
	}))
	require.NoError(t, ix.Flush(ctx))

	doc, err := store.GetDocument(ctx, "notes/greeting.md")
	require.NoError(t, err)
	assert.Equal(t, "greeting.md", doc.FileName)
	assert.Equal(t, []string{"work"}, doc.Tags)
	assert.Equal(t, 3, doc.TokenCount, "token count is the sum of content occurrences")

	entries, err := store.TermsByDocument(ctx, doc.ID)
	require.NoError(t, err)

	byKey := make(map[string]domain.TermEntry)
	for _, e := range entries {
		byKey[e.Term+"/"+e.Source.String()] = e
	}

	hello := byKey["hello/content"]
	assert.Equal(t, 2, hello.Frequency)
	assert.Equal(t, []int{0, 2}, hello.Positions)

	assert.Equal(t, 1, byKey["world/content"].Frequency)
	assert.Equal(t, 1, byKey["greeting/filename"].Frequency, "filename terms are indexed with their own source")
	assert.Equal(t, 1, byKey["greet/filename"].Frequency, "filename terms are stemmed like content")
}

func TestIndexer_ExtractsInlineAndFrontmatterTags(t *testing.T) {
	store := newFakeStore()
	ix := newTestIndexer(t, store)
	ctx := context.Background()

	content := "---\ntags: [project, golang]\n---\nNotes about #planning here"
	require.NoError(t, ix.OnDocumentChanged(ctx, domain.DocumentChange{
		Path:    "plan.md",
		Content: content,
	}))
	require.NoError(t, ix.Flush(ctx))

	doc, err := store.GetDocument(ctx, "plan.md")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"project", "golang", "planning"}, doc.Tags)
}

func TestIndexer_CoalescesRapidChanges(t *testing.T) {
	store := newFakeStore()
	ix := newTestIndexer(t, store, WithDebounce(50*time.Millisecond))
	ctx := context.Background()

	require.NoError(t, ix.OnDocumentChanged(ctx, domain.DocumentChange{
		Path: "draft.md", Content: "first version",
	}))
	require.NoError(t, ix.OnDocumentChanged(ctx, domain.DocumentChange{
		Path: "draft.md", Content: "second version text",
	}))
	require.NoError(t, ix.Flush(ctx))

	assert.Equal(t, 1, store.replaceCount(), "burst of changes indexes only the latest snapshot")

	doc, err := store.GetDocument(ctx, "draft.md")
	require.NoError(t, err)
	assert.Equal(t, 3, doc.TokenCount)

	stale, err := store.LookupTerm(ctx, "first")
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestIndexer_ReindexIsIdempotent(t *testing.T) {
	store := newFakeStore()
	ix := newTestIndexer(t, store)
	ctx := context.Background()

	change := domain.DocumentChange{
		Path:         "same.md",
		Content:      "identical content every time",
		LastModified: time.Unix(1700000000, 0).UTC(),
	}

	require.NoError(t, ix.OnDocumentChanged(ctx, change))
	require.NoError(t, ix.Flush(ctx))
	doc, err := store.GetDocument(ctx, "same.md")
	require.NoError(t, err)
	before, err := store.TermsByDocument(ctx, doc.ID)
	require.NoError(t, err)

	require.NoError(t, ix.OnDocumentChanged(ctx, change))
	require.NoError(t, ix.Flush(ctx))
	again, err := store.GetDocument(ctx, "same.md")
	require.NoError(t, err)
	after, err := store.TermsByDocument(ctx, again.ID)
	require.NoError(t, err)

	assert.Equal(t, doc.ID, again.ID)
	assert.ElementsMatch(t, before, after)
}

func TestIndexer_DeleteFlowsThroughQueue(t *testing.T) {
	store := newFakeStore()
	ix := newTestIndexer(t, store)
	ctx := context.Background()

	require.NoError(t, ix.OnDocumentChanged(ctx, domain.DocumentChange{
		Path: "gone.md", Content: "short lived",
	}))
	require.NoError(t, ix.OnDocumentDeleted(ctx, "gone.md"))
	require.NoError(t, ix.Flush(ctx))

	_, err := store.GetDocument(ctx, "gone.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndexer_DeleteUnknownPathIsNoOp(t *testing.T) {
	store := newFakeStore()
	ix := newTestIndexer(t, store)
	ctx := context.Background()

	require.NoError(t, ix.OnDocumentDeleted(ctx, "never-indexed.md"))
	assert.NoError(t, ix.Flush(ctx))
}

func TestIndexer_RejectsEmptyPath(t *testing.T) {
	ix := newTestIndexer(t, newFakeStore())

	err := ix.OnDocumentChanged(context.Background(), domain.DocumentChange{Content: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = ix.OnDocumentDeleted(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndexer_FolderRenameCascades(t *testing.T) {
	store := newFakeStore()
	ix := newTestIndexer(t, store)
	ctx := context.Background()

	require.NoError(t, ix.OnDocumentChanged(ctx, domain.DocumentChange{
		Path: "projects/alpha/note.md", Content: "content here",
	}))
	require.NoError(t, ix.Flush(ctx))

	require.NoError(t, ix.OnFolderRenamed(ctx, "projects/alpha", "projects/beta"))

	_, err := store.GetDocument(ctx, "projects/alpha/note.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	moved, err := store.GetDocument(ctx, "projects/beta/note.md")
	require.NoError(t, err)
	assert.Equal(t, "note.md", moved.FileName)
}

func TestIndexer_FolderRemoveCascades(t *testing.T) {
	store := newFakeStore()
	ix := newTestIndexer(t, store)
	ctx := context.Background()

	require.NoError(t, ix.OnDocumentChanged(ctx, domain.DocumentChange{
		Path: "archive/old.md", Content: "forgotten words",
	}))
	require.NoError(t, ix.OnDocumentChanged(ctx, domain.DocumentChange{
		Path: "keep.md", Content: "still relevant",
	}))
	require.NoError(t, ix.Flush(ctx))

	require.NoError(t, ix.OnFolderRemoved(ctx, "archive"))

	_, err := store.GetDocument(ctx, "archive/old.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.GetDocument(ctx, "keep.md")
	assert.NoError(t, err)
}

func TestIndexer_RebuildWalksVault(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".obsidian"), 0755))
	writeVaultFile(t, root, "a.md", "alpha notes")
	writeVaultFile(t, root, "sub/b.txt", "beta notes")
	writeVaultFile(t, root, "sub/c.png", "binary junk")
	writeVaultFile(t, root, ".obsidian/workspace.md", "editor state")

	store := newFakeStore()
	ix := newTestIndexer(t, store)

	jobID, err := ix.Rebuild(context.Background(), root)
	require.NoError(t, err)
	assert.NotEmpty(t, jobID)

	status := ix.Status()
	assert.Equal(t, jobID, status.JobID)
	assert.False(t, status.Running)
	assert.Equal(t, 2, status.DocumentsIndexed)
	assert.Zero(t, status.ErrorCount)

	_, err = store.GetDocument(context.Background(), "a.md")
	assert.NoError(t, err)
	_, err = store.GetDocument(context.Background(), "sub/b.txt")
	assert.NoError(t, err)

	n, err := store.DocumentCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n, "images and hidden directories are not indexed")
}

func TestIndexer_RebuildUnknownRoot(t *testing.T) {
	ix := newTestIndexer(t, newFakeStore())

	_, err := ix.Rebuild(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

// overlapStore flags interleaved upsert/replace windows for a path.
type overlapStore struct {
	*fakeStore
	omu      sync.Mutex
	inFlight map[string]bool
	paths    map[int64]string
	overlaps int
}

func newOverlapStore() *overlapStore {
	return &overlapStore{
		fakeStore: newFakeStore(),
		inFlight:  make(map[string]bool),
		paths:     make(map[int64]string),
	}
}

func (s *overlapStore) UpsertDocument(ctx context.Context, doc *domain.Document) error {
	s.omu.Lock()
	if s.inFlight[doc.Path] {
		s.overlaps++
	}
	s.inFlight[doc.Path] = true
	s.omu.Unlock()

	// Widen the window so interleaving would be observed.
	time.Sleep(2 * time.Millisecond)

	err := s.fakeStore.UpsertDocument(ctx, doc)

	s.omu.Lock()
	s.paths[doc.ID] = doc.Path
	s.omu.Unlock()
	return err
}

func (s *overlapStore) ReplaceTerms(ctx context.Context, docID int64, entries []domain.TermEntry) error {
	err := s.fakeStore.ReplaceTerms(ctx, docID, entries)

	s.omu.Lock()
	delete(s.inFlight, s.paths[docID])
	s.omu.Unlock()
	return err
}

func (s *overlapStore) overlapCount() int {
	s.omu.Lock()
	defer s.omu.Unlock()
	return s.overlaps
}

func TestIndexer_RebuildSerializesWithQueuedChanges(t *testing.T) {
	root := t.TempDir()
	writeVaultFile(t, root, "note.md", "alpha beta gamma")

	store := newOverlapStore()
	contentTok, nameTok, pipeline := newTestTextStack(t)
	ix := NewIndexer(store, contentTok, nameTok, pipeline)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			_ = ix.OnDocumentChanged(ctx, domain.DocumentChange{
				Path:         "note.md",
				Content:      "alpha beta gamma",
				LastModified: time.Now().UTC(),
			})
			time.Sleep(time.Millisecond)
		}
	}()

	_, err := ix.Rebuild(ctx, root)
	require.NoError(t, err)

	<-done
	require.NoError(t, ix.Flush(ctx))

	assert.Zero(t, store.overlapCount(), "rebuild and change notifications for one path must not interleave")

	doc, err := store.GetDocument(ctx, "note.md")
	require.NoError(t, err)
	assert.Equal(t, 3, doc.TokenCount)
}

func writeVaultFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}
