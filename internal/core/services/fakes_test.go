package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/memento-labs/vaultsearch/internal/analyzers"
	"github.com/memento-labs/vaultsearch/internal/core/domain"
	"github.com/memento-labs/vaultsearch/internal/core/ports/driven"
	"github.com/memento-labs/vaultsearch/internal/normalizers"
	"github.com/memento-labs/vaultsearch/internal/tokenizer"
)

// fakeStore is an in-memory IndexStore with the same contract as the
// SQLite adapter, letting service tests run without a database.
type fakeStore struct {
	mu           sync.Mutex
	nextDocID    int64
	nextFolderID int64
	docs         map[string]*domain.Document
	folders      map[string]*domain.Folder
	terms        map[int64][]domain.TermEntry
	replaceCalls int
}

var _ driven.IndexStore = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:    make(map[string]*domain.Document),
		folders: make(map[string]*domain.Folder),
		terms:   make(map[int64][]domain.TermEntry),
	}
}

func (s *fakeStore) UpsertDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	folderPath := domain.FolderPathFromPath(doc.Path)
	folder, ok := s.folders[folderPath]
	if !ok {
		s.nextFolderID++
		folder = &domain.Folder{
			ID:   s.nextFolderID,
			Path: folderPath,
			Name: folderPath[strings.LastIndex(folderPath, "/")+1:],
		}
		s.folders[folderPath] = folder
	}

	doc.FolderID = folder.ID
	doc.FileName = domain.FileNameFromPath(doc.Path)

	if existing, ok := s.docs[doc.Path]; ok {
		doc.ID = existing.ID
	} else {
		s.nextDocID++
		doc.ID = s.nextDocID
	}
	stored := *doc
	s.docs[doc.Path] = &stored
	return nil
}

func (s *fakeStore) GetDocument(_ context.Context, path string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *doc
	return &out, nil
}

func (s *fakeStore) DocumentsByID(_ context.Context, ids []int64) (map[int64]domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int64]domain.Document)
	for _, id := range ids {
		for _, doc := range s.docs {
			if doc.ID == id {
				out[id] = *doc
			}
		}
	}
	return out, nil
}

func (s *fakeStore) DocumentCount(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs), nil
}

func (s *fakeStore) DeleteDocument(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[path]
	if !ok {
		return nil
	}
	delete(s.terms, doc.ID)
	delete(s.docs, path)
	return nil
}

func (s *fakeStore) ReplaceTerms(_ context.Context, documentID int64, entries []domain.TermEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replaceCalls++
	s.terms[documentID] = append([]domain.TermEntry(nil), entries...)
	return nil
}

func (s *fakeStore) TermsByDocument(_ context.Context, documentID int64) ([]domain.TermEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.TermEntry(nil), s.terms[documentID]...), nil
}

func (s *fakeStore) LookupTerm(_ context.Context, term string) ([]domain.TermEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.TermEntry
	for _, entries := range s.terms {
		for _, e := range entries {
			if e.Term == term {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (s *fakeStore) LookupByFolder(_ context.Context, folderID int64) ([]domain.TermEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.TermEntry
	for _, entries := range s.terms {
		for _, e := range entries {
			if e.FolderID == folderID {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (s *fakeStore) FolderByPath(_ context.Context, path string) (*domain.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder, ok := s.folders[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *folder
	return &out, nil
}

func (s *fakeStore) RenameFolder(_ context.Context, oldPath, newPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rekey := func(p string) (string, bool) {
		if p == oldPath {
			return newPath, true
		}
		if strings.HasPrefix(p, oldPath+"/") {
			return newPath + strings.TrimPrefix(p, oldPath), true
		}
		return p, false
	}

	for p, folder := range s.folders {
		if np, ok := rekey(p); ok {
			delete(s.folders, p)
			folder.Path = np
			folder.Name = np[strings.LastIndex(np, "/")+1:]
			s.folders[np] = folder
		}
	}
	for p, doc := range s.docs {
		if strings.HasPrefix(p, oldPath+"/") {
			delete(s.docs, p)
			doc.Path = newPath + strings.TrimPrefix(p, oldPath)
			doc.FileName = domain.FileNameFromPath(doc.Path)
			s.docs[doc.Path] = doc
		}
	}
	return nil
}

func (s *fakeStore) RemoveFolder(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for p, doc := range s.docs {
		if strings.HasPrefix(p, path+"/") {
			delete(s.terms, doc.ID)
			delete(s.docs, p)
		}
	}
	for p := range s.folders {
		if p == path || strings.HasPrefix(p, path+"/") {
			delete(s.folders, p)
		}
	}
	return nil
}

func (s *fakeStore) PruneFolders(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	referenced := make(map[int64]struct{})
	for _, doc := range s.docs {
		referenced[doc.FolderID] = struct{}{}
	}
	for _, entries := range s.terms {
		for _, e := range entries {
			referenced[e.FolderID] = struct{}{}
		}
	}
	for p, folder := range s.folders {
		if _, ok := referenced[folder.ID]; !ok {
			delete(s.folders, p)
		}
	}
	return nil
}

func (s *fakeStore) replaceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceCalls
}

// fakeReader serves document content from a map.
type fakeReader struct {
	docs map[string]string
}

func (r fakeReader) ReadDocument(_ context.Context, path string) (string, error) {
	content, ok := r.docs[path]
	if !ok {
		return "", domain.ErrNotFound
	}
	return content, nil
}

// newTestTextStack builds the default tokenizers and analyzer pipeline
// the way the application wiring does.
func newTestTextStack(t *testing.T) (content, filename *tokenizer.Tokenizer, pipeline *analyzers.Pipeline) {
	t.Helper()

	nr := normalizers.NewRegistry()
	normalizers.RegisterDefaults(nr)

	settings := domain.DefaultSettings()
	contentPipe, err := normalizers.NewPipeline(nr, nil, settings.ContentNormalizers...)
	require.NoError(t, err)
	namePipe, err := normalizers.NewPipeline(nr, nil, settings.FilenameNormalizers...)
	require.NoError(t, err)

	ar := analyzers.NewRegistry()
	analyzers.RegisterDefaults(ar)
	pipe, err := analyzers.NewPipelineFromNames(ar, nil, "delimiter", "stemmer")
	require.NoError(t, err)

	return tokenizer.New(contentPipe), tokenizer.New(namePipe), pipe
}

// seedDocument inserts a document with explicit term rows, bypassing
// the indexer, for precise scoring tests.
func seedDocument(t *testing.T, store *fakeStore, path string, tokenCount int, lastMod time.Time, tags []string, entries []domain.TermEntry) *domain.Document {
	t.Helper()
	ctx := context.Background()

	doc := &domain.Document{
		Path:         path,
		LastModified: lastMod,
		Tags:         tags,
		TokenCount:   tokenCount,
	}
	require.NoError(t, store.UpsertDocument(ctx, doc))

	for i := range entries {
		entries[i].DocumentID = doc.ID
		entries[i].FolderID = doc.FolderID
	}
	require.NoError(t, store.ReplaceTerms(ctx, doc.ID, entries))
	return doc
}
