package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/memento-labs/vaultsearch/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/memento-labs/vaultsearch/internal/core/domain"
	"github.com/memento-labs/vaultsearch/internal/core/ports/driven"
)

// Ensure Store implements the index store port.
var _ driven.IndexStore = (*Store)(nil)

// Store is the SQLite-backed inverted index.
type Store struct {
	db     *sql.DB
	path   string
	closed atomic.Bool
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.vaultsearch/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".vaultsearch", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// WAL mode lets read-only searches run concurrently with the
	// per-document write transactions of the indexer.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Foreign keys drive the document -> terms delete cascade.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection. Operations on a closed store
// fail with domain.ErrIndexClosed. Close is idempotent.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// guard rejects operations once the store has been closed.
func (s *Store) guard() error {
	if s.closed.Load() {
		return domain.ErrIndexClosed
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Documents ====================

// UpsertDocument creates or updates a document row, lazily creating
// its parent folder. doc.ID and doc.FolderID are populated on return.
func (s *Store) UpsertDocument(ctx context.Context, doc *domain.Document) error {
	if err := s.guard(); err != nil {
		return err
	}
	if doc == nil || doc.Path == "" {
		return fmt.Errorf("%w: document path required", domain.ErrInvalidInput)
	}

	doc.Path = domain.ToSlashPath(doc.Path)
	if doc.FileName == "" {
		doc.FileName = domain.FileNameFromPath(doc.Path)
	}

	folderID, err := s.ensureFolder(ctx, domain.FolderPathFromPath(doc.Path))
	if err != nil {
		return err
	}
	doc.FolderID = folderID

	tagsJSON, err := json.Marshal(tagsOrEmpty(doc.Tags))
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (path, folder_id, file_name, last_modified, tags, token_count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			folder_id = excluded.folder_id,
			file_name = excluded.file_name,
			last_modified = excluded.last_modified,
			tags = excluded.tags,
			token_count = excluded.token_count
	`, doc.Path, folderID, doc.FileName, doc.LastModified.UTC(), string(tagsJSON), doc.TokenCount)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	row := s.db.QueryRowContext(ctx, "SELECT id FROM documents WHERE path = ?", doc.Path)
	if err := row.Scan(&doc.ID); err != nil {
		return fmt.Errorf("reading document id: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by vault path.
func (s *Store) GetDocument(ctx context.Context, path string) (*domain.Document, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, folder_id, file_name, last_modified, tags, token_count
		FROM documents WHERE path = ?
	`, domain.ToSlashPath(path))

	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return doc, nil
}

// DocumentsByID retrieves documents in bulk.
func (s *Store) DocumentsByID(ctx context.Context, ids []int64) (map[int64]domain.Document, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	out := make(map[int64]domain.Document, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, folder_id, file_name, last_modified, tags, token_count
		FROM documents WHERE id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		out[doc.ID] = *doc
	}
	return out, rows.Err()
}

// DocumentCount returns the total number of indexed documents.
func (s *Store) DocumentCount(ctx context.Context) (int, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}
	var n int
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents")
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// DeleteDocument removes a document by path. Term rows cascade via the
// foreign key. Deleting an unknown path is a no-op.
func (s *Store) DeleteDocument(ctx context.Context, path string) error {
	if err := s.guard(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE path = ?", domain.ToSlashPath(path))
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ==================== Terms ====================

// ReplaceTerms atomically swaps the term set of a document: all
// existing rows for the document (both sources) are deleted, then the
// new set is inserted, in one transaction. On failure the pre-update
// state is retained.
func (s *Store) ReplaceTerms(ctx context.Context, documentID int64, entries []domain.TermEntry) error {
	if err := s.guard(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM terms WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting stale terms: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO terms (term, document_id, source, folder_id, frequency, positions)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing term insert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		positionsJSON, err := json.Marshal(positionsOrEmpty(entry.Positions))
		if err != nil {
			return fmt.Errorf("marshalling positions: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			entry.Term, documentID, int(entry.Source), entry.FolderID,
			entry.Frequency, string(positionsJSON)); err != nil {
			return fmt.Errorf("inserting term %q: %w", entry.Term, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing term replacement: %w", err)
	}
	return nil
}

// TermsByDocument returns all term rows owned by a document.
func (s *Store) TermsByDocument(ctx context.Context, documentID int64) ([]domain.TermEntry, error) {
	return s.queryTerms(ctx, `
		SELECT term, document_id, source, folder_id, frequency, positions
		FROM terms WHERE document_id = ?
		ORDER BY term, source
	`, documentID)
}

// LookupTerm returns all term rows for an exact term.
// A miss returns an empty slice, not an error.
func (s *Store) LookupTerm(ctx context.Context, term string) ([]domain.TermEntry, error) {
	return s.queryTerms(ctx, `
		SELECT term, document_id, source, folder_id, frequency, positions
		FROM terms WHERE term = ?
	`, term)
}

// LookupByFolder returns all term rows in the given folder.
func (s *Store) LookupByFolder(ctx context.Context, folderID int64) ([]domain.TermEntry, error) {
	return s.queryTerms(ctx, `
		SELECT term, document_id, source, folder_id, frequency, positions
		FROM terms WHERE folder_id = ?
	`, folderID)
}

// queryTerms runs a term query and scans the rows.
func (s *Store) queryTerms(ctx context.Context, query string, args ...any) ([]domain.TermEntry, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying terms: %w", err)
	}
	defer rows.Close()

	entries := []domain.TermEntry{}
	for rows.Next() {
		var entry domain.TermEntry
		var source int
		var positionsJSON string
		if err := rows.Scan(&entry.Term, &entry.DocumentID, &source,
			&entry.FolderID, &entry.Frequency, &positionsJSON); err != nil {
			return nil, fmt.Errorf("scanning term: %w", err)
		}
		entry.Source = domain.TermSource(source)
		if err := json.Unmarshal([]byte(positionsJSON), &entry.Positions); err != nil {
			return nil, fmt.Errorf("unmarshaling positions: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ==================== Folders ====================

// ensureFolder creates the folder row if absent and returns its id.
func (s *Store) ensureFolder(ctx context.Context, path string) (int64, error) {
	name := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		name = path[idx+1:]
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO folders (path, name) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET name = excluded.name
	`, path, name)
	if err != nil {
		return 0, fmt.Errorf("saving folder: %w", err)
	}

	var id int64
	row := s.db.QueryRowContext(ctx, "SELECT id FROM folders WHERE path = ?", path)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("reading folder id: %w", err)
	}
	return id, nil
}

// FolderByPath retrieves a folder row by vault path.
func (s *Store) FolderByPath(ctx context.Context, path string) (*domain.Folder, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx,
		"SELECT id, path, name FROM folders WHERE path = ?", domain.ToSlashPath(path))

	var folder domain.Folder
	if err := row.Scan(&folder.ID, &folder.Path, &folder.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning folder: %w", err)
	}
	return &folder, nil
}

// RenameFolder re-keys a folder, its descendants and the documents
// beneath them to the new path prefix, in one transaction.
func (s *Store) RenameFolder(ctx context.Context, oldPath, newPath string) error {
	if err := s.guard(); err != nil {
		return err
	}
	oldPath = domain.ToSlashPath(oldPath)
	newPath = domain.ToSlashPath(newPath)
	newName := newPath
	if idx := strings.LastIndex(newPath, "/"); idx >= 0 {
		newName = newPath[idx+1:]
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `
		UPDATE folders SET path = ?, name = ? WHERE path = ?
	`, newPath, newName, oldPath); err != nil {
		return fmt.Errorf("renaming folder: %w", err)
	}

	// substr is 1-based and counts characters, not bytes.
	prefix := escapeLike(oldPath) + "/"
	cut := utf8.RuneCountInString(oldPath) + 1
	if _, err := tx.ExecContext(ctx, `
		UPDATE folders SET path = ? || substr(path, ?)
		WHERE path LIKE ? || '%' ESCAPE '\'
	`, newPath, cut, prefix); err != nil {
		return fmt.Errorf("renaming descendant folders: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE documents SET path = ? || substr(path, ?)
		WHERE path LIKE ? || '%' ESCAPE '\'
	`, newPath, cut, prefix); err != nil {
		return fmt.Errorf("renaming documents: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing folder rename: %w", err)
	}
	return nil
}

// RemoveFolder deletes the folder subtree and every document beneath
// it; their term rows cascade. Folder rows are never a cascade source
// into terms (weak reference).
func (s *Store) RemoveFolder(ctx context.Context, path string) error {
	if err := s.guard(); err != nil {
		return err
	}
	path = domain.ToSlashPath(path)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	prefix := escapeLike(path) + "/"
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM documents WHERE path LIKE ? || '%' ESCAPE '\'
	`, prefix); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM folders WHERE path = ? OR path LIKE ? || '%' ESCAPE '\'
	`, path, prefix); err != nil {
		return fmt.Errorf("deleting folders: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing folder removal: %w", err)
	}
	return nil
}

// PruneFolders garbage-collects folder rows no longer referenced by
// any term or document.
func (s *Store) PruneFolders(ctx context.Context) error {
	if err := s.guard(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM folders
		WHERE id NOT IN (SELECT DISTINCT folder_id FROM terms)
		  AND id NOT IN (SELECT DISTINCT folder_id FROM documents)
	`)
	if err != nil {
		return fmt.Errorf("pruning folders: %w", err)
	}
	return nil
}

// ==================== helpers ====================

// escapeLike escapes LIKE wildcards so a path prefix matches
// literally. Underscores are legal in vault paths.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// scanDocument reads one document row through the given scan function.
func scanDocument(scan func(dest ...any) error) (*domain.Document, error) {
	var doc domain.Document
	var tagsJSON string
	var lastModified time.Time
	if err := scan(&doc.ID, &doc.Path, &doc.FolderID, &doc.FileName,
		&lastModified, &tagsJSON, &doc.TokenCount); err != nil {
		return nil, err
	}
	doc.LastModified = lastModified
	if err := json.Unmarshal([]byte(tagsJSON), &doc.Tags); err != nil {
		return nil, fmt.Errorf("unmarshaling tags: %w", err)
	}
	return &doc, nil
}

// tagsOrEmpty avoids persisting JSON null for a nil tag slice.
func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// positionsOrEmpty avoids persisting JSON null for a nil position list.
func positionsOrEmpty(positions []int) []int {
	if positions == nil {
		return []int{}
	}
	return positions
}
