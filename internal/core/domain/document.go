package domain

import (
	"path"
	"strings"
	"time"
)

// TermSource distinguishes where a term occurrence was found.
type TermSource int

const (
	// SourceContent marks terms extracted from the document body.
	SourceContent TermSource = iota

	// SourceFilename marks terms extracted from the file name.
	// Filename matches are typically weighted higher at query time.
	SourceFilename
)

// String returns a human-readable name for the source.
func (s TermSource) String() string {
	switch s {
	case SourceContent:
		return "content"
	case SourceFilename:
		return "filename"
	default:
		return "unknown"
	}
}

// Document represents an indexed vault file.
// Identity is the vault-unique Path; ID is assigned by the store.
type Document struct {
	// ID is the store-assigned identifier.
	ID int64

	// Path is the vault-relative file path, unique per vault.
	Path string

	// FolderID references the parent Folder row.
	FolderID int64

	// FileName is the lowercase base name derived from Path.
	FileName string

	// LastModified is the file modification time at index time.
	LastModified time.Time

	// Tags holds lowercase tags extracted from content and frontmatter.
	Tags []string

	// TokenCount is the total number of content term occurrences.
	// It is the TF denominator at query time.
	TokenCount int
}

// Folder represents a vault directory. Identity is the Path.
// Folders are created lazily when a document inside them is first
// indexed and are never a lifecycle owner of anything.
type Folder struct {
	// ID is the store-assigned identifier.
	ID int64

	// Path is the vault-relative directory path, unique per vault.
	Path string

	// Name is the last path segment.
	Name string
}

// TermEntry is one row of the inverted index, keyed by
// (Term, DocumentID, Source). Term rows are derived data: they are
// deleted and regenerated on every re-index of their owning document.
type TermEntry struct {
	// Term is the de-duplicated textual key.
	Term string

	// DocumentID references the owning Document.
	DocumentID int64

	// Source indicates whether the term came from content or filename.
	Source TermSource

	// FolderID is a denormalized, non-owning reference to the parent
	// folder, enabling folder-scoped lookups without a join.
	FolderID int64

	// Frequency is the occurrence count within document+source.
	Frequency int

	// Positions holds zero-based token offsets for snippet extraction
	// and proximity ranking.
	Positions []int
}

// FileNameFromPath derives the lowercase file name stored on a Document.
func FileNameFromPath(p string) string {
	return strings.ToLower(path.Base(ToSlashPath(p)))
}

// FolderPathFromPath derives the parent folder path for a document path.
// The vault root is represented as ".".
func FolderPathFromPath(p string) string {
	return path.Dir(ToSlashPath(p))
}

// ToSlashPath normalizes a vault path to forward slashes with no
// leading "./" segment, so paths compare equal across platforms.
func ToSlashPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimPrefix(p, "./")
}

// StripExtension removes the final extension from a file name, so
// "meeting-notes.md" is tokenized as "meeting-notes".
func StripExtension(name string) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext)
}
