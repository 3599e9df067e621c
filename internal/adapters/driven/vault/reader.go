// Package vault provides filesystem access to the document vault.
package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
	"github.com/memento-labs/vaultsearch/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.ContentReader = (*Reader)(nil)

// Reader reads document bodies from the vault directory. Paths are
// vault-relative and must stay inside the root.
type Reader struct {
	root string
}

// NewReader creates a content reader rooted at the vault directory.
func NewReader(root string) *Reader {
	return &Reader{root: root}
}

// ReadDocument returns the current content of a vault document.
// Returns domain.ErrNotFound for missing files and
// domain.ErrInvalidInput for paths escaping the vault root.
func (r *Reader) ReadDocument(_ context.Context, path string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(domain.ToSlashPath(path)))
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: path %q escapes the vault", domain.ErrInvalidInput, path)
	}

	data, err := os.ReadFile(filepath.Join(r.root, rel))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
