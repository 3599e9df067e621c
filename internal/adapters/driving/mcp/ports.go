package mcp

import (
	"github.com/memento-labs/vaultsearch/internal/core/ports/driven"
	"github.com/memento-labs/vaultsearch/internal/core/ports/driving"
)

// Ports aggregates all port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search answers ranked queries over the index.
	Search driving.SearchService

	// Indexer triggers and reports vault rebuilds. Optional: without
	// it the rebuild and status tools are not registered.
	Indexer driving.IndexerService

	// Reader serves document bodies for the content resource.
	// Optional: without it the resource returns not-found.
	Reader driven.ContentReader

	// VaultPath is the vault root used by the rebuild tool.
	VaultPath string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Indexer and Reader are optional
	return nil
}
