// Package mcp provides an MCP (Model Context Protocol) server adapter
// for vaultsearch. It lets AI assistants query and maintain the local
// vault index.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
