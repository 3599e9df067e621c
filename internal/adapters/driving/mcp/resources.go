package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for vaultsearch resources.
const uriScheme = "vaultsearch://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Template for document content, addressed by vault-relative path.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{path}",
		Name:        "document-content",
		Description: "Content of a vault document",
		MIMEType:    "text/markdown",
	}, s.handleDocumentContentResource)
}

// handleDocumentContentResource returns the content of a vault document.
func (s *Server) handleDocumentContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Reader == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	path := extractDocumentPath(req.Params.URI)
	if path == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	content, err := s.ports.Reader.ReadDocument(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     content,
		}},
	}, nil
}

// extractDocumentPath extracts the vault path from a URI like
// vaultsearch://documents/{path}.
func extractDocumentPath(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
