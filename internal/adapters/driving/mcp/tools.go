package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query    string   `json:"query" jsonschema:"the search query to find documents"`
	Folder   string   `json:"folder,omitempty" jsonschema:"restrict results to a vault folder"`
	Tags     []string `json:"tags,omitempty" jsonschema:"restrict results to documents carrying all listed tags"`
	Page     int      `json:"page,omitempty" jsonschema:"1-based result page (default 1)"`
	PageSize int      `json:"page_size,omitempty" jsonschema:"results per page (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results    []SearchResultOutput `json:"results"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalCount int                  `json:"total_count"`
	TotalPages int                  `json:"total_pages"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	Path         string    `json:"path"`
	Score        float64   `json:"score"`
	LastModified time.Time `json:"last_modified"`
	Terms        []string  `json:"terms,omitempty"`
	Snippet      string    `json:"snippet,omitempty"`
}

// RebuildInput is the input schema for the rebuild tool.
type RebuildInput struct {
	Root string `json:"root,omitempty" jsonschema:"vault root to rebuild (default: the configured vault)"`
}

// RebuildOutput is the output schema for the rebuild tool.
type RebuildOutput struct {
	JobID            string `json:"job_id"`
	DocumentsIndexed int    `json:"documents_indexed"`
	ErrorCount       int    `json:"error_count"`
}

// StatusOutput is the output schema for the status tool.
type StatusOutput struct {
	JobID            string `json:"job_id,omitempty"`
	Running          bool   `json:"running"`
	DocumentsIndexed int    `json:"documents_indexed"`
	ErrorCount       int    `json:"error_count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search across all indexed vault documents",
	}, s.handleSearch)

	if s.ports.Indexer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "rebuild",
			Description: "Rebuild the vault index from scratch",
		}, s.handleRebuild)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "status",
			Description: "Report the state of the most recent rebuild",
		}, s.handleStatus)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		Folder:   input.Folder,
		Tags:     input.Tags,
		Page:     input.Page,
		PageSize: input.PageSize,
	}

	page, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results:    make([]SearchResultOutput, len(page.Results)),
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages,
	}

	for i := range page.Results {
		output.Results[i] = SearchResultOutput{
			Path:         page.Results[i].Path,
			Score:        page.Results[i].Score,
			LastModified: page.Results[i].LastModified,
			Terms:        matchedTerms(page.Results[i].Matches),
			Snippet:      page.Results[i].Snippet,
		}
	}

	return nil, output, nil
}

// handleRebuild handles the rebuild tool invocation.
func (s *Server) handleRebuild(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RebuildInput,
) (*mcp.CallToolResult, RebuildOutput, error) {
	root := input.Root
	if root == "" {
		root = s.ports.VaultPath
	}

	jobID, err := s.ports.Indexer.Rebuild(ctx, root)
	if err != nil {
		return nil, RebuildOutput{}, err
	}

	status := s.ports.Indexer.Status()
	return nil, RebuildOutput{
		JobID:            jobID,
		DocumentsIndexed: status.DocumentsIndexed,
		ErrorCount:       status.ErrorCount,
	}, nil
}

// handleStatus handles the status tool invocation.
func (s *Server) handleStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, StatusOutput, error) {
	status := s.ports.Indexer.Status()
	return nil, StatusOutput{
		JobID:            status.JobID,
		Running:          status.Running,
		DocumentsIndexed: status.DocumentsIndexed,
		ErrorCount:       status.ErrorCount,
	}, nil
}

// matchedTerms flattens match details into the distinct matched terms.
func matchedTerms(matches []domain.TermMatch) []string {
	seen := make(map[string]struct{}, len(matches))
	var terms []string
	for _, m := range matches {
		if _, ok := seen[m.Term]; ok {
			continue
		}
		seen[m.Term] = struct{}{}
		terms = append(terms, m.Term)
	}
	return terms
}
