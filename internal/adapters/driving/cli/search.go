package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
)

var (
	searchFolder   string
	searchTags     []string
	searchPage     int
	searchPageSize int
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Ranks indexed documents against the query with TF-IDF.
Queries are normalized, stemmed and split the same way documents are
at indexing time, so "running" matches notes containing "runs".`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchFolder, "folder", "f", "", "restrict results to a vault folder")
	searchCmd.Flags().StringArrayVarP(&searchTags, "tag", "t", nil, "require a tag (repeatable, all must match)")
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "result page")
	searchCmd.Flags().IntVarP(&searchPageSize, "page-size", "n", 0, "results per page (0 = default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		Folder:   searchFolder,
		Tags:     searchTags,
		Page:     searchPage,
		PageSize: searchPageSize,
	}

	page, err := searchService.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, page)
	}

	return outputSearchTable(cmd, page)
}

func outputSearchJSON(cmd *cobra.Command, page *domain.SearchPage) error {
	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, page *domain.SearchPage) error {
	if page.TotalCount == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results (page %d of %d, %d total):\n", page.Page, page.TotalPages, page.TotalCount)
	cmd.Println()
	rank := (page.Page-1)*page.PageSize + 1
	for i := range page.Results {
		r := &page.Results[i]
		cmd.Printf("  [%d] %s (%.4f)\n", rank+i, r.Path, r.Score)
		if terms := matchedTermList(r.Matches); terms != "" {
			cmd.Printf("      Matched: %s\n", terms)
		}
		if r.Snippet != "" {
			cmd.Printf("      %s\n", r.Snippet)
		}
		cmd.Println()
	}

	return nil
}

// matchedTermList renders the distinct matched terms of one result.
func matchedTermList(matches []domain.TermMatch) string {
	seen := make(map[string]struct{}, len(matches))
	var terms []string
	for _, m := range matches {
		if _, ok := seen[m.Term]; ok {
			continue
		}
		seen[m.Term] = struct{}{}
		terms = append(terms, m.Term)
	}
	return strings.Join(terms, ", ")
}
