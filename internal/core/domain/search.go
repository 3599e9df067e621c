package domain

import "time"

// SearchOptions configures a search query.
type SearchOptions struct {
	// Folder scopes the search to a vault directory. Empty means the
	// whole vault.
	Folder string

	// Tags restricts results to documents carrying all listed tags.
	Tags []string

	// Page is the 1-based result page. Values below 1 mean page 1.
	Page int

	// PageSize is the number of results per page. Values below 1 fall
	// back to the engine default.
	PageSize int
}

// TermMatch records where one query term matched within a document.
type TermMatch struct {
	// Term is the matched index term.
	Term string

	// Source indicates whether the match was in content or filename.
	Source TermSource

	// Positions holds the token offsets of the occurrences.
	Positions []int
}

// SearchResult is a single ranked hit.
type SearchResult struct {
	// Path identifies the matched document.
	Path string

	// Score is the accumulated TF-IDF relevance score.
	Score float64

	// LastModified is the document modification time, used as the
	// tie-breaker between equal scores.
	LastModified time.Time

	// Matches lists the per-term match details.
	Matches []TermMatch

	// Snippet is a short content excerpt around the first match.
	// Empty when no content reader is configured.
	Snippet string
}

// SearchPage is one page of a fully ranked result set. Results are
// sorted before slicing, so page boundaries are stable within a query.
type SearchPage struct {
	// Results are the hits for this page, in rank order.
	Results []SearchResult

	// Page is the 1-based page number.
	Page int

	// PageSize is the applied page size.
	PageSize int

	// TotalCount is the size of the full ranked result set.
	TotalCount int

	// TotalPages is the number of pages at PageSize.
	TotalPages int
}
