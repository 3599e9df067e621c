package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/memento-labs/vaultsearch/internal/analyzers"
	"github.com/memento-labs/vaultsearch/internal/core/domain"
	"github.com/memento-labs/vaultsearch/internal/core/ports/driven"
	"github.com/memento-labs/vaultsearch/internal/core/ports/driving"
	"github.com/memento-labs/vaultsearch/internal/logger"
	"github.com/memento-labs/vaultsearch/internal/tokenizer"
)

// Ensure SearchEngine implements the interface.
var _ driving.SearchService = (*SearchEngine)(nil)

// DefaultPageSize applies when the caller does not pick one.
const DefaultPageSize = 10

// SearchEngine scores indexed documents against query terms with
// TF-IDF. Queries pass through the same tokenizer and analyzer
// pipeline as document content, so stems and compound parts line up
// with what the index holds.
type SearchEngine struct {
	store          driven.IndexStore
	tok            *tokenizer.Tokenizer
	pipeline       *analyzers.Pipeline
	reader         driven.ContentReader
	filenameWeight float64
	pageSize       int
}

// SearchOption configures a SearchEngine.
type SearchOption func(*SearchEngine)

// WithFilenameWeight sets the multiplier applied to filename matches.
func WithFilenameWeight(w float64) SearchOption {
	return func(se *SearchEngine) {
		if w > 0 {
			se.filenameWeight = w
		}
	}
}

// WithDefaultPageSize sets the page size used when the caller passes
// none.
func WithDefaultPageSize(n int) SearchOption {
	return func(se *SearchEngine) {
		if n > 0 {
			se.pageSize = n
		}
	}
}

// WithContentReader enables snippet extraction from document content.
func WithContentReader(r driven.ContentReader) SearchOption {
	return func(se *SearchEngine) {
		se.reader = r
	}
}

// NewSearchEngine creates a search engine over the given index store.
func NewSearchEngine(store driven.IndexStore, tok *tokenizer.Tokenizer, pipeline *analyzers.Pipeline, opts ...SearchOption) *SearchEngine {
	se := &SearchEngine{
		store:          store,
		tok:            tok,
		pipeline:       pipeline,
		filenameWeight: 2.0,
		pageSize:       DefaultPageSize,
	}
	for _, opt := range opts {
		opt(se)
	}
	return se
}

// posting pairs one index hit with the IDF of its term.
type posting struct {
	hit domain.TermEntry
	idf float64
}

// candidate accumulates per-document scoring state. Scores are
// computed after the documents are bulk-loaded, since TF needs the
// document token count.
type candidate struct {
	postings []posting
	matches  []domain.TermMatch
}

// Search ranks all matching documents and returns the requested page.
// Sorting happens over the full candidate set before slicing, so page
// boundaries stay stable for a given query and index state.
func (se *SearchEngine) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	terms := se.queryTerms(query)
	logger.Debug("Query %q -> terms %v", query, terms)

	page, pageSize := normalizePage(opts, se.pageSize)
	if len(terms) == 0 {
		return emptyPage(page, pageSize), nil
	}

	totalDocs, err := se.store.DocumentCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}

	scope, scoped, err := se.folderScope(ctx, opts.Folder)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Unknown folder scopes to nothing rather than everything.
			return emptyPage(page, pageSize), nil
		}
		return nil, err
	}

	candidates := make(map[int64]*candidate)
	for _, term := range terms {
		hits, err := se.store.LookupTerm(ctx, term)
		if err != nil {
			return nil, fmt.Errorf("looking up %q: %w", term, err)
		}

		docsContaining := countDistinctDocuments(hits)
		idf := InverseDocumentFrequency(totalDocs, docsContaining)

		for _, hit := range hits {
			if scoped {
				if _, ok := scope[hit.DocumentID]; !ok {
					continue
				}
			}
			cand := candidates[hit.DocumentID]
			if cand == nil {
				cand = &candidate{}
				candidates[hit.DocumentID] = cand
			}
			cand.matches = append(cand.matches, domain.TermMatch{
				Term:      hit.Term,
				Source:    hit.Source,
				Positions: hit.Positions,
			})
			cand.postings = append(cand.postings, posting{hit: hit, idf: idf})
		}
	}

	if len(candidates) == 0 {
		return emptyPage(page, pageSize), nil
	}

	ids := make([]int64, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	docs, err := se.store.DocumentsByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(candidates))
	for id, cand := range candidates {
		doc, ok := docs[id]
		if !ok {
			continue
		}
		if !hasAllTags(doc.Tags, opts.Tags) {
			continue
		}
		results = append(results, domain.SearchResult{
			Path:         doc.Path,
			Score:        se.score(cand.postings, doc.TokenCount),
			LastModified: doc.LastModified,
			Matches:      sortMatches(cand.matches),
		})
	}

	sortResults(results)
	return se.paginate(ctx, results, terms, page, pageSize), nil
}

// queryTerms runs the query through the indexing pipeline and returns
// distinct index terms.
func (se *SearchEngine) queryTerms(query string) []string {
	tokens := se.pipeline.Process(se.tok.Tokenize(query))
	seen := make(map[string]struct{}, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok.Term]; ok {
			continue
		}
		seen[tok.Term] = struct{}{}
		terms = append(terms, tok.Term)
	}
	return terms
}

// folderScope resolves a folder filter to the set of candidate
// document ids. scoped is false when no folder filter applies.
func (se *SearchEngine) folderScope(ctx context.Context, folder string) (map[int64]struct{}, bool, error) {
	if folder == "" {
		return nil, false, nil
	}
	f, err := se.store.FolderByPath(ctx, domain.ToSlashPath(folder))
	if err != nil {
		return nil, true, err
	}
	hits, err := se.store.LookupByFolder(ctx, f.ID)
	if err != nil {
		return nil, true, fmt.Errorf("scoping to folder %q: %w", folder, err)
	}
	scope := make(map[int64]struct{}, len(hits))
	for _, hit := range hits {
		scope[hit.DocumentID] = struct{}{}
	}
	return scope, true, nil
}

// score sums the TF-IDF contributions of a document's postings,
// applying the filename weight for filename-source matches.
func (se *SearchEngine) score(postings []posting, tokenCount int) float64 {
	var total float64
	for _, p := range postings {
		s := TermFrequency(p.hit.Frequency, tokenCount) * p.idf
		if p.hit.Source == domain.SourceFilename {
			s *= se.filenameWeight
		}
		total += s
	}
	return total
}

// paginate slices the sorted results and attaches snippets for the
// returned page only.
func (se *SearchEngine) paginate(ctx context.Context, results []domain.SearchResult, terms []string, page, pageSize int) *domain.SearchPage {
	total := len(results)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start >= total {
		return &domain.SearchPage{
			Results: []domain.SearchResult{}, Page: page, PageSize: pageSize,
			TotalCount: total, TotalPages: totalPages,
		}
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	slice := results[start:end]
	if se.reader != nil {
		for i := range slice {
			slice[i].Snippet = se.snippet(ctx, slice[i].Path, terms)
		}
	}
	return &domain.SearchPage{
		Results: slice, Page: page, PageSize: pageSize,
		TotalCount: total, TotalPages: totalPages,
	}
}

// snippetRadius is how many characters of context to keep on each side
// of the first term occurrence.
const snippetRadius = 80

// snippet extracts a short excerpt around the first query term found
// in the document body. Best effort: read failures yield no snippet.
func (se *SearchEngine) snippet(ctx context.Context, path string, terms []string) string {
	content, err := se.reader.ReadDocument(ctx, path)
	if err != nil {
		logger.Debug("Snippet read %s: %v", path, err)
		return ""
	}
	lower := strings.ToLower(content)

	at := -1
	for _, term := range terms {
		if i := strings.Index(lower, term); i >= 0 && (at < 0 || i < at) {
			at = i
		}
	}
	if at < 0 {
		return ""
	}

	start := at - snippetRadius
	if start < 0 {
		start = 0
	}
	end := at + snippetRadius
	if end > len(content) {
		end = len(content)
	}

	excerpt := strings.Join(strings.Fields(content[start:end]), " ")
	if start > 0 {
		excerpt = "…" + excerpt
	}
	if end < len(content) {
		excerpt += "…"
	}
	return excerpt
}

// TermFrequency is the relative frequency of a term in a document.
// Zero when the document has no tokens.
func TermFrequency(frequency, tokenCount int) float64 {
	if tokenCount <= 0 {
		return 0
	}
	return float64(frequency) / float64(tokenCount)
}

// InverseDocumentFrequency is ln(totalDocs / docsContaining). Zero when
// no document contains the term, and naturally zero when every
// document does.
func InverseDocumentFrequency(totalDocs, docsContaining int) float64 {
	if docsContaining <= 0 || totalDocs <= 0 {
		return 0
	}
	return math.Log(float64(totalDocs) / float64(docsContaining))
}

// countDistinctDocuments counts the documents a posting list spans.
// Content and filename rows for one document count once.
func countDistinctDocuments(hits []domain.TermEntry) int {
	seen := make(map[int64]struct{}, len(hits))
	for _, hit := range hits {
		seen[hit.DocumentID] = struct{}{}
	}
	return len(seen)
}

// hasAllTags reports whether doc tags cover every wanted tag.
func hasAllTags(docTags, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(docTags))
	for _, tag := range docTags {
		set[strings.ToLower(tag)] = struct{}{}
	}
	for _, tag := range wanted {
		if _, ok := set[strings.ToLower(strings.TrimSpace(tag))]; !ok {
			return false
		}
	}
	return true
}

// sortResults orders by score desc, then recency desc, then path asc
// for a total deterministic order.
func sortResults(results []domain.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if !results[i].LastModified.Equal(results[j].LastModified) {
			return results[i].LastModified.After(results[j].LastModified)
		}
		return results[i].Path < results[j].Path
	})
}

// sortMatches gives per-result matches a stable term order.
func sortMatches(matches []domain.TermMatch) []domain.TermMatch {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Term != matches[j].Term {
			return matches[i].Term < matches[j].Term
		}
		return matches[i].Source < matches[j].Source
	})
	return matches
}

// normalizePage clamps paging options to sane values.
func normalizePage(opts domain.SearchOptions, defaultSize int) (page, pageSize int) {
	page = opts.Page
	if page < 1 {
		page = 1
	}
	pageSize = opts.PageSize
	if pageSize < 1 {
		pageSize = defaultSize
	}
	return page, pageSize
}

// emptyPage is a well-formed zero-result page.
func emptyPage(page, pageSize int) *domain.SearchPage {
	return &domain.SearchPage{
		Results:  []domain.SearchResult{},
		Page:     page,
		PageSize: pageSize,
	}
}
