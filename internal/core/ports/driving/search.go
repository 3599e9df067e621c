package driving

import (
	"context"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
)

// SearchService ranks indexed documents against a query string.
type SearchService interface {
	// Search tokenizes the query with the indexing pipeline, scores
	// candidate documents with TF-IDF and returns one stable page of
	// the fully ranked result set.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchPage, error)
}
