package analyzers

import (
	"fmt"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
)

// Analyzer expands or rewrites a token set.
// Implementations must be idempotent with respect to merge semantics:
// re-running on the same token list yields the same term set and counts.
type Analyzer interface {
	// Name returns the unique analyzer name used in configuration.
	Name() string

	// Analyze returns the expanded token list. The pipeline merges
	// the result by term, so emitting duplicates is allowed.
	Analyze(tokens []domain.Token) []domain.Token
}

// BuilderFunc creates an Analyzer from generic config.
type BuilderFunc func(cfg map[string]any) (Analyzer, error)

// Registry maps analyzer names to their builders.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates a new analyzer registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds an analyzer builder to the registry.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates an analyzer by name with the given config.
// Returns an error if the analyzer name is not registered.
func (r *Registry) Build(name string, cfg map[string]any) (Analyzer, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownAnalyzer, name)
	}
	return builder(cfg)
}

// Has returns true if an analyzer with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// RegisterDefaults registers all built-in analyzers with the registry.
func RegisterDefaults(r *Registry) {
	r.Register("delimiter", func(_ map[string]any) (Analyzer, error) {
		return NewDelimiterAnalyzer(), nil
	})
	r.Register("stemmer", func(_ map[string]any) (Analyzer, error) {
		return NewStemmerAnalyzer(), nil
	})
}
