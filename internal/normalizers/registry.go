package normalizers

import (
	"fmt"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
)

// Transform is a pure string-to-string text transform.
// Transforms never fail on valid Unicode input.
type Transform func(string) string

// BuilderFunc creates a Transform from generic config.
// Config is a map of transform-specific settings parsed from user config.
type BuilderFunc func(cfg map[string]any) (Transform, error)

// Registry maps transform names to their builders.
// It allows dynamic construction of pipelines from configuration while
// rejecting unknown names at construction time rather than at use.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates a new transform registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a transform builder to the registry.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates a transform by name with the given config.
// Returns an error if the name is not registered or the config is
// malformed (e.g. an invalid pattern), which is a startup-time
// configuration error, never a per-document failure.
func (r *Registry) Build(name string, cfg map[string]any) (Transform, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTransform, name)
	}
	return builder(cfg)
}

// Has returns true if a transform with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns all registered transform names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	return names
}
