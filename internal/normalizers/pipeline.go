package normalizers

import "fmt"

// Pipeline is an ordered list of transforms applied sequentially.
// It is resolved once at construction time from a registry, so unknown
// names and malformed configs surface early.
type Pipeline struct {
	names []string
	steps []Transform
}

// NewPipeline resolves the named transforms from the registry, in
// order. cfg supplies per-transform settings keyed by transform name
// and may be nil.
func NewPipeline(r *Registry, cfg map[string]map[string]any, names ...string) (*Pipeline, error) {
	steps := make([]Transform, 0, len(names))
	for _, name := range names {
		var tcfg map[string]any
		if cfg != nil {
			tcfg = cfg[name]
		}
		step, err := r.Build(name, tcfg)
		if err != nil {
			return nil, fmt.Errorf("building normalizer pipeline: %w", err)
		}
		steps = append(steps, step)
	}

	return &Pipeline{
		names: append([]string(nil), names...),
		steps: steps,
	}, nil
}

// Apply runs the text through all transforms in order.
func (p *Pipeline) Apply(text string) string {
	for _, step := range p.steps {
		text = step(text)
	}
	return text
}

// Names returns the ordered transform names of this pipeline.
func (p *Pipeline) Names() []string {
	return append([]string(nil), p.names...)
}

// Len returns the number of transforms in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.steps)
}
