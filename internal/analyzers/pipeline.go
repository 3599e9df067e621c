package analyzers

import (
	"fmt"
	"sort"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
)

// Pipeline chains analyzers and merges their output by term after
// each stage, so every analyzer and the index store see de-duplicated
// terms.
type Pipeline struct {
	analyzers []Analyzer
}

// NewPipeline creates an analyzer pipeline.
// Analyzers are executed in the order provided.
func NewPipeline(analyzers ...Analyzer) *Pipeline {
	return &Pipeline{analyzers: analyzers}
}

// NewPipelineFromNames resolves the named analyzers from the registry.
// Unknown names fail at construction time.
func NewPipelineFromNames(r *Registry, cfg map[string]map[string]any, names ...string) (*Pipeline, error) {
	resolved := make([]Analyzer, 0, len(names))
	for _, name := range names {
		var acfg map[string]any
		if cfg != nil {
			acfg = cfg[name]
		}
		a, err := r.Build(name, acfg)
		if err != nil {
			return nil, fmt.Errorf("building analyzer pipeline: %w", err)
		}
		resolved = append(resolved, a)
	}
	return &Pipeline{analyzers: resolved}, nil
}

// Process runs the tokens through all analyzers in order, merging by
// term after each stage. The result is ordered by first position.
func (p *Pipeline) Process(tokens []domain.Token) []domain.Token {
	out := MergeByTerm(tokens)
	for _, a := range p.analyzers {
		out = MergeByTerm(a.Analyze(out))
	}
	return out
}

// Len returns the number of analyzers in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.analyzers)
}

// MergeByTerm folds a token list into one token per term, summing
// counts, unioning positions and preserving the original-form flag if
// any contributor carries it. Position union de-duplicates, which is
// what makes re-running a pipeline on its own output a no-op.
func MergeByTerm(tokens []domain.Token) []domain.Token {
	byTerm := make(map[string]*domain.Token, len(tokens))
	order := make([]string, 0, len(tokens))

	for _, tok := range tokens {
		existing, ok := byTerm[tok.Term]
		if !ok {
			merged := tok
			merged.Positions = append([]int(nil), tok.Positions...)
			byTerm[tok.Term] = &merged
			order = append(order, tok.Term)
			continue
		}
		existing.Positions = unionPositions(existing.Positions, tok.Positions)
		existing.IsOriginal = existing.IsOriginal || tok.IsOriginal
	}

	out := make([]domain.Token, 0, len(order))
	for _, term := range order {
		tok := byTerm[term]
		// Positions are authoritative: the de-duplicated union defines
		// the occurrence count, which keeps merging idempotent.
		tok.Count = len(tok.Positions)
		out = append(out, *tok)
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := firstPosition(out[i]), firstPosition(out[j])
		if pi != pj {
			return pi < pj
		}
		return out[i].Term < out[j].Term
	})
	return out
}

// unionPositions merges two sorted position lists without duplicates.
func unionPositions(a, b []int) []int {
	seen := make(map[int]struct{}, len(a)+len(b))
	out := make([]int, 0, len(a)+len(b))
	for _, lists := range [][]int{a, b} {
		for _, p := range lists {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out
}

func firstPosition(tok domain.Token) int {
	if len(tok.Positions) == 0 {
		return int(^uint(0) >> 1)
	}
	return tok.Positions[0]
}
