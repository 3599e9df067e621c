package tokenizer

import (
	"sort"
	"strings"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
	"github.com/memento-labs/vaultsearch/internal/logger"
	"github.com/memento-labs/vaultsearch/internal/normalizers"
)

// DefaultStopwordThreshold is the stopword-ratio above which stopword
// removal is skipped entirely for a text.
const DefaultStopwordThreshold = 0.5

// Tokenizer turns raw text into de-duplicated word tokens.
//
// Stopword removal is all-or-nothing per call: if the stopword ratio
// of the whitespace-split word list exceeds the threshold, removal is
// skipped for the whole text, so short stopword-dominated phrases like
// "For a while" are preserved verbatim.
type Tokenizer struct {
	pipeline  *normalizers.Pipeline
	stopwords map[string]struct{}
	threshold float64
	partial   bool
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithStopwordThreshold overrides the stopword-ratio threshold.
func WithStopwordThreshold(threshold float64) Option {
	return func(t *Tokenizer) {
		t.threshold = threshold
	}
}

// WithStopwords replaces the built-in stopword set.
// An empty map disables stopword removal entirely.
func WithStopwords(words map[string]struct{}) Option {
	return func(t *Tokenizer) {
		t.stopwords = words
	}
}

// WithPartialStopwordRemoval switches to the partial removal variant:
// when the ratio exceeds the threshold, stopwords are still dropped
// front to back until the remaining list falls to the threshold,
// instead of keeping them all.
func WithPartialStopwordRemoval() Option {
	return func(t *Tokenizer) {
		t.partial = true
	}
}

// New creates a tokenizer over the given normalizer pipeline.
func New(pipeline *normalizers.Pipeline, opts ...Option) *Tokenizer {
	t := &Tokenizer{
		pipeline:  pipeline,
		stopwords: DefaultStopwords(),
		threshold: DefaultStopwordThreshold,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tokenize normalizes the text, splits it on whitespace runs, applies
// threshold-gated stopword filtering and aggregates occurrences into
// tokens. Positions are zero-based indices into the surviving word
// list, not offsets into the original string. The returned tokens are
// ordered by first occurrence.
func (t *Tokenizer) Tokenize(text string) []domain.Token {
	normalized := t.pipeline.Apply(text)
	words := strings.Fields(normalized)
	if len(words) == 0 {
		return nil
	}

	words = t.filterStopwords(words)

	byTerm := make(map[string]*domain.Token, len(words))
	order := make([]string, 0, len(words))
	for pos, word := range words {
		tok, ok := byTerm[word]
		if !ok {
			tok = &domain.Token{Term: word, IsOriginal: true}
			byTerm[word] = tok
			order = append(order, word)
		}
		tok.Count++
		tok.Positions = append(tok.Positions, pos)
	}

	tokens := make([]domain.Token, 0, len(order))
	for _, term := range order {
		tokens = append(tokens, *byTerm[term])
	}
	return tokens
}

// filterStopwords applies the all-or-nothing (or, when configured,
// partial) stopword removal policy and returns the surviving words.
func (t *Tokenizer) filterStopwords(words []string) []string {
	if len(t.stopwords) == 0 {
		return words
	}

	stopCount := 0
	for _, w := range words {
		if t.isStopword(w) {
			stopCount++
		}
	}
	if stopCount == 0 {
		return words
	}

	ratio := float64(stopCount) / float64(len(words))
	if ratio <= t.threshold {
		// At or below the threshold: remove every recognized stopword.
		kept := make([]string, 0, len(words)-stopCount)
		for _, w := range words {
			if !t.isStopword(w) {
				kept = append(kept, w)
			}
		}
		return kept
	}

	if !t.partial {
		logger.Debug("stopword ratio %.2f above threshold %.2f, keeping all %d words",
			ratio, t.threshold, len(words))
		return words
	}

	return t.partialRemove(words, stopCount)
}

// partialRemove drops stopwords front to back only while the stopword
// ratio of the remaining list stays above the threshold.
func (t *Tokenizer) partialRemove(words []string, stopCount int) []string {
	kept := make([]string, 0, len(words))
	remaining := len(words)
	for _, w := range words {
		ratio := float64(stopCount) / float64(remaining)
		if t.isStopword(w) && ratio > t.threshold {
			stopCount--
			remaining--
			continue
		}
		kept = append(kept, w)
	}
	return kept
}

// isStopword reports whether the word is in the configured set.
func (t *Tokenizer) isStopword(word string) bool {
	_, ok := t.stopwords[word]
	return ok
}

// SortTokens orders tokens by first position, which is the order the
// tokenizer itself emits. Useful after analyzer merging.
func SortTokens(tokens []domain.Token) {
	sort.SliceStable(tokens, func(i, j int) bool {
		pi, pj := firstPosition(tokens[i]), firstPosition(tokens[j])
		if pi != pj {
			return pi < pj
		}
		return tokens[i].Term < tokens[j].Term
	})
}

// firstPosition returns the first recorded position, or a sentinel for
// tokens without positions.
func firstPosition(tok domain.Token) int {
	if len(tok.Positions) == 0 {
		return int(^uint(0) >> 1)
	}
	return tok.Positions[0]
}
