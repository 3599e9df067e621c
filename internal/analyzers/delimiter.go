package analyzers

import (
	"strings"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
)

// delimiterCutset holds the boundary apostrophe forms stripped before
// splitting. Apostrophes inside a word (contractions) are preserved.
const delimiterCutset = "'’"

// DelimiterAnalyzer emits delimiter-split parts of compound tokens in
// addition to the originals, so "user-defined_command" is found by
// "user", "defined" or "command" individually without losing the
// exact compound match.
type DelimiterAnalyzer struct{}

// NewDelimiterAnalyzer creates the delimiter analyzer.
func NewDelimiterAnalyzer() *DelimiterAnalyzer {
	return &DelimiterAnalyzer{}
}

// Name returns the analyzer name.
func (a *DelimiterAnalyzer) Name() string { return "delimiter" }

// Analyze returns the original tokens plus split parts for any token
// containing '-' or '_', or carrying a leading/trailing apostrophe
// (straight or typographic).
func (a *DelimiterAnalyzer) Analyze(tokens []domain.Token) []domain.Token {
	out := make([]domain.Token, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok)

		trimmed := strings.Trim(tok.Term, delimiterCutset)
		needsSplit := strings.ContainsAny(trimmed, "-_")
		if !needsSplit && trimmed == tok.Term {
			continue
		}

		parts := strings.FieldsFunc(trimmed, func(r rune) bool {
			return r == '-' || r == '_'
		})
		for _, part := range parts {
			if part == tok.Term {
				continue
			}
			out = append(out, domain.Token{
				Term:       part,
				Count:      tok.Count,
				Positions:  append([]int(nil), tok.Positions...),
				IsOriginal: false,
			})
		}
	}
	return out
}
