package analyzers

import (
	snowball "github.com/kljensen/snowball/english"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
)

// StemmerAnalyzer keeps every surface form and additionally emits its
// Snowball stem when it differs, so "running", "runs" and "run" all
// contribute to the "run" stem bucket while each surface form stays
// independently retrievable.
type StemmerAnalyzer struct{}

// NewStemmerAnalyzer creates the stemmer analyzer.
func NewStemmerAnalyzer() *StemmerAnalyzer {
	return &StemmerAnalyzer{}
}

// Name returns the analyzer name.
func (a *StemmerAnalyzer) Name() string { return "stemmer" }

// Analyze emits the original token and, when the stem differs from
// the surface form, a derived token under the stem. Surface forms that
// stem identically merge in the pipeline's fold.
func (a *StemmerAnalyzer) Analyze(tokens []domain.Token) []domain.Token {
	out := make([]domain.Token, 0, len(tokens)*2)
	for _, tok := range tokens {
		out = append(out, tok)

		stem := snowball.Stem(tok.Term, false)
		if stem == "" || stem == tok.Term {
			continue
		}
		out = append(out, domain.Token{
			Term:       stem,
			Count:      tok.Count,
			Positions:  append([]int(nil), tok.Positions...),
			IsOriginal: false,
		})
	}
	return out
}
