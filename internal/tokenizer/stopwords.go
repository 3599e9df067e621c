package tokenizer

// defaultStopwords is the default set of high-frequency English
// function words excluded from indexing when the threshold allows it.
//
// The set is deliberately small: aggressive lists start swallowing
// meaningful words in short personal notes.
var defaultStopwords = map[string]struct{}{
	"a":     {},
	"about": {},
	"an":    {},
	"and":   {},
	"are":   {},
	"as":    {},
	"at":    {},
	"be":    {},
	"by":    {},
	"for":   {},
	"from":  {},
	"how":   {},
	"i":     {},
	"in":    {},
	"is":    {},
	"it":    {},
	"of":    {},
	"on":    {},
	"or":    {},
	"that":  {},
	"the":   {},
	"this":  {},
	"to":    {},
	"was":   {},
	"what":  {},
	"when":  {},
	"where": {},
	"who":   {},
	"will":  {},
	"with":  {},
}

// DefaultStopwords returns a copy of the built-in stopword set.
func DefaultStopwords() map[string]struct{} {
	out := make(map[string]struct{}, len(defaultStopwords))
	for w := range defaultStopwords {
		out[w] = struct{}{}
	}
	return out
}
